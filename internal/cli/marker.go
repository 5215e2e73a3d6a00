package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cpk-tools/internal/app"
)

func newMarkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "marker <group:name[:version]>",
		Short: "Print the CPK marker of a module, or the module of a marker",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runMarker(args[0])
		},
	}
}

func runMarker(notation string) error {
	service := newAppService()
	result, err := service.Marker(app.MarkerRequest{Notation: notation})
	if err != nil {
		return err
	}
	if result.Reverse {
		fmt.Println(result.Coordinate)
		return nil
	}
	fmt.Println(result.Marker)
	return nil
}
