package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cpk-tools/internal/app"
)

type inspectOptions struct {
	OutputDir string
	Files     bool
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect calculated dependency reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.OutputDir, "output", "out", "Output directory")
	cmd.Flags().BoolVar(&opts.Files, "files", false, "List the files of every bucket")
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("files", cmd.Flags().Lookup("files"))
	return cmd
}

func runInspect(cmd *cobra.Command, opts inspectOptions) error {
	service := newAppService()
	result, err := service.Inspect(app.InspectRequest{
		OutputDir: resolveString(cmd, opts.OutputDir, "output", "output"),
	})
	if err != nil {
		return err
	}
	listFiles := resolveBool(cmd, opts.Files, "files", "files")
	for _, summary := range result.Buckets {
		fmt.Printf("%s: %d\n", summary.Bucket, summary.Count)
		if !listFiles {
			continue
		}
		for _, file := range summary.Files {
			fmt.Printf("  %s\n", file)
		}
	}
	fmt.Printf("CorDapp dependencies: %d\n", len(result.Dependencies))
	for _, dep := range result.Dependencies {
		trust := "same signer"
		if dep.VerifyFileHash != nil {
			trust = dep.VerifyFileHash.Algorithm + " " + dep.VerifyFileHash.FileHash
		}
		fmt.Printf("- %s %s (%s)\n", dep.Name, dep.Version, trust)
	}
	return nil
}
