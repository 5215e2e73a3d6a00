package app

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cpk-tools/internal/core"
	"cpk-tools/internal/types"
)

// Marker maps a module coordinate to its CPK marker, or a marker back to
// the module it stands for.
func (s Service) Marker(req MarkerRequest) (MarkerResult, error) {
	notation := strings.TrimSpace(req.Notation)
	coordinate, ok := types.ParseCoordinate(notation)
	if !ok || coordinate.Name == "" {
		return MarkerResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid module notation: " + notation)
	}
	if original, ok := core.FromCpkMarker(coordinate); ok {
		return MarkerResult{Coordinate: original, Marker: coordinate, Reverse: true}, nil
	}
	return MarkerResult{Coordinate: coordinate, Marker: core.ToCpkMarker(coordinate)}, nil
}
