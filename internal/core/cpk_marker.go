package core

import (
	"strings"

	"cpk-tools/internal/types"
)

// CpkMarkerSuffix terminates the name of every CPK marker module.
const CpkMarkerSuffix = ".corda.cpk"

// ToCpkMarker derives the marker coordinate announcing that a CPK exists
// for an ordinary module: group:name becomes group:group.name.corda.cpk.
// A coordinate without a name has no marker and is returned unchanged.
func ToCpkMarker(c types.Coordinate) types.Coordinate {
	if c.Name == "" {
		return c
	}
	name := c.Name + CpkMarkerSuffix
	if c.Group != "" {
		name = c.Group + "." + name
	}
	return types.Coordinate{Group: c.Group, Name: name, Version: c.Version}
}

// IsCpkMarker reports whether c follows the marker naming convention.
func IsCpkMarker(c types.Coordinate) bool {
	if !strings.HasSuffix(c.Name, CpkMarkerSuffix) {
		return false
	}
	if c.Group == "" {
		return len(c.Name) > len(CpkMarkerSuffix)
	}
	prefix := c.Group + "."
	return strings.HasPrefix(c.Name, prefix) && len(c.Name) > len(prefix)+len(CpkMarkerSuffix)
}

// FromCpkMarker inverts ToCpkMarker. The second result is false when c is
// not a marker.
func FromCpkMarker(c types.Coordinate) (types.Coordinate, bool) {
	if !IsCpkMarker(c) {
		return types.Coordinate{}, false
	}
	name := strings.TrimSuffix(c.Name, CpkMarkerSuffix)
	if c.Group != "" {
		name = name[len(c.Group)+1:]
	}
	return types.Coordinate{Group: c.Group, Name: name, Version: c.Version}, true
}

// ToCpkMarkerDependency converts a module dependency into its marker,
// keeping its transitivity and classifier-less.
func ToCpkMarkerDependency(dep types.Dependency) types.Dependency {
	marker := dep
	marker.Coordinate = ToCpkMarker(dep.Coordinate)
	marker.Classifier = ""
	marker.Platform = false
	return marker
}
