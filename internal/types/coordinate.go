package types

import "strings"

// Coordinate identifies a module by group and name. Version may be empty
// until resolution or platform alignment supplies one.
type Coordinate struct {
	Group   string `yaml:"group"`
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
}

// Key is the version-less identity of a coordinate.
func (c Coordinate) Key() string {
	if c.Group == "" {
		return c.Name
	}
	return c.Group + ":" + c.Name
}

func (c Coordinate) String() string {
	if c.Version == "" {
		return c.Key()
	}
	return c.Key() + ":" + c.Version
}

func (c Coordinate) WithVersion(version string) Coordinate {
	c.Version = version
	return c
}

// ParseCoordinate parses "group:name[:version]". A bare name is accepted
// with an empty group.
func ParseCoordinate(raw string) (Coordinate, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	switch len(parts) {
	case 1:
		if parts[0] == "" {
			return Coordinate{}, false
		}
		return Coordinate{Name: parts[0]}, true
	case 2, 3:
		c := Coordinate{Group: strings.TrimSpace(parts[0]), Name: strings.TrimSpace(parts[1])}
		if len(parts) == 3 {
			c.Version = strings.TrimSpace(parts[2])
		}
		if c.Name == "" {
			return Coordinate{}, false
		}
		return c, true
	default:
		return Coordinate{}, false
	}
}
