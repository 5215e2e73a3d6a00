package types

// Configuration is a named bucket of declared dependencies that may
// extend other configurations of the same project.
type Configuration struct {
	Name         string
	Extends      []string
	Dependencies []Dependency
}

// Project is one module of a multi-project build.
type Project struct {
	Path           string
	Coordinate     Coordinate
	Artifact       string
	CordappName    string
	Configurations map[string]Configuration
}

// RepositoryModule is a module available to the resolver.
type RepositoryModule struct {
	Coordinate   Coordinate
	Artifacts    []ModuleArtifact
	Dependencies []Dependency
	Platform     bool
	Constraints  []Coordinate
}

type ModuleArtifact struct {
	File       string
	Classifier string
	Type       string
}

// BuildModel is the whole build as seen by the calculator: its projects
// and the modules that external dependencies resolve against.
type BuildModel struct {
	Projects   map[string]Project
	Repository map[string]RepositoryModule
}

// RepositoryKey identifies a repository module by group, name and version.
func RepositoryKey(c Coordinate) string {
	return c.String()
}
