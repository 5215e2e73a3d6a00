package ports

import "cpk-tools/internal/types"

// BuildModelPort exposes the host build's projects and configurations.
type BuildModelPort interface {
	Project(path string) (types.Project, bool)
	Configuration(projectPath string, name string) (types.Configuration, bool)
	Projects() []types.Project
}

// BuildModelLoaderPort reads a build model from disk.
type BuildModelLoaderPort interface {
	Load(path string) (types.BuildModel, error)
}
