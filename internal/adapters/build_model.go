package adapters

import (
	"sort"

	"cpk-tools/internal/ports"
	"cpk-tools/internal/types"
)

// BuildModelAdapter serves a loaded build model to the core.
type BuildModelAdapter struct {
	Model types.BuildModel
}

func NewBuildModelAdapter(model types.BuildModel) BuildModelAdapter {
	return BuildModelAdapter{Model: model}
}

func (a BuildModelAdapter) Project(path string) (types.Project, bool) {
	project, ok := a.Model.Projects[path]
	return project, ok
}

func (a BuildModelAdapter) Configuration(projectPath string, name string) (types.Configuration, bool) {
	project, ok := a.Model.Projects[projectPath]
	if !ok {
		return types.Configuration{}, false
	}
	config, ok := project.Configurations[name]
	return config, ok
}

func (a BuildModelAdapter) Projects() []types.Project {
	out := make([]types.Project, 0, len(a.Model.Projects))
	for _, project := range a.Model.Projects {
		out = append(out, project)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	return out
}

// declaredClosure flattens a configuration and its parents, keeping the
// first declaration of every dependency.
func (a BuildModelAdapter) declaredClosure(projectPath string, name string) []types.Dependency {
	visited := map[string]struct{}{}
	seen := map[string]struct{}{}
	var out []types.Dependency
	queue := []string{name}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, ok := visited[current]; ok {
			continue
		}
		visited[current] = struct{}{}
		config, ok := a.Configuration(projectPath, current)
		if !ok {
			continue
		}
		for _, dep := range config.Dependencies {
			if _, ok := seen[dep.Key()]; ok {
				continue
			}
			seen[dep.Key()] = struct{}{}
			out = append(out, dep)
		}
		queue = append(queue, config.Extends...)
	}
	return out
}

var _ ports.BuildModelPort = BuildModelAdapter{}
