package core

import (
	"cpk-tools/internal/ports"
	"cpk-tools/internal/types"
)

// DependencyCollector flattens the declared dependencies of a
// configuration and every configuration it extends.
type DependencyCollector struct {
	Model    ports.BuildModelPort
	Project  string
	Excluded []string
}

// NewDependencyCollector returns a collector for one project. Excluded
// configurations are treated as already visited, so neither they nor the
// configurations only reachable through them contribute.
func NewDependencyCollector(model ports.BuildModelPort, project string, excluded ...string) DependencyCollector {
	return DependencyCollector{
		Model:    model,
		Project:  project,
		Excluded: excluded,
	}
}

func (c DependencyCollector) Collect(configuration string) []types.Dependency {
	if c.Model == nil {
		return nil
	}
	visited := map[string]struct{}{}
	for _, name := range c.Excluded {
		visited[name] = struct{}{}
	}
	seen := map[string]struct{}{}
	var out []types.Dependency

	stack := []string{configuration}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[name]; ok {
			continue
		}
		visited[name] = struct{}{}
		config, ok := c.Model.Configuration(c.Project, name)
		if !ok {
			continue
		}
		for _, dep := range config.Dependencies {
			key := dep.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, dep)
		}
		// Push in reverse so parents are visited in declaration order.
		for i := len(config.Extends) - 1; i >= 0; i-- {
			stack = append(stack, config.Extends[i])
		}
	}
	return out
}
