package adapters

import (
	"context"
	"fmt"

	mm "github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog/log"

	"cpk-tools/internal/ports"
	"cpk-tools/internal/types"
)

// maxSelectionPasses bounds conflict resolution; each pass can only raise
// a selected version, so real graphs settle in a handful of passes.
const maxSelectionPasses = 16

// GraphResolverAdapter resolves dependencies against the module
// repository of a build model. Platform modules contribute version
// constraints but no content, the highest requested version of a module
// wins, and project dependencies resolve to the project's own artifact
// plus its export configuration.
type GraphResolverAdapter struct {
	Model         BuildModelAdapter
	ExportConfigs string
}

func NewGraphResolverAdapter(model BuildModelAdapter, exportConfiguration string) GraphResolverAdapter {
	return GraphResolverAdapter{Model: model, ExportConfigs: exportConfiguration}
}

func (r GraphResolverAdapter) ResolveTransitive(ctx context.Context, seeds []types.Dependency, alignment []types.Dependency) (types.ResolvedConfiguration, error) {
	if err := ctx.Err(); err != nil {
		return types.ResolvedConfiguration{}, err
	}
	state := &resolution{
		resolver:   r,
		aligned:    map[string]string{},
		selected:   map[string]string{},
		nodes:      map[string]*types.ResolvedDependencyNode{},
		projects:   map[*types.ResolvedDependencyNode]string{},
		expanded:   map[*types.ResolvedDependencyNode]struct{}{},
		unresolved: map[string]struct{}{},
	}
	var platforms []types.Dependency
	platforms = append(platforms, alignment...)
	for _, seed := range seeds {
		if seed.Platform {
			platforms = append(platforms, seed)
		}
	}
	state.align(platforms)
	for pass := 0; pass < maxSelectionPasses; pass++ {
		if !state.selectVersions(seeds) {
			break
		}
	}
	state.build(seeds)
	log.Ctx(ctx).Debug().
		Int("seeds", len(seeds)).
		Int("nodes", len(state.nodes)).
		Int("unresolved", len(state.result.Unresolved)).
		Msg("dependency graph resolved")
	return state.result, nil
}

func (r GraphResolverAdapter) ResolveFirstLevel(resolved types.ResolvedConfiguration, filter func(types.Coordinate) bool) []types.ResolvedArtifact {
	var out []types.ResolvedArtifact
	seen := map[string]struct{}{}
	for _, node := range resolved.FirstLevel {
		if filter != nil && !filter(node.Coordinate) {
			continue
		}
		for _, artifact := range node.Artifacts {
			if _, ok := seen[artifact.File]; ok {
				continue
			}
			seen[artifact.File] = struct{}{}
			out = append(out, artifact)
		}
	}
	return out
}

type resolution struct {
	resolver   GraphResolverAdapter
	aligned    map[string]string
	selected   map[string]string
	nodes      map[string]*types.ResolvedDependencyNode
	projects   map[*types.ResolvedDependencyNode]string
	expanded   map[*types.ResolvedDependencyNode]struct{}
	unresolved map[string]struct{}
	result     types.ResolvedConfiguration
}

func (s *resolution) align(platforms []types.Dependency) {
	for _, platform := range platforms {
		version := platform.Coordinate.Version
		if version == "" {
			version = s.aligned[platform.Coordinate.Key()]
		}
		module, ok := s.resolver.Model.Model.Repository[types.RepositoryKey(platform.Coordinate.WithVersion(version))]
		if !ok {
			s.fail(platform, "platform not found")
			continue
		}
		for _, constraint := range module.Constraints {
			if _, exists := s.aligned[constraint.Key()]; !exists {
				s.aligned[constraint.Key()] = constraint.Version
			}
		}
	}
}

type pending struct {
	dep        types.Dependency
	transitive bool
}

// selectVersions walks the graph with the current selection and raises
// the selected version of every module to the highest one requested. It
// reports whether anything changed.
func (s *resolution) selectVersions(seeds []types.Dependency) bool {
	changed := false
	visited := map[string]struct{}{}
	queue := make([]pending, 0, len(seeds))
	for _, seed := range seeds {
		queue = append(queue, pending{dep: seed, transitive: seed.Transitive})
	}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		dep := item.dep
		if dep.Platform {
			continue
		}
		if dep.IsProject() {
			if _, ok := visited[dep.Key()]; ok || !item.transitive {
				continue
			}
			visited[dep.Key()] = struct{}{}
			for _, child := range s.resolver.Model.declaredClosure(dep.Project, s.resolver.ExportConfigs) {
				queue = append(queue, pending{dep: child, transitive: child.Transitive})
			}
			continue
		}
		key := dep.Coordinate.Key()
		for _, candidate := range []string{dep.Coordinate.Version, s.aligned[key]} {
			if candidate == "" {
				continue
			}
			if current, ok := s.selected[key]; !ok || compareVersions(candidate, current) > 0 {
				s.selected[key] = candidate
				changed = true
			}
		}
		version := s.selected[key]
		if version == "" || !item.transitive {
			continue
		}
		visitKey := key + ":" + version
		if _, ok := visited[visitKey]; ok {
			continue
		}
		visited[visitKey] = struct{}{}
		module, ok := s.module(dep.Coordinate.WithVersion(version))
		if !ok {
			continue
		}
		for _, child := range module.Dependencies {
			queue = append(queue, pending{dep: child, transitive: child.Transitive})
		}
	}
	return changed
}

func (s *resolution) build(seeds []types.Dependency) {
	firstLevel := map[*types.ResolvedDependencyNode]struct{}{}
	var queue []*types.ResolvedDependencyNode
	for _, seed := range seeds {
		node := s.node(seed)
		if node == nil {
			continue
		}
		if _, ok := firstLevel[node]; !ok {
			firstLevel[node] = struct{}{}
			s.result.FirstLevel = append(s.result.FirstLevel, node)
		}
		if seed.Transitive {
			queue = append(queue, node)
		}
	}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if _, ok := s.expanded[node]; ok {
			continue
		}
		s.expanded[node] = struct{}{}
		for _, child := range s.childDependencies(node) {
			childNode := s.node(child)
			if childNode == nil {
				continue
			}
			node.Children = append(node.Children, childNode)
			if child.Transitive {
				queue = append(queue, childNode)
			}
		}
	}
}

func (s *resolution) childDependencies(node *types.ResolvedDependencyNode) []types.Dependency {
	if node.Platform {
		return nil
	}
	if path, ok := s.projects[node]; ok {
		return s.resolver.Model.declaredClosure(path, s.resolver.ExportConfigs)
	}
	module, ok := s.module(node.Coordinate)
	if !ok {
		return nil
	}
	return module.Dependencies
}

// node returns the shared node for dep, creating it on first use. It
// returns nil and records the failure when dep cannot be resolved.
func (s *resolution) node(dep types.Dependency) *types.ResolvedDependencyNode {
	if dep.IsProject() {
		project, ok := s.resolver.Model.Project(dep.Project)
		if !ok {
			s.fail(dep, "project not found")
			return nil
		}
		key := "project:" + project.Path
		if node, ok := s.nodes[key]; ok {
			return node
		}
		node := &types.ResolvedDependencyNode{Coordinate: project.Coordinate, Project: true}
		if project.Artifact != "" {
			node.Artifacts = append(node.Artifacts, types.ResolvedArtifact{
				Coordinate:    project.Coordinate,
				File:          project.Artifact,
				PackagingType: "jar",
				Project:       true,
			})
		}
		s.nodes[key] = node
		s.projects[node] = project.Path
		return node
	}

	version := s.selected[dep.Coordinate.Key()]
	if version == "" {
		version = dep.Coordinate.Version
	}
	if version == "" {
		version = s.aligned[dep.Coordinate.Key()]
	}
	if version == "" {
		s.fail(dep, "no version declared or aligned")
		return nil
	}
	coordinate := dep.Coordinate.WithVersion(version)
	key := coordinate.String() + "@" + dep.Classifier
	if dep.Platform {
		key = "platform:" + key
	}
	if node, ok := s.nodes[key]; ok {
		return node
	}
	module, ok := s.module(coordinate)
	if !ok {
		s.fail(dep, fmt.Sprintf("module %s not found", coordinate))
		return nil
	}
	node := &types.ResolvedDependencyNode{Coordinate: coordinate, Platform: dep.Platform || module.Platform}
	if !node.Platform {
		for _, artifact := range module.Artifacts {
			if artifact.Classifier != dep.Classifier {
				continue
			}
			node.Artifacts = append(node.Artifacts, types.ResolvedArtifact{
				Coordinate:    coordinate,
				File:          artifact.File,
				Classifier:    artifact.Classifier,
				PackagingType: artifact.Type,
			})
		}
	}
	s.nodes[key] = node
	return node
}

func (s *resolution) module(c types.Coordinate) (types.RepositoryModule, bool) {
	module, ok := s.resolver.Model.Model.Repository[types.RepositoryKey(c)]
	return module, ok
}

func (s *resolution) fail(dep types.Dependency, reason string) {
	key := dep.Key()
	if _, ok := s.unresolved[key]; ok {
		return
	}
	s.unresolved[key] = struct{}{}
	s.result.Unresolved = append(s.result.Unresolved, types.UnresolvedDependency{
		Dependency: key,
		Reason:     reason,
	})
}

// compareVersions orders module versions. Versions that are not valid
// semantic versions fall back to lexical order.
func compareVersions(a string, b string) int {
	va, errA := mm.NewVersion(a)
	vb, errB := mm.NewVersion(b)
	if errA != nil || errB != nil {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	return va.Compare(vb)
}

var _ ports.DependencyResolverPort = GraphResolverAdapter{}
