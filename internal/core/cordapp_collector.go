package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"cpk-tools/internal/ports"
	"cpk-tools/internal/types"
)

// CordappDependencyCollector discovers every CPK a project depends on,
// directly or through other CPKs, together with the non-CPK dependencies
// those CPKs expect the runtime to provide.
type CordappDependencyCollector struct {
	Model    ports.BuildModelPort
	Resolver ports.DependencyResolverPort
	Project  string
	Names    types.ConfigurationNames

	once   sync.Once
	result types.CordappDependencies
	err    error
}

func NewCordappDependencyCollector(model ports.BuildModelPort, resolver ports.DependencyResolverPort, project string, names types.ConfigurationNames) *CordappDependencyCollector {
	return &CordappDependencyCollector{
		Model:    model,
		Resolver: resolver,
		Project:  project,
		Names:    names,
	}
}

// Collect walks the graph once; later calls return the first result.
func (c *CordappDependencyCollector) Collect(ctx context.Context) (types.CordappDependencies, error) {
	c.once.Do(func() {
		c.result, c.err = c.collect(ctx)
	})
	return c.result, c.err
}

// Platforms returns the platform dependencies of the project. They are
// used for version alignment only.
func (c *CordappDependencyCollector) Platforms() []types.Dependency {
	return PlatformDependencies(NewDependencyCollector(c.Model, c.Project).Collect(c.Names.Platform))
}

func (c *CordappDependencyCollector) collect(ctx context.Context) (types.CordappDependencies, error) {
	w := &cordappWalk{
		collector:       c,
		platforms:       c.Platforms(),
		cordappSeen:     map[string]struct{}{},
		providedSeen:    map[string]struct{}{},
		visitedProjects: map[string]struct{}{c.Project: {}},
	}
	pending := NewDependencyCollector(c.Model, c.Project).Collect(c.Names.Cordapp)
	for len(pending) > 0 {
		dep := pending[0]
		pending = pending[1:]
		if dep.Platform {
			continue
		}
		if dep.IsProject() {
			pending = append(pending, w.visitProject(dep)...)
			continue
		}
		if err := w.visitModule(ctx, dep); err != nil {
			return types.CordappDependencies{}, err
		}
	}
	log.Ctx(ctx).Debug().
		Int("cordapps", len(w.result.Cordapps)).
		Int("provided", len(w.result.Provided)).
		Msg("cordapp dependencies collected")
	return w.result, nil
}

type cordappWalk struct {
	collector       *CordappDependencyCollector
	platforms       []types.Dependency
	cordappSeen     map[string]struct{}
	providedSeen    map[string]struct{}
	visitedProjects map[string]struct{}
	result          types.CordappDependencies
}

func (w *cordappWalk) addCordapp(dep types.Dependency) bool {
	key := dep.Key()
	if _, ok := w.cordappSeen[key]; ok {
		return false
	}
	w.cordappSeen[key] = struct{}{}
	w.result.Cordapps = append(w.result.Cordapps, dep)
	return true
}

func (w *cordappWalk) addProvided(dep types.Dependency) {
	key := dep.Key()
	if _, ok := w.providedSeen[key]; ok {
		return
	}
	w.providedSeen[key] = struct{}{}
	w.result.Provided = append(w.result.Provided, dep)
}

// visitProject records a same-build CorDapp and, when transitive, returns
// the cordapp declarations of that project so they join the walk.
func (w *cordappWalk) visitProject(dep types.Dependency) []types.Dependency {
	if !w.addCordapp(dep) || !dep.Transitive {
		return nil
	}
	if _, ok := w.visitedProjects[dep.Project]; ok {
		return nil
	}
	w.visitedProjects[dep.Project] = struct{}{}
	c := w.collector
	other := NewDependencyCollector(c.Model, dep.Project)
	for _, provided := range other.Collect(c.Names.Provided) {
		if provided.Platform {
			continue
		}
		w.addProvided(provided)
	}
	return other.Collect(c.Names.Cordapp)
}

func (w *cordappWalk) visitModule(ctx context.Context, dep types.Dependency) error {
	if !w.addCordapp(dep) || !dep.Transitive {
		return nil
	}
	if dep.Coordinate.Version == "" && len(w.platforms) > 0 {
		if version, ok := w.inferVersion(ctx, dep); ok {
			dep = dep.WithVersion(version)
		}
	}
	marker := ToCpkMarkerDependency(dep)
	resolved, err := w.collector.Resolver.ResolveTransitive(ctx, []types.Dependency{marker}, w.platforms)
	if err != nil {
		return err
	}
	if resolved.HasErrors() {
		var unresolved []string
		for _, entry := range resolved.Unresolved {
			unresolved = append(unresolved, entry.Dependency)
		}
		log.Ctx(ctx).Warn().
			Str("dependency", dep.Key()).
			Str("marker", marker.Coordinate.String()).
			Strs("unresolved", unresolved).
			Msg("CPK marker not resolved, skipping transitive CorDapp discovery")
		return nil
	}
	w.walkMarkerGraph(resolved)
	return nil
}

// walkMarkerGraph classifies the transitive nodes of a resolved marker.
// Only the children of CPK markers are followed; a provided dependency's
// own dependencies must be provided or declared independently.
func (w *cordappWalk) walkMarkerGraph(resolved types.ResolvedConfiguration) {
	visited := map[*types.ResolvedDependencyNode]struct{}{}
	stack := append([]*types.ResolvedDependencyNode(nil), resolved.FirstLevel...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[node]; ok {
			continue
		}
		visited[node] = struct{}{}
		for _, child := range node.Children {
			if child.Platform {
				continue
			}
			if cpk, ok := FromCpkMarker(child.Coordinate); ok {
				w.addCordapp(types.ModuleDependency(cpk.Group, cpk.Name, cpk.Version))
				stack = append(stack, child)
				continue
			}
			w.addProvided(types.ModuleDependency(child.Coordinate.Group, child.Coordinate.Name, child.Coordinate.Version))
		}
	}
}

// inferVersion resolves the bare dependency against the platforms and
// reads back the version of the single first-level match.
func (w *cordappWalk) inferVersion(ctx context.Context, dep types.Dependency) (string, bool) {
	resolver := w.collector.Resolver
	resolved, err := resolver.ResolveTransitive(ctx, []types.Dependency{dep.WithTransitive(false)}, w.platforms)
	if err != nil || resolved.HasErrors() {
		log.Ctx(ctx).Debug().Str("dependency", dep.Key()).Msg("version inference skipped")
		return "", false
	}
	versions := map[string]struct{}{}
	var version string
	for _, artifact := range resolver.ResolveFirstLevel(resolved, func(c types.Coordinate) bool {
		return c.Group == dep.Coordinate.Group && c.Name == dep.Coordinate.Name
	}) {
		version = artifact.Coordinate.Version
		versions[version] = struct{}{}
	}
	if len(versions) != 1 || version == "" {
		log.Ctx(ctx).Debug().
			Str("dependency", dep.Key()).
			Int("matches", len(versions)).
			Msg("version inference ambiguous")
		return "", false
	}
	return version, true
}

// PlatformDependencies filters the alignment-only dependencies.
func PlatformDependencies(deps []types.Dependency) []types.Dependency {
	var out []types.Dependency
	for _, dep := range deps {
		if dep.Platform {
			out = append(out, dep)
		}
	}
	return out
}
