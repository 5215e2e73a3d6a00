package ports

import (
	"context"

	"cpk-tools/internal/types"
)

// DependencyResolverPort is the dependency-graph resolver of the host
// build. Every request is detached: it does not inherit extendsFrom
// relationships, so alignment (platform) dependencies must be passed on
// each call.
type DependencyResolverPort interface {
	ResolveTransitive(ctx context.Context, seeds []types.Dependency, alignment []types.Dependency) (types.ResolvedConfiguration, error)
	ResolveFirstLevel(resolved types.ResolvedConfiguration, filter func(types.Coordinate) bool) []types.ResolvedArtifact
}
