package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"cpk-tools/internal/policies"
	"cpk-tools/internal/ports"
	"cpk-tools/internal/shared"
	"cpk-tools/internal/types"
)

// DependencyCalculator partitions the dependencies of a CPK project into
// the destinations of types.ClassifiedDependencySet.
type DependencyCalculator struct {
	Model      ports.BuildModelPort
	Resolver   ports.DependencyResolverPort
	Exclusions policies.ExclusionPolicy
	Namespaces policies.NamespacePolicy
	Cpb        ports.CpbExtractorPort
	Project    string
	Names      types.ConfigurationNames

	// ExtractDir returns the directory CPB contents are extracted into.
	// It is called at most once per calculator. Without it a temporary
	// directory is used and removed by shared.Cleanup, so extracted paths
	// must not outlive the process.
	ExtractDir func() (string, error)

	extractOnce sync.Once
	extractDir  string
	extractErr  error
}

func NewDependencyCalculator(
	model ports.BuildModelPort,
	resolver ports.DependencyResolverPort,
	exclusions policies.ExclusionPolicy,
	namespaces policies.NamespacePolicy,
	cpb ports.CpbExtractorPort,
	project string,
	names types.ConfigurationNames,
) *DependencyCalculator {
	return &DependencyCalculator{
		Model:      model,
		Resolver:   resolver,
		Exclusions: exclusions,
		Namespaces: namespaces,
		Cpb:        cpb,
		Project:    project,
		Names:      names,
	}
}

func (c *DependencyCalculator) Calculate(ctx context.Context) (types.ClassifiedDependencySet, error) {
	if c.Model == nil || c.Resolver == nil {
		return types.ClassifiedDependencySet{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("calculator requires build model and resolver ports")
	}
	if _, ok := c.Model.Project(c.Project); !ok {
		return types.ClassifiedDependencySet{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("project not found: %s", c.Project))
	}

	cordapps := NewCordappDependencyCollector(c.Model, c.Resolver, c.Project, c.Names)
	platforms := cordapps.Platforms()

	packagingDeps := withoutPlatforms(
		NewDependencyCollector(c.Model, c.Project, c.Names.CordaRuntimeOnly, c.Names.CordaEmbedded).
			Collect(c.Names.Packaging),
	)
	mandatoryDeps, packageDeps := c.Exclusions.Partition(packagingDeps)

	mandatoryFiles, err := c.closure(ctx, mandatoryDeps, platforms, "corda-mandatory")
	if err != nil {
		return types.ClassifiedDependencySet{}, err
	}
	packageFiles, err := c.closure(ctx, packageDeps, platforms, c.Names.Packaging)
	if err != nil {
		return types.ClassifiedDependencySet{}, err
	}
	packaged := c.withoutRuntimeModules(packageFiles.Minus(mandatoryFiles))

	embeddedDeps := c.embeddedDependencies(ctx)
	embeddedClosure, forced, err := c.embedded(ctx, embeddedDeps, platforms)
	if err != nil {
		return types.ClassifiedDependencySet{}, err
	}

	result := types.NewClassifiedDependencySet()
	collected, err := cordapps.Collect(ctx)
	if err != nil {
		return types.ClassifiedDependencySet{}, err
	}
	if err := c.cordappFiles(ctx, collected.Cordapps, platforms, result); err != nil {
		return types.ClassifiedDependencySet{}, err
	}
	c.extractCpbs(ctx, result)

	providedDeps := withoutPlatforms(NewDependencyCollector(c.Model, c.Project).Collect(c.Names.Provided))
	providedDeps = appendUnique(providedDeps, collected.Provided)
	providedFiles, err := c.closure(ctx, providedDeps, platforms, c.Names.Provided)
	if err != nil {
		return types.ClassifiedDependencySet{}, err
	}

	cordappFiles := result.Cordapps()
	result.ProvidedJars = providedFiles.Minus(cordappFiles)
	libraryCandidates := packaged.Minus(cordappFiles, result.ProvidedJars)
	embeddable := c.withoutRuntimeModules(embeddedClosure.Minus(mandatoryFiles, cordappFiles, result.ProvidedJars))
	result.EmbeddedJars = embeddable.Minus(libraryCandidates).
		Union(forced.Minus(mandatoryFiles, cordappFiles, result.ProvidedJars))
	result.Libraries = libraryCandidates.Minus(result.EmbeddedJars)

	if err := c.checkReservedGroups(ctx, result.Libraries.Union(result.EmbeddedJars)); err != nil {
		return types.ClassifiedDependencySet{}, err
	}

	log.Ctx(ctx).Debug().
		Int("libraries", len(result.Libraries)).
		Int("embedded", len(result.EmbeddedJars)).
		Int("provided", len(result.ProvidedJars)).
		Int("project_cordapps", len(result.ProjectCordapps)).
		Int("remote_cordapps", len(result.RemoteCordapps)).
		Msg("dependencies calculated")
	return result, nil
}

// closure resolves deps transitively and fails when anything declared
// cannot be resolved.
func (c *DependencyCalculator) closure(ctx context.Context, deps []types.Dependency, platforms []types.Dependency, source string) (types.ArtifactSet, error) {
	if len(deps) == 0 {
		return types.ArtifactSet{}, nil
	}
	resolved, err := c.Resolver.ResolveTransitive(ctx, deps, platforms)
	if err != nil {
		return nil, err
	}
	if err := unresolvedError(resolved, source); err != nil {
		return nil, err
	}
	return types.NewArtifactSet(resolved.Artifacts()...), nil
}

func (c *DependencyCalculator) embeddedDependencies(ctx context.Context) []types.Dependency {
	deps := withoutPlatforms(NewDependencyCollector(c.Model, c.Project).Collect(c.Names.CordaEmbedded))
	mandatory, rest := c.Exclusions.Partition(deps)
	for _, dep := range mandatory {
		log.Ctx(ctx).Warn().
			Str("dependency", dep.Key()).
			Msg("ignoring embedded dependency that Corda provides at runtime")
	}
	return rest
}

// embedded returns the closure of the embedded dependencies and the
// first-level jars the user asked to embed explicitly.
func (c *DependencyCalculator) embedded(ctx context.Context, deps []types.Dependency, platforms []types.Dependency) (types.ArtifactSet, types.ArtifactSet, error) {
	if len(deps) == 0 {
		return types.ArtifactSet{}, types.ArtifactSet{}, nil
	}
	resolved, err := c.Resolver.ResolveTransitive(ctx, deps, platforms)
	if err != nil {
		return nil, nil, err
	}
	if err := unresolvedError(resolved, c.Names.CordaEmbedded); err != nil {
		return nil, nil, err
	}
	declared := c.declaredKeys(deps)
	forced := types.NewArtifactSet(c.Resolver.ResolveFirstLevel(resolved, func(coordinate types.Coordinate) bool {
		_, ok := declared[coordinate.Key()]
		return ok
	})...)
	return types.NewArtifactSet(resolved.Artifacts()...), forced, nil
}

// cordappFiles resolves each CorDapp dependency without its transitive
// graph and files it as a project or remote CorDapp.
func (c *DependencyCalculator) cordappFiles(ctx context.Context, deps []types.Dependency, platforms []types.Dependency, result types.ClassifiedDependencySet) error {
	if len(deps) == 0 {
		return nil
	}
	seeds := make([]types.Dependency, 0, len(deps))
	for _, dep := range deps {
		seeds = append(seeds, dep.WithTransitive(false))
	}
	resolved, err := c.Resolver.ResolveTransitive(ctx, seeds, platforms)
	if err != nil {
		return err
	}
	if err := unresolvedError(resolved, c.Names.Cordapp); err != nil {
		return err
	}
	declared := c.declaredKeys(deps)
	for _, artifact := range c.Resolver.ResolveFirstLevel(resolved, func(coordinate types.Coordinate) bool {
		_, ok := declared[coordinate.Key()]
		return ok
	}) {
		if artifact.Project {
			result.ProjectCordapps.Add(artifact)
			continue
		}
		result.RemoteCordapps.Add(artifact)
	}
	return nil
}

// extractCpbs recovers CorDapps that were only published inside a CPB
// archive next to a remote CorDapp. Failures are logged and skipped.
func (c *DependencyCalculator) extractCpbs(ctx context.Context, result types.ClassifiedDependencySet) {
	if c.Cpb == nil {
		return
	}
	known := map[string]struct{}{}
	for _, file := range result.Cordapps().Files() {
		known[filepath.Base(file)] = struct{}{}
	}
	for _, file := range result.RemoteCordapps.Files() {
		cpb, ok := c.Cpb.FindSibling(file)
		if !ok {
			continue
		}
		dir, err := c.extractionDir()
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("cpb", cpb).Msg("cannot create CPB extraction directory")
			return
		}
		dest := filepath.Join(dir, strings.TrimSuffix(filepath.Base(cpb), filepath.Ext(cpb)))
		extracted, err := c.Cpb.ExtractJars(cpb, dest, known)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("cpb", cpb).Msg("failed to read CPB, skipping transitive CorDapps")
			continue
		}
		for _, path := range extracted {
			known[filepath.Base(path)] = struct{}{}
			result.RemoteCordapps.Add(types.ResolvedArtifact{
				Coordinate:    types.Coordinate{Name: strings.TrimSuffix(filepath.Base(path), ".jar")},
				File:          path,
				PackagingType: "jar",
			})
		}
	}
}

func (c *DependencyCalculator) extractionDir() (string, error) {
	c.extractOnce.Do(func() {
		if c.ExtractDir != nil {
			c.extractDir, c.extractErr = c.ExtractDir()
			return
		}
		c.extractDir, c.extractErr = shared.TempDir("cpb-")
	})
	return c.extractDir, c.extractErr
}

// checkReservedGroups rejects packaging an artifact of the Corda API
// group. Sub-groups are only suspicious and are logged.
func (c *DependencyCalculator) checkReservedGroups(ctx context.Context, files types.ArtifactSet) error {
	var reserved []string
	for _, artifact := range files.Sorted() {
		switch c.Namespaces.ClassifyGroup(artifact.Coordinate.Group) {
		case policies.GroupReserved:
			reserved = append(reserved, artifact.Coordinate.String())
		case policies.GroupReservedSubgroup:
			log.Ctx(ctx).Warn().
				Str("artifact", artifact.Coordinate.String()).
				Msg("packaging artifact from a Corda sub-group; it may need to be declared as cordaProvided")
		}
	}
	if len(reserved) == 0 {
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("CorDapp must not package Corda artifacts: %s", strings.Join(reserved, ", ")))
}

// withoutRuntimeModules drops artifacts the runtime supplies, wherever in
// the graph they were reached from.
func (c *DependencyCalculator) withoutRuntimeModules(files types.ArtifactSet) types.ArtifactSet {
	out := types.ArtifactSet{}
	for file, artifact := range files {
		if !artifact.Project && c.Exclusions.IsCordaProvided(artifact.Coordinate.Group, artifact.Coordinate.Name) {
			continue
		}
		out[file] = artifact
	}
	return out
}

func (c *DependencyCalculator) declaredKeys(deps []types.Dependency) map[string]struct{} {
	keys := map[string]struct{}{}
	for _, dep := range deps {
		if dep.IsProject() {
			if project, ok := c.Model.Project(dep.Project); ok {
				keys[project.Coordinate.Key()] = struct{}{}
			}
			continue
		}
		keys[dep.Coordinate.Key()] = struct{}{}
	}
	return keys
}

func unresolvedError(resolved types.ResolvedConfiguration, source string) error {
	if !resolved.HasErrors() {
		return nil
	}
	var names []string
	for _, entry := range resolved.Unresolved {
		names = append(names, entry.Dependency)
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("could not resolve %s dependencies: %s", source, strings.Join(names, ", ")))
}

func withoutPlatforms(deps []types.Dependency) []types.Dependency {
	var out []types.Dependency
	for _, dep := range deps {
		if dep.Platform {
			continue
		}
		out = append(out, dep)
	}
	return out
}

func appendUnique(deps []types.Dependency, extra []types.Dependency) []types.Dependency {
	seen := map[string]struct{}{}
	for _, dep := range deps {
		seen[dep.Key()] = struct{}{}
	}
	for _, dep := range extra {
		if _, ok := seen[dep.Key()]; ok {
			continue
		}
		seen[dep.Key()] = struct{}{}
		deps = append(deps, dep)
	}
	return deps
}
