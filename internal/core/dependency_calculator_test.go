package core_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpk-tools/internal/adapters"
	"cpk-tools/internal/core"
	"cpk-tools/internal/policies"
	"cpk-tools/internal/types"
)

func module(group string, name string, version string, deps ...types.Dependency) types.RepositoryModule {
	return types.RepositoryModule{
		Coordinate:   types.Coordinate{Group: group, Name: name, Version: version},
		Artifacts:    []types.ModuleArtifact{{File: "/repo/" + name + "-" + version + ".jar", Type: "jar"}},
		Dependencies: deps,
	}
}

// marker is a metadata-only module announcing a published CPK.
func marker(group string, name string, version string, deps ...types.Dependency) types.RepositoryModule {
	return types.RepositoryModule{
		Coordinate:   core.ToCpkMarker(types.Coordinate{Group: group, Name: name, Version: version}),
		Dependencies: deps,
	}
}

func dep(group string, name string, version string) types.Dependency {
	return types.ModuleDependency(group, name, version)
}

func markerDep(group string, name string, version string) types.Dependency {
	c := core.ToCpkMarker(types.Coordinate{Group: group, Name: name, Version: version})
	return types.ModuleDependency(c.Group, c.Name, c.Version)
}

func repository(modules ...types.RepositoryModule) map[string]types.RepositoryModule {
	out := map[string]types.RepositoryModule{}
	for _, m := range modules {
		out[types.RepositoryKey(m.Coordinate)] = m
	}
	return out
}

// scenarioModel builds a workflows CorDapp that depends on a contracts
// project in the same build and on a remote tokens CorDapp.
func scenarioModel(implementation []types.Dependency, embedded []types.Dependency) types.BuildModel {
	return types.BuildModel{
		Projects: map[string]types.Project{
			":contracts": {
				Path:       ":contracts",
				Coordinate: types.Coordinate{Group: "com.example", Name: "contracts", Version: "1.0"},
				Artifact:   "/build/contracts-1.0.jar",
				Configurations: map[string]types.Configuration{
					"runtimeClasspath": {Name: "runtimeClasspath"},
				},
			},
			":workflows": {
				Path:       ":workflows",
				Coordinate: types.Coordinate{Group: "com.example", Name: "workflows", Version: "1.0"},
				Artifact:   "/build/workflows-1.0.jar",
				Configurations: map[string]types.Configuration{
					"cordapp": {
						Name:         "cordapp",
						Dependencies: []types.Dependency{types.ProjectDependency(":contracts"), dep("com.r3", "tokens", "1.0")},
					},
					"cordaProvided": {
						Name:         "cordaProvided",
						Dependencies: []types.Dependency{dep("com.example", "provided-api", "1.0")},
					},
					"cordaEmbedded":    {Name: "cordaEmbedded", Dependencies: embedded},
					"cordaRuntimeOnly": {Name: "cordaRuntimeOnly", Dependencies: []types.Dependency{dep("com.example", "runtime-only", "1.0")}},
					"implementation":   {Name: "implementation", Dependencies: implementation},
					"runtimeClasspath": {
						Name:    "runtimeClasspath",
						Extends: []string{"cordapp", "cordaProvided", "cordaEmbedded", "cordaRuntimeOnly", "implementation"},
					},
				},
			},
		},
		Repository: repository(
			module("com.r3", "tokens", "1.0", dep("com.r3", "tokens-api", "1.0")),
			module("com.r3", "tokens-api", "1.0"),
			module("com.r3", "money", "1.0"),
			marker("com.r3", "tokens", "1.0", markerDep("com.r3", "money", "1.0"), dep("com.r3", "tokens-api", "1.0")),
			marker("com.r3", "money", "1.0"),
			module("com.example", "provided-api", "1.0"),
			module("com.example", "runtime-only", "1.0"),
			module("com.example", "libA", "1.0", dep("com.example", "libB", "1.0"), dep("org.jetbrains.kotlin", "kotlin-stdlib", "1.9.0")),
			module("com.example", "libB", "1.0"),
			module("com.example", "libC", "1.0", dep("com.example", "libD", "1.0")),
			module("com.example", "libD", "1.0"),
			module("org.jetbrains.kotlin", "kotlin-stdlib", "1.9.0"),
			module("org.slf4j", "slf4j-api", "1.7.36"),
			module("net.corda", "corda-core", "5.0"),
			module("net.corda.extras", "helper", "1.0"),
		),
	}
}

func newCalculator(model types.BuildModel) *core.DependencyCalculator {
	buildModel := adapters.NewBuildModelAdapter(model)
	names := types.DefaultConfigurationNames()
	resolver := adapters.NewGraphResolverAdapter(buildModel, names.ProjectExport)
	return core.NewDependencyCalculator(
		buildModel,
		resolver,
		policies.NewDefaultExclusionPolicy(),
		policies.NewNamespacePolicy(nil),
		nil,
		":workflows",
		names,
	)
}

type bucketFiles struct {
	Libraries       []string
	Embedded        []string
	Provided        []string
	ProjectCordapps []string
	RemoteCordapps  []string
}

func filesOf(set types.ClassifiedDependencySet) bucketFiles {
	return bucketFiles{
		Libraries:       set.Libraries.Files(),
		Embedded:        set.EmbeddedJars.Files(),
		Provided:        set.ProvidedJars.Files(),
		ProjectCordapps: set.ProjectCordapps.Files(),
		RemoteCordapps:  set.RemoteCordapps.Files(),
	}
}

func TestDependencyCalculatorClassifiesEveryDestination(t *testing.T) {
	model := scenarioModel(
		[]types.Dependency{dep("com.example", "libA", "1.0"), dep("org.slf4j", "slf4j-api", "1.7.36")},
		[]types.Dependency{dep("com.example", "libC", "1.0")},
	)
	set, err := newCalculator(model).Calculate(t.Context())
	require.NoError(t, err)

	want := bucketFiles{
		Libraries:       []string{"/repo/libA-1.0.jar", "/repo/libB-1.0.jar"},
		Embedded:        []string{"/repo/libC-1.0.jar", "/repo/libD-1.0.jar"},
		Provided:        []string{"/repo/provided-api-1.0.jar", "/repo/tokens-api-1.0.jar"},
		ProjectCordapps: []string{"/build/contracts-1.0.jar"},
		RemoteCordapps:  []string{"/repo/money-1.0.jar", "/repo/tokens-1.0.jar"},
	}
	if diff := cmp.Diff(want, filesOf(set)); diff != "" {
		t.Fatalf("unexpected classification (-want +got):\n%s", diff)
	}
}

func TestDependencyCalculatorDropsMandatoryClosure(t *testing.T) {
	model := scenarioModel(
		[]types.Dependency{dep("com.example", "libA", "1.0"), dep("com.example", "libB", "1.0")},
		nil,
	)
	libB := module("com.example", "libB", "1.0", dep("com.example", "libD", "1.0"))
	model.Repository[types.RepositoryKey(libB.Coordinate)] = libB

	exclusions, err := policies.NewExclusionPolicy(append(append([]string(nil), policies.DefaultCordaExcludes...), "com.example:libB"))
	require.NoError(t, err)
	calculator := newCalculator(model)
	calculator.Exclusions = exclusions

	set, err := calculator.Calculate(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"/repo/libA-1.0.jar"}, set.Libraries.Files())
	assert.Empty(t, set.EmbeddedJars.Files())
}

type stubCpbExtractor struct {
	siblings map[string]string
	jars     []string
	err      error
	dests    []string
}

func (s *stubCpbExtractor) FindSibling(file string) (string, bool) {
	cpb, ok := s.siblings[file]
	return cpb, ok
}

func (s *stubCpbExtractor) ExtractJars(_ string, destDir string, skip map[string]struct{}) ([]string, error) {
	s.dests = append(s.dests, destDir)
	if s.err != nil {
		return nil, s.err
	}
	var out []string
	for _, jar := range s.jars {
		if _, ok := skip[jar]; ok {
			continue
		}
		out = append(out, filepath.Join(destDir, jar))
	}
	return out, nil
}

func TestDependencyCalculatorExtractsCpbSiblings(t *testing.T) {
	model := scenarioModel([]types.Dependency{dep("com.example", "libA", "1.0")}, nil)
	extractRoot := t.TempDir()
	cpb := &stubCpbExtractor{
		siblings: map[string]string{"/repo/tokens-1.0.jar": "/repo/tokens-1.0.cpb"},
		jars:     []string{"tokens-1.0.jar", "vault-1.0.jar"},
	}
	calculator := newCalculator(model)
	calculator.Cpb = cpb
	calculator.ExtractDir = func() (string, error) { return extractRoot, nil }

	set, err := calculator.Calculate(t.Context())
	require.NoError(t, err)

	dest := filepath.Join(extractRoot, "tokens-1.0")
	assert.Equal(t, []string{dest}, cpb.dests)
	assert.ElementsMatch(t, []string{
		filepath.Join(dest, "vault-1.0.jar"),
		"/repo/money-1.0.jar",
		"/repo/tokens-1.0.jar",
	}, set.RemoteCordapps.Files())
}

func TestDependencyCalculatorIgnoresUnreadableCpb(t *testing.T) {
	model := scenarioModel(
		[]types.Dependency{dep("com.example", "libA", "1.0")},
		[]types.Dependency{dep("com.example", "libC", "1.0")},
	)
	baseline, err := newCalculator(model).Calculate(t.Context())
	require.NoError(t, err)

	cpb := &stubCpbExtractor{
		siblings: map[string]string{"/repo/tokens-1.0.jar": "/repo/tokens-1.0.cpb"},
		err:      errors.New("zip: not a valid zip file"),
	}
	calculator := newCalculator(model)
	calculator.Cpb = cpb
	extractRoot := t.TempDir()
	calculator.ExtractDir = func() (string, error) { return extractRoot, nil }

	set, err := calculator.Calculate(t.Context())
	require.NoError(t, err)
	require.Len(t, cpb.dests, 1)
	if diff := cmp.Diff(filesOf(baseline), filesOf(set)); diff != "" {
		t.Fatalf("unreadable CPB changed the classification (-want +got):\n%s", diff)
	}
}

func TestDependencyCalculatorExtractDirFailure(t *testing.T) {
	model := scenarioModel(nil, nil)
	baseline, err := newCalculator(model).Calculate(t.Context())
	require.NoError(t, err)

	calculator := newCalculator(model)
	calculator.Cpb = &stubCpbExtractor{siblings: map[string]string{"/repo/tokens-1.0.jar": "/repo/tokens-1.0.cpb"}}
	calculator.ExtractDir = func() (string, error) { return "", errors.New("read-only file system") }

	set, err := calculator.Calculate(t.Context())
	require.NoError(t, err)
	assert.Equal(t, filesOf(baseline), filesOf(set))
}

func TestDependencyCalculatorEmbeddingWinsOverLibrary(t *testing.T) {
	model := scenarioModel(
		[]types.Dependency{dep("com.example", "libA", "1.0")},
		[]types.Dependency{dep("com.example", "libB", "1.0")},
	)
	set, err := newCalculator(model).Calculate(t.Context())
	require.NoError(t, err)

	got := filesOf(set)
	assert.Equal(t, []string{"/repo/libA-1.0.jar"}, got.Libraries)
	assert.Equal(t, []string{"/repo/libB-1.0.jar"}, got.Embedded)
}

func TestDependencyCalculatorBucketsAreDisjoint(t *testing.T) {
	model := scenarioModel(
		[]types.Dependency{dep("com.example", "libA", "1.0"), dep("com.r3", "tokens-api", "1.0"), dep("com.example", "libC", "1.0")},
		[]types.Dependency{dep("com.example", "libC", "1.0"), dep("com.example", "provided-api", "1.0")},
	)
	set, err := newCalculator(model).Calculate(t.Context())
	require.NoError(t, err)

	owner := map[string]types.Bucket{}
	for _, bucket := range types.Buckets {
		for _, file := range set.Bucket(bucket).Files() {
			if previous, ok := owner[file]; ok {
				t.Fatalf("%s is in both %s and %s", file, previous, bucket)
			}
			owner[file] = bucket
		}
	}
	assert.Equal(t, types.BucketProvided, owner["/repo/provided-api-1.0.jar"])
	assert.Equal(t, types.BucketProvided, owner["/repo/tokens-api-1.0.jar"])
	assert.Equal(t, types.BucketEmbedded, owner["/repo/libC-1.0.jar"])
}

func TestDependencyCalculatorIsRepeatable(t *testing.T) {
	model := scenarioModel(
		[]types.Dependency{dep("com.example", "libA", "1.0")},
		[]types.Dependency{dep("com.example", "libC", "1.0")},
	)
	first, err := newCalculator(model).Calculate(t.Context())
	require.NoError(t, err)
	second, err := newCalculator(model).Calculate(t.Context())
	require.NoError(t, err)
	if diff := cmp.Diff(filesOf(first), filesOf(second)); diff != "" {
		t.Fatalf("calculation is not repeatable (-first +second):\n%s", diff)
	}
}

func TestDependencyCalculatorReservedGroups(t *testing.T) {
	t.Run("exact group is fatal", func(t *testing.T) {
		model := scenarioModel([]types.Dependency{dep("net.corda", "corda-core", "5.0")}, nil)
		_, err := newCalculator(model).Calculate(t.Context())
		require.Error(t, err)
		assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	})
	t.Run("sub-group is packaged", func(t *testing.T) {
		model := scenarioModel([]types.Dependency{dep("net.corda.extras", "helper", "1.0")}, nil)
		set, err := newCalculator(model).Calculate(t.Context())
		require.NoError(t, err)
		assert.Equal(t, []string{"/repo/helper-1.0.jar"}, set.Libraries.Files())
	})
}

func TestDependencyCalculatorUnresolvedDependency(t *testing.T) {
	model := scenarioModel([]types.Dependency{dep("com.example", "missing", "1.0")}, nil)
	_, err := newCalculator(model).Calculate(t.Context())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestDependencyCalculatorUnknownProject(t *testing.T) {
	calculator := newCalculator(scenarioModel(nil, nil))
	calculator.Project = ":missing"
	_, err := calculator.Calculate(t.Context())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}
