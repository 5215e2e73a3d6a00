package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpk-tools/internal/adapters"
	"cpk-tools/internal/core"
	"cpk-tools/internal/policies"
	"cpk-tools/internal/types"
	"cpk-tools/tests/testutil"
)

// TestCalculateVerifyFlow exercises the CorDapp build pipeline:
//
//	load model -> validate -> calculate -> write reports -> build manifest -> verify bundle
//
// wiring the adapters by hand the way a build plugin would.
func TestCalculateVerifyFlow(t *testing.T) {
	ws := testutil.WriteCordappWorkspace(t, t.TempDir())
	out := filepath.Join(t.TempDir(), "out")
	ctx := t.Context()

	model, err := adapters.NewBuildModelFileAdapter().Load(ws.ModelPath)
	require.NoError(t, err)
	require.NoError(t, core.NewModelCompiler().ValidateModel(ctx, model))

	names := types.DefaultConfigurationNames()
	buildModel := adapters.NewBuildModelAdapter(model)
	calculator := core.NewDependencyCalculator(
		buildModel,
		adapters.NewGraphResolverAdapter(buildModel, names.ProjectExport),
		policies.NewDefaultExclusionPolicy(),
		policies.NewNamespacePolicy(nil),
		adapters.NewCpbExtractorAdapter(),
		":workflows",
		names,
	)
	extractRoot := t.TempDir()
	calculator.ExtractDir = func() (string, error) { return extractRoot, nil }

	set, err := calculator.Calculate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ws.Library}, set.Libraries.Files())
	assert.Equal(t, []string{ws.Logging}, set.ProvidedJars.Files())
	assert.Equal(t, []string{ws.Contracts}, set.ProjectCordapps.Files())
	assert.Len(t, set.RemoteCordapps, 2)

	scanner := adapters.NewJarScannerAdapter()
	manifest, err := core.NewDependencyManifestBuilder(scanner, adapters.NewFileHasherAdapter()).Build(ctx, set)
	require.NoError(t, err)

	output := adapters.NewOutputFileAdapter(out)
	require.NoError(t, output.WriteClassification(set))
	require.NoError(t, output.WriteDependencyManifest(manifest))

	reader := adapters.NewOutputReaderAdapter()
	report, err := reader.ReadCalculationReport(out)
	require.NoError(t, err)
	roundTripped, err := reader.ReadDependencyManifest(filepath.Join(out, types.DependencyManifestFile))
	require.NoError(t, err)
	assert.Equal(t, manifest, roundTripped)

	analysis, err := adapters.NewBundleAnalyzerAdapter().Analyze(ws.Workflows)
	require.NoError(t, err)
	classpath, err := scanner.ScanClasspath(ctx, report.Files(
		types.BucketProvided,
		types.BucketLibraries,
		types.BucketProjectCordapps,
		types.BucketRemoteCordapps,
	))
	require.NoError(t, err)

	verifier := core.NewBundleVerifier(policies.NewNamespacePolicy(nil))
	verifier.Strict = true
	require.NoError(t, verifier.Verify(ctx, analysis, classpath))
}

// TestPackagingCordaArtifactFails checks that a CorDapp packaging a
// net.corda artifact is rejected before any report is written.
func TestPackagingCordaArtifactFails(t *testing.T) {
	ws := testutil.WriteCordappWorkspace(t, t.TempDir())
	data, err := os.ReadFile(ws.ModelPath)
	require.NoError(t, err)
	model := strings.Replace(string(data),
		"          - com.example:liba:1.0\n",
		"          - com.example:liba:1.0\n          - net.corda:corda-core:5.0\n", 1)
	model += "  - coordinate: net.corda:corda-core:5.0\n    artifacts: [repo/corda-core-5.0.jar]\n"
	testutil.WriteFile(t, ws.ModelPath, []byte(model))
	testutil.WriteFile(t, filepath.Join(ws.Dir, "repo", "corda-core-5.0.jar"), testutil.JarBytes(t, "", "net/corda/v5/Api.class"))

	loaded, err := adapters.NewBuildModelFileAdapter().Load(ws.ModelPath)
	require.NoError(t, err)
	names := types.DefaultConfigurationNames()
	buildModel := adapters.NewBuildModelAdapter(loaded)
	calculator := core.NewDependencyCalculator(
		buildModel,
		adapters.NewGraphResolverAdapter(buildModel, names.ProjectExport),
		policies.NewDefaultExclusionPolicy(),
		policies.NewNamespacePolicy(nil),
		nil,
		":workflows",
		names,
	)
	_, err = calculator.Calculate(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CorDapp must not package Corda artifacts")
}
