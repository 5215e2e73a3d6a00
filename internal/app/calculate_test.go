package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpk-tools/internal/adapters"
	"cpk-tools/internal/types"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func TestServiceCalculate(t *testing.T) {
	ws := newWorkspace(t)
	service := newTestService(t)
	out := filepath.Join(t.TempDir(), "out")

	result, err := service.Calculate(t.Context(), CalculateRequest{
		ModelPath: ws.ModelPath,
		Project:   ":workflows",
		OutputDir: out,
		SBOM:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, map[types.Bucket]int{
		types.BucketLibraries:       1,
		types.BucketEmbedded:        0,
		types.BucketProvided:        1,
		types.BucketProjectCordapps: 1,
		types.BucketRemoteCordapps:  2,
	}, result.Counts)
	assert.Equal(t, 3, result.Dependencies)
	assert.True(t, result.SBOMWritten)
	assert.FileExists(t, filepath.Join(out, adapters.SBOMFile))

	assert.Equal(t, []string{ws.Library}, readLines(t, filepath.Join(out, "libraries.txt")))
	assert.Equal(t, []string{ws.Logging}, readLines(t, filepath.Join(out, "provided.txt")))
	assert.Equal(t, []string{ws.Contracts}, readLines(t, filepath.Join(out, "project-cordapps.txt")))
	assert.Empty(t, readLines(t, filepath.Join(out, "embedded.txt")))

	remote := readLines(t, filepath.Join(out, "remote-cordapps.txt"))
	require.Len(t, remote, 2)
	assert.Contains(t, remote, ws.Tokens)
	assert.Contains(t, remote, filepath.Join(out, types.CpbExtractDir, "tokens-1.0", ws.Money))

	manifest, err := adapters.NewOutputReaderAdapter().ReadDependencyManifest(filepath.Join(out, types.DependencyManifestFile))
	require.NoError(t, err)
	require.Len(t, manifest.Dependencies, 3)
	assert.Equal(t, "com.example.contracts", manifest.Dependencies[0].Name)
	assert.True(t, manifest.Dependencies[0].VerifySameSignerAsMe)
	assert.Nil(t, manifest.Dependencies[0].VerifyFileHash)
	assert.Equal(t, "com.r3.money", manifest.Dependencies[1].Name)
	assert.Equal(t, "com.r3.tokens", manifest.Dependencies[2].Name)
	require.NotNil(t, manifest.Dependencies[2].VerifyFileHash)

	hash, err := adapters.NewFileHasherAdapter().HashFile(ws.Tokens)
	require.NoError(t, err)
	assert.Equal(t, hash, *manifest.Dependencies[2].VerifyFileHash)
}

func TestServiceCalculateIsRepeatable(t *testing.T) {
	ws := newWorkspace(t)
	service := newTestService(t)

	first := calculateWorkspace(t, service, ws)
	second := calculateWorkspace(t, service, ws)

	for _, name := range []string{"libraries.txt", "provided.txt", "remote-cordapps.txt", types.DependencyManifestFile} {
		a, err := os.ReadFile(filepath.Join(first, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second, name))
		require.NoError(t, err)
		if diff := cmp.Diff(string(a), string(b)); diff != "" {
			t.Fatalf("%s differs between runs (-first +second):\n%s", name, diff)
		}
	}
}

func TestServiceCalculateRequiresInputs(t *testing.T) {
	service := newTestService(t)
	tests := []struct {
		name string
		req  CalculateRequest
		msg  string
	}{
		{name: "model", req: CalculateRequest{Project: ":a", OutputDir: "out"}, msg: "build model path is required"},
		{name: "project", req: CalculateRequest{ModelPath: "m.yaml", OutputDir: "out"}, msg: "project path is required"},
		{name: "output", req: CalculateRequest{ModelPath: "m.yaml", Project: ":a"}, msg: "output directory is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Calculate(t.Context(), tt.req)
			require.Error(t, err)
			assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestServiceCalculateUnknownProject(t *testing.T) {
	ws := newWorkspace(t)
	_, err := newTestService(t).Calculate(t.Context(), CalculateRequest{
		ModelPath: ws.ModelPath,
		Project:   ":missing",
		OutputDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestServiceCalculateInvalidExclude(t *testing.T) {
	ws := newWorkspace(t)
	_, err := newTestService(t).Calculate(t.Context(), CalculateRequest{
		ModelPath: ws.ModelPath,
		Project:   ":workflows",
		OutputDir: t.TempDir(),
		Excludes:  []string{"no-colon"},
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestServiceCalculateExtraExcludeMovesLibrary(t *testing.T) {
	ws := newWorkspace(t)
	out := t.TempDir()
	result, err := newTestService(t).Calculate(t.Context(), CalculateRequest{
		ModelPath: ws.ModelPath,
		Project:   ":workflows",
		OutputDir: out,
		Excludes:  []string{"com.example:liba"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Counts[types.BucketLibraries])
	assert.NoFileExists(t, filepath.Join(out, adapters.SBOMFile))
}

func TestApplyConfigurationDefaults(t *testing.T) {
	defaults := types.DefaultConfigurationNames()
	tests := []struct {
		name  string
		input types.ConfigurationNames
		want  types.ConfigurationNames
	}{
		{name: "empty", input: types.ConfigurationNames{}, want: defaults},
		{
			name:  "override keeps other defaults",
			input: types.ConfigurationNames{Cordapp: " myCordapp ", Packaging: "shadow"},
			want: func() types.ConfigurationNames {
				names := defaults
				names.Cordapp = "myCordapp"
				names.Packaging = "shadow"
				return names
			}(),
		},
		{
			name:  "blank is ignored",
			input: types.ConfigurationNames{ProjectExport: "   "},
			want:  defaults,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, applyConfigurationDefaults(tt.input)); diff != "" {
				t.Fatalf("names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
