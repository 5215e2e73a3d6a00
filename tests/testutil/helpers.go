// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// Manifest renders manifest headers in the given order. Pairs are
// name, value, name, value...
func Manifest(pairs ...string) string {
	var b strings.Builder
	b.WriteString("Manifest-Version: 1.0\n")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(pairs[i])
		b.WriteString(": ")
		b.WriteString(pairs[i+1])
		b.WriteString("\n")
	}
	return b.String()
}

// JarBytes builds an in-memory jar. Entries are written in name order
// with the entry name as content.
func JarBytes(t *testing.T, manifest string, entries ...string) []byte {
	t.Helper()
	return ArchiveBytes(t, manifest, func() map[string][]byte {
		out := map[string][]byte{}
		for _, entry := range entries {
			out[entry] = []byte(entry)
		}
		return out
	}())
}

// ArchiveBytes builds an in-memory zip archive with an optional manifest.
func ArchiveBytes(t *testing.T, manifest string, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	if manifest != "" {
		w, err := writer.Create("META-INF/MANIFEST.MF")
		require.NoError(t, err)
		_, err = w.Write([]byte(manifest))
		require.NoError(t, err)
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := writer.Create(name)
		require.NoError(t, err)
		_, err = w.Write(entries[name])
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf.Bytes()
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// CordappWorkspace is an on-disk build of two CorDapps: a workflows
// project that depends on a contracts project of the same build and on
// a remote tokens CorDapp published with a CPB.
type CordappWorkspace struct {
	Dir       string
	ModelPath string
	Workflows string
	Contracts string
	Tokens    string
	Money     string
	Library   string
	Logging   string
}

const workspaceModel = `projects:
  - path: ":contracts"
    group: com.example
    name: contracts
    version: "1.0"
    artifact: build/contracts-1.0.jar
    cordapp_name: Example Contracts
    configurations:
      - name: runtimeClasspath
      - name: runtimeElements
  - path: ":workflows"
    group: com.example
    name: workflows
    version: "1.0"
    artifact: build/workflows-1.0.jar
    cordapp_name: Example Workflows
    configurations:
      - name: cordapp
        dependencies:
          - project(":contracts")
          - com.r3:tokens:1.0
      - name: cordaProvided
        dependencies:
          - org.slf4j:slf4j-api:1.7.36
      - name: cordaEmbedded
      - name: cordaRuntimeOnly
      - name: implementation
        dependencies:
          - com.example:liba:1.0
      - name: runtimeClasspath
        extends: [cordapp, cordaProvided, cordaEmbedded, cordaRuntimeOnly, implementation]
      - name: runtimeElements
repository:
  - coordinate: com.r3:tokens:1.0
    artifacts: [repo/tokens-1.0.jar]
  - coordinate: com.r3:com.r3.tokens.corda.cpk:1.0
  - coordinate: com.example:liba:1.0
    artifacts: [repo/liba-1.0.jar]
  - coordinate: org.slf4j:slf4j-api:1.7.36
    artifacts: [repo/slf4j-api-1.7.36.jar]
`

// WriteCordappWorkspace lays out the jars and build model of a
// CordappWorkspace under dir.
func WriteCordappWorkspace(t *testing.T, dir string) CordappWorkspace {
	t.Helper()
	ws := CordappWorkspace{Dir: dir}
	ws.Contracts = WriteFile(t, filepath.Join(dir, "build", "contracts-1.0.jar"), JarBytes(t,
		Manifest(
			"Bundle-SymbolicName", "com.example.contracts",
			"Bundle-Version", "1.0.0",
			"Export-Package", `com.example.contracts;version="1.0.0"`,
		),
		"com/example/contracts/IOUContract.class",
	))
	ws.Workflows = WriteFile(t, filepath.Join(dir, "build", "workflows-1.0.jar"), JarBytes(t,
		Manifest(
			"Bundle-SymbolicName", "com.example.workflows",
			"Bundle-Version", "1.0.0",
			"Require-Capability", `osgi.ee;filter:="(&(osgi.ee=JavaSE)(version=11))"`,
			"Import-Package", `com.example.contracts;version="[1.0,2.0)",com.example.liba;version="[1.0,2.0)",com.r3.tokens;version="[1.0,2.0)",org.slf4j;version="[1.7,2.0)",java.util`,
			"Export-Package", `com.example.workflows;version="1.0.0"`,
		),
		"com/example/workflows/IssueFlow.class",
		"com/example/workflows/internal/Helper.class",
	))
	ws.Tokens = WriteFile(t, filepath.Join(dir, "repo", "tokens-1.0.jar"), JarBytes(t,
		Manifest(
			"Bundle-SymbolicName", "com.r3.tokens",
			"Bundle-Version", "1.0.0",
			"Export-Package", `com.r3.tokens;version="1.0.0"`,
		),
		"com/r3/tokens/Token.class",
	))
	money := JarBytes(t,
		Manifest(
			"Bundle-SymbolicName", "com.r3.money",
			"Bundle-Version", "1.0.0",
			"Export-Package", `com.r3.money;version="1.0.0"`,
		),
		"com/r3/money/Money.class",
	)
	WriteFile(t, filepath.Join(dir, "repo", "tokens-1.0.cpb"), ArchiveBytes(t, "", map[string][]byte{
		"tokens-1.0.jar": JarBytes(t, Manifest("Bundle-SymbolicName", "com.r3.tokens", "Bundle-Version", "1.0.0")),
		"money-1.0.jar":  money,
	}))
	ws.Money = "money-1.0.jar"
	ws.Library = WriteFile(t, filepath.Join(dir, "repo", "liba-1.0.jar"), JarBytes(t,
		Manifest(
			"Bundle-SymbolicName", "com.example.liba",
			"Bundle-Version", "1.0.0",
			"Export-Package", `com.example.liba;version="1.0.0"`,
		),
		"com/example/liba/Util.class",
	))
	ws.Logging = WriteFile(t, filepath.Join(dir, "repo", "slf4j-api-1.7.36.jar"), JarBytes(t,
		Manifest(
			"Bundle-SymbolicName", "slf4j.api",
			"Bundle-Version", "1.7.36",
			"Export-Package", `org.slf4j;version="1.7.36"`,
		),
		"org/slf4j/Logger.class",
	))
	ws.ModelPath = WriteFile(t, filepath.Join(dir, "build-model.yaml"), []byte(workspaceModel))
	return ws
}
