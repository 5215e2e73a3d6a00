package adapters

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpk-tools/internal/types"
)

const libraryManifest = "Manifest-Version: 1.0\n" +
	"Bundle-SymbolicName: com.example.lib;singleton:=true\n" +
	"Bundle-Version: 1.2.3\n" +
	"Export-Package: com.example.lib;version=\"1.2.3\"\n"

func TestJarScannerAdapter_ScanClasspath(t *testing.T) {
	dir := t.TempDir()
	lib := writeTestJar(t, dir, "lib.jar", libraryManifest, map[string][]byte{
		"com/example/lib/Api.class":                   nil,
		"com/example/lib/impl/Impl.class":             nil,
		"META-INF/versions/11/com/example/mr/X.class": nil,
		"META-INF/services/com.example.Service":       nil,
		"OSGI-INF/component.xml":                      nil,
		"Root.class":                                  nil,
		"lib/nested.jar":                              nil,
	})
	plain := writeTestJar(t, dir, "plain.jar", "", map[string][]byte{
		"org/plain/Thing.class": nil,
	})

	scanner := NewJarScannerAdapter()
	entries, err := scanner.ScanClasspath(t.Context(), []string{lib, plain})
	require.NoError(t, err)

	want := []types.ClasspathEntry{
		{
			File:     lib,
			Packages: []string{"com.example.lib", "com.example.lib.impl", "com.example.mr"},
			Exports: []types.PackageClause{
				{Name: "com.example.lib", Attributes: map[string]string{"version": "1.2.3"}, Directives: map[string]string{}},
			},
		},
		{
			File:     plain,
			Packages: []string{"org.plain"},
		},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Fatalf("classpath mismatch (-want +got):\n%s", diff)
	}
}

func TestJarScannerAdapter_ScanClasspathMissingJar(t *testing.T) {
	scanner := NewJarScannerAdapter()
	_, err := scanner.ScanClasspath(t.Context(), []string{filepath.Join(t.TempDir(), "missing.jar")})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestJarScannerAdapter_ScanClasspathNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jar")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))

	scanner := NewJarScannerAdapter()
	_, err := scanner.ScanClasspath(t.Context(), []string{path})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestJarScannerAdapter_Identity(t *testing.T) {
	dir := t.TempDir()
	lib := writeTestJar(t, dir, "lib.jar", libraryManifest, nil)
	plain := writeTestJar(t, dir, "plain.jar", "", nil)

	scanner := NewJarScannerAdapter()
	identity, err := scanner.Identity(lib)
	require.NoError(t, err)
	assert.Equal(t, types.JarIdentity{SymbolicName: "com.example.lib", Version: "1.2.3"}, identity)

	identity, err = scanner.Identity(plain)
	require.NoError(t, err)
	assert.Equal(t, types.JarIdentity{}, identity)
}

func TestJarScannerAdapter_RereadsRebuiltJar(t *testing.T) {
	dir := t.TempDir()
	path := writeTestJar(t, dir, "lib.jar", libraryManifest, map[string][]byte{"a/A.class": nil})

	scanner := NewJarScannerAdapter()
	scanner.Concurrency = 1
	entries, err := scanner.ScanClasspath(t.Context(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, entries[0].Packages)

	writeTestJar(t, dir, "lib.jar", libraryManifest, map[string][]byte{"a/A.class": nil, "b/B.class": nil})
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	entries, err = scanner.ScanClasspath(t.Context(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, entries[0].Packages)
}

func TestPackageOf(t *testing.T) {
	tests := []struct {
		entry string
		want  string
		ok    bool
	}{
		{entry: "com/example/A.class", want: "com.example", ok: true},
		{entry: "META-INF/versions/17/com/example/A.class", want: "com.example", ok: true},
		{entry: "META-INF/versions/17", ok: false},
		{entry: "META-INF/MANIFEST.MF", ok: false},
		{entry: "OSGI-INF/x.xml", ok: false},
		{entry: "lib/dep.jar", ok: false},
		{entry: "Top.class", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			got, ok := packageOf(tt.entry)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
