package adapters

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path"
	"runtime"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"cpk-tools/internal/ports"
	"cpk-tools/internal/types"
)

const defaultJarCacheSize = 512

// jarContents is what a jar contributes to a classpath.
type jarContents struct {
	Packages []string
	Headers  map[string]string
}

// JarScannerAdapter reads package listings and manifests from jars.
type JarScannerAdapter struct {
	cache       *lru.Cache[string, jarContents]
	Concurrency int
}

func NewJarScannerAdapter() *JarScannerAdapter {
	cache, err := lru.New[string, jarContents](defaultJarCacheSize)
	if err != nil {
		panic(err)
	}
	return &JarScannerAdapter{cache: cache, Concurrency: runtime.NumCPU()}
}

func (s *JarScannerAdapter) ScanClasspath(ctx context.Context, files []string) ([]types.ClasspathEntry, error) {
	entries := make([]types.ClasspathEntry, len(files))
	group, ctx := errgroup.WithContext(ctx)
	if s.Concurrency > 0 {
		group.SetLimit(s.Concurrency)
	}
	for i, file := range files {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			contents, err := s.contents(file)
			if err != nil {
				return err
			}
			entries[i] = types.ClasspathEntry{
				File:     file,
				Packages: contents.Packages,
				Exports:  parseHeaderClauses(contents.Headers["Export-Package"]),
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Debug().Int("jars", len(entries)).Msg("classpath scanned")
	return entries, nil
}

func (s *JarScannerAdapter) Identity(file string) (types.JarIdentity, error) {
	contents, err := s.contents(file)
	if err != nil {
		return types.JarIdentity{}, err
	}
	name := contents.Headers["Bundle-SymbolicName"]
	if idx := strings.Index(name, ";"); idx >= 0 {
		name = name[:idx]
	}
	return types.JarIdentity{
		SymbolicName: strings.TrimSpace(name),
		Version:      strings.TrimSpace(contents.Headers["Bundle-Version"]),
	}, nil
}

// contents reads a jar through the cache. Entries are keyed by modification
// time and size so a rebuilt jar is read again.
func (s *JarScannerAdapter) contents(file string) (jarContents, error) {
	info, err := os.Stat(file)
	if err != nil {
		return jarContents{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("jar not found: %s", file)).
			WithCause(err)
	}
	key := fmt.Sprintf("%s|%d|%d", file, info.ModTime().UnixNano(), info.Size())
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
	}
	reader, err := zip.OpenReader(file)
	if err != nil {
		return jarContents{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to open jar: %s", file)).
			WithCause(err)
	}
	defer reader.Close()
	contents, err := readJarContents(&reader.Reader)
	if err != nil {
		return jarContents{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to read jar: %s", file)).
			WithCause(err)
	}
	if s.cache != nil {
		s.cache.Add(key, contents)
	}
	return contents, nil
}

func readJarContents(reader *zip.Reader) (jarContents, error) {
	contents := jarContents{Headers: map[string]string{}}
	packages := map[string]struct{}{}
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if entry.Name == manifestPath {
			headers, err := readZipManifest(entry)
			if err != nil {
				return jarContents{}, err
			}
			contents.Headers = headers
			continue
		}
		if pkg, ok := packageOf(entry.Name); ok {
			packages[pkg] = struct{}{}
		}
	}
	contents.Packages = sortedKeys(packages)
	return contents, nil
}

func readZipManifest(entry *zip.File) (map[string]string, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return readManifest(rc)
}

// packageOf returns the Java package a jar entry belongs to. Entries of
// multi-release jars count for the package they override.
func packageOf(name string) (string, bool) {
	if strings.HasPrefix(name, "META-INF/versions/") {
		rest := strings.TrimPrefix(name, "META-INF/versions/")
		idx := strings.Index(rest, "/")
		if idx < 0 {
			return "", false
		}
		name = rest[idx+1:]
	}
	if strings.HasPrefix(name, "META-INF/") || strings.HasPrefix(name, "OSGI-INF/") || strings.HasSuffix(name, ".jar") {
		return "", false
	}
	dir := path.Dir(name)
	if dir == "." || dir == "/" {
		return "", false
	}
	return strings.ReplaceAll(dir, "/", "."), true
}

func sortedKeys(values map[string]struct{}) []string {
	out := make([]string, 0, len(values))
	for value := range values {
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

var _ ports.ClasspathScannerPort = (*JarScannerAdapter)(nil)
