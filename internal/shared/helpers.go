// Package shared provides common utility functions used across multiple
// packages in the cpk-tools codebase.
package shared

import (
	"os"
	"sort"
	"strings"
	"sync"
)

var (
	cleanupMu    sync.Mutex
	cleanupPaths = map[string]struct{}{}
)

// DeleteOnExit registers a temporary path to be removed by Cleanup.
func DeleteOnExit(path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	cleanupMu.Lock()
	defer cleanupMu.Unlock()
	cleanupPaths[path] = struct{}{}
}

// Cleanup removes every registered path and returns the ones that could
// not be removed.
func Cleanup() []string {
	cleanupMu.Lock()
	paths := make([]string, 0, len(cleanupPaths))
	for path := range cleanupPaths {
		paths = append(paths, path)
	}
	cleanupPaths = map[string]struct{}{}
	cleanupMu.Unlock()

	sort.Strings(paths)
	var failed []string
	for _, path := range paths {
		if err := os.RemoveAll(path); err != nil {
			failed = append(failed, path)
		}
	}
	return failed
}

// TempDir creates a directory that Cleanup removes.
func TempDir(pattern string) (string, error) {
	dir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return "", err
	}
	DeleteOnExit(dir)
	return dir, nil
}

// DedupeStrings keeps the first occurrence of every non-empty value.
func DedupeStrings(values []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
