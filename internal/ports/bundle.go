package ports

import (
	"context"

	"cpk-tools/internal/types"
)

// BundleAnalyzerPort computes the package metadata of a built bundle.
type BundleAnalyzerPort interface {
	Analyze(path string) (types.BundleAnalysis, error)
}

// ClasspathScannerPort reads the packages and exports of classpath jars.
type ClasspathScannerPort interface {
	ScanClasspath(ctx context.Context, files []string) ([]types.ClasspathEntry, error)
	Identity(path string) (types.JarIdentity, error)
}
