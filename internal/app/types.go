package app

import "cpk-tools/internal/types"

type ValidateRequest struct {
	ModelPath string
}

type ValidateResult struct {
	Projects []string
	Modules  int
}

type CalculateRequest struct {
	ModelPath string
	Project   string
	OutputDir string
	// Names overrides individual configuration names; empty fields keep
	// their defaults.
	Names            types.ConfigurationNames
	Excludes         []string
	ReservedPackages []string
	// SBOM also writes an SPDX document of the CPK contents.
	SBOM bool
}

type CalculateResult struct {
	Project      string
	OutputDir    string
	Counts       map[types.Bucket]int
	Dependencies int
	SBOMWritten  bool
}

type VerifyRequest struct {
	BundlePath string
	Classpath  []string
	// ReportDir adds the provided, library and CorDapp jars of a
	// calculation report to the classpath.
	ReportDir        string
	ReservedPackages []string
	Strict           bool
}

type VerifyResult struct {
	SymbolicName string
	Version      string
	Imports      int
	Classpath    int
	Warnings     []string
}

type InspectRequest struct {
	OutputDir string
}

type InspectBucketSummary struct {
	Bucket types.Bucket
	Count  int
	Files  []string
}

type InspectResult struct {
	Buckets      []InspectBucketSummary
	Dependencies []types.DependencyManifestEntry
}

type MarkerRequest struct {
	Notation string
}

type MarkerResult struct {
	Coordinate types.Coordinate
	Marker     types.Coordinate
	// Reverse is set when the input already was a marker.
	Reverse bool
}
