package types

// PackageClause is one entry of an Import-Package or Export-Package
// header.
type PackageClause struct {
	Name       string
	Attributes map[string]string
	Directives map[string]string
}

func (p PackageClause) Version() string {
	return p.Attributes["version"]
}

func (p PackageClause) Optional() bool {
	return p.Directives["resolution"] == "optional"
}

// BundleAnalysis is what the bundle analyzer computed for a built bundle.
type BundleAnalysis struct {
	SymbolicName      string
	Version           string
	ContainedPackages []string
	Imports           []PackageClause
	Exports           []PackageClause
	PrivatePackages   []string
	HighestEE         string
	Warnings          []string
}

// PackageExportRecord accumulates the versions exported for a package.
type PackageExportRecord struct {
	PackageName string
	Versions    []string
}

// ClasspathEntry summarises one jar of the runtime classpath.
type ClasspathEntry struct {
	File     string
	Packages []string
	Exports  []PackageClause
}
