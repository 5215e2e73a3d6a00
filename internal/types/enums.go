package types

// Bucket names a destination of ClassifiedDependencySet.
type Bucket string

const (
	BucketLibraries       Bucket = "libraries"
	BucketEmbedded        Bucket = "embedded"
	BucketProvided        Bucket = "provided"
	BucketProjectCordapps Bucket = "project-cordapps"
	BucketRemoteCordapps  Bucket = "remote-cordapps"
)

// Buckets lists every bucket in report order.
var Buckets = []Bucket{
	BucketLibraries,
	BucketEmbedded,
	BucketProvided,
	BucketProjectCordapps,
	BucketRemoteCordapps,
}

// ConfigurationNames names the configurations the calculator reads.
type ConfigurationNames struct {
	Cordapp          string
	Provided         string
	Platform         string
	Packaging        string
	CordaRuntimeOnly string
	CordaEmbedded    string
	ProjectExport    string
}

func DefaultConfigurationNames() ConfigurationNames {
	return ConfigurationNames{
		Cordapp:          "cordapp",
		Provided:         "cordaProvided",
		Platform:         "runtimeClasspath",
		Packaging:        "runtimeClasspath",
		CordaRuntimeOnly: "cordaRuntimeOnly",
		CordaEmbedded:    "cordaEmbedded",
		ProjectExport:    "runtimeElements",
	}
}
