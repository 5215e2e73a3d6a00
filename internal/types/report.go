package types

// CalculationReport is the on-disk form of a ClassifiedDependencySet.
type CalculationReport struct {
	Buckets map[Bucket][]string
}

func (r CalculationReport) Files(buckets ...Bucket) []string {
	var out []string
	for _, bucket := range buckets {
		out = append(out, r.Buckets[bucket]...)
	}
	return out
}

// ReportFile is the file name a bucket is written to.
func ReportFile(bucket Bucket) string {
	return string(bucket) + ".txt"
}

const DependencyManifestFile = "CPKDependencies.json"

// CpbExtractDir is the directory under the report output that holds
// CorDapps extracted from CPB archives.
const CpbExtractDir = "cpb"
