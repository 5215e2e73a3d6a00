package ports

// CpbExtractorPort finds the CPB archive published next to a CPK and
// extracts the CPKs packed inside it.
type CpbExtractorPort interface {
	FindSibling(file string) (string, bool)
	ExtractJars(cpbPath string, destDir string, skip map[string]struct{}) ([]string, error)
}
