package ports

import "cpk-tools/internal/types"

type OutputPort interface {
	WriteClassification(set types.ClassifiedDependencySet) error
	WriteDependencyManifest(manifest types.DependencyManifest) error
}

type OutputReaderPort interface {
	ReadCalculationReport(dir string) (types.CalculationReport, error)
	ReadDependencyManifest(path string) (types.DependencyManifest, error)
}
