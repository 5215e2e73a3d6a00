package app

import (
	"time"

	"cpk-tools/internal/adapters"
	"cpk-tools/internal/ports"
)

type Service struct {
	ModelLoader  ports.BuildModelLoaderPort
	Scanner      ports.ClasspathScannerPort
	Analyzer     ports.BundleAnalyzerPort
	Cpb          ports.CpbExtractorPort
	Hasher       ports.FileHasherPort
	OutputReader ports.OutputReaderPort
	SBOM         ports.SBOMPort
	Now          func() time.Time
}

func NewService() Service {
	return Service{
		ModelLoader:  adapters.NewBuildModelFileAdapter(),
		Scanner:      adapters.NewJarScannerAdapter(),
		Analyzer:     adapters.NewBundleAnalyzerAdapter(),
		Cpb:          adapters.NewCpbExtractorAdapter(),
		Hasher:       adapters.NewFileHasherAdapter(),
		OutputReader: adapters.NewOutputReaderAdapter(),
		SBOM:         adapters.NewSBOMWriterAdapter(),
		Now:          time.Now,
	}
}

// WithScanJobs limits how many classpath jars are read concurrently.
func (s Service) WithScanJobs(jobs int) Service {
	if jobs <= 0 {
		return s
	}
	scanner := adapters.NewJarScannerAdapter()
	scanner.Concurrency = jobs
	s.Scanner = scanner
	return s
}
