package app

import (
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cpk-tools/internal/types"
)

func (s Service) Inspect(req InspectRequest) (InspectResult, error) {
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}
	report, err := s.OutputReader.ReadCalculationReport(outputDir)
	if err != nil {
		return InspectResult{}, err
	}
	manifest, err := s.OutputReader.ReadDependencyManifest(filepath.Join(outputDir, types.DependencyManifestFile))
	if err != nil {
		return InspectResult{}, err
	}
	var summaries []InspectBucketSummary
	for _, bucket := range types.Buckets {
		files := report.Buckets[bucket]
		summaries = append(summaries, InspectBucketSummary{
			Bucket: bucket,
			Count:  len(files),
			Files:  files,
		})
	}
	return InspectResult{
		Buckets:      summaries,
		Dependencies: manifest.Dependencies,
	}, nil
}
