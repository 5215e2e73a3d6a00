package adapters

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cpk-tools/internal/ports"
	"cpk-tools/internal/types"
)

type OutputReaderAdapter struct{}

func NewOutputReaderAdapter() OutputReaderAdapter {
	return OutputReaderAdapter{}
}

// ReadCalculationReport reads every bucket file in dir. A missing bucket
// file is an error, an empty one is an empty bucket.
func (a OutputReaderAdapter) ReadCalculationReport(dir string) (types.CalculationReport, error) {
	report := types.CalculationReport{Buckets: map[types.Bucket][]string{}}
	for _, bucket := range types.Buckets {
		name := types.ReportFile(bucket)
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return types.CalculationReport{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(name + " not found").
				WithCause(err)
		}
		var files []string
		for _, line := range strings.Split(string(content), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			files = append(files, line)
		}
		report.Buckets[bucket] = files
	}
	return report, nil
}

func (a OutputReaderAdapter) ReadDependencyManifest(path string) (types.DependencyManifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.DependencyManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(types.DependencyManifestFile + " not found").
			WithCause(err)
	}
	var manifest types.DependencyManifest
	if err := json.Unmarshal(content, &manifest); err != nil {
		return types.DependencyManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid dependency manifest").
			WithCause(err)
	}
	if manifest.FormatVersion != types.DependencyManifestFormatVersion {
		return types.DependencyManifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unsupported dependency manifest format " + manifest.FormatVersion)
	}
	return manifest, nil
}

var _ ports.OutputReaderPort = OutputReaderAdapter{}
