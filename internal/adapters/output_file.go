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

// OutputFileAdapter writes calculation results under Dir: one sorted file
// list per bucket and the CPK dependency manifest.
type OutputFileAdapter struct {
	Dir string
}

func NewOutputFileAdapter(dir string) OutputFileAdapter {
	return OutputFileAdapter{Dir: dir}
}

func (a OutputFileAdapter) WriteClassification(set types.ClassifiedDependencySet) error {
	for _, bucket := range types.Buckets {
		path, err := a.ensurePath(types.ReportFile(bucket))
		if err != nil {
			return err
		}
		lines := set.Bucket(bucket).Files()
		if err := writeLines(path, lines); err != nil {
			return err
		}
	}
	return nil
}

func (a OutputFileAdapter) WriteDependencyManifest(manifest types.DependencyManifest) error {
	path, err := a.ensurePath(types.DependencyManifestFile)
	if err != nil {
		return err
	}
	if manifest.Dependencies == nil {
		manifest.Dependencies = []types.DependencyManifestEntry{}
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode dependency manifest").
			WithCause(err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write dependency manifest").
			WithCause(err)
	}
	return nil
}

func (a OutputFileAdapter) ensurePath(filename string) (string, error) {
	if a.Dir == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is empty")
	}
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	return filepath.Join(a.Dir, filename), nil
}

func writeLines(path string, lines []string) error {
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write " + filepath.Base(path)).
			WithCause(err)
	}
	return nil
}

var _ ports.OutputPort = OutputFileAdapter{}
