package adapters

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cpk-tools/internal/ports"
)

// CpbExtractorAdapter unpacks the CPKs bundled in a CPB archive.
type CpbExtractorAdapter struct{}

func NewCpbExtractorAdapter() CpbExtractorAdapter {
	return CpbExtractorAdapter{}
}

// FindSibling looks for foo.cpb or foo-package.cpb next to foo.jar.
func (CpbExtractorAdapter) FindSibling(file string) (string, bool) {
	base := strings.TrimSuffix(file, filepath.Ext(file))
	for _, candidate := range []string{base + ".cpb", base + "-package.cpb"} {
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

// ExtractJars copies every jar of the archive into destDir, flattening
// directories. Names in skip are left alone and files already present are
// reused, so extracting the same archive twice yields the same paths.
func (CpbExtractorAdapter) ExtractJars(cpbPath string, destDir string, skip map[string]struct{}) ([]string, error) {
	reader, err := zip.OpenReader(cpbPath)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to open CPB: %s", cpbPath)).
			WithCause(err)
	}
	defer reader.Close()
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create CPB extraction directory").
			WithCause(err)
	}
	var out []string
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() || !strings.HasSuffix(entry.Name, ".jar") {
			continue
		}
		name := path.Base(entry.Name)
		if _, ok := skip[name]; ok {
			continue
		}
		target := filepath.Join(destDir, name)
		if _, err := os.Stat(target); err != nil {
			if err := extractEntry(entry, target); err != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg(fmt.Sprintf("failed to extract %s from %s", entry.Name, cpbPath)).
					WithCause(err)
			}
		}
		out = append(out, target)
	}
	return out, nil
}

func extractEntry(entry *zip.File, target string) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	tmp, err := os.CreateTemp(filepath.Dir(target), ".extract-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), target)
}

var _ ports.CpbExtractorPort = CpbExtractorAdapter{}
