package adapters

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cpk-tools/internal/core"
	"cpk-tools/internal/ports"
	"cpk-tools/internal/types"
)

// BundleAnalyzerAdapter reads the OSGi metadata of a built bundle jar.
type BundleAnalyzerAdapter struct{}

func NewBundleAnalyzerAdapter() BundleAnalyzerAdapter {
	return BundleAnalyzerAdapter{}
}

func (a BundleAnalyzerAdapter) Analyze(file string) (types.BundleAnalysis, error) {
	reader, err := zip.OpenReader(file)
	if err != nil {
		return types.BundleAnalysis{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("failed to open bundle: %s", file)).
			WithCause(err)
	}
	defer reader.Close()

	contents, err := readJarContents(&reader.Reader)
	if err != nil {
		return types.BundleAnalysis{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to read bundle: %s", file)).
			WithCause(err)
	}
	headers := contents.Headers
	symbolicName := strings.TrimSpace(headers["Bundle-SymbolicName"])
	if idx := strings.Index(symbolicName, ";"); idx >= 0 {
		symbolicName = symbolicName[:idx]
	}
	if symbolicName == "" {
		return types.BundleAnalysis{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("%s is not an OSGi bundle: missing Bundle-SymbolicName", file))
	}

	packages := map[string]struct{}{}
	for _, pkg := range contents.Packages {
		packages[pkg] = struct{}{}
	}
	var warnings []string
	for _, nested := range parseNameList(headers["Bundle-ClassPath"]) {
		if nested == "." {
			continue
		}
		nestedPackages, err := nestedJarPackages(&reader.Reader, nested)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Bundle-ClassPath entry %s cannot be read: %v", nested, err))
			continue
		}
		for _, pkg := range nestedPackages {
			packages[pkg] = struct{}{}
		}
	}

	analysis := types.BundleAnalysis{
		SymbolicName:      symbolicName,
		Version:           strings.TrimSpace(headers["Bundle-Version"]),
		ContainedPackages: sortedKeys(packages),
		Imports:           parseHeaderClauses(headers["Import-Package"]),
		Exports:           parseHeaderClauses(headers["Export-Package"]),
	}
	analysis.PrivatePackages = privatePackages(headers, analysis)
	analysis.HighestEE = highestExecutionEnvironment(headers)

	if analysis.HighestEE == "" {
		warnings = append(warnings, "bundle does not declare a Java execution environment")
	}
	for _, imp := range analysis.Imports {
		if imp.Version() == "" && !imp.Optional() && !strings.HasPrefix(imp.Name, "java.") {
			warnings = append(warnings, fmt.Sprintf("Import-Package %s has no version range", imp.Name))
		}
	}
	for _, exp := range analysis.Exports {
		if _, ok := packages[exp.Name]; !ok {
			warnings = append(warnings, fmt.Sprintf("Export-Package %s is not contained in the bundle", exp.Name))
		}
	}
	analysis.Warnings = warnings
	return analysis, nil
}

// privatePackages prefers the Private-Package header written by bnd and
// otherwise derives the packages that are contained but not exported.
func privatePackages(headers map[string]string, analysis types.BundleAnalysis) []string {
	if value, ok := headers["Private-Package"]; ok {
		out := parseNameList(value)
		sort.Strings(out)
		return out
	}
	exported := map[string]struct{}{}
	for _, exp := range analysis.Exports {
		exported[exp.Name] = struct{}{}
	}
	var out []string
	for _, pkg := range analysis.ContainedPackages {
		if _, ok := exported[pkg]; !ok {
			out = append(out, pkg)
		}
	}
	return out
}

func highestExecutionEnvironment(headers map[string]string) string {
	candidates := requiredExecutionEnvironments(headers["Require-Capability"])
	if len(candidates) == 0 {
		candidates = parseNameList(headers["Bundle-RequiredExecutionEnvironment"])
	}
	best := core.ExecutionEnvironment{}
	for _, candidate := range candidates {
		ee, ok := core.ParseExecutionEnvironment(candidate)
		if !ok {
			continue
		}
		if ee.Release > best.Release {
			best = ee
		}
	}
	return best.Name
}

func nestedJarPackages(reader *zip.Reader, name string) ([]string, error) {
	for _, entry := range reader.File {
		if entry.Name != name {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		nested, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, err
		}
		contents, err := readJarContents(nested)
		if err != nil {
			return nil, err
		}
		return contents.Packages, nil
	}
	return nil, fmt.Errorf("entry %s not found", name)
}

var _ ports.BundleAnalyzerPort = BundleAnalyzerAdapter{}
