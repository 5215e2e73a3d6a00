package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"cpk-tools/internal/policies"
	"cpk-tools/internal/types"
)

// BundleVerifier checks that every package a bundle imports will be
// available at runtime in an acceptable version, and that the bundle does
// not claim platform-reserved packages.
type BundleVerifier struct {
	Namespaces policies.NamespacePolicy
	// Strict promotes analyzer warnings to errors.
	Strict bool
}

func NewBundleVerifier(namespaces policies.NamespacePolicy) BundleVerifier {
	return BundleVerifier{Namespaces: namespaces}
}

// BundleVerificationError lists every violation found in one bundle.
type BundleVerificationError struct {
	Bundle string
	Errors []string
}

func (e *BundleVerificationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bundle %s failed verification with %d error(s)", e.Bundle, len(e.Errors))
	for _, msg := range e.Errors {
		b.WriteString("\n - ")
		b.WriteString(msg)
	}
	return b.String()
}

// Verify collects all violations before failing.
func (v BundleVerifier) Verify(ctx context.Context, analysis types.BundleAnalysis, classpath []types.ClasspathEntry) error {
	logger := log.Ctx(ctx)
	errs := v.Violations(ctx, analysis, classpath)
	if len(errs) == 0 {
		logger.Debug().Str("bundle", analysis.SymbolicName).Int("imports", len(analysis.Imports)).Msg("bundle verified")
		return nil
	}
	for _, msg := range errs {
		logger.Error().Str("bundle", analysis.SymbolicName).Msg(msg)
	}
	verr := &BundleVerificationError{Bundle: analysis.SymbolicName, Errors: errs}
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(verr.Error()).
		WithCause(verr)
}

// Violations lists every problem with the bundle in a stable order.
func (v BundleVerifier) Violations(ctx context.Context, analysis types.BundleAnalysis, classpath []types.ClasspathEntry) []string {
	var errs []string
	logger := log.Ctx(ctx)

	ee, _ := ParseExecutionEnvironment(analysis.HighestEE)
	internal := toSet(analysis.ContainedPackages)
	available := map[string]struct{}{}
	for _, entry := range classpath {
		for _, pkg := range entry.Packages {
			available[pkg] = struct{}{}
		}
	}
	ownExports := ExportRecords(analysis.Exports)
	var classpathClauses []types.PackageClause
	for _, entry := range classpath {
		classpathClauses = append(classpathClauses, entry.Exports...)
	}
	classpathExports := ExportRecords(classpathClauses)

	for _, imp := range analysis.Imports {
		if ee.Provides(imp.Name) || imp.Optional() {
			continue
		}
		_, inBundle := internal[imp.Name]
		_, onClasspath := available[imp.Name]
		if !inBundle && !onClasspath {
			errs = append(errs, fmt.Sprintf("Import-Package %s is not satisfied by the bundle or its classpath", imp.Name))
			continue
		}
		required := imp.Version()
		if required == "" {
			continue
		}
		versionRange, err := ParseVersionRange(required)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Import-Package %s has invalid version range %s", imp.Name, required))
			continue
		}
		record, ok := ownExports[imp.Name]
		if !ok {
			record = classpathExports[imp.Name]
		}
		if !anyInRange(versionRange, record.Versions) {
			errs = append(errs, fmt.Sprintf(
				"Import-Package %s requires version %s but available versions are [%s]",
				imp.Name, versionRange, strings.Join(record.Versions, ", "),
			))
		}
	}

	for _, exp := range analysis.Exports {
		if v.Namespaces.IsReservedPackage(exp.Name) {
			errs = append(errs, fmt.Sprintf("Export-Package %s is in a namespace reserved for the platform", exp.Name))
		}
	}
	for _, pkg := range analysis.PrivatePackages {
		if v.Namespaces.IsReservedPackage(pkg) {
			errs = append(errs, fmt.Sprintf("Private-Package %s is in a namespace reserved for the platform", pkg))
		}
	}

	for _, warning := range analysis.Warnings {
		logger.Warn().Str("bundle", analysis.SymbolicName).Msg(warning)
		if v.Strict {
			errs = append(errs, "warning: "+warning)
		}
	}
	return errs
}

// ExportRecords groups export clauses by package. Clauses without a
// version export 0.0.0.
func ExportRecords(clauses []types.PackageClause) map[string]types.PackageExportRecord {
	records := map[string]types.PackageExportRecord{}
	for _, clause := range clauses {
		version := clause.Version()
		if version == "" {
			version = EmptyVersion.String()
		}
		record := records[clause.Name]
		record.PackageName = clause.Name
		if !containsString(record.Versions, version) {
			record.Versions = append(record.Versions, version)
			sort.Strings(record.Versions)
		}
		records[clause.Name] = record
	}
	return records
}

func anyInRange(versionRange VersionRange, versions []string) bool {
	for _, raw := range versions {
		version, err := ParseVersion(raw)
		if err != nil {
			continue
		}
		if versionRange.Includes(version) {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		out[value] = struct{}{}
	}
	return out
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
