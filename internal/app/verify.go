package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"cpk-tools/internal/core"
	"cpk-tools/internal/policies"
	"cpk-tools/internal/shared"
	"cpk-tools/internal/types"
)

func (s Service) Verify(ctx context.Context, req VerifyRequest) (VerifyResult, error) {
	bundlePath := strings.TrimSpace(req.BundlePath)
	if bundlePath == "" {
		return VerifyResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("bundle path is required")
	}
	classpath := append([]string(nil), req.Classpath...)
	if reportDir := strings.TrimSpace(req.ReportDir); reportDir != "" {
		report, err := s.OutputReader.ReadCalculationReport(reportDir)
		if err != nil {
			return VerifyResult{}, err
		}
		classpath = append(classpath, report.Files(
			types.BucketProvided,
			types.BucketLibraries,
			types.BucketProjectCordapps,
			types.BucketRemoteCordapps,
		)...)
	}
	classpath = shared.DedupeStrings(classpath)

	analysis, err := s.Analyzer.Analyze(bundlePath)
	if err != nil {
		return VerifyResult{}, err
	}
	entries, err := s.Scanner.ScanClasspath(ctx, classpath)
	if err != nil {
		return VerifyResult{}, err
	}
	log.Ctx(ctx).Debug().
		Str("bundle", analysis.SymbolicName).
		Int("classpath", len(entries)).
		Msg("verifying bundle")

	verifier := core.NewBundleVerifier(policies.NewNamespacePolicy(req.ReservedPackages))
	verifier.Strict = req.Strict
	if err := verifier.Verify(ctx, analysis, entries); err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{
		SymbolicName: analysis.SymbolicName,
		Version:      analysis.Version,
		Imports:      len(analysis.Imports),
		Classpath:    len(entries),
		Warnings:     analysis.Warnings,
	}, nil
}
