package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"cpk-tools/internal/adapters"
	"cpk-tools/internal/core"
	"cpk-tools/internal/policies"
	"cpk-tools/internal/types"
)

func (s Service) Calculate(ctx context.Context, req CalculateRequest) (CalculateResult, error) {
	modelPath := strings.TrimSpace(req.ModelPath)
	if modelPath == "" {
		return CalculateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("build model path is required")
	}
	project := strings.TrimSpace(req.Project)
	if project == "" {
		return CalculateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project path is required")
	}
	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		return CalculateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output directory is required")
	}
	names := applyConfigurationDefaults(req.Names)

	model, err := s.ModelLoader.Load(modelPath)
	if err != nil {
		return CalculateResult{}, err
	}
	if err := core.NewModelCompiler().ValidateModel(ctx, model); err != nil {
		return CalculateResult{}, err
	}
	exclusions, err := policies.NewExclusionPolicy(append(append([]string(nil), policies.DefaultCordaExcludes...), req.Excludes...))
	if err != nil {
		return CalculateResult{}, err
	}
	namespaces := policies.NewNamespacePolicy(req.ReservedPackages)

	buildModel := adapters.NewBuildModelAdapter(model)
	resolver := adapters.NewGraphResolverAdapter(buildModel, names.ProjectExport)
	calculator := core.NewDependencyCalculator(buildModel, resolver, exclusions, namespaces, s.Cpb, project, names)
	calculator.ExtractDir = func() (string, error) {
		return extractionDir(outputDir)
	}
	set, err := calculator.Calculate(ctx)
	if err != nil {
		return CalculateResult{}, err
	}
	manifest, err := core.NewDependencyManifestBuilder(s.Scanner, s.Hasher).Build(ctx, set)
	if err != nil {
		return CalculateResult{}, err
	}

	output := adapters.NewOutputFileAdapter(outputDir)
	if err := output.WriteClassification(set); err != nil {
		return CalculateResult{}, err
	}
	if err := output.WriteDependencyManifest(manifest); err != nil {
		return CalculateResult{}, err
	}
	sbomWritten := false
	if req.SBOM && s.SBOM != nil {
		cpk, _ := buildModel.Project(project)
		if err := s.SBOM.WriteSBOM(outputDir, cpk.Coordinate, s.createdAt(), set); err != nil {
			return CalculateResult{}, err
		}
		sbomWritten = true
	}
	counts := map[types.Bucket]int{}
	for _, bucket := range types.Buckets {
		counts[bucket] = len(set.Bucket(bucket))
	}
	return CalculateResult{
		Project:      project,
		OutputDir:    outputDir,
		Counts:       counts,
		Dependencies: len(manifest.Dependencies),
		SBOMWritten:  sbomWritten,
	}, nil
}

// extractionDir keeps extracted CorDapps next to the reports that list
// them, so a later verify can still read them.
func extractionDir(outputDir string) (string, error) {
	dir := filepath.Join(outputDir, types.CpbExtractDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create CPB extraction directory").
			WithCause(err)
	}
	return dir, nil
}

func (s Service) createdAt() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return now().UTC().Format(time.RFC3339)
}

func applyConfigurationDefaults(names types.ConfigurationNames) types.ConfigurationNames {
	defaults := types.DefaultConfigurationNames()
	pick := func(value string, fallback string) string {
		if strings.TrimSpace(value) == "" {
			return fallback
		}
		return strings.TrimSpace(value)
	}
	return types.ConfigurationNames{
		Cordapp:          pick(names.Cordapp, defaults.Cordapp),
		Provided:         pick(names.Provided, defaults.Provided),
		Platform:         pick(names.Platform, defaults.Platform),
		Packaging:        pick(names.Packaging, defaults.Packaging),
		CordaRuntimeOnly: pick(names.CordaRuntimeOnly, defaults.CordaRuntimeOnly),
		CordaEmbedded:    pick(names.CordaEmbedded, defaults.CordaEmbedded),
		ProjectExport:    pick(names.ProjectExport, defaults.ProjectExport),
	}
}
