package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cpk-tools/internal/app"
	"cpk-tools/internal/types"
)

type calculateOptions struct {
	Model            string
	Project          string
	OutputDir        string
	Excludes         []string
	ReservedPackages []string
	Names            types.ConfigurationNames
	SBOM             bool
}

func newCalculateCommand() *cobra.Command {
	opts := calculateOptions{}
	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate the dependency destinations of a CorDapp project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalculate(cmd.Context(), cmd, opts)
		},
	}
	defaults := types.DefaultConfigurationNames()
	cmd.Flags().StringVar(&opts.Model, "model", "", "Build model path")
	cmd.Flags().StringVar(&opts.Project, "project", "", "Project path, e.g. :workflows")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "out", "Output directory")
	cmd.Flags().StringSliceVar(&opts.Excludes, "exclude", nil, "Additional group:name rules provided by the runtime")
	cmd.Flags().StringSliceVar(&opts.ReservedPackages, "reserved-package", nil, "Package namespaces reserved for the platform")
	cmd.Flags().BoolVar(&opts.SBOM, "sbom", false, "Also write an SPDX SBOM of the CPK contents")
	cmd.Flags().StringVar(&opts.Names.Cordapp, "cordapp-configuration", defaults.Cordapp, "Configuration declaring CorDapp dependencies")
	cmd.Flags().StringVar(&opts.Names.Provided, "provided-configuration", defaults.Provided, "Configuration declaring provided dependencies")
	cmd.Flags().StringVar(&opts.Names.Platform, "platform-configuration", defaults.Platform, "Configuration declaring platform dependencies")
	cmd.Flags().StringVar(&opts.Names.Packaging, "packaging-configuration", defaults.Packaging, "Configuration whose closure is packaged")
	cmd.Flags().StringVar(&opts.Names.CordaRuntimeOnly, "runtime-only-configuration", defaults.CordaRuntimeOnly, "Configuration excluded from packaging")
	cmd.Flags().StringVar(&opts.Names.CordaEmbedded, "embedded-configuration", defaults.CordaEmbedded, "Configuration declaring embedded jars")
	cmd.Flags().StringVar(&opts.Names.ProjectExport, "export-configuration", defaults.ProjectExport, "Configuration other projects export")
	_ = viper.BindPFlag("model", cmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("project", cmd.Flags().Lookup("project"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("excludes", cmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("reserved_packages", cmd.Flags().Lookup("reserved-package"))
	_ = viper.BindPFlag("sbom", cmd.Flags().Lookup("sbom"))
	_ = viper.BindPFlag("configurations.cordapp", cmd.Flags().Lookup("cordapp-configuration"))
	_ = viper.BindPFlag("configurations.provided", cmd.Flags().Lookup("provided-configuration"))
	_ = viper.BindPFlag("configurations.platform", cmd.Flags().Lookup("platform-configuration"))
	_ = viper.BindPFlag("configurations.packaging", cmd.Flags().Lookup("packaging-configuration"))
	_ = viper.BindPFlag("configurations.runtime_only", cmd.Flags().Lookup("runtime-only-configuration"))
	_ = viper.BindPFlag("configurations.embedded", cmd.Flags().Lookup("embedded-configuration"))
	_ = viper.BindPFlag("configurations.export", cmd.Flags().Lookup("export-configuration"))
	return cmd
}

func runCalculate(ctx context.Context, cmd *cobra.Command, opts calculateOptions) error {
	service := newAppService()
	result, err := service.Calculate(ctx, app.CalculateRequest{
		ModelPath:        resolveString(cmd, opts.Model, "model", "model"),
		Project:          resolveString(cmd, opts.Project, "project", "project"),
		OutputDir:        resolveString(cmd, opts.OutputDir, "output", "output"),
		Excludes:         resolveStrings(cmd, opts.Excludes, "excludes", "exclude"),
		ReservedPackages: resolveStrings(cmd, opts.ReservedPackages, "reserved_packages", "reserved-package"),
		SBOM:             resolveBool(cmd, opts.SBOM, "sbom", "sbom"),
		Names: types.ConfigurationNames{
			Cordapp:          resolveString(cmd, opts.Names.Cordapp, "configurations.cordapp", "cordapp-configuration"),
			Provided:         resolveString(cmd, opts.Names.Provided, "configurations.provided", "provided-configuration"),
			Platform:         resolveString(cmd, opts.Names.Platform, "configurations.platform", "platform-configuration"),
			Packaging:        resolveString(cmd, opts.Names.Packaging, "configurations.packaging", "packaging-configuration"),
			CordaRuntimeOnly: resolveString(cmd, opts.Names.CordaRuntimeOnly, "configurations.runtime_only", "runtime-only-configuration"),
			CordaEmbedded:    resolveString(cmd, opts.Names.CordaEmbedded, "configurations.embedded", "embedded-configuration"),
			ProjectExport:    resolveString(cmd, opts.Names.ProjectExport, "configurations.export", "export-configuration"),
		},
	})
	if err != nil {
		return err
	}
	fmt.Printf("calculated: %s -> %s\n", result.Project, result.OutputDir)
	for _, bucket := range types.Buckets {
		fmt.Printf("- %s: %d\n", bucket, result.Counts[bucket])
	}
	fmt.Printf("%s dependencies: %d\n", types.DependencyManifestFile, result.Dependencies)
	if result.SBOMWritten {
		fmt.Println("sbom written")
	}
	return nil
}
