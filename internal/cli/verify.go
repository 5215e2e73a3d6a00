package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cpk-tools/internal/app"
)

type verifyOptions struct {
	Bundle           string
	Classpath        []string
	ReportDir        string
	ReservedPackages []string
	Strict           bool
	Jobs             int
}

func newVerifyCommand() *cobra.Command {
	opts := verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the OSGi imports and exports of a built bundle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Bundle, "bundle", "", "Bundle jar to verify")
	cmd.Flags().StringSliceVar(&opts.Classpath, "classpath", nil, "Jars available to the bundle at runtime")
	cmd.Flags().StringVar(&opts.ReportDir, "report", "", "Calculation output directory to take the classpath from")
	cmd.Flags().StringSliceVar(&opts.ReservedPackages, "reserved-package", nil, "Package namespaces reserved for the platform")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Treat bundle warnings as errors")
	cmd.Flags().IntVar(&opts.Jobs, "jobs", 0, "Number of jars scanned concurrently")
	_ = viper.BindPFlag("bundle", cmd.Flags().Lookup("bundle"))
	_ = viper.BindPFlag("classpath", cmd.Flags().Lookup("classpath"))
	_ = viper.BindPFlag("report", cmd.Flags().Lookup("report"))
	_ = viper.BindPFlag("reserved_packages", cmd.Flags().Lookup("reserved-package"))
	_ = viper.BindPFlag("strict", cmd.Flags().Lookup("strict"))
	_ = viper.BindPFlag("jobs", cmd.Flags().Lookup("jobs"))
	return cmd
}

func runVerify(ctx context.Context, cmd *cobra.Command, opts verifyOptions) error {
	service := newAppService().WithScanJobs(resolveInt(cmd, opts.Jobs, "jobs", "jobs"))
	result, err := service.Verify(ctx, app.VerifyRequest{
		BundlePath:       resolveString(cmd, opts.Bundle, "bundle", "bundle"),
		Classpath:        resolveStrings(cmd, opts.Classpath, "classpath", "classpath"),
		ReportDir:        resolveString(cmd, opts.ReportDir, "report", "report"),
		ReservedPackages: resolveStrings(cmd, opts.ReservedPackages, "reserved_packages", "reserved-package"),
		Strict:           resolveBool(cmd, opts.Strict, "strict", "strict"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("verified: %s %s (%d imports, %d classpath jars)\n", result.SymbolicName, result.Version, result.Imports, result.Classpath)
	for _, warning := range result.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}
	return nil
}
