package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fluxbase-eu/bundlescore/internal/bundlesize"
	"github.com/fluxbase-eu/bundlescore/internal/observability"
	"github.com/fluxbase-eu/bundlescore/internal/perfcheck"
)

// analyzeFlags is shared by the root command and "analyze"
var analyzeFlags = pflag.NewFlagSet("analyze", pflag.ContinueOnError)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the build output and score it",
	Long: `Analyze the build output directory, print a size report, write the JSON
artifact and exit with status 1 when the score is below the target.

Examples:
  bundlescore analyze
  bundlescore analyze --dir build --target 9
  bundlescore analyze --compare --top 10
  bundlescore analyze -o json`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeFlags.String("dir", "", "build output directory (default \"dist\")")
	analyzeFlags.String("artifact", "", "path of the JSON artifact (default \"bundle-analysis.json\")")
	analyzeFlags.Float64("target", 0, "minimum score to pass (default 8.5)")
	analyzeFlags.Int("top", 0, "only list the N largest files")
	analyzeFlags.Bool("compare", false, "diff against the previous artifact")
	analyzeFlags.String("metrics-file", "", "write Prometheus metrics to this textfile")

	analyzeCmd.Flags().AddFlagSet(analyzeFlags)
	rootCmd.Flags().AddFlagSet(analyzeFlags)

	bindings := map[string]string{
		"build_dir":      "dir",
		"artifact":       "artifact",
		"target":         "target",
		"report.top":     "top",
		"report.compare": "compare",
		"metrics.file":   "metrics-file",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, analyzeFlags.Lookup(flag))
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := GetConfig()
	formatter := GetFormatter()

	tracer, err := observability.NewTracer(ctx, observability.TracerConfig{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
		Insecure:    cfg.Tracing.Insecure,
		Version:     Version,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	// The formatter prints the result, so the runner stays silent
	result, err := perfcheck.NewRunner(cfg,
		perfcheck.WithTracer(tracer),
		perfcheck.WithMetrics(observability.NewMetrics()),
		perfcheck.WithoutReport(),
	).Run(ctx)

	if errors.Is(err, bundlesize.ErrDirectoryNotFound) {
		// Keep stdout parseable in json/yaml mode
		w := formatter.Writer
		if formatter.Structured() {
			w = stderr
		}
		perfcheck.WriteNotFound(w, cfg.BuildPath())
		return err
	}
	if err != nil && !errors.Is(err, perfcheck.ErrBelowTarget) {
		return err
	}

	if printErr := formatter.Print(result); printErr != nil {
		return printErr
	}

	return err
}
