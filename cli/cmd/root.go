// Package cmd provides the Cobra commands for the bundlescore CLI.
package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fluxbase-eu/bundlescore/cli/output"
	"github.com/fluxbase-eu/bundlescore/internal/bundlesize"
	"github.com/fluxbase-eu/bundlescore/internal/config"
	"github.com/fluxbase-eu/bundlescore/internal/logging"
	"github.com/fluxbase-eu/bundlescore/internal/perfcheck"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"

	// Global flags
	cfgFile   string
	outputFmt string
	noHeaders bool
	quiet     bool
	debug     bool

	// Shared across commands
	cfg       *config.Config
	formatter *output.Formatter

	// Replaced in tests
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bundlescore",
	Short: "bundlescore - Score the size of a front-end production build",
	Long: `bundlescore inspects the build output directory, scores its size
against a set of thresholds and fails when the score is below the target.

Running it without a subcommand is the same as "bundlescore analyze".

Examples:
  bundlescore                       Analyze ./dist and write bundle-analysis.json
  bundlescore analyze --dir build   Analyze another directory
  bundlescore config show           Show the effective thresholds`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	Args:              cobra.NoArgs,
	PersistentPreRunE: initialize,
	RunE:              runAnalyze,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the CLI with a context that cancels the analysis
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is ./bundlescore.yaml or ./config/bundlescore.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table",
		"output format: table, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&noHeaders, "no-headers", false,
		"hide table headers")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"minimal output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"enable debug output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(configCmd)
}

// initialize loads the configuration and sets up logging and output
func initialize(cmd *cobra.Command, args []string) error {
	// Console logging at info until the configured level is known
	logging.SetupWithWriter(stderr, config.LoggingConfig{ConsoleLevel: "info", ConsoleFormat: "console"}, debug)

	var err error
	cfg, err = config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}

	logging.SetupWithWriter(stderr, cfg.Logging, debug || cfg.Debug)

	format, err := output.ParseFormat(outputFmt)
	if err != nil {
		return err
	}
	formatter = output.NewFormatter(format, noHeaders, quiet)
	formatter.Writer = stdout

	return nil
}

// GetFormatter returns the output formatter (for use by subcommands)
func GetFormatter() *output.Formatter {
	if formatter == nil {
		format, _ := output.ParseFormat(outputFmt)
		formatter = output.NewFormatter(format, noHeaders, quiet)
		formatter.Writer = stdout
	}
	return formatter
}

// GetConfig returns the loaded configuration (for use by subcommands)
func GetConfig() *config.Config {
	return cfg
}

// IsReported returns true for errors the command already explained on stdout,
// which only need to be turned into a non-zero exit code
func IsReported(err error) bool {
	return errors.Is(err, perfcheck.ErrBelowTarget) ||
		errors.Is(err, bundlesize.ErrDirectoryNotFound)
}
