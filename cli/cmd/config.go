package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fluxbase-eu/bundlescore/cli/output"
	"github.com/fluxbase-eu/bundlescore/cli/util"
	"github.com/fluxbase-eu/bundlescore/internal/config"
	"github.com/fluxbase-eu/bundlescore/internal/scoring"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create the analyzer configuration",
	Long: `Inspect the effective configuration or write a default config file.

The configuration is read from bundlescore.yaml (or --config), then
BUNDLESCORE_* environment variables, then command-line flags.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after applying the config file, environment
variables and defaults.

Examples:
  bundlescore config show
  bundlescore config show -o yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default config file",
	Long: `Write the default configuration, including every scoring threshold,
to a YAML file (default ./bundlescore.yaml).

Examples:
  bundlescore config init
  bundlescore config init config/bundlescore.yaml --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	formatter := GetFormatter()

	if formatter.Structured() {
		return formatter.Print(cfg)
	}

	formatter.PrintKeyValue("build_dir", util.TruncateString(cfg.BuildPath(), 60))
	formatter.PrintKeyValue("artifact", util.TruncateString(cfg.ArtifactPath(), 60))
	formatter.PrintKeyValue("target", strconv.FormatFloat(cfg.Target, 'f', -1, 64))
	formatter.PrintKeyValue("score_range", fmt.Sprintf("%g-%g (base %g)", cfg.Scoring.Min, cfg.Scoring.Max, cfg.Scoring.Base))
	formatter.PrintInfo("")

	return formatter.Print(rulesTable(cfg.Scoring))
}

// rulesTable lists every scoring bracket in evaluation order
func rulesTable(rules scoring.Rules) output.TableData {
	data := output.TableData{
		Headers: []string{"DIMENSION", "CONDITION", "ADJUST"},
	}

	dimensions := []struct {
		name     string
		unit     string
		brackets []scoring.Bracket
	}{
		{"total size", "MB", rules.TotalSizeMB},
		{"js size", "MB", rules.JSSizeMB},
		{"chunks", "", rules.Chunks},
		{"css size", "KB", rules.CSSSizeKB},
	}

	for _, d := range dimensions {
		for _, b := range d.brackets {
			condition := fmt.Sprintf("%s %g", b.Op, b.Limit)
			if d.unit != "" {
				condition += " " + d.unit
			}
			data.Rows = append(data.Rows, []string{d.name, condition, fmt.Sprintf("%+g", b.Adjust)})
		}
	}

	return data
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := "bundlescore.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !configInitForce {
		if !util.IsInteractive() {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		overwrite, err := util.Confirm(fmt.Sprintf("%s already exists. Overwrite?", path), false)
		if err != nil {
			return err
		}
		if !overwrite {
			GetFormatter().PrintInfo("Aborted")
			return nil
		}
	}

	if err := config.Default().Save(path); err != nil {
		return err
	}

	GetFormatter().PrintSuccess(fmt.Sprintf("Wrote default configuration to %s", path))
	return nil
}
