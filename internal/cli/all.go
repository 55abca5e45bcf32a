package cli

import (
	"github.com/spf13/cobra"
)

// allCmd represents the all command
var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run analyze and build in one go",
	Long: `All writes the analysis report and then builds persons.json.
Both steps share one table cache, so the CMIF corpus is decoded once.

Example:
  herdata all --data-dir ./data`,
	Args: cobra.NoArgs,
	RunE: runAll,
}

func init() {
	rootCmd.AddCommand(allCmd)
	addBuildFlags(allCmd)
	allCmd.Flags().BoolVar(&noFooter, "no-footer", false, "omit the footer of the Markdown report")
}

func runAll(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Analyze.IncludeFooter = false
	}
	applyBuildFlags(cmd, cfg)

	c := newCache(cfg, log)
	if _, err := analyzeCorpus(cmd.Context(), cmd, cfg, c, log); err != nil {
		return err
	}
	_, err = buildDataset(cmd.Context(), cmd, cfg, c, log)
	return err
}
