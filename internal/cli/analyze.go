package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ppiankov/herdata/internal/analyze"
	"github.com/ppiankov/herdata/internal/cache"
	"github.com/ppiankov/herdata/internal/cmif"
	"github.com/ppiankov/herdata/internal/model"
	"github.com/ppiankov/herdata/internal/render"
)

var (
	reportOut  string
	reportJSON string
	noFooter   bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [cmif-file]",
	Short: "Write a statistical report about a CMIF letter corpus",
	Long: `Analyze reads a CMIF corpus and reports:
- letter, sender and place totals and the dated period
- exact versus range dating, letters per decade and top years
- top senders, places, mentioned persons, works and organizations
- languages, TEI availability, transcriptions and abstracts
- mention density and authority-file (GND, GeoNames) coverage

Example:
  herdata analyze
  herdata analyze data/ra-cmif.xml --out report.md --json report.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&reportOut, "out", "", "output Markdown path (default: <data-dir>/analysis-report.md)")
	analyzeCmd.Flags().StringVar(&reportJSON, "json", "", "also write the report as JSON to this path")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "omit the footer of the Markdown report")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	applyAnalyzeFlags(cmd, cfg, args)

	_, err = analyzeCorpus(cmd.Context(), cmd, cfg, newCache(cfg, log), log)
	return err
}

func applyAnalyzeFlags(cmd *cobra.Command, cfg *model.Config, args []string) {
	if len(args) == 1 {
		cfg.CMIFFile = args[0]
	}
	if cmd.Flags().Changed("out") {
		cfg.Analyze.ReportPath = reportOut
	}
	if cmd.Flags().Changed("json") {
		cfg.Analyze.JSONPath = reportJSON
	}
	if noFooter {
		cfg.Analyze.IncludeFooter = false
	}
}

// analyzeCorpus loads the corpus, builds the report and writes it
func analyzeCorpus(ctx context.Context, cmd *cobra.Command, cfg *model.Config, c cache.Cache, log zerolog.Logger) (*model.Report, error) {
	path := cfg.CMIFPath()
	log.Info().Str("path", path).Msg("loading CMIF corpus")

	letters, err := cmif.NewLoader(c, log).Load(ctx, path)
	if err != nil {
		return nil, err
	}

	rep := analyze.NewAnalyzer(cfg.Analyze, log).Analyze(letters, filepath.Base(path))
	r := render.NewRenderer(cfg.Analyze.IncludeFooter)

	out := cfg.ReportPath()
	size, err := r.WriteReportMarkdown(rep, out)
	if err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	log.Info().Str("path", out).Int64("bytes", size).Msg("report written")
	fmt.Fprintf(cmd.OutOrStdout(), "Report: %s (%s)\n", out, render.FormatSize(size))

	if cfg.Analyze.JSONPath != "" {
		size, err := r.WriteReportJSON(rep, cfg.Analyze.JSONPath)
		if err != nil {
			return nil, fmt.Errorf("write JSON report: %w", err)
		}
		log.Info().Str("path", cfg.Analyze.JSONPath).Int64("bytes", size).Msg("JSON report written")
		fmt.Fprintf(cmd.OutOrStdout(), "JSON:   %s (%s)\n", cfg.Analyze.JSONPath, render.FormatSize(size))
	}
	return rep, nil
}
