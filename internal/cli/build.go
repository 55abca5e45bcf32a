package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ppiankov/herdata/internal/cache"
	"github.com/ppiankov/herdata/internal/cmif"
	"github.com/ppiankov/herdata/internal/model"
	"github.com/ppiankov/herdata/internal/pipeline"
	"github.com/ppiankov/herdata/internal/render"
	"github.com/ppiankov/herdata/internal/sndb"
	"github.com/ppiankov/herdata/internal/store"
)

var (
	datasetOut   string
	sqliteOut    string
	sexMarker    string
	noValidation bool
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build persons.json from the SNDB tables and the CMIF corpus",
	Long: `Build runs the enrichment pipeline in four validated stages:
  1. identify the women in the SNDB person tables
  2. match them against senders and mentions of the CMIF corpus
  3. add places with coordinates and occupations
  4. materialize persons.json with totals and a letter timeline

Each stage checks its result against the configured plausibility ranges
and stops before anything is written when a check fails.

Example:
  herdata build
  herdata build --data-dir ./data --out docs/data/persons.json --sqlite persons.db`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	addBuildFlags(buildCmd)
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&datasetOut, "out", "", "output dataset path (default: docs/data/persons.json)")
	cmd.Flags().StringVar(&sqliteOut, "sqlite", "", "also export the dataset to this SQLite file")
	cmd.Flags().StringVar(&sexMarker, "sex", "", "SNDB sex marker selecting the subjects (default: w)")
	cmd.Flags().BoolVar(&noValidation, "no-validation", false, "skip the plausibility ranges (integrity checks still run)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	applyBuildFlags(cmd, cfg)

	_, err = buildDataset(cmd.Context(), cmd, cfg, newCache(cfg, log), log)
	return err
}

func applyBuildFlags(cmd *cobra.Command, cfg *model.Config) {
	if cmd.Flags().Changed("out") {
		cfg.Build.OutputPath = datasetOut
	}
	if cmd.Flags().Changed("sqlite") {
		cfg.Build.SQLitePath = sqliteOut
	}
	if cmd.Flags().Changed("sex") {
		cfg.Build.SexMarker = sexMarker
	}
	if noValidation {
		cfg.Validation.Enabled = false
	}
}

// buildDataset runs the pipeline and writes its outputs. Nothing is
// written unless every stage passed validation.
func buildDataset(ctx context.Context, cmd *cobra.Command, cfg *model.Config, c cache.Cache, log zerolog.Logger) (*model.Dataset, error) {
	tables := sndb.NewLoader(cfg.SNDBPath, c, log)
	letters := cmif.NewLoader(c, log)

	res, err := pipeline.NewPipeline(cfg, letters, tables, log).Run(ctx)
	if err != nil {
		return nil, err
	}

	r := render.NewRenderer(false)
	size, err := r.WriteDataset(res.Dataset, cfg.Build.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("write dataset: %w", err)
	}
	res.Summary.OutputPath = cfg.Build.OutputPath
	res.Summary.OutputSize = size
	log.Info().Str("path", cfg.Build.OutputPath).Int64("bytes", size).Msg("dataset written")

	if cfg.Build.SQLitePath != "" {
		if err := exportSQLite(ctx, cfg.Build.SQLitePath, res.Dataset); err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.Build.SQLitePath).Msg("SQLite export written")
	}

	if err := r.RenderSummary(cmd.OutOrStdout(), res.Summary); err != nil {
		return nil, fmt.Errorf("print summary: %w", err)
	}
	return res.Dataset, nil
}

func exportSQLite(ctx context.Context, path string, ds *model.Dataset) (err error) {
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		return fmt.Errorf("open sqlite export: %w", err)
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close sqlite export: %w", closeErr)
		}
	}()

	if err := s.SaveDataset(ctx, ds); err != nil {
		return fmt.Errorf("export sqlite: %w", err)
	}
	return nil
}
