package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/herdata/internal/model"
	"github.com/ppiankov/herdata/internal/validate"
)

// errAuditFailed is returned when a dataset has at least one violation
var errAuditFailed = errors.New("dataset audit failed")

var auditJSON bool

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit [persons.json]",
	Short: "Check a built dataset for consistency",
	Long: `Audit re-reads a materialized dataset and checks that:
- roles agree with letter and mention counts
- normierung is "gnd" exactly when a GND id is present
- the meta total matches the number of persons
- ids are unique and names are not empty
- coordinates are within bounds and birth does not follow death

Example:
  herdata audit
  herdata audit docs/data/persons.json --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "print violations as JSON")
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.Build.OutputPath
	if len(args) == 1 {
		path = args[0]
	}

	ds, err := readDataset(path)
	if err != nil {
		return err
	}
	violations := validate.Audit(ds)
	log.Info().Str("path", path).Int("persons", len(ds.Persons)).Int("violations", len(violations)).Msg("dataset audited")

	if err := printViolations(cmd.OutOrStdout(), violations, auditJSON); err != nil {
		return err
	}
	if len(violations) > 0 {
		return fmt.Errorf("%w: %d violations in %s", errAuditFailed, len(violations), path)
	}
	return nil
}

func readDataset(path string) (*model.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var ds model.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return &ds, nil
}

func printViolations(w io.Writer, violations []validate.Violation, asJSON bool) error {
	if asJSON {
		if violations == nil {
			violations = []validate.Violation{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(violations)
	}

	if len(violations) == 0 {
		_, err := fmt.Fprintln(w, "✓ No violations found")
		return err
	}
	for _, v := range violations {
		if _, err := fmt.Fprintf(w, "✗ %s\n", v); err != nil {
			return err
		}
	}
	return nil
}
