package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/herdata/internal/model"
)

const ruleWidth = 60

// RenderSummary prints the compact block shown at the end of a build
func (r *Renderer) RenderSummary(w io.Writer, s model.RunSummary) error {
	rule := strings.Repeat("=", ruleWidth)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nPIPELINE SUMMARY\n%s\n", rule, rule)
	for _, stage := range s.Stages {
		fmt.Fprintf(&b, "\n%s:\n", stage.Title)
		for _, stat := range stage.Stats {
			fmt.Fprintf(&b, "  %s: %s\n", stat.Key, r.value(stat.Value))
		}
	}
	if s.OutputPath != "" {
		fmt.Fprintf(&b, "\nOutput: %s (%s)\n", s.OutputPath, FormatSize(s.OutputSize))
	}
	fmt.Fprintf(&b, "\nExecution time: %.2f seconds\n%s\n", s.Duration.Seconds(), rule)

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) value(v any) string {
	switch n := v.(type) {
	case int:
		return r.p.Sprintf("%d", n)
	case float64:
		return r.p.Sprintf("%.1f", n)
	default:
		return fmt.Sprint(v)
	}
}

// FormatSize renders a byte count in binary megabytes, or kilobytes below one
func FormatSize(n int64) string {
	const kib, mib = 1024, 1024 * 1024
	if n >= mib {
		return fmt.Sprintf("%.2f MB", float64(n)/mib)
	}
	return fmt.Sprintf("%.1f KB", float64(n)/kib)
}
