// Package render writes reports and datasets to Markdown, JSON and the
// console.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ppiankov/herdata/internal/model"
	"github.com/ppiankov/herdata/internal/util"
)

// Renderer formats reports and datasets
type Renderer struct {
	includeFooter bool
	p             *message.Printer
}

// NewRenderer creates a renderer; numbers use English digit grouping
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{
		includeFooter: includeFooter,
		p:             message.NewPrinter(language.English),
	}
}

// WriteReportMarkdown renders the report to path, replacing it atomically
func (r *Renderer) WriteReportMarkdown(rep *model.Report, path string) (int64, error) {
	n, err := util.WriteFileAtomic(path, func(w io.Writer) error {
		return r.RenderReportMarkdown(w, rep)
	})
	if err != nil {
		return 0, fmt.Errorf("write report %s: %w", path, err)
	}
	return n, nil
}

// WriteReportJSON writes the report as indented JSON
func (r *Renderer) WriteReportJSON(rep *model.Report, path string) (int64, error) {
	n, err := util.WriteFileAtomic(path, func(w io.Writer) error {
		return encodeJSON(w, rep)
	})
	if err != nil {
		return 0, fmt.Errorf("write report %s: %w", path, err)
	}
	return n, nil
}

// WriteDataset writes the visualization dataset and returns its size
func (r *Renderer) WriteDataset(ds *model.Dataset, path string) (int64, error) {
	n, err := util.WriteFileAtomic(path, func(w io.Writer) error {
		return encodeJSON(w, ds)
	})
	if err != nil {
		return 0, fmt.Errorf("write dataset %s: %w", path, err)
	}
	return n, nil
}

// encodeJSON writes v with two-space indentation and unescaped non-ASCII
// and HTML characters
func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
