// Package sndb reads the XML tables of an SNDB export. Every table is a
// flat list of <ITEM> rows whose child elements are the columns.
package sndb

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ppiankov/herdata/internal/cache"
	"github.com/ppiankov/herdata/internal/util"
)

// Column names shared by several tables
const (
	ColID       = "ID"
	ColSeq      = "LFDNR" // 0 marks the main row, anything else is a variant
	ColKind     = "ART"
	MainSeq     = "0"
	itemElement = "ITEM"
)

// Row is one ITEM; a missing or empty column reads as ""
type Row map[string]string

// Get returns the trimmed value of a column
func (r Row) Get(col string) string {
	return strings.TrimSpace(r[col])
}

// GetOr returns the column value, or def when it is empty
func (r Row) GetOr(col, def string) string {
	if v := r.Get(col); v != "" {
		return v
	}
	return def
}

// ID returns the row's ID column
func (r Row) ID() string {
	return r.Get(ColID)
}

// IsMain reports whether the row is the main form (LFDNR missing or 0)
func (r Row) IsMain() bool {
	return r.GetOr(ColSeq, MainSeq) == MainSeq
}

type xmlItem struct {
	Fields []xmlField `xml:",any"`
}

type xmlField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// ReadTable decodes all ITEM rows from the XML table at path
func ReadTable(ctx context.Context, path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []Row
	err = util.EachElement(ctx, f, itemElement, func(dec *xml.Decoder, start xml.StartElement) error {
		var item xmlItem
		if err := dec.DecodeElement(&item, &start); err != nil {
			return fmt.Errorf("decode ITEM %d: %w", len(rows)+1, err)
		}
		row := make(Row, len(item.Fields))
		for _, field := range item.Fields {
			row[field.XMLName.Local] = field.Value
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Loader reads SNDB tables from one directory, through an optional cache
type Loader struct {
	dir   func(table string) string
	cache cache.Cache
	log   zerolog.Logger
}

// NewLoader creates a loader. resolve maps a table file name to its path.
func NewLoader(resolve func(table string) string, c cache.Cache, log zerolog.Logger) *Loader {
	return &Loader{dir: resolve, cache: c, log: log}
}

// Table returns the rows of one table file. Rows without an ID are dropped.
func (l *Loader) Table(ctx context.Context, table string) ([]Row, error) {
	path := l.dir(table)
	key, err := cache.FileKey("sndb", path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}

	rows, hit, err := cache.LoadJSON(l.cache, key, 0, l.log, func() ([]Row, error) {
		return ReadTable(ctx, path)
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}

	kept := rows[:0:0]
	for _, row := range rows {
		if row.ID() == "" {
			continue
		}
		kept = append(kept, row)
	}
	if dropped := len(rows) - len(kept); dropped > 0 {
		l.log.Debug().Str("table", table).Int("dropped", dropped).Msg("rows without ID skipped")
	}

	l.log.Info().Str("table", table).Int("rows", len(kept)).Bool("cached", hit).Msg("loaded table")
	return kept, nil
}
