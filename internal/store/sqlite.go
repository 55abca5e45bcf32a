// Package store mirrors a materialized dataset into a SQLite file
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/herdata/internal/model"
)

// Tables lists every table written by SaveDataset
var Tables = []string{"meta", "persons", "person_places", "person_occupations", "person_years", "timeline"}

// SQLiteStore writes datasets into one SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures the schema
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS persons (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		normierung TEXT NOT NULL,
		sndb_url TEXT NOT NULL,
		gnd TEXT,
		roles TEXT,
		letter_count INTEGER NOT NULL DEFAULT 0,
		mention_count INTEGER NOT NULL DEFAULT 0,
		birth TEXT,
		death TEXT
	);

	CREATE TABLE IF NOT EXISTS person_places (
		person_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		type TEXT NOT NULL,
		PRIMARY KEY (person_id, seq),
		FOREIGN KEY (person_id) REFERENCES persons(id)
	);

	CREATE TABLE IF NOT EXISTS person_occupations (
		person_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		PRIMARY KEY (person_id, seq),
		FOREIGN KEY (person_id) REFERENCES persons(id)
	);

	CREATE TABLE IF NOT EXISTS person_years (
		person_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		PRIMARY KEY (person_id, year),
		FOREIGN KEY (person_id) REFERENCES persons(id)
	);

	CREATE INDEX IF NOT EXISTS idx_person_years_year ON person_years(year);

	CREATE TABLE IF NOT EXISTS timeline (
		year INTEGER PRIMARY KEY,
		count INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveDataset replaces the stored dataset in one transaction
func (s *SQLiteStore) SaveDataset(ctx context.Context, ds *model.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// children first so foreign keys hold while clearing
	for i := len(Tables) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+Tables[i]); err != nil {
			return fmt.Errorf("clear %s: %w", Tables[i], err)
		}
	}

	if err := saveMeta(ctx, tx, ds.Meta); err != nil {
		return err
	}
	if err := savePersons(ctx, tx, ds.Persons); err != nil {
		return err
	}
	for _, e := range ds.Meta.Timeline {
		if _, err := tx.ExecContext(ctx, "INSERT INTO timeline (year, count) VALUES (?, ?)", e.Year, e.Count); err != nil {
			return fmt.Errorf("insert timeline %d: %w", e.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func saveMeta(ctx context.Context, tx *sql.Tx, m model.DatasetMeta) error {
	values := [][2]string{
		{"generated", m.Generated.Format(time.RFC3339)},
		{"run_id", m.RunID},
		{"total_women", strconv.Itoa(m.TotalPersons)},
		{"with_cmif_data", strconv.Itoa(m.WithCMIFData)},
		{"with_geodata", strconv.Itoa(m.WithGeodata)},
		{"with_gnd", strconv.Itoa(m.WithGND)},
		{"gnd_coverage_pct", strconv.FormatFloat(m.GNDCoveragePct, 'f', 1, 64)},
		{"geodata_coverage_pct", strconv.FormatFloat(m.GeodataCoveragePct, 'f', 1, 64)},
		{"source_cmif", m.DataSources.CMIF},
		{"source_sndb", m.DataSources.SNDB},
	}
	for _, kv := range values {
		if _, err := tx.ExecContext(ctx, "INSERT INTO meta (key, value) VALUES (?, ?)", kv[0], kv[1]); err != nil {
			return fmt.Errorf("insert meta %s: %w", kv[0], err)
		}
	}
	return nil
}

func savePersons(ctx context.Context, tx *sql.Tx, persons []model.PersonRecord) error {
	insertPerson, err := tx.PrepareContext(ctx, `
		INSERT INTO persons (id, position, name, role, normierung, sndb_url, gnd, roles,
			letter_count, mention_count, birth, death)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare persons: %w", err)
	}
	defer insertPerson.Close()

	insertPlace, err := tx.PrepareContext(ctx,
		"INSERT INTO person_places (person_id, seq, name, lat, lon, type) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare places: %w", err)
	}
	defer insertPlace.Close()

	insertOccupation, err := tx.PrepareContext(ctx,
		"INSERT INTO person_occupations (person_id, seq, name, type) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare occupations: %w", err)
	}
	defer insertOccupation.Close()

	insertYear, err := tx.PrepareContext(ctx, "INSERT INTO person_years (person_id, year) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare years: %w", err)
	}
	defer insertYear.Close()

	for i, p := range persons {
		roles := make([]string, len(p.Roles))
		for j, r := range p.Roles {
			roles[j] = string(r)
		}
		_, err := insertPerson.ExecContext(ctx, p.ID, i, p.Name, string(p.Role), string(p.Normierung), p.SNDBURL,
			nullable(p.GND), nullable(strings.Join(roles, ",")), p.LetterCount, p.MentionCount,
			nullable(p.Dates.Birth), nullable(p.Dates.Death))
		if err != nil {
			return fmt.Errorf("insert person %s: %w", p.ID, err)
		}

		for seq, pl := range p.Places {
			if _, err := insertPlace.ExecContext(ctx, p.ID, seq, pl.Name, pl.Lat, pl.Lon, pl.Type); err != nil {
				return fmt.Errorf("insert place of %s: %w", p.ID, err)
			}
		}
		for seq, o := range p.Occupations {
			if _, err := insertOccupation.ExecContext(ctx, p.ID, seq, o.Name, o.Type); err != nil {
				return fmt.Errorf("insert occupation of %s: %w", p.ID, err)
			}
		}
		for _, y := range p.LetterYears {
			if _, err := insertYear.ExecContext(ctx, p.ID, y); err != nil {
				return fmt.Errorf("insert year of %s: %w", p.ID, err)
			}
		}
	}
	return nil
}

// Counts returns the row count of every table
func (s *SQLiteStore) Counts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(Tables))
	for _, table := range Tables {
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// Meta returns the stored dataset metadata as key/value pairs
func (s *SQLiteStore) Meta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM meta")
	if err != nil {
		return nil, fmt.Errorf("query meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
