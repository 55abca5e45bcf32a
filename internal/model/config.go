package model

import (
	"path/filepath"
	"time"
)

// Config holds every tunable of an analyze or build run
type Config struct {
	DataDir    string           `yaml:"data_dir" mapstructure:"data_dir"`
	CMIFFile   string           `yaml:"cmif_file" mapstructure:"cmif_file"`
	SNDB       SNDBConfig       `yaml:"sndb" mapstructure:"sndb"`
	Analyze    AnalyzeConfig    `yaml:"analyze" mapstructure:"analyze"`
	Build      BuildConfig      `yaml:"build" mapstructure:"build"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// SNDBConfig names the SNDB export tables, relative to Dir
type SNDBConfig struct {
	Dir               string `yaml:"dir" mapstructure:"dir"` // relative to data_dir unless absolute
	PersonMain        string `yaml:"person_main" mapstructure:"person_main"`
	PersonIndiv       string `yaml:"person_indiv" mapstructure:"person_indiv"`
	PersonDates       string `yaml:"person_dates" mapstructure:"person_dates"`
	PersonPlaces      string `yaml:"person_places" mapstructure:"person_places"`
	PersonOccupations string `yaml:"person_occupations" mapstructure:"person_occupations"`
	PlaceMain         string `yaml:"place_main" mapstructure:"place_main"`
	PlaceIndiv        string `yaml:"place_indiv" mapstructure:"place_indiv"`
}

// AnalyzeConfig controls the correspondence report
type AnalyzeConfig struct {
	Title         string `yaml:"title" mapstructure:"title"`
	ReportPath    string `yaml:"report_path" mapstructure:"report_path"` // empty: <data_dir>/analysis-report.md
	JSONPath      string `yaml:"json_path" mapstructure:"json_path"`     // empty: no JSON report
	IncludeFooter bool   `yaml:"include_footer" mapstructure:"include_footer"`

	TopSenders   int `yaml:"top_senders" mapstructure:"top_senders"`
	TopPlaces    int `yaml:"top_places" mapstructure:"top_places"`
	TopMentioned int `yaml:"top_mentioned" mapstructure:"top_mentioned"`
	TopWorks     int `yaml:"top_works" mapstructure:"top_works"`
	TopOrgs      int `yaml:"top_orgs" mapstructure:"top_orgs"`
	TopYears     int `yaml:"top_years" mapstructure:"top_years"`
	WorkTitleMax int `yaml:"work_title_max" mapstructure:"work_title_max"`

	EarlyBefore int `yaml:"early_before" mapstructure:"early_before"` // letters dated before this year are "early"
	LateFrom    int `yaml:"late_from" mapstructure:"late_from"`       // letters dated from this year on are "late"
}

// BuildConfig controls the enrichment pipeline output
type BuildConfig struct {
	OutputPath  string      `yaml:"output_path" mapstructure:"output_path"`
	SQLitePath  string      `yaml:"sqlite_path" mapstructure:"sqlite_path"` // empty: no SQLite export
	SexMarker   string      `yaml:"sex_marker" mapstructure:"sex_marker"`
	URLTemplate string      `yaml:"url_template" mapstructure:"url_template"` // %s is replaced by the SNDB id
	DataSources DataSources `yaml:"data_sources" mapstructure:"data_sources"`
}

// ValidationConfig holds the plausibility ranges checked after each stage.
// A zero maximum disables the upper bound.
type ValidationConfig struct {
	Enabled        bool    `yaml:"enabled" mapstructure:"enabled"`
	MinPersons     int     `yaml:"min_persons" mapstructure:"min_persons"`
	MaxPersons     int     `yaml:"max_persons" mapstructure:"max_persons"`
	MinGNDCoverage float64 `yaml:"min_gnd_coverage" mapstructure:"min_gnd_coverage"`
	MaxGNDCoverage float64 `yaml:"max_gnd_coverage" mapstructure:"max_gnd_coverage"`
	RequireMatches bool    `yaml:"require_matches" mapstructure:"require_matches"`
	MinGeoCoverage float64 `yaml:"min_geo_coverage" mapstructure:"min_geo_coverage"`
	MaxGeoCoverage float64 `yaml:"max_geo_coverage" mapstructure:"max_geo_coverage"`
}

// CacheConfig controls the decoded-table cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"` // empty: memory only
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// LogConfig controls the zerolog logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // auto, console, json
}

// DefaultConfig returns the configuration matching the 2025 SNDB/CMIF snapshot
func DefaultConfig() *Config {
	return &Config{
		DataDir:  "data",
		CMIFFile: "ra-cmif.xml",
		SNDB: SNDBConfig{
			Dir:               "SNDB",
			PersonMain:        "pers_koerp_main.xml",
			PersonIndiv:       "pers_koerp_indiv.xml",
			PersonDates:       "pers_koerp_datierungen.xml",
			PersonPlaces:      "pers_koerp_orte.xml",
			PersonOccupations: "pers_koerp_berufe.xml",
			PlaceMain:         "geo_main.xml",
			PlaceIndiv:        "geo_indiv.xml",
		},
		Analyze: AnalyzeConfig{
			Title:         "Deep Analysis Report: Letters to Goethe (1762-1824)",
			IncludeFooter: true,
			TopSenders:    30,
			TopPlaces:     20,
			TopMentioned:  20,
			TopWorks:      10,
			TopOrgs:       10,
			TopYears:      10,
			WorkTitleMax:  80,
			EarlyBefore:   1790,
			LateFrom:      1810,
		},
		Build: BuildConfig{
			OutputPath:  filepath.Join("docs", "data", "persons.json"),
			SexMarker:   "w",
			URLTemplate: "https://ores.klassik-stiftung.de/ords/f?p=900:2:::::P2_ID:%s",
			DataSources: DataSources{
				CMIF: "ra-cmif.xml (2025-03 snapshot)",
				SNDB: "SNDB export 2025-10",
			},
		},
		Validation: ValidationConfig{
			Enabled:        true,
			MinPersons:     3500,
			MaxPersons:     3700,
			MinGNDCoverage: 0.25,
			MaxGNDCoverage: 0.50,
			RequireMatches: true,
			MinGeoCoverage: 0.20,
			MaxGeoCoverage: 0.80,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// CMIFPath returns the location of the correspondence corpus
func (c *Config) CMIFPath() string {
	return c.resolve(c.CMIFFile)
}

// SNDBPath returns the location of one SNDB table file
func (c *Config) SNDBPath(table string) string {
	if filepath.IsAbs(table) {
		return table
	}
	return filepath.Join(c.resolve(c.SNDB.Dir), table)
}

// ReportPath returns where the Markdown analysis report is written
func (c *Config) ReportPath() string {
	if c.Analyze.ReportPath != "" {
		return c.Analyze.ReportPath
	}
	return filepath.Join(c.DataDir, "analysis-report.md")
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}
