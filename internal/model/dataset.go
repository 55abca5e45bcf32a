package model

import (
	"slices"
	"time"
)

// Dataset is the consolidated output consumed by the web visualization
type Dataset struct {
	Meta    DatasetMeta    `json:"meta"`
	Persons []PersonRecord `json:"persons"`
}

// DatasetMeta carries global totals, coverage and the letter timeline
type DatasetMeta struct {
	Generated          time.Time       `json:"generated"`
	RunID              string          `json:"run_id,omitempty"`
	TotalPersons       int             `json:"total_women"` // field name is fixed by the frontend
	WithCMIFData       int             `json:"with_cmif_data"`
	WithGeodata        int             `json:"with_geodata"`
	WithGND            int             `json:"with_gnd"`
	GNDCoveragePct     float64         `json:"gnd_coverage_pct"`
	GeodataCoveragePct float64         `json:"geodata_coverage_pct"`
	DataSources        DataSources     `json:"data_sources"`
	Timeline           []TimelineEntry `json:"timeline"`
}

// DataSources labels the input snapshots
type DataSources struct {
	CMIF string `json:"cmif" yaml:"cmif" mapstructure:"cmif"`
	SNDB string `json:"sndb" yaml:"sndb" mapstructure:"sndb"`
}

// TimelineEntry counts matched letters for one year
type TimelineEntry struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// PersonRecord is the finalized, immutable output form of a Person.
// Empty optional fields are dropped by the json tags.
type PersonRecord struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Role       Role       `json:"role"`
	Normierung Normierung `json:"normierung"`
	SNDBURL    string     `json:"sndb_url"`

	GND          string       `json:"gnd,omitempty"`
	Roles        []Role       `json:"roles,omitempty"`
	LetterCount  int          `json:"letter_count,omitempty"`
	LetterYears  []int        `json:"letter_years,omitempty"`
	MentionCount int          `json:"mention_count,omitempty"`
	Dates        LifeDates    `json:"dates,omitzero"`
	Places       []PlaceRef   `json:"places,omitempty"`
	Occupations  []Occupation `json:"occupations,omitempty"`
}

// Record finalizes a working Person into its output form
func (p *Person) Record() PersonRecord {
	rec := PersonRecord{
		ID:           p.ID,
		Name:         p.Name,
		Role:         p.SummaryRole(),
		Normierung:   p.Normierung(),
		SNDBURL:      p.URL,
		GND:          p.GND,
		Roles:        slices.Clone(p.Roles),
		LetterCount:  p.LetterCount,
		MentionCount: p.MentionCount,
		Dates:        p.Dates,
		Places:       slices.Clone(p.Places),
		Occupations:  slices.Clone(p.Occupations),
	}
	if len(p.LetterYears) > 0 {
		years := slices.Clone(p.LetterYears)
		slices.Sort(years)
		rec.LetterYears = slices.Compact(years)
	}
	return rec
}

// StageStat is one named statistic reported after a pipeline stage
type StageStat struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// StageSummary collects the statistics of one validated stage
type StageSummary struct {
	Stage string      `json:"stage"`
	Title string      `json:"title"`
	Stats []StageStat `json:"stats"`
}

// Add appends a statistic and returns the summary for chaining
func (s *StageSummary) Add(key string, value any) *StageSummary {
	s.Stats = append(s.Stats, StageStat{Key: key, Value: value})
	return s
}

// RunSummary is the compact report printed at the end of a pipeline run
type RunSummary struct {
	Stages     []StageSummary `json:"stages"`
	OutputPath string         `json:"output_path,omitempty"`
	OutputSize int64          `json:"output_size,omitempty"`
	Duration   time.Duration  `json:"duration"`
}

// MatchStats counts what the correspondence join resolved
type MatchStats struct {
	Letters           int // letters scanned
	SenderMatches     int
	MentionMatches    int
	UnmatchedSenders  int
	UnmatchedMentions int
	NameCollisions    int // lowercase names shared by several persons
}
