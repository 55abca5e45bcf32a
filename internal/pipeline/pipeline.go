// Package pipeline joins the SNDB person tables with a CMIF corpus in four
// validated stages and materializes the visualization dataset.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ppiankov/herdata/internal/model"
	"github.com/ppiankov/herdata/internal/sndb"
	"github.com/ppiankov/herdata/internal/validate"
)

// LetterSource loads a CMIF corpus
type LetterSource interface {
	Load(ctx context.Context, path string) ([]model.Letter, error)
}

// TableSource loads typed SNDB tables by file name
type TableSource interface {
	PersonNames(ctx context.Context, table string) ([]sndb.PersonName, error)
	PersonIndivs(ctx context.Context, table string) ([]sndb.PersonIndiv, error)
	LifeDates(ctx context.Context, table string) ([]sndb.LifeDate, error)
	PlaceLinks(ctx context.Context, table string) ([]sndb.PlaceLink, error)
	PlaceNames(ctx context.Context, table string) ([]sndb.PlaceName, error)
	PlaceCoords(ctx context.Context, table string) ([]sndb.PlaceCoord, error)
	Occupations(ctx context.Context, table string) ([]sndb.Occupation, error)
}

// Pipeline orchestrates one enrichment run
type Pipeline struct {
	cfg       *model.Config
	letters   LetterSource
	tables    TableSource
	validator *validate.Validator
	log       zerolog.Logger
	now       func() time.Time
	newRunID  func() string
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithClock replaces the generation timestamp source
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRunID replaces the run id generator
func WithRunID(fn func() string) Option {
	return func(p *Pipeline) { p.newRunID = fn }
}

// NewPipeline creates a pipeline with the given configuration and sources
func NewPipeline(cfg *model.Config, letters LetterSource, tables TableSource, log zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		letters:   letters,
		tables:    tables,
		validator: validate.NewValidator(cfg.Validation, log),
		log:       log,
		now:       time.Now,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is a validated run, ready to be written
type Result struct {
	Dataset *model.Dataset
	Summary model.RunSummary
	State   *State
}

// Run executes the four stages. Each stage is validated before the next
// starts; nothing is written here.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := p.now()
	res := &Result{}

	st, err := p.identify(ctx, res)
	if err != nil {
		return nil, err
	}
	if err := p.match(ctx, st, res); err != nil {
		return nil, err
	}
	if err := p.enrich(ctx, st, res); err != nil {
		return nil, err
	}

	ds := Materialize(st, RunInfo{
		Generated: start,
		RunID:     p.newRunID(),
		Sources:   p.cfg.Build.DataSources,
	})
	summary, err := p.validator.Materialize(ds, st.Len())
	if err != nil {
		return nil, fmt.Errorf("materialize: %w", err)
	}
	p.stageDone(&res.Summary, summary)

	res.Dataset = ds
	res.State = st
	res.Summary.Duration = p.now().Sub(start)
	return res, nil
}

func (p *Pipeline) identify(ctx context.Context, res *Result) (*State, error) {
	p.log.Info().Msg("identifying subjects")
	tables := p.cfg.SNDB

	var t SubjectTables
	var err error
	if t.Names, err = p.tables.PersonNames(ctx, tables.PersonMain); err != nil {
		return nil, fmt.Errorf("identify subjects: %w", err)
	}
	if t.Indivs, err = p.tables.PersonIndivs(ctx, tables.PersonIndiv); err != nil {
		return nil, fmt.Errorf("identify subjects: %w", err)
	}
	if t.Dates, err = p.tables.LifeDates(ctx, tables.PersonDates); err != nil {
		return nil, fmt.Errorf("identify subjects: %w", err)
	}

	st := IdentifySubjects(t, p.cfg.Build.SexMarker, p.cfg.Build.URLTemplate)
	summary, err := p.validator.Identify(st.Persons)
	if err != nil {
		return nil, fmt.Errorf("identify subjects: %w", err)
	}
	p.stageDone(&res.Summary, summary)
	return st, nil
}

func (p *Pipeline) match(ctx context.Context, st *State, res *Result) error {
	p.log.Info().Msg("matching correspondence")

	letters, err := p.letters.Load(ctx, p.cfg.CMIFPath())
	if err != nil {
		return fmt.Errorf("match letters: %w", err)
	}
	stats := MatchLetters(st, letters, p.log)

	summary, err := p.validator.Match(st.Persons, stats)
	if err != nil {
		return fmt.Errorf("match letters: %w", err)
	}
	p.stageDone(&res.Summary, summary)
	return nil
}

func (p *Pipeline) enrich(ctx context.Context, st *State, res *Result) error {
	p.log.Info().Msg("enriching biographies")
	tables := p.cfg.SNDB

	var t BiographyTables
	var err error
	if t.PlaceLinks, err = p.tables.PlaceLinks(ctx, tables.PersonPlaces); err != nil {
		return fmt.Errorf("enrich biography: %w", err)
	}
	if t.PlaceNames, err = p.tables.PlaceNames(ctx, tables.PlaceMain); err != nil {
		return fmt.Errorf("enrich biography: %w", err)
	}
	if t.PlaceCoords, err = p.tables.PlaceCoords(ctx, tables.PlaceIndiv); err != nil {
		return fmt.Errorf("enrich biography: %w", err)
	}
	if t.Occupations, err = p.tables.Occupations(ctx, tables.PersonOccupations); err != nil {
		return fmt.Errorf("enrich biography: %w", err)
	}

	stats := EnrichBiography(st, t)
	if stats.BadCoords > 0 || stats.UnresolvedLinks > 0 {
		p.log.Debug().
			Int("bad_coords", stats.BadCoords).
			Int("unresolved_links", stats.UnresolvedLinks).
			Msg("place rows skipped")
	}

	summary, err := p.validator.Enrich(st.Persons)
	if err != nil {
		return fmt.Errorf("enrich biography: %w", err)
	}
	p.stageDone(&res.Summary, summary)
	return nil
}

func (p *Pipeline) stageDone(run *model.RunSummary, s model.StageSummary) {
	run.Stages = append(run.Stages, s)
	ev := p.log.Info().Str("stage", s.Stage)
	for _, stat := range s.Stats {
		ev = ev.Interface(stat.Key, stat.Value)
	}
	ev.Msg("stage validated")
}
