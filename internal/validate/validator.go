// Package validate checks pipeline results against plausibility ranges and
// the invariants of the published dataset.
package validate

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ppiankov/herdata/internal/model"
)

// Pipeline stages, in execution order
const (
	StageIdentify    = "identify"
	StageMatch       = "match"
	StageEnrich      = "enrich"
	StageMaterialize = "materialize"
)

var stageTitles = map[string]string{
	StageIdentify:    "Phase 1: Identify subjects",
	StageMatch:       "Phase 2: Match correspondence",
	StageEnrich:      "Phase 3: Enrich biography",
	StageMaterialize: "Phase 4: Materialize output",
}

// Validator runs the checks that follow each pipeline stage
type Validator struct {
	cfg model.ValidationConfig
	log zerolog.Logger
}

// NewValidator creates a validator. Range checks only run when cfg.Enabled;
// structural invariants are always checked.
func NewValidator(cfg model.ValidationConfig, log zerolog.Logger) *Validator {
	return &Validator{cfg: cfg, log: log}
}

func newSummary(stage string) model.StageSummary {
	return model.StageSummary{Stage: stage, Title: stageTitles[stage]}
}

// Identify validates the selected persons
func (v *Validator) Identify(persons []*model.Person) (model.StageSummary, error) {
	s := newSummary(StageIdentify)
	total := len(persons)

	var withGND, withDates int
	seen := make(map[string]bool, total)
	for _, p := range persons {
		if seen[p.ID] {
			return s, NewStageError(StageIdentify, "unique_ids", p.ID, "person id appears twice")
		}
		seen[p.ID] = true
		if p.Name == "" {
			return s, NewStageError(StageIdentify, "names", p.ID, "person has no display name")
		}
		if p.GND != "" {
			withGND++
		}
		if !p.Dates.IsZero() {
			withDates++
		}
	}

	s.Add("persons", total).
		Add("with_gnd", share(withGND, total)).
		Add("with_dates", share(withDates, total))

	if !v.cfg.Enabled {
		return s, nil
	}
	if total < v.cfg.MinPersons || (v.cfg.MaxPersons > 0 && total > v.cfg.MaxPersons) {
		return s, NewStageError(StageIdentify, "person_count", total,
			"expected between %d and %s persons", v.cfg.MinPersons, upper(v.cfg.MaxPersons))
	}
	if total > 0 {
		cov := float64(withGND) / float64(total)
		if err := v.checkRange(StageIdentify, "gnd_coverage", cov, v.cfg.MinGNDCoverage, v.cfg.MaxGNDCoverage); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Match validates the correspondence join
func (v *Validator) Match(persons []*model.Person, stats model.MatchStats) (model.StageSummary, error) {
	s := newSummary(StageMatch)
	total := len(persons)

	var matched, senders, mentioned, both int
	for _, p := range persons {
		if p.HasCorrespondence() {
			matched++
		}
		switch p.SummaryRole() {
		case model.RoleSender:
			senders++
		case model.RoleMentioned:
			mentioned++
		case model.RoleBoth:
			both++
		}
	}

	s.Add("letters", stats.Letters).
		Add("sender_matches", stats.SenderMatches).
		Add("mention_matches", stats.MentionMatches).
		Add("matched_persons", share(matched, total)).
		Add("senders", senders).
		Add("mentioned", mentioned).
		Add("both", both).
		Add("name_collisions", stats.NameCollisions)

	if !v.cfg.Enabled || !v.cfg.RequireMatches {
		return s, nil
	}
	if matched == 0 {
		return s, NewStageError(StageMatch, "matched_persons", matched, "no person matched any letter")
	}
	if senders+both == 0 {
		return s, NewStageError(StageMatch, "senders", senders+both, "no person matched as a sender")
	}
	return s, nil
}

// Enrich validates the attached places and occupations
func (v *Validator) Enrich(persons []*model.Person) (model.StageSummary, error) {
	s := newSummary(StageEnrich)
	total := len(persons)

	var withPlaces, places, withOccupations, occupations int
	for _, p := range persons {
		if len(p.Places) > 0 {
			withPlaces++
			places += len(p.Places)
		}
		if len(p.Occupations) > 0 {
			withOccupations++
			occupations += len(p.Occupations)
		}
	}

	s.Add("with_geodata", share(withPlaces, total)).
		Add("places", places).
		Add("with_occupations", share(withOccupations, total)).
		Add("occupations", occupations)

	if !v.cfg.Enabled || total == 0 {
		return s, nil
	}
	cov := float64(withPlaces) / float64(total)
	if err := v.checkRange(StageEnrich, "geodata_coverage", cov, v.cfg.MinGeoCoverage, v.cfg.MaxGeoCoverage); err != nil {
		return s, err
	}
	return s, nil
}

// Materialize validates the output dataset against the person count of the run
func (v *Validator) Materialize(ds *model.Dataset, persons int) (model.StageSummary, error) {
	s := newSummary(StageMaterialize)

	s.Add("records", len(ds.Persons)).
		Add("with_cmif_data", share(ds.Meta.WithCMIFData, ds.Meta.TotalPersons)).
		Add("with_geodata", fmt.Sprintf("%d (%.1f%%)", ds.Meta.WithGeodata, ds.Meta.GeodataCoveragePct)).
		Add("with_gnd", fmt.Sprintf("%d (%.1f%%)", ds.Meta.WithGND, ds.Meta.GNDCoveragePct)).
		Add("timeline_years", len(ds.Meta.Timeline))

	if len(ds.Persons) != persons {
		return s, NewStageError(StageMaterialize, "record_count", len(ds.Persons),
			"expected %d records, one per person", persons)
	}
	if ds.Meta.TotalPersons != len(ds.Persons) {
		return s, NewStageError(StageMaterialize, "meta_total", ds.Meta.TotalPersons,
			"meta total differs from %d records", len(ds.Persons))
	}
	for i, p := range ds.Persons {
		if missing := missingField(p); missing != "" {
			return s, NewStageError(StageMaterialize, "required_fields", i,
				"record %q has no %s", p.ID, missing)
		}
	}
	return s, nil
}

func missingField(p model.PersonRecord) string {
	switch {
	case p.ID == "":
		return "id"
	case p.Name == "":
		return "name"
	case p.Role == "":
		return "role"
	case p.Normierung == "":
		return "normierung"
	default:
		return ""
	}
}

func (v *Validator) checkRange(stage, check string, got, lo, hi float64) error {
	if got < lo || (hi > 0 && got > hi) {
		hiText := "unbounded"
		if hi > 0 {
			hiText = fmt.Sprintf("%.0f%%", hi*100)
		}
		return NewStageError(stage, check, fmt.Sprintf("%.1f%%", got*100),
			"expected between %.0f%% and %s", lo*100, hiText)
	}
	v.log.Debug().Str("stage", stage).Str("check", check).Float64("value", got).Msg("check passed")
	return nil
}

func share(n, total int) string {
	return fmt.Sprintf("%d (%.1f%%)", n, model.Percent(n, total))
}

func upper(max int) string {
	if max <= 0 {
		return "unbounded"
	}
	return fmt.Sprint(max)
}
