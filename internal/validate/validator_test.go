package validate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/herdata/internal/model"
)

func testConfig() model.ValidationConfig {
	return model.ValidationConfig{
		Enabled:        true,
		MinPersons:     2,
		MaxPersons:     10,
		MinGNDCoverage: 0.25,
		MaxGNDCoverage: 0.75,
		RequireMatches: true,
		MinGeoCoverage: 0.20,
		MaxGeoCoverage: 0.80,
	}
}

func persons(n, withGND int) []*model.Person {
	out := make([]*model.Person, n)
	for i := range n {
		out[i] = &model.Person{ID: fmt.Sprint(i + 1), Name: fmt.Sprintf("Person %d", i+1)}
		if i < withGND {
			out[i].GND = fmt.Sprint(1000 + i)
		}
	}
	return out
}

func requireStageError(t *testing.T, err error, stage, check string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, stage, se.Stage)
	assert.Equal(t, check, se.Check)
}

func TestValidator_Identify(t *testing.T) {
	tests := []struct {
		persons   []*model.Person
		wantCheck string
		desc      string
	}{
		{persons: persons(4, 2), desc: "within bounds"},
		{persons: persons(1, 1), wantCheck: "person_count", desc: "too few persons"},
		{persons: persons(11, 5), wantCheck: "person_count", desc: "too many persons"},
		{persons: persons(4, 0), wantCheck: "gnd_coverage", desc: "coverage below minimum"},
		{persons: persons(4, 4), wantCheck: "gnd_coverage", desc: "coverage above maximum"},
	}

	v := NewValidator(testConfig(), zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			summary, err := v.Identify(tt.persons)
			assert.Equal(t, StageIdentify, summary.Stage)
			if tt.wantCheck == "" {
				assert.NoError(t, err)
				return
			}
			requireStageError(t, err, StageIdentify, tt.wantCheck)
		})
	}
}

func TestValidator_Identify_Invariants(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	v := NewValidator(cfg, zerolog.Nop())

	dup := persons(3, 1)
	dup[2].ID = dup[0].ID
	_, err := v.Identify(dup)
	requireStageError(t, err, StageIdentify, "unique_ids")

	unnamed := persons(3, 1)
	unnamed[1].Name = ""
	_, err = v.Identify(unnamed)
	requireStageError(t, err, StageIdentify, "names")

	_, err = v.Identify(persons(50, 0))
	assert.NoError(t, err, "ranges are skipped when disabled")
}

func TestValidator_Identify_UnboundedMax(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPersons = 0
	cfg.MaxGNDCoverage = 0
	_, err := NewValidator(cfg, zerolog.Nop()).Identify(persons(100, 100))
	assert.NoError(t, err)
}

func TestValidator_Identify_Summary(t *testing.T) {
	ps := persons(4, 2)
	ps[0].Dates = model.LifeDates{Birth: "1766"}
	summary, err := NewValidator(testConfig(), zerolog.Nop()).Identify(ps)
	require.NoError(t, err)

	assert.Equal(t, []model.StageStat{
		{Key: "persons", Value: 4},
		{Key: "with_gnd", Value: "2 (50.0%)"},
		{Key: "with_dates", Value: "1 (25.0%)"},
	}, summary.Stats)
}

func TestValidator_Match(t *testing.T) {
	v := NewValidator(testConfig(), zerolog.Nop())

	ps := persons(3, 0)
	_, err := v.Match(ps, model.MatchStats{Letters: 10})
	requireStageError(t, err, StageMatch, "matched_persons")

	ps[0].MentionCount = 1
	ps[0].AddRole(model.RoleMentioned)
	_, err = v.Match(ps, model.MatchStats{Letters: 10, MentionMatches: 1})
	requireStageError(t, err, StageMatch, "senders")

	ps[1].LetterCount = 2
	ps[1].AddRole(model.RoleSender)
	summary, err := v.Match(ps, model.MatchStats{Letters: 10, SenderMatches: 2, MentionMatches: 1})
	require.NoError(t, err)
	assert.Contains(t, summary.Stats, model.StageStat{Key: "matched_persons", Value: "2 (66.7%)"})

	cfg := testConfig()
	cfg.RequireMatches = false
	_, err = NewValidator(cfg, zerolog.Nop()).Match(persons(3, 0), model.MatchStats{})
	assert.NoError(t, err)
}

func TestValidator_Enrich(t *testing.T) {
	v := NewValidator(testConfig(), zerolog.Nop())
	place := model.PlaceRef{Name: "Weimar", Lat: 50.98, Lon: 11.33, Type: "Wirkungsort"}

	ps := persons(4, 0)
	_, err := v.Enrich(ps)
	requireStageError(t, err, StageEnrich, "geodata_coverage")

	ps[0].Places = []model.PlaceRef{place}
	ps[1].Places = []model.PlaceRef{place, place}
	summary, err := v.Enrich(ps)
	require.NoError(t, err)
	assert.Contains(t, summary.Stats, model.StageStat{Key: "places", Value: 3})

	for _, p := range ps {
		p.Places = []model.PlaceRef{place}
	}
	_, err = v.Enrich(ps)
	requireStageError(t, err, StageEnrich, "geodata_coverage")

	_, err = v.Enrich(nil)
	assert.NoError(t, err, "no persons skips the coverage check")
}

func TestValidator_Materialize(t *testing.T) {
	v := NewValidator(testConfig(), zerolog.Nop())
	valid := func() *model.Dataset {
		return &model.Dataset{
			Meta: model.DatasetMeta{TotalPersons: 2},
			Persons: []model.PersonRecord{
				{ID: "1", Name: "A", Role: model.RoleIndirect, Normierung: model.NormSNDB},
				{ID: "2", Name: "B", Role: model.RoleSender, Normierung: model.NormGND},
			},
		}
	}

	_, err := v.Materialize(valid(), 2)
	assert.NoError(t, err)

	_, err = v.Materialize(valid(), 3)
	requireStageError(t, err, StageMaterialize, "record_count")

	ds := valid()
	ds.Meta.TotalPersons = 5
	_, err = v.Materialize(ds, 2)
	requireStageError(t, err, StageMaterialize, "meta_total")

	ds = valid()
	ds.Persons[1].Normierung = ""
	_, err = v.Materialize(ds, 2)
	requireStageError(t, err, StageMaterialize, "required_fields")
	assert.Contains(t, err.Error(), "normierung")
}

func TestStageError_Message(t *testing.T) {
	err := NewStageError(StageIdentify, "person_count", 12, "expected between %d and %d persons", 3500, 3700)
	assert.Equal(t, "stage identify: check person_count failed (got 12): expected between 3500 and 3700 persons", err.Error())

	wrapped := fmt.Errorf("run pipeline: %w", err)
	assert.ErrorIs(t, wrapped, ErrValidation)
}
