package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/herdata/internal/model"
)

func sampleDataset() *model.Dataset {
	return &model.Dataset{
		Meta: model.DatasetMeta{
			Generated:      time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
			RunID:          "run-1",
			TotalPersons:   2,
			WithGND:        1,
			GNDCoveragePct: 50,
			Timeline:       []model.TimelineEntry{{Year: 1805, Count: 2}, {Year: 1810, Count: 1}},
		},
		Persons: []model.PersonRecord{
			{
				ID: "1", Name: "Anna Amalia", Role: model.RoleBoth, Normierung: model.NormGND, GND: "118502794",
				Roles:       []model.Role{model.RoleSender, model.RoleMentioned},
				LetterCount: 2, MentionCount: 1, LetterYears: []int{1805, 1810},
				Dates:       model.LifeDates{Birth: "1739", Death: "1807"},
				Places: []model.PlaceRef{
					{Name: "Wolfenbüttel", Lat: 52.16, Lon: 10.53, Type: "Geburtsort"},
					{Name: "Weimar", Lat: 50.98, Lon: 11.33, Type: "Sterbeort"},
				},
				Occupations: []model.Occupation{{Name: "Herzogin", Type: "Beruf"}},
			},
			{ID: "2", Name: "Person 2", Role: model.RoleIndirect, Normierung: model.NormSNDB},
		},
	}
}

func TestSQLiteStore_SaveDataset(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "herdata.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveDataset(ctx, sampleDataset()))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"meta":               10,
		"persons":            2,
		"person_places":      2,
		"person_occupations": 1,
		"person_years":       2,
		"timeline":           2,
	}, counts)

	meta, err := s.Meta(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", meta["total_women"])
	assert.Equal(t, "50.0", meta["gnd_coverage_pct"])
	assert.Equal(t, "run-1", meta["run_id"])
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "herdata.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)

	require.NoError(t, s.SaveDataset(ctx, sampleDataset()))
	smaller := sampleDataset()
	smaller.Persons = smaller.Persons[1:]
	smaller.Meta.Timeline = nil
	require.NoError(t, s.SaveDataset(ctx, smaller))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	counts, err := reopened.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["persons"])
	assert.Zero(t, counts["person_places"])
	assert.Zero(t, counts["timeline"])
}

func TestSQLiteStore_DuplicateIDRollsBack(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "herdata.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveDataset(ctx, sampleDataset()))

	bad := sampleDataset()
	bad.Persons[1].ID = bad.Persons[0].ID
	err = s.SaveDataset(ctx, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert person 1")

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts["persons"], "previous contents survive a failed save")
}
