package pipeline

import (
	"math"
	"slices"
	"time"

	"github.com/ppiankov/herdata/internal/model"
)

// RunInfo stamps a materialized dataset
type RunInfo struct {
	Generated time.Time
	RunID     string
	Sources   model.DataSources
}

// Materialize finalizes every person into an output record and computes the
// dataset totals and the letter timeline
func Materialize(st *State, info RunInfo) *model.Dataset {
	ds := &model.Dataset{
		Meta: model.DatasetMeta{
			Generated:    info.Generated,
			RunID:        info.RunID,
			TotalPersons: st.Len(),
			DataSources:  info.Sources,
		},
		Persons: make([]model.PersonRecord, 0, st.Len()),
	}

	years := make(map[int]int)
	for _, p := range st.Persons {
		if p.HasCorrespondence() {
			ds.Meta.WithCMIFData++
		}
		if len(p.Places) > 0 {
			ds.Meta.WithGeodata++
		}
		if p.GND != "" {
			ds.Meta.WithGND++
		}
		for _, y := range p.LetterYears {
			years[y]++
		}
		ds.Persons = append(ds.Persons, p.Record())
	}

	ds.Meta.GNDCoveragePct = roundedPercent(ds.Meta.WithGND, st.Len())
	ds.Meta.GeodataCoveragePct = roundedPercent(ds.Meta.WithGeodata, st.Len())

	keys := make([]int, 0, len(years))
	for y := range years {
		keys = append(keys, y)
	}
	slices.Sort(keys)
	ds.Meta.Timeline = make([]model.TimelineEntry, 0, len(keys))
	for _, y := range keys {
		ds.Meta.Timeline = append(ds.Meta.Timeline, model.TimelineEntry{Year: y, Count: years[y]})
	}
	return ds
}

// roundedPercent is part/total as a percentage rounded to one decimal
func roundedPercent(part, total int) float64 {
	return math.Round(model.Percent(part, total)*10) / 10
}
