package pipeline

import (
	"strings"

	"github.com/ppiankov/herdata/internal/model"
	"github.com/ppiankov/herdata/internal/sndb"
)

// SubjectTables holds the SNDB rows that select and describe persons
type SubjectTables struct {
	Names  []sndb.PersonName
	Indivs []sndb.PersonIndiv
	Dates  []sndb.LifeDate
}

// IdentifySubjects selects every person whose sex column equals sexMarker.
// A person listed twice in the indiv table keeps its first position and the
// GND of its last row. urlTemplate gets "%s" replaced by the SNDB id.
func IdentifySubjects(t SubjectTables, sexMarker, urlTemplate string) *State {
	names := make(map[string]string, len(t.Names))
	for _, n := range t.Names {
		if !n.Main {
			continue
		}
		names[n.ID] = n.DisplayName()
	}

	st := NewState()
	for _, row := range t.Indivs {
		if row.Sex != sexMarker {
			continue
		}
		name := names[row.ID]
		if name == "" {
			name = "Person " + row.ID
		}
		p, _ := st.Add(&model.Person{
			ID:   row.ID,
			Name: name,
			URL:  strings.ReplaceAll(urlTemplate, "%s", row.ID),
		})
		p.GND = row.GND
	}

	for _, d := range t.Dates {
		p, ok := st.Person(d.ID)
		if !ok || d.Year == "" {
			continue
		}
		switch d.Kind {
		case sndb.KindBirth:
			p.Dates.Birth = d.Year
		case sndb.KindDeath:
			p.Dates.Death = d.Year
		}
	}
	return st
}
