package validate

import (
	"fmt"

	"github.com/ppiankov/herdata/internal/model"
)

// minAuditYear is the first year the life-date order check trusts.
// Earlier values carry no era marker.
const minAuditYear = 1000

// Violation is one failed dataset check
type Violation struct {
	PersonID string `json:"person_id,omitempty"`
	Check    string `json:"check"`
	Message  string `json:"message"`
}

func (v Violation) String() string {
	if v.PersonID == "" {
		return fmt.Sprintf("%s: %s", v.Check, v.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", v.Check, v.PersonID, v.Message)
}

// Audit checks a materialized dataset and returns every violation found
func Audit(ds *model.Dataset) []Violation {
	var out []Violation
	add := func(id, check, format string, args ...any) {
		out = append(out, Violation{PersonID: id, Check: check, Message: fmt.Sprintf(format, args...)})
	}

	if ds.Meta.TotalPersons != len(ds.Persons) {
		add("", "meta_total", "meta total %d, dataset has %d persons", ds.Meta.TotalPersons, len(ds.Persons))
	}

	seen := make(map[string]bool, len(ds.Persons))
	withGND := 0
	for _, p := range ds.Persons {
		if seen[p.ID] {
			add(p.ID, "unique_ids", "duplicate id")
		}
		seen[p.ID] = true

		if p.Name == "" {
			add(p.ID, "names", "empty name")
		}

		if msg := roleMismatch(p); msg != "" {
			add(p.ID, "role_counts", "%s", msg)
		}

		switch {
		case p.GND != "" && p.Normierung != model.NormGND:
			add(p.ID, "normierung", "has GND %s but normierung %q", p.GND, p.Normierung)
		case p.GND == "" && p.Normierung != model.NormSNDB:
			add(p.ID, "normierung", "no GND but normierung %q", p.Normierung)
		}
		if p.GND != "" {
			withGND++
		}

		for _, pl := range p.Places {
			if pl.Lat < -90 || pl.Lat > 90 || pl.Lon < -180 || pl.Lon > 180 {
				add(p.ID, "coordinates", "place %q out of range (%g, %g)", pl.Name, pl.Lat, pl.Lon)
			}
		}

		birth, okBirth := model.ParseYear(p.Dates.Birth)
		death, okDeath := model.ParseYear(p.Dates.Death)
		if okBirth && okDeath && birth > minAuditYear && death > minAuditYear && birth > death {
			add(p.ID, "life_dates", "born %d after death %d", birth, death)
		}
	}

	if ds.Meta.WithGND != withGND {
		add("", "meta_with_gnd", "meta reports %d, dataset has %d", ds.Meta.WithGND, withGND)
	}
	return out
}

// roleMismatch describes how the summary role disagrees with the counts
func roleMismatch(p model.PersonRecord) string {
	sent, mentioned := p.LetterCount > 0, p.MentionCount > 0
	var want model.Role
	switch {
	case sent && mentioned:
		want = model.RoleBoth
	case sent:
		want = model.RoleSender
	case mentioned:
		want = model.RoleMentioned
	default:
		want = model.RoleIndirect
	}
	if p.Role != want {
		return fmt.Sprintf("role %q, counts imply %q (letters %d, mentions %d)", p.Role, want, p.LetterCount, p.MentionCount)
	}
	return ""
}
