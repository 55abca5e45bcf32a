package pipeline

import (
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ppiankov/herdata/internal/authority"
	"github.com/ppiankov/herdata/internal/model"
	"github.com/ppiankov/herdata/internal/util"
)

const matchProgressEvery = 1000

// resolver maps letter references onto selected persons
type resolver struct {
	byGND  map[string]*model.Person
	byName map[string]*model.Person
	lower  cases.Caser
}

// newResolver indexes persons by GND and lowercase name. Later persons win
// a shared name; such collisions are counted and logged.
func newResolver(persons []*model.Person, log zerolog.Logger) (*resolver, int) {
	r := &resolver{
		byGND:  make(map[string]*model.Person),
		byName: make(map[string]*model.Person, len(persons)),
		lower:  cases.Lower(language.Und),
	}
	collisions := 0
	for _, p := range persons {
		if p.GND != "" {
			r.byGND[p.GND] = p
		}
		key := r.key(p.Name)
		if prev, ok := r.byName[key]; ok && prev.ID != p.ID {
			collisions++
			log.Warn().
				Str("name", p.Name).
				Str("replaced", prev.ID).
				Str("by", p.ID).
				Msg("name shared by several persons, fallback match uses the later one")
		}
		r.byName[key] = p
	}
	return r, collisions
}

func (r *resolver) key(name string) string {
	return r.lower.String(name)
}

// resolve tries the GND of ref first and falls back to the exact lowercase name
func (r *resolver) resolve(e model.Entity) (*model.Person, bool) {
	if id, ok := authority.GND(e.Ref); ok && id != "" {
		if p, ok := r.byGND[id]; ok {
			return p, true
		}
	}
	if strings.TrimSpace(e.Name) == "" {
		return nil, false
	}
	p, ok := r.byName[r.key(e.Name)]
	return p, ok
}

// MatchLetters credits senders and mentioned persons of every letter to the
// selected persons. Only an exact @when contributes a letter year.
func MatchLetters(st *State, letters []model.Letter, log zerolog.Logger) model.MatchStats {
	r, collisions := newResolver(st.Persons, log)
	stats := model.MatchStats{Letters: len(letters), NameCollisions: collisions}
	progress := util.NewProgress(log, "matching letters", matchProgressEvery)

	for i := range letters {
		l := &letters[i]
		year, dated := l.Date.ExactYear()

		if l.Sender != nil {
			if p, ok := r.resolve(*l.Sender); ok {
				p.LetterCount++
				p.AddRole(model.RoleSender)
				if dated {
					p.LetterYears = append(p.LetterYears, year)
				}
				stats.SenderMatches++
			} else {
				stats.UnmatchedSenders++
			}
		}

		for _, m := range l.Mentions.Persons {
			p, ok := r.resolve(m)
			if !ok {
				stats.UnmatchedMentions++
				continue
			}
			p.MentionCount++
			p.AddRole(model.RoleMentioned)
			if dated {
				p.LetterYears = append(p.LetterYears, year)
			}
			stats.MentionMatches++
		}
		progress.Tick()
	}

	st.Match = stats
	return stats
}
