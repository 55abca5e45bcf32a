package pipeline

import "github.com/ppiankov/herdata/internal/model"

// State is the working set threaded through the stages of one run.
// Persons keep the order in which Identify selected them.
type State struct {
	Persons []*model.Person
	Match   model.MatchStats

	byID map[string]*model.Person
}

// NewState creates an empty state
func NewState() *State {
	return &State{byID: make(map[string]*model.Person)}
}

// Add appends p unless a person with the same id exists and returns the
// stored person
func (s *State) Add(p *model.Person) (*model.Person, bool) {
	if have, ok := s.byID[p.ID]; ok {
		return have, false
	}
	s.byID[p.ID] = p
	s.Persons = append(s.Persons, p)
	return p, true
}

// Person looks a person up by SNDB id
func (s *State) Person(id string) (*model.Person, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// Len returns the number of selected persons
func (s *State) Len() int {
	return len(s.Persons)
}
