package model

// Role describes how a person relates to the correspondence corpus
type Role string

const (
	RoleSender    Role = "sender"    // matched as the sender of a letter
	RoleMentioned Role = "mentioned" // matched as a mentioned person
	RoleBoth      Role = "both"      // sender and mentioned
	RoleIndirect  Role = "indirect"  // database-only, no letter match
)

// Normierung tags whether a person is linked to the GND authority file
type Normierung string

const (
	NormGND  Normierung = "gnd"  // authority-linked
	NormSNDB Normierung = "sndb" // database-only
)

// Person is the working record of one subject during a pipeline run
type Person struct {
	ID   string
	Name string
	GND  string
	URL  string

	Dates       LifeDates
	Places      []PlaceRef
	Occupations []Occupation

	Roles        []Role
	LetterCount  int
	MentionCount int
	LetterYears  []int // one entry per matched letter, duplicates allowed
}

// LifeDates holds birth and death years as written in SNDB
type LifeDates struct {
	Birth string `json:"birth,omitempty"`
	Death string `json:"death,omitempty"`
}

// IsZero reports whether neither date is known
func (d LifeDates) IsZero() bool {
	return d.Birth == "" && d.Death == ""
}

// PlaceRef is a resolved place attached to a person
type PlaceRef struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Type string  `json:"type"`
}

// Occupation is one occupation label of a person
type Occupation struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// HasRole reports whether the person already carries role r
func (p *Person) HasRole(r Role) bool {
	for _, have := range p.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// AddRole appends r unless it is already present
func (p *Person) AddRole(r Role) {
	if !p.HasRole(r) {
		p.Roles = append(p.Roles, r)
	}
}

// SummaryRole collapses the role set into one label
func (p *Person) SummaryRole() Role {
	sender := p.HasRole(RoleSender)
	mentioned := p.HasRole(RoleMentioned)
	switch {
	case sender && mentioned:
		return RoleBoth
	case sender:
		return RoleSender
	case mentioned:
		return RoleMentioned
	default:
		return RoleIndirect
	}
}

// HasCorrespondence reports whether any letter matched the person
func (p *Person) HasCorrespondence() bool {
	return p.LetterCount > 0 || p.MentionCount > 0
}

// Normierung returns the authority-linkage tag of the person
func (p *Person) Normierung() Normierung {
	if p.GND != "" {
		return NormGND
	}
	return NormSNDB
}
