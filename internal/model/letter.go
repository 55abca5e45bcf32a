package model

import (
	"strconv"
	"strings"
)

// Letter is one correspDesc entry of a CMIF corpus
type Letter struct {
	Sender   *Entity    `json:"sender,omitempty"` // first persName of the "sent" action
	Place    *Entity    `json:"place,omitempty"`  // first placeName of the "sent" action
	Date     LetterDate `json:"date"`
	Mentions Mentions   `json:"mentions"`
}

// Entity is a named reference carrying an optional authority URI
type Entity struct {
	Name string `json:"name,omitempty"`
	Ref  string `json:"ref,omitempty"`
}

// LetterDate holds the raw date attributes of the "sent" action
type LetterDate struct {
	When      string `json:"when,omitempty"`
	NotBefore string `json:"not_before,omitempty"`
	NotAfter  string `json:"not_after,omitempty"`
}

// DatePrecision classifies how a letter is dated
type DatePrecision int

const (
	DateNone  DatePrecision = iota // no usable date attributes
	DateExact                      // @when present
	DateRange                      // @notBefore and @notAfter present
)

func (p DatePrecision) String() string {
	switch p {
	case DateExact:
		return "exact"
	case DateRange:
		return "range"
	default:
		return "none"
	}
}

// Precision reports whether the date is exact, a bounded range or missing
func (d LetterDate) Precision() DatePrecision {
	if d.When != "" {
		return DateExact
	}
	if d.NotBefore != "" && d.NotAfter != "" {
		return DateRange
	}
	return DateNone
}

// ExactYear returns the year of @when
func (d LetterDate) ExactYear() (int, bool) {
	if d.When == "" {
		return 0, false
	}
	return ParseYear(d.When)
}

// Year returns the exact year, or the start year of a bounded range
func (d LetterDate) Year() (int, bool) {
	switch d.Precision() {
	case DateExact:
		return ParseYear(d.When)
	case DateRange:
		return ParseYear(d.NotBefore)
	default:
		return 0, false
	}
}

// ParseYear reads the leading four characters of an ISO-like date as a year.
// Years are not BCE-aware: "-044" parses as -44 and "0800" as 800.
func ParseYear(s string) (int, bool) {
	if len(s) > 4 {
		s = s[:4]
	}
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return year, true
}

// Mentions collects the cmif:* references of a letter's note
type Mentions struct {
	Persons       []Entity `json:"persons,omitempty"`        // cmif:mentionsPerson, text + @target
	Works         []string `json:"works,omitempty"`          // cmif:mentionsBibl text, may be empty
	Orgs          []string `json:"orgs,omitempty"`           // cmif:mentionsOrg text, may be empty
	Languages     []string `json:"languages,omitempty"`      // cmif:hasLanguage @target
	TEIFile       bool     `json:"tei_file,omitempty"`       // cmif:isAvailableAsTEIfile present
	PublishedWith []string `json:"published_with,omitempty"` // cmif:isPublishedWith @target
	TextBases     []string `json:"text_bases,omitempty"`     // cmif:hasTextBase @target
}

// Categories counts how many of person/work/organization mentions are present
func (m Mentions) Categories() int {
	n := 0
	if len(m.Persons) > 0 {
		n++
	}
	if len(m.Works) > 0 {
		n++
	}
	if len(m.Orgs) > 0 {
		n++
	}
	return n
}
