package model

import "time"

// Report is the statistical overview of one CMIF corpus
type Report struct {
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Generated time.Time `json:"generated"`

	Overview  Overview       `json:"overview"`
	Precision DatePrecisions `json:"precision"`
	Decades   []YearBucket   `json:"decades"`   // ascending by decade
	TopYears  []YearBucket   `json:"top_years"` // descending by count

	TopSenders  []Ranked    `json:"top_senders"`
	SenderStats SenderStats `json:"sender_stats"`
	TopPlaces   []Ranked    `json:"top_places"`

	Persons MentionStats `json:"persons"`
	Works   MentionStats `json:"works"`
	Orgs    MentionStats `json:"orgs"`

	Languages   []Ranked         `json:"languages"`
	Publication PublicationStats `json:"publication"`
	Network     NetworkStats     `json:"network"`
	Findings    KeyFindings      `json:"findings"`
	Authority   AuthorityStats   `json:"authority"`
}

// Overview holds the headline counts of the corpus
type Overview struct {
	TotalLetters  int  `json:"total_letters"`
	UniqueSenders int  `json:"unique_senders"`
	UniquePlaces  int  `json:"unique_places"`
	Dated         bool `json:"dated"` // false when no letter yields a year
	FirstYear     int  `json:"first_year,omitempty"`
	LastYear      int  `json:"last_year,omitempty"`
}

// SpanYears returns the width of the dated period
func (o Overview) SpanYears() int {
	return o.LastYear - o.FirstYear
}

// DatePrecisions splits dated letters into exact and range-dated
type DatePrecisions struct {
	Exact    int     `json:"exact"`
	ExactPct float64 `json:"exact_pct"`
	Range    int     `json:"range"`
	RangePct float64 `json:"range_pct"`
}

// YearBucket counts letters for one year or decade
type YearBucket struct {
	Year    int     `json:"year"` // first year of the decade for decade buckets
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Ranked is one entry of a frequency ranking
type Ranked struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// SenderStats describes how letters are distributed over senders
type SenderStats struct {
	Mean        float64 `json:"mean"`
	Median      int     `json:"median"`
	Max         int     `json:"max"`
	Single      int     `json:"single"`       // senders with exactly one letter
	TenPlus     int     `json:"ten_plus"`     // senders with 10 or more letters
	HundredPlus int     `json:"hundred_plus"` // senders with 100 or more letters
}

// MentionStats summarizes one mention category
type MentionStats struct {
	Total   int      `json:"total"`   // every person mention; works and orgs count named ones only
	Unique  int      `json:"unique"`  // distinct names
	Letters int      `json:"letters"` // letters with at least one mention of this kind
	Top     []Ranked `json:"top"`
}

// PublicationStats reports availability and edition coverage
type PublicationStats struct {
	TEIFile          int      `json:"tei_file"`
	TEIFilePct       float64  `json:"tei_file_pct"`
	Transcription    int      `json:"transcription"`
	TranscriptionPct float64  `json:"transcription_pct"`
	Abstract         int      `json:"abstract"`
	AbstractPct      float64  `json:"abstract_pct"`
	TextBases        []Ranked `json:"text_bases"`
}

// NetworkStats describes mention density across letters
type NetworkStats struct {
	AvgPersonMentions       float64 `json:"avg_person_mentions"` // over letters with any person mention
	WithoutPersonMentions   int     `json:"without_person_mentions"`
	WithoutPersonMentionPct float64 `json:"without_person_mention_pct"`
	RichLetters             int     `json:"rich_letters"` // letters with 2+ mention categories
	RichPct                 float64 `json:"rich_pct"`
}

// KeyFindings picks the headline facts of the report
type KeyFindings struct {
	PeakDecade   *YearBucket `json:"peak_decade,omitempty"`
	TopSender    *Ranked     `json:"top_sender,omitempty"`
	TopPlace     *Ranked     `json:"top_place,omitempty"`
	TopMentioned *Ranked     `json:"top_mentioned,omitempty"`
	TEIFilePct   float64     `json:"tei_file_pct"`
	EarlyBefore  int         `json:"early_before"`
	EarlyLetters int         `json:"early_letters"`
	LateFrom     int         `json:"late_from"`
	LateLetters  int         `json:"late_letters"`
}

// Coverage is the share of a category carrying an authority identifier
type Coverage struct {
	With    int     `json:"with"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// AuthorityStats reports authority-identifier coverage per entity kind
type AuthorityStats struct {
	SendersGND   Coverage `json:"senders_gnd"`
	PlacesGeo    Coverage `json:"places_geonames"`
	MentionedGND Coverage `json:"mentioned_gnd"`
}

// Percent returns part/total*100, or 0 for an empty total
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
