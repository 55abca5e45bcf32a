// Package analyze computes the descriptive statistics of a CMIF corpus
package analyze

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/ppiankov/herdata/internal/authority"
	"github.com/ppiankov/herdata/internal/cmif"
	"github.com/ppiankov/herdata/internal/model"
	"github.com/ppiankov/herdata/internal/util"
)

const (
	richCategories   = 2
	progressEvery    = 1000
	truncationSuffix = "..."
)

// Analyzer turns a list of letters into a Report
type Analyzer struct {
	cfg       model.AnalyzeConfig
	authority *authority.Registry
	log       zerolog.Logger
	now       func() time.Time
}

// NewAnalyzer creates an analyzer using the GND and GeoNames extractors
func NewAnalyzer(cfg model.AnalyzeConfig, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		cfg:       cfg,
		authority: authority.NewRegistry(),
		log:       log,
		now:       time.Now,
	}
}

// tally accumulates everything a single pass over the corpus can observe
type tally struct {
	letters int

	senders   *Counter[string]
	places    *Counter[string]
	years     *Counter[int]
	decades   *Counter[int]
	persons   *Counter[string]
	works     *Counter[string]
	orgs      *Counter[string]
	languages *Counter[string]
	textBases *Counter[string]

	exact, ranged int

	senderRefs, sendersWithGND int
	placeRefs, placesWithGeo   int
	personMentions, personGND  int

	lettersWithPersons int
	lettersWithWorks   int
	lettersWithOrgs    int
	richLetters        int

	teiFiles, transcriptions, abstracts int
}

func newTally() *tally {
	return &tally{
		senders:   NewCounter[string](),
		places:    NewCounter[string](),
		years:     NewCounter[int](),
		decades:   NewCounter[int](),
		persons:   NewCounter[string](),
		works:     NewCounter[string](),
		orgs:      NewCounter[string](),
		languages: NewCounter[string](),
		textBases: NewCounter[string](),
	}
}

// Analyze runs one pass over letters and assembles the report
func (a *Analyzer) Analyze(letters []model.Letter, source string) *model.Report {
	t := newTally()
	progress := util.NewProgress(a.log, "analyzing letters", progressEvery)
	for i := range letters {
		a.observe(t, &letters[i])
		progress.Tick()
	}

	r := a.report(t)
	r.Source = source

	a.log.Info().
		Int("letters", r.Overview.TotalLetters).
		Int("senders", r.Overview.UniqueSenders).
		Int("places", r.Overview.UniquePlaces).
		Bool("dated", r.Overview.Dated).
		Msg("analysis complete")
	return r
}

func (a *Analyzer) observe(t *tally, l *model.Letter) {
	t.letters++

	if l.Sender != nil {
		t.senderRefs++
		if _, ok := a.authority.Extract(authority.SchemeGND, l.Sender.Ref); ok {
			t.sendersWithGND++
		}
		if name := strings.TrimSpace(l.Sender.Name); name != "" {
			t.senders.Add(name)
		}
	}

	if l.Place != nil {
		t.placeRefs++
		if _, ok := a.authority.Extract(authority.SchemeGeoNames, l.Place.Ref); ok {
			t.placesWithGeo++
		}
		if name := strings.TrimSpace(l.Place.Name); name != "" {
			t.places.Add(name)
		}
	}

	switch l.Date.Precision() {
	case model.DateExact:
		t.exact++
	case model.DateRange:
		t.ranged++
	}
	if year, ok := l.Date.Year(); ok {
		t.years.Add(year)
		t.decades.Add(decadeOf(year))
	}

	m := &l.Mentions
	if len(m.Persons) > 0 {
		t.lettersWithPersons++
	}
	for _, p := range m.Persons {
		t.personMentions++
		if _, ok := a.authority.Extract(authority.SchemeGND, p.Ref); ok {
			t.personGND++
		}
		if name := strings.TrimSpace(p.Name); name != "" {
			t.persons.Add(name)
		}
	}

	if len(m.Works) > 0 {
		t.lettersWithWorks++
	}
	for _, w := range m.Works {
		if w = strings.TrimSpace(w); w != "" {
			t.works.Add(w)
		}
	}

	if len(m.Orgs) > 0 {
		t.lettersWithOrgs++
	}
	for _, o := range m.Orgs {
		if o = strings.TrimSpace(o); o != "" {
			t.orgs.Add(o)
		}
	}

	if m.Categories() >= richCategories {
		t.richLetters++
	}

	for _, lang := range m.Languages {
		t.languages.Add(lang)
	}
	if m.TEIFile {
		t.teiFiles++
	}
	for _, target := range m.PublishedWith {
		switch cmif.PublicationKind(target) {
		case cmif.PublishedTranscription:
			t.transcriptions++
		case cmif.PublishedAbstract:
			t.abstracts++
		}
	}
	for _, tb := range m.TextBases {
		t.textBases.Add(tb)
	}
}

func (a *Analyzer) report(t *tally) *model.Report {
	total := t.letters
	r := &model.Report{
		Title:     a.cfg.Title,
		Generated: a.now(),
	}

	r.Overview = model.Overview{
		TotalLetters:  total,
		UniqueSenders: t.senders.Len(),
		UniquePlaces:  t.places.Len(),
	}
	if years := t.years.Keys(); len(years) > 0 {
		r.Overview.Dated = true
		r.Overview.FirstYear = slices.Min(years)
		r.Overview.LastYear = slices.Max(years)
	}

	r.Precision = model.DatePrecisions{
		Exact:    t.exact,
		ExactPct: model.Percent(t.exact, total),
		Range:    t.ranged,
		RangePct: model.Percent(t.ranged, total),
	}

	decades := t.decades.Keys()
	slices.Sort(decades)
	for _, d := range decades {
		r.Decades = append(r.Decades, bucket(d, t.decades.Get(d), total))
	}
	for _, e := range t.years.MostCommon(a.cfg.TopYears) {
		r.TopYears = append(r.TopYears, bucket(e.Key, e.Count, total))
	}

	r.TopSenders = ranked(t.senders, a.cfg.TopSenders, total)
	r.SenderStats = senderStats(t.senders.Values())
	r.TopPlaces = ranked(t.places, a.cfg.TopPlaces, total)

	r.Persons = model.MentionStats{
		Total:   t.personMentions,
		Unique:  t.persons.Len(),
		Letters: t.lettersWithPersons,
		Top:     ranked(t.persons, a.cfg.TopMentioned, total),
	}
	r.Works = model.MentionStats{
		Total:   t.works.Total(),
		Unique:  t.works.Len(),
		Letters: t.lettersWithWorks,
		Top:     ranked(t.works, a.cfg.TopWorks, total),
	}
	for i := range r.Works.Top {
		r.Works.Top[i].Name = truncate(r.Works.Top[i].Name, a.cfg.WorkTitleMax)
	}
	r.Orgs = model.MentionStats{
		Total:   t.orgs.Total(),
		Unique:  t.orgs.Len(),
		Letters: t.lettersWithOrgs,
		Top:     ranked(t.orgs, a.cfg.TopOrgs, total),
	}

	r.Languages = ranked(t.languages, 0, total)

	r.Publication = model.PublicationStats{
		TEIFile:          t.teiFiles,
		TEIFilePct:       model.Percent(t.teiFiles, total),
		Transcription:    t.transcriptions,
		TranscriptionPct: model.Percent(t.transcriptions, total),
		Abstract:         t.abstracts,
		AbstractPct:      model.Percent(t.abstracts, total),
		TextBases:        ranked(t.textBases, 0, total),
	}

	without := total - t.lettersWithPersons
	r.Network = model.NetworkStats{
		WithoutPersonMentions:   without,
		WithoutPersonMentionPct: model.Percent(without, total),
		RichLetters:             t.richLetters,
		RichPct:                 model.Percent(t.richLetters, total),
	}
	if t.lettersWithPersons > 0 {
		r.Network.AvgPersonMentions = float64(t.personMentions) / float64(t.lettersWithPersons)
	}

	r.Findings = a.findings(t, r)

	r.Authority = model.AuthorityStats{
		SendersGND:   coverage(t.sendersWithGND, t.senderRefs),
		PlacesGeo:    coverage(t.placesWithGeo, t.placeRefs),
		MentionedGND: coverage(t.personGND, t.personMentions),
	}
	return r
}

func (a *Analyzer) findings(t *tally, r *model.Report) model.KeyFindings {
	f := model.KeyFindings{
		TEIFilePct:  r.Publication.TEIFilePct,
		EarlyBefore: a.cfg.EarlyBefore,
		LateFrom:    a.cfg.LateFrom,
	}
	if peak := t.decades.MostCommon(1); len(peak) == 1 {
		b := bucket(peak[0].Key, peak[0].Count, t.letters)
		f.PeakDecade = &b
	}
	if len(r.TopSenders) > 0 {
		f.TopSender = &r.TopSenders[0]
	}
	if len(r.TopPlaces) > 0 {
		f.TopPlace = &r.TopPlaces[0]
	}
	if len(r.Persons.Top) > 0 {
		f.TopMentioned = &r.Persons.Top[0]
	}
	for _, e := range t.years.MostCommon(0) {
		if e.Key < a.cfg.EarlyBefore {
			f.EarlyLetters += e.Count
		}
		if e.Key >= a.cfg.LateFrom {
			f.LateLetters += e.Count
		}
	}
	return f
}

// senderStats describes the letters-per-sender distribution. The median is
// the upper middle element for an even number of senders.
func senderStats(counts []int) model.SenderStats {
	var s model.SenderStats
	if len(counts) == 0 {
		return s
	}
	sorted := slices.Clone(counts)
	slices.Sort(sorted)

	sum := 0
	for _, c := range sorted {
		sum += c
		switch {
		case c >= 100:
			s.HundredPlus++
			s.TenPlus++
		case c >= 10:
			s.TenPlus++
		case c == 1:
			s.Single++
		}
	}
	s.Mean = float64(sum) / float64(len(sorted))
	s.Median = sorted[len(sorted)/2]
	s.Max = sorted[len(sorted)-1]
	return s
}

func ranked(c *Counter[string], n, total int) []model.Ranked {
	top := c.MostCommon(n)
	if len(top) == 0 {
		return nil
	}
	out := make([]model.Ranked, len(top))
	for i, e := range top {
		out[i] = model.Ranked{Name: e.Key, Count: e.Count, Percent: model.Percent(e.Count, total)}
	}
	return out
}

func bucket(year, count, total int) model.YearBucket {
	return model.YearBucket{Year: year, Count: count, Percent: model.Percent(count, total)}
}

func coverage(with, total int) model.Coverage {
	return model.Coverage{With: with, Total: total, Percent: model.Percent(with, total)}
}

// decadeOf floors year to its decade, also for negative years
func decadeOf(year int) int {
	d := year / 10 * 10
	if year < 0 && year%10 != 0 {
		d -= 10
	}
	return d
}

// truncate shortens s to max runes plus an ellipsis; max <= 0 disables it
func truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + truncationSuffix
}
