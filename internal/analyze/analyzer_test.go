package analyze

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/herdata/internal/model"
)

func TestCounter_MostCommonKeepsFirstSeenOrderOnTies(t *testing.T) {
	c := NewCounter[string]()
	for _, k := range []string{"b", "a", "c", "a", "c", "d"} {
		c.Add(k)
	}

	want := []Entry[string]{{"a", 2}, {"c", 2}, {"b", 1}, {"d", 1}}
	if diff := cmp.Diff(want, c.MostCommon(0)); diff != "" {
		t.Errorf("MostCommon(0) mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, want[:2], c.MostCommon(2))
	assert.Len(t, c.MostCommon(10), 4)

	assert.Equal(t, 4, c.Len())
	assert.Equal(t, 6, c.Total())
	assert.Equal(t, 0, c.Get("missing"))
	assert.Equal(t, []string{"b", "a", "c", "d"}, c.Keys())
	assert.Equal(t, []int{1, 2, 2, 1}, c.Values())
}

func TestCounter_AddN(t *testing.T) {
	c := NewCounter[int]()
	c.AddN(1805, 3)
	c.Add(1805)
	assert.Equal(t, 4, c.Get(1805))
	assert.Equal(t, 4, c.Total())
}

func newTestAnalyzer(cfg model.AnalyzeConfig) *Analyzer {
	a := NewAnalyzer(cfg, zerolog.Nop())
	a.now = func() time.Time { return time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC) }
	return a
}

func sampleLetters() []model.Letter {
	return []model.Letter{
		{
			Sender: &model.Entity{Name: "Anna Amalia", Ref: "http://d-nb.info/gnd/118502794"},
			Place:  &model.Entity{Name: "Weimar", Ref: "https://www.geonames.org/2812482"},
			Date:   model.LetterDate{When: "1805-03-01"},
			Mentions: model.Mentions{
				Persons:       []model.Entity{{Name: "Schiller", Ref: "http://d-nb.info/gnd/118607626"}, {Name: "Herder"}},
				Works:         []string{"Faust"},
				Languages:     []string{"de"},
				TEIFile:       true,
				PublishedWith: []string{"cmif:withTranscription"},
				TextBases:     []string{"print"},
			},
		},
		{
			Sender: &model.Entity{Name: "Anna Amalia"},
			Place:  &model.Entity{Name: "Jena"},
			Date:   model.LetterDate{NotBefore: "1799-01-01", NotAfter: "1800-01-01"},
			Mentions: model.Mentions{
				Works: []string{"Faust"},
				Orgs:  []string{"Freies Deutsches Hochstift"},
			},
		},
		{
			Sender:   &model.Entity{Name: "Bettina"},
			Mentions: model.Mentions{Persons: []model.Entity{{Name: "Schiller"}}},
		},
		{
			Date: model.LetterDate{When: "1812"},
			Mentions: model.Mentions{
				Languages:     []string{"fr"},
				PublishedWith: []string{"cmif:withAbstract"},
			},
		},
	}
}

func TestAnalyze(t *testing.T) {
	cfg := model.DefaultConfig().Analyze
	cfg.EarlyBefore = 1800
	r := newTestAnalyzer(cfg).Analyze(sampleLetters(), "ra-cmif.xml")

	assert.Equal(t, "ra-cmif.xml", r.Source)
	assert.Equal(t, cfg.Title, r.Title)

	assert.Equal(t, model.Overview{
		TotalLetters:  4,
		UniqueSenders: 2,
		UniquePlaces:  2,
		Dated:         true,
		FirstYear:     1799,
		LastYear:      1812,
	}, r.Overview)
	assert.Equal(t, 13, r.Overview.SpanYears())

	assert.Equal(t, model.DatePrecisions{Exact: 2, ExactPct: 50, Range: 1, RangePct: 25}, r.Precision)

	wantDecades := []model.YearBucket{
		{Year: 1790, Count: 1, Percent: 25},
		{Year: 1800, Count: 1, Percent: 25},
		{Year: 1810, Count: 1, Percent: 25},
	}
	if diff := cmp.Diff(wantDecades, r.Decades); diff != "" {
		t.Errorf("decades mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, r.TopYears, 3)
	assert.Equal(t, []int{1805, 1799, 1812}, []int{r.TopYears[0].Year, r.TopYears[1].Year, r.TopYears[2].Year})

	assert.Equal(t, []model.Ranked{
		{Name: "Anna Amalia", Count: 2, Percent: 50},
		{Name: "Bettina", Count: 1, Percent: 25},
	}, r.TopSenders)
	assert.Equal(t, model.SenderStats{Mean: 1.5, Median: 2, Max: 2, Single: 1}, r.SenderStats)

	assert.Equal(t, 3, r.Persons.Total)
	assert.Equal(t, 2, r.Persons.Unique)
	assert.Equal(t, 2, r.Persons.Letters)
	assert.Equal(t, "Schiller", r.Persons.Top[0].Name)

	assert.Equal(t, 2, r.Works.Total)
	assert.Equal(t, 1, r.Works.Unique)
	assert.Equal(t, 2, r.Works.Letters)
	assert.Equal(t, 1, r.Orgs.Letters)

	assert.Len(t, r.Languages, 2)
	assert.Equal(t, 1, r.Publication.TEIFile)
	assert.Equal(t, 25.0, r.Publication.TEIFilePct)
	assert.Equal(t, 1, r.Publication.Transcription)
	assert.Equal(t, 1, r.Publication.Abstract)
	assert.Equal(t, []model.Ranked{{Name: "print", Count: 1, Percent: 25}}, r.Publication.TextBases)

	assert.Equal(t, model.NetworkStats{
		AvgPersonMentions:       1.5,
		WithoutPersonMentions:   2,
		WithoutPersonMentionPct: 50,
		RichLetters:             2,
		RichPct:                 50,
	}, r.Network)

	require.NotNil(t, r.Findings.PeakDecade)
	assert.Equal(t, 1800, r.Findings.PeakDecade.Year, "ties resolve to the first decade seen")
	assert.Equal(t, "Anna Amalia", r.Findings.TopSender.Name)
	assert.Equal(t, "Weimar", r.Findings.TopPlace.Name)
	assert.Equal(t, "Schiller", r.Findings.TopMentioned.Name)
	assert.Equal(t, 1, r.Findings.EarlyLetters)
	assert.Equal(t, 1, r.Findings.LateLetters)

	assert.Equal(t, 1, r.Authority.SendersGND.With)
	assert.Equal(t, 3, r.Authority.SendersGND.Total)
	assert.InDelta(t, 33.33, r.Authority.SendersGND.Percent, 0.01)
	assert.Equal(t, model.Coverage{With: 1, Total: 2, Percent: 50}, r.Authority.PlacesGeo)
	assert.Equal(t, 1, r.Authority.MentionedGND.With)
	assert.Equal(t, 3, r.Authority.MentionedGND.Total)
}

func TestAnalyze_UndatedLettersOnlyCountInTotals(t *testing.T) {
	letters := []model.Letter{
		{Sender: &model.Entity{Name: "A"}},
		{Sender: &model.Entity{Name: "B"}, Date: model.LetterDate{NotBefore: "1800"}},
	}
	r := newTestAnalyzer(model.DefaultConfig().Analyze).Analyze(letters, "")

	assert.Equal(t, 2, r.Overview.TotalLetters)
	assert.False(t, r.Overview.Dated)
	assert.Zero(t, r.Overview.FirstYear)
	assert.Empty(t, r.Decades)
	assert.Empty(t, r.TopYears)
	assert.Equal(t, model.DatePrecisions{}, r.Precision)
	assert.Nil(t, r.Findings.PeakDecade)
}

func TestAnalyze_EmptyCorpus(t *testing.T) {
	r := newTestAnalyzer(model.DefaultConfig().Analyze).Analyze(nil, "")

	assert.Zero(t, r.Overview.TotalLetters)
	assert.Equal(t, model.SenderStats{}, r.SenderStats)
	assert.Zero(t, r.Network.AvgPersonMentions)
	assert.Nil(t, r.Findings.TopSender)
	assert.Zero(t, r.Authority.SendersGND.Percent)
}

func TestAnalyze_SkipsEmptyNames(t *testing.T) {
	letters := []model.Letter{
		{Sender: &model.Entity{Name: "  "}, Place: &model.Entity{Ref: "https://www.geonames.org/1"}},
		{Sender: &model.Entity{Name: "A"}, Mentions: model.Mentions{Works: []string{""}, Orgs: []string{""}}},
	}
	r := newTestAnalyzer(model.DefaultConfig().Analyze).Analyze(letters, "")

	assert.Equal(t, 1, r.Overview.UniqueSenders)
	assert.Equal(t, 0, r.Overview.UniquePlaces)
	assert.Equal(t, 2, r.Authority.SendersGND.Total, "senders without a name still count for coverage")
	assert.Equal(t, 1, r.Authority.PlacesGeo.With)
	assert.Equal(t, 0, r.Works.Total)
	assert.Equal(t, 1, r.Works.Letters)
	assert.Equal(t, 1, r.Network.RichLetters)
}

func TestAnalyze_TruncatesWorkTitles(t *testing.T) {
	long := strings.Repeat("ä", 100)
	letters := []model.Letter{{Mentions: model.Mentions{Works: []string{long, "Faust"}}}}
	r := newTestAnalyzer(model.DefaultConfig().Analyze).Analyze(letters, "")

	require.Len(t, r.Works.Top, 2)
	assert.Equal(t, strings.Repeat("ä", 80)+"...", r.Works.Top[0].Name)
	assert.Equal(t, "Faust", r.Works.Top[1].Name)
}

func TestSenderStats(t *testing.T) {
	tests := []struct {
		counts []int
		want   model.SenderStats
		desc   string
	}{
		{
			counts: nil,
			want:   model.SenderStats{},
			desc:   "no senders",
		},
		{
			counts: []int{1, 3, 2},
			want:   model.SenderStats{Mean: 2, Median: 2, Max: 3, Single: 1},
			desc:   "odd count",
		},
		{
			counts: []int{1, 1, 12, 150},
			want:   model.SenderStats{Mean: 41, Median: 12, Max: 150, Single: 2, TenPlus: 2, HundredPlus: 1},
			desc:   "upper median for even count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, senderStats(tt.counts))
		})
	}
}

func TestDecadeOf(t *testing.T) {
	tests := []struct {
		year int
		want int
		desc string
	}{
		{1805, 1800, "mid decade"},
		{1800, 1800, "decade start"},
		{1799, 1790, "decade end"},
		{-44, -50, "negative year floors"},
		{-40, -40, "negative decade start"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, decadeOf(tt.year))
		})
	}
}
