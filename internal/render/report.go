package render

import (
	"fmt"
	"io"
	"strings"

	md "github.com/nao1215/markdown"
	"golang.org/x/text/message"

	"github.com/ppiankov/herdata/internal/model"
)

const (
	barRune    = "█"
	barPercent = 2 // one bar segment per two percent
	footerText = "This report provides a comprehensive statistical overview of the CMIF dataset. " +
		"For detailed querying methods, see the accompanying documentation file."
)

// RenderReportMarkdown writes the twelve-section analysis report
func (r *Renderer) RenderReportMarkdown(w io.Writer, rep *model.Report) error {
	rw := &reportWriter{md: md.NewMarkdown(w), p: r.p, rep: rep}

	rw.md.H1(rep.Title).LF()
	rw.md.PlainTextf("Generated: %s", rep.Generated.Format("2006-01-02 15:04:05")).LF()
	if rep.Source != "" {
		rw.md.PlainTextf("Source: %s", rep.Source).LF()
	}

	rw.overview()
	rw.temporal()
	rw.senders()
	rw.places()
	rw.persons()
	rw.works()
	rw.orgs()
	rw.languages()
	rw.publication()
	rw.network()
	rw.findings()
	rw.authority()

	if r.includeFooter {
		rw.md.HorizontalRule()
		rw.md.PlainText(md.Italic(footerText)).LF()
	}
	return rw.md.Build()
}

// reportWriter renders the sections of one report
type reportWriter struct {
	md  *md.Markdown
	p   *message.Printer
	rep *model.Report
}

func (rw *reportWriter) num(n int) string {
	return rw.p.Sprintf("%d", n)
}

func (rw *reportWriter) pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func (rw *reportWriter) overview() {
	o := rw.rep.Overview
	rw.md.H2("1. Dataset Overview").LF()

	span := "no dated letters"
	if o.Dated {
		span = fmt.Sprintf("%d - %d (%d years)", o.FirstYear, o.LastYear, o.SpanYears())
	}
	rw.md.BulletList(
		"Total Letters: "+rw.num(o.TotalLetters),
		"Unique Senders: "+rw.num(o.UniqueSenders),
		"Unique Places: "+rw.num(o.UniquePlaces),
		"Time Span: "+span,
	).LF()
}

func (rw *reportWriter) temporal() {
	rep := rw.rep
	rw.md.H2("2. Temporal Analysis").LF()

	rw.md.H3("Date Precision").LF()
	rw.md.BulletList(
		fmt.Sprintf("Exact dates: %s (%s)", rw.num(rep.Precision.Exact), rw.pct(rep.Precision.ExactPct)),
		fmt.Sprintf("Date ranges: %s (%s)", rw.num(rep.Precision.Range), rw.pct(rep.Precision.RangePct)),
	).LF()

	rw.md.H3("Letters by Decade").LF()
	if len(rep.Decades) == 0 {
		rw.md.PlainText("No dated letters.").LF()
	} else {
		rows := make([][]string, 0, len(rep.Decades))
		for _, d := range rep.Decades {
			rows = append(rows, []string{
				fmt.Sprintf("%ds", d.Year),
				rw.num(d.Count),
				rw.pct(d.Percent),
				bar(d.Percent),
			})
		}
		rw.md.Table(md.TableSet{Header: []string{"Decade", "Count", "Percentage", "Bar"}, Rows: rows}).LF()
	}

	if len(rep.TopYears) == 0 {
		return
	}
	rw.md.H3(fmt.Sprintf("Top %d Years by Letter Count", len(rep.TopYears))).LF()
	rows := make([][]string, 0, len(rep.TopYears))
	for _, y := range rep.TopYears {
		rows = append(rows, []string{fmt.Sprint(y.Year), rw.num(y.Count)})
	}
	rw.md.Table(md.TableSet{Header: []string{"Year", "Letters"}, Rows: rows}).LF()
}

func (rw *reportWriter) rankedTable(header []string, entries []model.Ranked) {
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			cell(e.Name),
			rw.num(e.Count),
			fmt.Sprintf("%.2f%%", e.Percent),
		})
	}
	rw.md.Table(md.TableSet{Header: header, Rows: rows}).LF()
}

func (rw *reportWriter) senders() {
	rep := rw.rep
	rw.md.H2("3. Sender Analysis").LF()

	rw.md.H3(fmt.Sprintf("Top %d Correspondents", len(rep.TopSenders))).LF()
	rw.rankedTable([]string{"Rank", "Sender", "Letters", "% of Total"}, rep.TopSenders)

	s := rep.SenderStats
	rw.md.H3("Sender Distribution Statistics").LF()
	rw.md.BulletList(
		fmt.Sprintf("Mean letters per sender: %.1f", s.Mean),
		fmt.Sprintf("Median letters per sender: %d", s.Median),
		"Max letters (single sender): "+rw.num(s.Max),
		"Senders with 1 letter: "+rw.num(s.Single),
		"Senders with 10+ letters: "+rw.num(s.TenPlus),
		"Senders with 100+ letters: "+rw.num(s.HundredPlus),
	).LF()
}

func (rw *reportWriter) places() {
	rep := rw.rep
	rw.md.H2("4. Geographic Analysis").LF()
	rw.md.H3(fmt.Sprintf("Top %d Sending Locations", len(rep.TopPlaces))).LF()
	rw.rankedTable([]string{"Rank", "Place", "Letters", "% of Total"}, rep.TopPlaces)
}

func (rw *reportWriter) persons() {
	m := rw.rep.Persons
	rw.md.H2("5. Mentioned Persons Analysis").LF()
	rw.md.BulletList(
		"Total person mentions: "+rw.num(m.Total),
		"Unique persons mentioned: "+rw.num(m.Unique),
		"Letters with person mentions: "+rw.num(m.Letters),
	).LF()

	if len(m.Top) == 0 {
		return
	}
	rw.md.H3(fmt.Sprintf("Top %d Most Mentioned Persons", len(m.Top))).LF()
	rows := make([][]string, 0, len(m.Top))
	for i, e := range m.Top {
		rows = append(rows, []string{fmt.Sprint(i + 1), cell(e.Name), rw.num(e.Count)})
	}
	rw.md.Table(md.TableSet{Header: []string{"Rank", "Person", "Mentions"}, Rows: rows}).LF()
}

func (rw *reportWriter) mentionList(title string, entries []model.Ranked) {
	if len(entries) == 0 {
		return
	}
	items := make([]string, 0, len(entries))
	for _, e := range entries {
		items = append(items, fmt.Sprintf("%s (%s mentions)", e.Name, rw.num(e.Count)))
	}
	rw.md.H3(title).LF()
	rw.md.OrderedList(items...).LF()
}

func (rw *reportWriter) works() {
	m := rw.rep.Works
	rw.md.H2("6. Bibliographic Mentions").LF()
	rw.md.BulletList(
		"Total bibliographic mentions: "+rw.num(m.Total),
		"Unique works mentioned: "+rw.num(m.Unique),
		"Letters with bibliographic mentions: "+rw.num(m.Letters),
	).LF()
	rw.mentionList(fmt.Sprintf("Top %d Most Mentioned Works", len(m.Top)), m.Top)
}

func (rw *reportWriter) orgs() {
	m := rw.rep.Orgs
	rw.md.H2("7. Organization Mentions").LF()
	rw.md.BulletList(
		"Total organization mentions: "+rw.num(m.Total),
		"Unique organizations: "+rw.num(m.Unique),
		"Letters with org mentions: "+rw.num(m.Letters),
	).LF()
	rw.mentionList("Most Mentioned Organizations", m.Top)
}

func (rw *reportWriter) languages() {
	rw.md.H2("8. Language Distribution").LF()
	if len(rw.rep.Languages) == 0 {
		rw.md.PlainText("No language tags.").LF()
		return
	}
	rows := make([][]string, 0, len(rw.rep.Languages))
	for _, l := range rw.rep.Languages {
		rows = append(rows, []string{cell(l.Name), rw.num(l.Count), rw.pct(l.Percent)})
	}
	rw.md.Table(md.TableSet{Header: []string{"Language", "Letters", "Percentage"}, Rows: rows}).LF()
}

func (rw *reportWriter) publication() {
	pub := rw.rep.Publication
	rw.md.H2("9. Publication & Availability Status").LF()
	rw.md.BulletList(
		fmt.Sprintf("Letters with TEI file available: %s (%s)", rw.num(pub.TEIFile), rw.pct(pub.TEIFilePct)),
		fmt.Sprintf("Letters with transcription: %s (%s)", rw.num(pub.Transcription), rw.pct(pub.TranscriptionPct)),
		fmt.Sprintf("Letters with abstract: %s (%s)", rw.num(pub.Abstract), rw.pct(pub.AbstractPct)),
	).LF()

	if len(pub.TextBases) == 0 {
		return
	}
	items := make([]string, 0, len(pub.TextBases))
	for _, tb := range pub.TextBases {
		items = append(items, fmt.Sprintf("%s: %s (%s)", tb.Name, rw.num(tb.Count), rw.pct(tb.Percent)))
	}
	rw.md.H3("Text Base Types").LF()
	rw.md.BulletList(items...).LF()
}

func (rw *reportWriter) network() {
	n := rw.rep.Network
	rw.md.H2("10. Correspondence Network Insights").LF()
	rw.md.BulletList(
		fmt.Sprintf("Average persons mentioned per letter (when mentioned): %.1f", n.AvgPersonMentions),
		fmt.Sprintf("Letters with no person mentions: %s (%s)", rw.num(n.WithoutPersonMentions), rw.pct(n.WithoutPersonMentionPct)),
		fmt.Sprintf("'Rich' letters (with 2+ mention types): %s (%s)", rw.num(n.RichLetters), rw.pct(n.RichPct)),
	).LF()
}

func (rw *reportWriter) findings() {
	f := rw.rep.Findings
	rw.md.H2("11. Key Findings").LF()

	var items []string
	if f.PeakDecade != nil {
		items = append(items, fmt.Sprintf("%s: The %ds saw the most correspondence (%s letters)",
			md.Bold("Peak Period"), f.PeakDecade.Year, rw.num(f.PeakDecade.Count)))
	}
	if f.TopSender != nil {
		items = append(items, fmt.Sprintf("%s: %s (%s letters, %s of total)",
			md.Bold("Most Prolific Correspondent"), f.TopSender.Name, rw.num(f.TopSender.Count), rw.pct(f.TopSender.Percent)))
	}
	if f.TopPlace != nil {
		items = append(items, fmt.Sprintf("%s: %s was the most common sending location (%s letters, %s)",
			md.Bold("Geographic Concentration"), f.TopPlace.Name, rw.num(f.TopPlace.Count), rw.pct(f.TopPlace.Percent)))
	}
	if f.TopMentioned != nil {
		items = append(items, fmt.Sprintf("%s: %s (mentioned in %s letters)",
			md.Bold("Most Mentioned Person"), f.TopMentioned.Name, rw.num(f.TopMentioned.Count)))
	}
	items = append(items,
		fmt.Sprintf("%s: %s of letters have full TEI files available", md.Bold("Data Richness"), rw.pct(f.TEIFilePct)),
		fmt.Sprintf("%s: Early period (pre-%d): %s letters; Late period (%d+): %s letters",
			md.Bold("Temporal Distribution"), f.EarlyBefore, rw.num(f.EarlyLetters), f.LateFrom, rw.num(f.LateLetters)),
	)
	rw.md.OrderedList(items...).LF()
}

func (rw *reportWriter) authority() {
	a := rw.rep.Authority
	rw.md.H2("12. Authority File Coverage").LF()
	rw.md.BulletList(
		"Senders with GND ID: "+rw.coverage(a.SendersGND),
		"Places with GeoNames ID: "+rw.coverage(a.PlacesGeo),
		"Mentioned persons with GND ID: "+rw.coverage(a.MentionedGND),
	).LF()
}

func (rw *reportWriter) coverage(c model.Coverage) string {
	return fmt.Sprintf("%s / %s (%s)", rw.num(c.With), rw.num(c.Total), rw.pct(c.Percent))
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

// cell escapes text for use inside a table cell
func cell(s string) string {
	return cellEscaper.Replace(s)
}

// bar draws one block per two percent
func bar(percent float64) string {
	return strings.Repeat(barRune, int(percent/barPercent))
}
