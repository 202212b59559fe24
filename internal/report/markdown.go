package report

import (
	"io"
	"strconv"

	"github.com/nao1215/hotellens/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format, built with
// nao1215/markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report.Response)
	for _, b := range buckets(report.Response) {
		w.writeBucket(md, b)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *Report) {
	md.H1("HotelLens Search Report")
	md.PlainText("")

	location := strconv.FormatFloat(report.Params.Lat, 'f', 4, 64) + ", " +
		strconv.FormatFloat(report.Params.Lng, 'f', 4, 64)
	if report.City != "" {
		location = report.City + " (" + location + ")"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Location", location},
			{"Radius", strconv.FormatFloat(report.Params.RadiusKm, 'g', -1, 64) + " km"},
			{"Limit", strconv.Itoa(report.Params.Limit)},
			{"Provider", "`" + sourceText(report.Response.Meta) + "`"},
			{"Fetched", fetchedAtText(report.Response.Meta)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, resp *model.SearchResponse) {
	md.H2("Summary")
	md.PlainText("")

	rows := make([][]string, 0, 4)
	for _, b := range buckets(resp) {
		rows = append(rows, []string{title(b.name), strconv.Itoa(len(b.hotels))})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(resp.Total()) + "**"})
	md.Table(markdown.TableSet{
		Header: []string{"Bucket", "Hotels"},
		Rows:   rows,
	})
	md.PlainText("")

	if resp.Total() > 0 {
		w.writePieChart(md, resp)
	}
	w.writeAlert(md, resp)
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, resp *model.SearchResponse) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Check-in Age Eligibility"),
		piechart.WithShowData(true),
	)
	for _, b := range buckets(resp) {
		if len(b.hotels) > 0 {
			chart.LabelAndIntValue(title(b.name), uint64(len(b.hotels)))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, resp *model.SearchResponse) {
	switch {
	case resp.Meta.DegradedFrom != "":
		md.Warningf("Provider %s failed; showing %s results instead.", resp.Meta.DegradedFrom, resp.Meta.Provider)
	case resp.Total() == 0:
		md.Note("No hotels found within the search radius.")
	case len(resp.Eligible) == 0:
		md.Importantf("None of the %d hotels is known to accept 18 year old guests.", resp.Total())
	default:
		md.Tip("Ages tagged parsed were read from policy text. Confirm with the hotel before booking.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeBucket(md *markdown.Markdown, b bucket) {
	md.H2(title(b.name))
	md.PlainText("")

	if len(b.hotels) == 0 {
		md.PlainText("No hotels.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(b.hotels))
	for i, h := range b.hotels {
		name := truncateString(h.Name, 50)
		if h.DetailURL != "" {
			name = "[" + name + "](" + h.DetailURL + ")"
		}
		rows[i] = []string{
			name,
			distanceText(h.DistanceKm),
			ageText(h),
			string(h.Confidence),
			ratingText(h),
			priceText(h),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Hotel", "Distance", "Min Age", "Confidence", "Rating", "Price"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, h := range b.hotels {
		if h.PolicyText != nil && *h.PolicyText != "" {
			md.Details(h.Name, *h.PolicyText)
		}
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [HotelLens](https://github.com/nao1215/hotellens)*")
}
