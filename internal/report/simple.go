package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/hotellens/internal/model"
)

// SimpleWriter outputs a human-readable text report.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints headers for empty buckets.
	showEmpty bool

	// verbose adds policy text and URLs under each hotel.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty buckets.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables policy text and detail URLs in the output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report.Response)
	for _, b := range buckets(report.Response) {
		w.writeBucket(&sb, b)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       HOTELLENS SEARCH REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if report.City != "" {
		sb.WriteString(fmt.Sprintf("Location:   %s (%.4f, %.4f)\n", report.City, report.Params.Lat, report.Params.Lng))
	} else {
		sb.WriteString(fmt.Sprintf("Location:   %.4f, %.4f\n", report.Params.Lat, report.Params.Lng))
	}
	sb.WriteString(fmt.Sprintf("Radius:     %g km\n", report.Params.RadiusKm))
	sb.WriteString(fmt.Sprintf("Provider:   %s\n", sourceText(report.Response.Meta)))
	sb.WriteString(fmt.Sprintf("Fetched:    %s\n", fetchedAtText(report.Response.Meta)))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, resp *model.SearchResponse) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  ELIGIBLE (18+ ok): %d\n", len(resp.Eligible)))
	sb.WriteString(fmt.Sprintf("  UNKNOWN:           %d\n", len(resp.Unknown)))
	sb.WriteString(fmt.Sprintf("  NOT ELIGIBLE:      %d\n", len(resp.NotEligible)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:             %d hotels\n", resp.Total()))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeBucket(sb *strings.Builder, b bucket) {
	if len(b.hotels) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s (%d)\n", upper(b.name), len(b.hotels)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(b.hotels) == 0 {
		sb.WriteString("  No hotels\n\n")
		return
	}

	for _, h := range b.hotels {
		sb.WriteString(fmt.Sprintf("  * %s\n", h.Name))
		sb.WriteString(fmt.Sprintf("    %s  min age %s (%s)  rating %s  price %s\n",
			distanceText(h.DistanceKm), ageText(h), h.Confidence, ratingText(h), priceText(h)))
		if h.Address != "" {
			sb.WriteString(fmt.Sprintf("    Address: %s\n", h.Address))
		}
		if w.verbose {
			if h.PolicyText != nil {
				sb.WriteString(fmt.Sprintf("    Policy:  %s\n", truncateString(*h.PolicyText, 120)))
			}
			if h.DetailURL != "" {
				sb.WriteString(fmt.Sprintf("    URL:     %s\n", h.DetailURL))
			}
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Ages marked \"parsed\" were read from policy text; verify before booking.\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
