package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/hotellens/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Report is a search response together with the query that produced it.
type Report struct {
	// Params is the validated query.
	Params model.SearchParams

	// City is the city name the coordinates were resolved from, if any.
	City string

	// Response is the classified result.
	Response *model.SearchResponse
}

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(report *Report) (int, error)
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// bucket is one eligibility partition of a response.
type bucket struct {
	name   string
	hotels []model.Hotel
}

// buckets returns the partitions in display order.
func buckets(resp *model.SearchResponse) []bucket {
	return []bucket{
		{name: "eligible", hotels: resp.Eligible},
		{name: "unknown", hotels: resp.Unknown},
		{name: "not eligible", hotels: resp.NotEligible},
	}
}

// title converts a label such as "not eligible" into "Not Eligible".
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// upper converts a label for text section headers.
func upper(s string) string {
	return cases.Upper(language.English).String(s)
}

// ageText formats a minimum check-in age, "?" when unknown.
func ageText(h model.Hotel) string {
	if h.MinCheckInAge == nil {
		return "?"
	}
	return strconv.Itoa(*h.MinCheckInAge)
}

// ratingText formats an optional rating, "-" when absent.
func ratingText(h model.Hotel) string {
	if h.Rating == nil {
		return "-"
	}
	return strconv.FormatFloat(*h.Rating, 'f', 1, 64)
}

// priceText formats an optional nightly price, "-" when absent.
func priceText(h model.Hotel) string {
	if h.PriceNightly == nil {
		return "-"
	}
	return "$" + strconv.FormatFloat(*h.PriceNightly, 'f', 0, 64)
}

// distanceText formats a distance in kilometres.
func distanceText(km float64) string {
	return strconv.FormatFloat(km, 'f', 2, 64) + " km"
}

// fetchedAtText formats the response timestamp in a reader-friendly layout.
// Values that are not RFC 3339 ("unknown") are passed through.
func fetchedAtText(meta model.SearchMeta) string {
	t, err := time.Parse(time.RFC3339, meta.FetchedAt)
	if err != nil {
		return meta.FetchedAt
	}
	return t.Format("2006-01-02 15:04:05 MST")
}

// sourceText describes where a response came from.
func sourceText(meta model.SearchMeta) string {
	s := meta.Provider
	if meta.DegradedFrom != "" {
		s += " (fallback for " + meta.DegradedFrom + ")"
	}
	if meta.Cached {
		s += " [cached]"
	}
	return s
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
