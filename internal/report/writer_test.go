package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/hotellens/internal/model"
)

var fetchedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// createTestReport creates a report with one hotel in each bucket.
func createTestReport() *Report {
	hotels := []model.Hotel{
		{
			ID:            "m2",
			Name:          "Citizen Hotel",
			DistanceKm:    1.43,
			MinCheckInAge: model.IntPtr(18),
			PolicyText:    model.StringPtr("Guests must be 18 or older to check in."),
			Confidence:    model.ConfidenceExplicit,
			Source:        model.SourceMock,
			Rating:        model.FloatPtr(4.4),
			PriceNightly:  model.FloatPtr(189),
			DetailURL:     "https://example.com/citizen",
			Photos:        []string{},
		},
		{
			ID:         "m5",
			Name:       "Riverside Inn",
			DistanceKm: 4.2,
			Confidence: model.ConfidenceUnknown,
			Source:     model.SourceMock,
			Photos:     []string{},
		},
		{
			ID:            "m7",
			Name:          "Capitol Grand",
			DistanceKm:    2.05,
			MinCheckInAge: model.IntPtr(21),
			Confidence:    model.ConfidenceParsed,
			Source:        model.SourceMock,
			Photos:        []string{},
		},
	}
	return &Report{
		Params:   model.SearchParams{Lat: 38.5758, Lng: -121.4789, RadiusKm: 20, Limit: 50},
		City:     "Sacramento",
		Response: model.Classify(hotels, string(model.SourceMock), fetchedAt),
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"HOTELLENS SEARCH REPORT",
			"Sacramento (38.5758, -121.4789)",
			"Radius:     20 km",
			"Provider:   mock",
			"2026-03-14 09:30:00 UTC",
			"ELIGIBLE (18+ ok): 1",
			"TOTAL:             3 hotels",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("writes buckets in order", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		eligible := strings.Index(output, "ELIGIBLE (1)")
		unknown := strings.Index(output, "UNKNOWN (1)")
		notEligible := strings.Index(output, "NOT ELIGIBLE (1)")
		if eligible < 0 || unknown < 0 || notEligible < 0 {
			t.Fatalf("missing bucket header in:\n%s", output)
		}
		if eligible > unknown || unknown > notEligible {
			t.Error("expected eligible, unknown, not eligible order")
		}
		if !strings.Contains(output, "min age 18 (explicit)") {
			t.Error("expected age and confidence line")
		}
		if !strings.Contains(output, "min age ? (unknown)") {
			t.Error("expected unknown age marker")
		}
		if !strings.Contains(output, "price $189") {
			t.Error("expected price")
		}
	})

	t.Run("hides policy text unless verbose", func(t *testing.T) {
		t.Parallel()

		var quiet, verbose bytes.Buffer
		if _, err := NewSimpleWriter(&quiet).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := NewSimpleWriter(&verbose, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(quiet.String(), "Policy:") {
			t.Error("expected no policy text without verbose")
		}
		if !strings.Contains(verbose.String(), "Policy:  Guests must be 18 or older") {
			t.Error("expected policy text with verbose")
		}
		if !strings.Contains(verbose.String(), "URL:     https://example.com/citizen") {
			t.Error("expected detail URL with verbose")
		}
	})

	t.Run("empty buckets", func(t *testing.T) {
		t.Parallel()

		report := &Report{
			Params:   model.SearchParams{Lat: 40.7128, Lng: -74.006, RadiusKm: 20, Limit: 50},
			Response: model.EmptyResponse(),
		}

		var hidden, shown bytes.Buffer
		if _, err := NewSimpleWriter(&hidden).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := NewSimpleWriter(&shown, WithShowEmpty(true)).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(hidden.String(), "No hotels") {
			t.Error("expected empty buckets to be hidden")
		}
		if strings.Count(shown.String(), "No hotels") != 3 {
			t.Errorf("expected three empty buckets, got:\n%s", shown.String())
		}
		if !strings.Contains(shown.String(), "Fetched:    unknown") {
			t.Error("expected unknown fetch time to pass through")
		}
	})

	t.Run("marks degraded and cached responses", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Response.Meta.DegradedFrom = "booking"
		report.Response.Meta.Cached = true

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "mock (fallback for booking) [cached]") {
			t.Errorf("expected degraded marker, got:\n%s", buf.String())
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes the response document", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.SearchResponse
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded.Eligible) != 1 || len(decoded.Unknown) != 1 || len(decoded.NotEligible) != 1 {
			t.Errorf("unexpected buckets: %+v", decoded)
		}
		if decoded.Meta.FetchedAt != "2026-03-14T09:30:00Z" {
			t.Errorf("FetchedAt = %q", decoded.Meta.FetchedAt)
		}
		if strings.Contains(buf.String(), "\n  ") {
			t.Error("expected compact output by default")
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"eligible\"") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
		if !strings.HasSuffix(buf.String(), "\n") {
			t.Error("expected trailing newline")
		}
	})

	t.Run("unknown age serializes as null", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `"minCheckInAge":null`) {
			t.Errorf("expected null age, got: %s", buf.String())
		}
	})
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewFullJSONWriter(&buf, "v1.2.3").Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded JSONReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Version != "v1.2.3" {
		t.Errorf("Version = %q", decoded.Version)
	}
	if decoded.City != "Sacramento" {
		t.Errorf("City = %q", decoded.City)
	}
	if decoded.Query.RadiusKm != 20 {
		t.Errorf("Query.RadiusKm = %v", decoded.Query.RadiusKm)
	}
	if decoded.Response == nil || decoded.Response.Total() != 3 {
		t.Errorf("unexpected response: %+v", decoded.Response)
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# HotelLens Search Report",
			"## Summary",
			"## Eligible",
			"## Unknown",
			"## Not Eligible",
			"```mermaid",
			"[Citizen Hotel](https://example.com/citizen)",
			"Guests must be 18 or older to check in.",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("empty response has no chart", func(t *testing.T) {
		t.Parallel()

		report := &Report{
			Params:   model.SearchParams{Lat: 40.7128, Lng: -74.006, RadiusKm: 20, Limit: 50},
			Response: model.EmptyResponse(),
		}

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "```mermaid") {
			t.Error("expected no chart for an empty response")
		}
		if !strings.Contains(buf.String(), "No hotels found") {
			t.Error("expected empty note")
		}
	})

	t.Run("degraded response warns", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Response.Meta.DegradedFrom = "expedia"

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Provider expedia failed") {
			t.Errorf("expected degraded warning, got:\n%s", buf.String())
		}
	})
}

type failingWriter struct{}

func (failingWriter) Write(*Report) (int, error) {
	return 0, errors.New("disk full")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to every writer", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))
		n, err := mw.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("n = %d, want %d", n, text.Len()+js.Len())
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected output in both writers")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		mw := NewMultiWriter(failingWriter{}, NewSimpleWriter(&after))
		if _, err := mw.Write(createTestReport()); err == nil {
			t.Fatal("expected error")
		}
		if after.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"Hotel Marriott Downtown", 10, "Hotel M..."},
		{"abcdef", 3, "abc"},
		{"Hôtel Économique", 8, "Hôtel..."},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := truncateString(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}
