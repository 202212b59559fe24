package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/hotellens/internal/model"
	"github.com/nao1215/hotellens/internal/provider"
)

var sacramento = model.SearchParams{Lat: 38.575764, Lng: -121.478851, RadiusKm: 20}

type stubProvider struct {
	name   model.Source
	hotels []model.Hotel
	err    error
	calls  atomic.Int32
}

func (p *stubProvider) Name() model.Source { return p.name }

func (p *stubProvider) Search(_ context.Context, _ model.SearchParams) ([]model.Hotel, error) {
	p.calls.Add(1)
	return p.hotels, p.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func ids(hotels []model.Hotel) map[string]bool {
	m := make(map[string]bool, len(hotels))
	for _, h := range hotels {
		m[h.ID] = true
	}
	return m
}

func TestSearchMockEndToEnd(t *testing.T) {
	t.Parallel()

	s := New(WithLogger(quietLogger()), WithClock(fixedClock))
	resp, err := s.Search(context.Background(), sacramento)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if resp.Meta.Provider != "mock" || resp.Meta.FetchedAt != "2025-06-01T12:00:00Z" {
		t.Errorf("meta = %+v", resp.Meta)
	}
	if resp.Total() != 9 {
		t.Errorf("Total() = %d, want 9", resp.Total())
	}

	eligible, unknown, notEligible := ids(resp.Eligible), ids(resp.Unknown), ids(resp.NotEligible)
	for _, id := range []string{"m1", "m4", "m6"} {
		if !eligible[id] {
			t.Errorf("%s should be eligible", id)
		}
	}
	for _, id := range []string{"m3", "m7"} {
		if !unknown[id] {
			t.Errorf("%s should be unknown", id)
		}
	}
	for _, id := range []string{"m2", "m5", "m8", "m9"} {
		if !notEligible[id] {
			t.Errorf("%s should be not eligible", id)
		}
	}

	for _, bucket := range [][]model.Hotel{resp.Eligible, resp.Unknown, resp.NotEligible} {
		for i, h := range bucket {
			if h.DistanceKm > sacramento.RadiusKm+1e-9 {
				t.Errorf("%s beyond radius", h.ID)
			}
			if i > 0 && bucket[i-1].DistanceKm > h.DistanceKm {
				t.Errorf("bucket not sorted at %s", h.ID)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  model.SearchParams
		wantErr bool
	}{
		{"valid", sacramento, false},
		{"latitude out of range", model.SearchParams{Lat: 91, Lng: 0}, true},
		{"longitude out of range", model.SearchParams{Lat: 0, Lng: -181}, true},
		{"nan", model.SearchParams{Lat: math.NaN(), Lng: 0}, true},
		{"negative radius", model.SearchParams{Lat: 1, Lng: 1, RadiusKm: -1}, true},
		{"negative limit", model.SearchParams{Lat: 1, Lng: 1, Limit: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Validate(tt.params)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidQuery) {
					t.Errorf("expected ErrInvalidQuery, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Limit != model.DefaultLimit || got.RadiusKm != 20 {
				t.Errorf("defaults not applied: %+v", got)
			}
		})
	}
}

func TestSearchFailurePolicies(t *testing.T) {
	t.Parallel()

	failure := errors.New("site down")
	failing := func() *stubProvider {
		return &stubProvider{name: model.SourceBooking, err: failure}
	}

	t.Run("error policy surfaces the error", func(t *testing.T) {
		t.Parallel()

		s := New(WithProvider(failing()), WithActive(model.SourceBooking), WithLogger(quietLogger()))
		if _, err := s.Search(context.Background(), sacramento); !errors.Is(err, failure) {
			t.Errorf("expected provider error, got %v", err)
		}
	})

	t.Run("empty policy returns empty buckets", func(t *testing.T) {
		t.Parallel()

		s := New(WithProvider(failing()), WithActive(model.SourceBooking),
			WithFailurePolicy(FailEmpty), WithLogger(quietLogger()))
		resp, err := s.Search(context.Background(), sacramento)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Total() != 0 || resp.Meta.Provider != model.UnknownMeta || resp.Meta.FetchedAt != model.UnknownMeta {
			t.Errorf("resp = %+v", resp)
		}
	})

	t.Run("mock policy answers from dataset", func(t *testing.T) {
		t.Parallel()

		p := failing()
		s := New(WithProvider(p), WithActive(model.SourceBooking),
			WithFailurePolicy(FailMock), WithLogger(quietLogger()))
		resp, err := s.Search(context.Background(), sacramento)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Meta.Provider != "mock" || resp.Meta.DegradedFrom != "booking" {
			t.Errorf("meta = %+v", resp.Meta)
		}
		if resp.Total() == 0 {
			t.Error("expected mock hotels")
		}

		if _, err := s.Search(context.Background(), sacramento); err != nil {
			t.Fatal(err)
		}
		if p.calls.Load() != 2 {
			t.Errorf("degraded responses must not be cached; provider calls = %d", p.calls.Load())
		}
	})
}

func TestSearchResponseCache(t *testing.T) {
	t.Parallel()

	p := &stubProvider{name: model.SourceExpedia, hotels: []model.Hotel{
		{ID: "x1", Name: "X", MinCheckInAge: model.IntPtr(21), Confidence: model.ConfidenceParsed, Source: model.SourceExpedia, Photos: []string{}},
	}}
	s := New(WithProvider(p), WithActive(model.SourceExpedia), WithLogger(quietLogger()))

	first, err := s.Search(context.Background(), sacramento)
	if err != nil {
		t.Fatal(err)
	}
	if first.Meta.Cached {
		t.Error("first response should not be marked cached")
	}

	second, err := s.Search(context.Background(), sacramento)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Meta.Cached {
		t.Error("second response should be marked cached")
	}
	if len(second.NotEligible) != 1 || second.NotEligible[0].ID != "x1" {
		t.Errorf("cached response = %+v", second)
	}
	if p.calls.Load() != 1 {
		t.Errorf("provider calls = %d, want 1", p.calls.Load())
	}
}

func TestSearchWithUnknownProvider(t *testing.T) {
	t.Parallel()

	s := New(WithLogger(quietLogger()))
	if _, err := s.SearchWith(context.Background(), model.SourceBooking, sacramento); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
	if s.Active() != model.SourceMock {
		t.Errorf("Active() = %q", s.Active())
	}
}

func TestParseFailurePolicy(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"error", "empty", "mock"} {
		if _, ok := ParseFailurePolicy(name); !ok {
			t.Errorf("ParseFailurePolicy(%q) failed", name)
		}
	}
	if _, ok := ParseFailurePolicy("retry"); ok {
		t.Error("expected unknown policy to fail")
	}
}

var _ provider.Provider = (*stubProvider)(nil)
