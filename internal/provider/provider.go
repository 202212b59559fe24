package provider

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/nao1215/hotellens/internal/geo"
	"github.com/nao1215/hotellens/internal/model"
)

// ErrSearchFailed reports that a site search could not be performed at
// all. Callers decide whether to fall back to another provider.
var ErrSearchFailed = errors.New("provider search failed")

// ErrBlocked reports that a search page was still a bot-protection page
// after the render fallback.
var ErrBlocked = errors.New("search page blocked")

// Provider searches for hotels around a point.
type Provider interface {
	// Name returns the source the provider serves.
	Name() model.Source

	// Search returns hotels within params.RadiusKm of the query point,
	// sorted by ascending distance and truncated to params.Limit.
	Search(ctx context.Context, params model.SearchParams) ([]model.Hotel, error)
}

// rank sets DistanceKm on every hotel, drops those outside the radius,
// sorts by distance and truncates to limit.
func rank(hotels []model.Hotel, params model.SearchParams) []model.Hotel {
	origin := geo.Point{Lat: params.Lat, Lng: params.Lng}
	out := make([]model.Hotel, 0, len(hotels))
	for _, h := range hotels {
		h.DistanceKm = geo.DistanceKm(origin, geo.Point{Lat: h.Lat, Lng: h.Lng})
		if h.DistanceKm <= params.RadiusKm {
			out = append(out, h)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Hotel) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out
}
