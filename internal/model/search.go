package model

import "time"

// Default search parameters.
const (
	// DefaultRadiusKm is used when a query does not specify a radius.
	DefaultRadiusKm = 20.0

	// DefaultLimit is used when a query does not specify a result limit.
	DefaultLimit = 50

	// EligibleMaxAge is the highest minimum check-in age that still
	// counts as eligible for an 18 year old guest.
	EligibleMaxAge = 18
)

// SearchParams is a geographic hotel query.
type SearchParams struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	RadiusKm float64 `json:"radiusKm"`
	Limit    int     `json:"limit"`
}

// WithDefaults fills zero radius and limit with their defaults.
func (p SearchParams) WithDefaults() SearchParams {
	if p.RadiusKm <= 0 {
		p.RadiusKm = DefaultRadiusKm
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	return p
}

// SearchMeta describes where a response came from.
type SearchMeta struct {
	Provider     string `json:"provider"`
	FetchedAt    string `json:"fetchedAt"`
	DegradedFrom string `json:"degradedFrom,omitempty"`
	Cached       bool   `json:"cached,omitempty"`
}

// SearchResponse partitions hotels by their minimum check-in age.
type SearchResponse struct {
	Eligible    []Hotel    `json:"eligible"`
	Unknown     []Hotel    `json:"unknown"`
	NotEligible []Hotel    `json:"notEligible"`
	Meta        SearchMeta `json:"meta"`
}

// UnknownMeta is the metadata value used when a search failed and no
// provider or fetch time can be reported.
const UnknownMeta = "unknown"

// Classify splits hotels into eligible (age <= 18), unknown (no age) and
// not eligible (age > 18). Input order is preserved within each bucket.
func Classify(hotels []Hotel, provider string, fetchedAt time.Time) *SearchResponse {
	resp := &SearchResponse{
		Eligible:    make([]Hotel, 0),
		Unknown:     make([]Hotel, 0),
		NotEligible: make([]Hotel, 0),
		Meta: SearchMeta{
			Provider:  provider,
			FetchedAt: fetchedAt.UTC().Format(time.RFC3339),
		},
	}
	for _, h := range hotels {
		switch {
		case h.MinCheckInAge == nil:
			resp.Unknown = append(resp.Unknown, h)
		case *h.MinCheckInAge <= EligibleMaxAge:
			resp.Eligible = append(resp.Eligible, h)
		default:
			resp.NotEligible = append(resp.NotEligible, h)
		}
	}
	return resp
}

// EmptyResponse returns a response with three empty buckets and unknown
// provider and time metadata.
func EmptyResponse() *SearchResponse {
	return &SearchResponse{
		Eligible:    make([]Hotel, 0),
		Unknown:     make([]Hotel, 0),
		NotEligible: make([]Hotel, 0),
		Meta: SearchMeta{
			Provider:  UnknownMeta,
			FetchedAt: UnknownMeta,
		},
	}
}

// Total returns the number of hotels across all buckets.
func (r *SearchResponse) Total() int {
	return len(r.Eligible) + len(r.Unknown) + len(r.NotEligible)
}
