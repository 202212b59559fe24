package model

// Hotel is a single search result as returned to consumers.
//
// MinCheckInAge and PolicyText are pointers because "unknown" is a normal,
// frequent outcome and must be distinguishable from zero/empty.
type Hotel struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Lat           float64    `json:"lat"`
	Lng           float64    `json:"lng"`
	Address       string     `json:"address,omitempty"`
	Rating        *float64   `json:"rating,omitempty"`
	PriceNightly  *float64   `json:"price,omitempty"`
	DistanceKm    float64    `json:"distanceKm"`
	MinCheckInAge *int       `json:"minCheckInAge"`
	PolicyText    *string    `json:"policyText"`
	Confidence    Confidence `json:"confidence"`
	Source        Source     `json:"source"`
	DetailURL     string     `json:"url,omitempty"`
	ThumbnailURL  string     `json:"thumbnailUrl,omitempty"`
	Photos        []string   `json:"photos"`
}

// SetParsedAge records an age extracted by text heuristics and keeps the
// confidence tag consistent with it: parsed when an age is present,
// unknown when it is not.
func (h *Hotel) SetParsedAge(age *int) {
	h.MinCheckInAge = age
	if age == nil {
		h.Confidence = ConfidenceUnknown
		return
	}
	h.Confidence = ConfidenceParsed
}

// HasAge reports whether a minimum check-in age is known.
func (h *Hotel) HasAge() bool {
	return h.MinCheckInAge != nil
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 {
	return &v
}

// StringPtr returns a pointer to v.
func StringPtr(v string) *string {
	return &v
}
