package model

import (
	"encoding/hex"
	"net/url"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Listing is a property summary scraped from a search results page.
// Coordinates are optional because listing cards frequently omit them.
type Listing struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	DetailURL string   `json:"url"`
	Address   string   `json:"address,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are known.
func (l Listing) HasCoordinates() bool {
	return l.Lat != nil && l.Lng != nil
}

// CanonicalURL strips the query string and fragment from a detail URL and
// lower-cases the host, so that the same property reached through different
// tracking parameters maps to one listing.
func CanonicalURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Scheme = strings.ToLower(u.Scheme)
	return u.String()
}

// ListingID derives a stable identifier from a canonical URL.
// The first 16 bytes of the SHA3-256 digest are enough to avoid collisions
// among the few hundred listings a search produces.
func ListingID(canonicalURL string) string {
	sum := sha3.Sum256([]byte(canonicalURL))
	return hex.EncodeToString(sum[:16])
}

// NewListing builds a Listing whose ID and DetailURL come from the
// canonical form of rawURL.
func NewListing(name, rawURL string) Listing {
	canonical := CanonicalURL(rawURL)
	return Listing{
		ID:        ListingID(canonical),
		Name:      name,
		DetailURL: canonical,
	}
}

// DedupeListings keeps the first occurrence of every canonical URL and
// preserves input order.
func DedupeListings(in []Listing) []Listing {
	seen := make(map[string]bool, len(in))
	out := make([]Listing, 0, len(in))
	for _, l := range in {
		key := CanonicalURL(l.DetailURL)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}
	return out
}
