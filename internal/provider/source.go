package provider

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/hotellens/internal/extract"
	"github.com/nao1215/hotellens/internal/model"
)

// Source describes how to scrape one travel site.
type Source interface {
	// Name returns the source identifier.
	Name() model.Source

	// SearchURL builds the search results URL for a query.
	SearchURL(params model.SearchParams) string

	// ParseListings extracts listings from a search results page.
	ParseListings(doc *goquery.Document, pageURL string) []model.Listing

	// ListingSelector is the CSS selector a rendered search page is
	// waited on for.
	ListingSelector() string

	// PolicySelector is the CSS selector a rendered detail page is
	// waited on for.
	PolicySelector() string
}

// Site is a Source driven by a URL template and link heuristics.
type Site struct {
	name            model.Source
	searchURL       string
	linkPattern     *regexp.Regexp
	nameAttrs       []string
	coordContainers string
	latAttrs        []string
	lngAttrs        []string
	listingSelector string
	policySelector  string
}

// Search URL template placeholders.
const (
	placeholderLat    = "{lat}"
	placeholderLng    = "{lng}"
	placeholderRadius = "{radius}"
)

// Booking returns the Source for booking.com.
func Booking() *Site {
	return &Site{
		name:            model.SourceBooking,
		searchURL:       "https://www.booking.com/searchresults.html?ss=&latitude={lat}&longitude={lng}&radius={radius}",
		linkPattern:     regexp.MustCompile(`(?i)hotel/`),
		nameAttrs:       []string{"title", "aria-label"},
		coordContainers: "[data-coords], [data-latitude], [data-lat], [data-atlas-latlng]",
		latAttrs:        []string{"data-lat", "data-latitude", "data-coords-lat"},
		lngAttrs:        []string{"data-lng", "data-longitude", "data-coords-lng"},
		listingSelector: `[data-testid="property-card"]`,
		policySelector:  `[data-testid="property-section--policies"], #hotelPoliciesInc`,
	}
}

// Expedia returns the Source for expedia.com.
func Expedia() *Site {
	return &Site{
		name:            model.SourceExpedia,
		searchURL:       "https://www.expedia.com/Hotel-Search?lat={lat}&lng={lng}&radius={radius}",
		linkPattern:     regexp.MustCompile(`(?i)(Hotel_Review|Hotel-)`),
		nameAttrs:       []string{"aria-label", "title"},
		coordContainers: "[data-latitude], [data-lat]",
		latAttrs:        []string{"data-lat", "data-latitude"},
		lngAttrs:        []string{"data-lng", "data-longitude"},
		listingSelector: `[data-stid="lodging-card-responsive"]`,
		policySelector:  `[data-stid="content-hotel-policies"], #Policies`,
	}
}

// SourceFor returns the built-in Source for a scraped site.
func SourceFor(name model.Source) (*Site, bool) {
	switch name {
	case model.SourceBooking:
		return Booking(), true
	case model.SourceExpedia:
		return Expedia(), true
	default:
		return nil, false
	}
}

// WithSearchURL returns a copy of s using tmpl as search URL template.
// An empty template keeps the current one.
func (s *Site) WithSearchURL(tmpl string) *Site {
	c := *s
	if tmpl != "" {
		c.searchURL = tmpl
	}
	return &c
}

// WithSelectors returns a copy of s with the given wait selectors.
// Empty values keep the current selectors.
func (s *Site) WithSelectors(listing, policy string) *Site {
	c := *s
	if listing != "" {
		c.listingSelector = listing
	}
	if policy != "" {
		c.policySelector = policy
	}
	return &c
}

// Name implements Source.
func (s *Site) Name() model.Source { return s.name }

// ListingSelector implements Source.
func (s *Site) ListingSelector() string { return s.listingSelector }

// PolicySelector implements Source.
func (s *Site) PolicySelector() string { return s.policySelector }

// SearchURL implements Source. The radius is rounded to whole kilometres.
func (s *Site) SearchURL(params model.SearchParams) string {
	r := strings.NewReplacer(
		placeholderLat, strconv.FormatFloat(params.Lat, 'f', -1, 64),
		placeholderLng, strconv.FormatFloat(params.Lng, 'f', -1, 64),
		placeholderRadius, strconv.Itoa(int(math.Round(params.RadiusKm))),
	)
	return r.Replace(s.searchURL)
}

// ParseListings implements Source. Every anchor whose href matches the
// site's property link pattern and that has a name becomes a listing.
// Coordinates come from the closest container with coordinate data
// attributes, or from latitude/longitude query parameters on the link.
// Results are de-duplicated by canonical URL.
func (s *Site) ParseListings(doc *goquery.Document, pageURL string) []model.Listing {
	var listings []model.Listing
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !s.linkPattern.MatchString(href) {
			return
		}
		name := s.anchorName(a)
		if name == "" {
			return
		}

		l := model.NewListing(name, extract.ResolveURL(pageURL, href))
		l.Lat, l.Lng = s.coordinates(a, href, pageURL)
		listings = append(listings, l)
	})
	return model.DedupeListings(listings)
}

func (s *Site) anchorName(a *goquery.Selection) string {
	if name := extract.NormalizeSpace(a.Text()); name != "" {
		return name
	}
	for _, attr := range s.nameAttrs {
		if v := extract.NormalizeSpace(a.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return ""
}

func (s *Site) coordinates(a *goquery.Selection, href, pageURL string) (*float64, *float64) {
	if container := a.Closest(s.coordContainers); container.Length() > 0 {
		if lat, lng, ok := pairFromAttrs(container, s.latAttrs, s.lngAttrs); ok {
			return &lat, &lng
		}
		if v, ok := container.Attr("data-atlas-latlng"); ok {
			if lat, lng, ok := parsePair(v); ok {
				return &lat, &lng
			}
		}
	}

	u, err := url.Parse(extract.ResolveURL(pageURL, href))
	if err != nil {
		return nil, nil
	}
	q := u.Query()
	lat, errLat := strconv.ParseFloat(q.Get("latitude"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("longitude"), 64)
	if errLat != nil || errLng != nil {
		return nil, nil
	}
	return &lat, &lng
}

func pairFromAttrs(sel *goquery.Selection, latAttrs, lngAttrs []string) (float64, float64, bool) {
	lat, okLat := firstFloatAttr(sel, latAttrs)
	lng, okLng := firstFloatAttr(sel, lngAttrs)
	return lat, lng, okLat && okLng
}

func firstFloatAttr(sel *goquery.Selection, attrs []string) (float64, bool) {
	for _, attr := range attrs {
		v, ok := sel.Attr(attr)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return f, true
		}
	}
	return 0, false
}

func parsePair(v string) (float64, float64, bool) {
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}
