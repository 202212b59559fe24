package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Facts are property details published as structured data on a detail
// page. Zero values and nil pointers mean "not published".
type Facts struct {
	Name    string
	Lat     *float64
	Lng     *float64
	Rating  *float64
	Address string
}

// HasCoordinates reports whether both coordinates were found.
func (f Facts) HasCoordinates() bool {
	return f.Lat != nil && f.Lng != nil
}

// lodgingTypes are schema.org types whose fields describe the property
// itself rather than, say, the breadcrumb or the website.
var lodgingTypes = map[string]bool{
	"hotel":           true,
	"lodgingbusiness": true,
	"motel":           true,
	"resort":          true,
	"hostel":          true,
	"bedandbreakfast": true,
	"campground":      true,
	"vacationrental":  true,
	"apartment":       true,
	"house":           true,
	"accommodation":   true,
	"localbusiness":   true,
	"place":           true,
}

// Facts reads JSON-LD lodging data, falling back to geo meta tags and
// Booking-style data-atlas-latlng attributes for coordinates and to
// og:title for the name.
func (p *Page) Facts() Facts {
	var f Facts
	p.doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var v any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &v); err != nil {
			return
		}
		walkLD(v, &f)
	})

	if !f.HasCoordinates() {
		p.metaCoordinates(&f)
	}
	if f.Name == "" {
		f.Name = strings.TrimSpace(p.doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	}
	return f
}

func walkLD(v any, f *Facts) {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			walkLD(item, f)
		}
	case map[string]any:
		if graph, ok := node["@graph"]; ok {
			walkLD(graph, f)
		}
		if !isLodging(node["@type"]) {
			return
		}
		if f.Name == "" {
			if name, ok := node["name"].(string); ok {
				f.Name = strings.TrimSpace(name)
			}
		}
		if geo, ok := node["geo"].(map[string]any); ok && !f.HasCoordinates() {
			lat, latOK := number(geo["latitude"])
			lng, lngOK := number(geo["longitude"])
			if latOK && lngOK {
				f.Lat, f.Lng = &lat, &lng
			}
		}
		if rating, ok := node["aggregateRating"].(map[string]any); ok && f.Rating == nil {
			if r, ok := number(rating["ratingValue"]); ok {
				f.Rating = &r
			}
		}
		if f.Address == "" {
			f.Address = address(node["address"])
		}
	}
}

func isLodging(t any) bool {
	switch typ := t.(type) {
	case string:
		return lodgingTypes[strings.ToLower(typ)]
	case []any:
		for _, item := range typ {
			if isLodging(item) {
				return true
			}
		}
	}
	return false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func address(v any) string {
	switch a := v.(type) {
	case string:
		return NormalizeSpace(a)
	case map[string]any:
		var parts []string
		for _, key := range []string{"streetAddress", "addressLocality", "addressRegion", "postalCode", "addressCountry"} {
			if s, ok := a[key].(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func (p *Page) metaCoordinates(f *Facts) {
	pairs := [][2]string{
		{`meta[property="place:location:latitude"]`, `meta[property="place:location:longitude"]`},
		{`meta[property="og:latitude"]`, `meta[property="og:longitude"]`},
	}
	for _, pair := range pairs {
		lat, latOK := number(p.doc.Find(pair[0]).AttrOr("content", ""))
		lng, lngOK := number(p.doc.Find(pair[1]).AttrOr("content", ""))
		if latOK && lngOK {
			f.Lat, f.Lng = &lat, &lng
			return
		}
	}

	if pos := p.doc.Find(`meta[name="geo.position"]`).AttrOr("content", ""); pos != "" {
		if lat, lng, ok := splitLatLng(pos, ";"); ok {
			f.Lat, f.Lng = &lat, &lng
			return
		}
	}

	if latlng, ok := p.doc.Find("[data-atlas-latlng]").First().Attr("data-atlas-latlng"); ok {
		if lat, lng, ok := splitLatLng(latlng, ","); ok {
			f.Lat, f.Lng = &lat, &lng
		}
	}
}

func splitLatLng(s, sep string) (float64, float64, bool) {
	a, b, found := strings.Cut(s, sep)
	if !found {
		return 0, 0, false
	}
	lat, latOK := number(a)
	lng, lngOK := number(b)
	return lat, lng, latOK && lngOK
}
