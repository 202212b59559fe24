package geo

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// cities maps normalized city names to their centre coordinates.
// Keys with a state suffix are normalized the same way ("sacramento ca").
var cities = map[string]Point{
	"atlanta":          {Lat: 33.749, Lng: -84.388},
	"atlanta ga":       {Lat: 33.749, Lng: -84.388},
	"sacramento":       {Lat: 38.575764, Lng: -121.478851},
	"sacramento ca":    {Lat: 38.575764, Lng: -121.478851},
	"san francisco":    {Lat: 37.7749, Lng: -122.4194},
	"san francisco ca": {Lat: 37.7749, Lng: -122.4194},
	"los angeles":      {Lat: 34.0522, Lng: -118.2437},
	"los angeles ca":   {Lat: 34.0522, Lng: -118.2437},
	"new york":         {Lat: 40.7128, Lng: -74.006},
	"new york ny":      {Lat: 40.7128, Lng: -74.006},
	"new york city":    {Lat: 40.7128, Lng: -74.006},
	"nyc":              {Lat: 40.7128, Lng: -74.006},
	"chicago":          {Lat: 41.8781, Lng: -87.6298},
	"chicago il":       {Lat: 41.8781, Lng: -87.6298},
	"miami":            {Lat: 25.7617, Lng: -80.1918},
	"miami fl":         {Lat: 25.7617, Lng: -80.1918},
	"boston":           {Lat: 42.3601, Lng: -71.0589},
	"boston ma":        {Lat: 42.3601, Lng: -71.0589},
}

// NormalizeCity lower-cases name, drops periods and commas and collapses
// runs of whitespace, so "Sacramento,  CA" and "sacramento ca" compare equal.
func NormalizeCity(name string) string {
	name = cases.Fold().String(name)
	name = strings.NewReplacer(".", "", ",", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}

// LookupCity returns the coordinates of a known city.
func LookupCity(name string) (Point, bool) {
	p, ok := cities[NormalizeCity(name)]
	return p, ok
}

// CityTitle formats a normalized city key for display.
func CityTitle(name string) string {
	return cases.Title(language.English).String(NormalizeCity(name))
}
