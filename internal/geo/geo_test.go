package geo

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	t.Parallel()

	sacramento := Point{Lat: 38.575764, Lng: -121.478851}
	sanFrancisco := Point{Lat: 37.7749, Lng: -122.4194}

	t.Run("identical points are zero", func(t *testing.T) {
		t.Parallel()
		if d := DistanceKm(sacramento, sacramento); d != 0 {
			t.Errorf("expected 0, got %v", d)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		t.Parallel()
		ab := DistanceKm(sacramento, sanFrancisco)
		ba := DistanceKm(sanFrancisco, sacramento)
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("expected symmetric distances, got %v and %v", ab, ba)
		}
	})

	t.Run("known distance", func(t *testing.T) {
		t.Parallel()
		d := DistanceKm(sacramento, sanFrancisco)
		if d < 118 || d > 124 {
			t.Errorf("expected about 121 km, got %v", d)
		}
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		t.Parallel()
		d := DistanceKm(Point{Lat: 0, Lng: 0}, Point{Lat: 1, Lng: 0})
		if math.Abs(d-111.19) > 0.1 {
			t.Errorf("expected about 111.19 km, got %v", d)
		}
	})

	t.Run("antipodal points", func(t *testing.T) {
		t.Parallel()
		d := DistanceKm(Point{Lat: 0, Lng: 0}, Point{Lat: 0, Lng: 180})
		if math.Abs(d-math.Pi*EarthRadiusKm) > 0.001 {
			t.Errorf("expected half circumference, got %v", d)
		}
	})
}

func TestValidCoordinates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"origin", 0, 0, true},
		{"bounds", 90, -180, true},
		{"lat too high", 90.1, 0, false},
		{"lng too low", 0, -180.5, false},
		{"nan", math.NaN(), 0, false},
		{"inf", 0, math.Inf(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidCoordinates(tt.lat, tt.lng); got != tt.want {
				t.Errorf("ValidCoordinates(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestLookupCity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		wantOK bool
		lat    float64
	}{
		{"Sacramento", true, 38.575764},
		{"  sacramento,  CA ", true, 38.575764},
		{"NYC", true, 40.7128},
		{"New York City", true, 40.7128},
		{"St. Louis", false, 0},
		{"", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			p, ok := LookupCity(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("LookupCity(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && p.Lat != tt.lat {
				t.Errorf("LookupCity(%q) lat = %v, want %v", tt.in, p.Lat, tt.lat)
			}
		})
	}
}

func TestCityTitle(t *testing.T) {
	t.Parallel()

	if got := CityTitle("san  FRANCISCO"); got != "San Francisco" {
		t.Errorf("expected San Francisco, got %q", got)
	}
}
