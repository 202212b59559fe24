package extract

import "testing"

func TestParseMinAge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		want   int
		wantOK bool
	}{
		{"minimum age to check in", "Minimum age to check in is 18 years old.", 18, true},
		{"guests must be", "Guests must be 21 to check in.", 21, true},
		{"no age", "Call property for age policy.", 0, false},
		{"years are not ages", "Built in 1995, renovated 2021", 0, false},
		{"empty", "", 0, false},
		{"minimum check-in age", "Minimum check-in age is 19.", 19, true},
		{"colon form", "Minimum age to check in: 18 years.", 18, true},
		{"plus suffix", "18+ with ID required at check-in.", 18, true},
		{"plus after must be", "Guests must be 21+ to check in.", 21, true},
		{"at least", "You must be at least 25 years of age to rent a room.", 25, true},
		{"under not allowed", "Guests under 20 are not allowed", 20, true},
		{"upper case", "MINIMUM CHECK-IN AGE: 21", 21, true},
		{"age restriction", "Age restriction: 23", 23, true},
		{"implausible then plausible", "Minimum check-in age is 12. Guests must be 21 to stay.", 21, true},
		{"out of range only", "Guests must be 45 years old", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseMinAge(tt.text)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseMinAge(%q) = %d, %v; want %d, %v", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// TestParseMinAgeIdempotent verifies that the synthesized policy string
// parses back to the age it was built from.
func TestParseMinAgeIdempotent(t *testing.T) {
	t.Parallel()

	for age := minPlausibleAge; age <= maxPlausibleAge; age++ {
		got, ok := ParseMinAge(SynthesizedPolicy(age))
		if !ok || got != age {
			t.Errorf("ParseMinAge(SynthesizedPolicy(%d)) = %d, %v", age, got, ok)
		}
	}
}

func TestMinAge(t *testing.T) {
	t.Parallel()

	if got := MinAge("Guests must be 21 to check in."); got == nil || *got != 21 {
		t.Errorf("expected 21, got %v", got)
	}
	if got := MinAge("no policy here"); got != nil {
		t.Errorf("expected nil, got %d", *got)
	}
}
