package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Plausible bounds for a minimum check-in age. Numbers outside are
// usually street numbers, years or prices.
const (
	minPlausibleAge = 16
	maxPlausibleAge = 30
)

// agePatterns are tried in order against lower-cased text; the first
// pattern whose first match captures a plausible age wins.
var agePatterns = []*regexp.Regexp{
	regexp.MustCompile(`minimum\s*(?:check[- ]?in\s*)?age[^0-9]{0,12}(\d{1,2})`),
	regexp.MustCompile(`check[- ]?in\s*age[^0-9]{0,12}(\d{1,2})`),
	regexp.MustCompile(`minimum\s*age\s*(?:to|for)\s*check[- ]?in[^0-9]{0,12}(\d{1,2})`),
	regexp.MustCompile(`check[- ]?in\s*age\s*requirement[^0-9]{0,12}(\d{1,2})`),
	regexp.MustCompile(`minimum\s*guest\s*age[^0-9]{0,12}(\d{1,2})`),
	regexp.MustCompile(`age\s*restriction[^0-9]{0,12}(\d{1,2})`),
	regexp.MustCompile(`guests?\s*(?:must\s*(?:be|are)|have\s*to\s*be|are\s*required\s*to\s*be|are)\s*(?:at\s*least\s*)?(\d{1,2})(?:\s*years)?\s*(?:or\s*older)?`),
	regexp.MustCompile(`(?:must\s*(?:be|are)|are)\s*(?:at\s*least\s*)?(\d{1,2})\s*(?:years?\s*(?:of\s*age|old|or\s*older)?|\+\s*(?:years)?|\+)`),
	regexp.MustCompile(`guests?\s*under\s*(\d{1,2})\s*are\s*not\s*allowed`),
	regexp.MustCompile(`(\d{1,2})\s*\+\s*(?:years)?`),
	regexp.MustCompile(`(\d{1,2})\s*years?\s*or\s*older`),
	regexp.MustCompile(`(\d{1,2})\s*years\s*of\s*age`),
	regexp.MustCompile(`(\d{1,2})\s*years?\s*old`),
}

// ParseMinAge finds a minimum check-in age in free text.
//
// Phrasings such as "minimum check-in age is 18", "guests must be at least
// 21", "18+" and "21 years or older" are recognized. A captured number
// outside [16, 30] is treated as a false positive and the next pattern is
// tried.
func ParseMinAge(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	lower := strings.ToLower(text)
	for _, re := range agePatterns {
		m := re.FindStringSubmatch(lower)
		if len(m) < 2 || m[1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n < minPlausibleAge || n > maxPlausibleAge {
			continue
		}
		return n, true
	}
	return 0, false
}

// MinAge is ParseMinAge returning nil when no age was found.
func MinAge(text string) *int {
	n, ok := ParseMinAge(text)
	if !ok {
		return nil
	}
	return &n
}

// SynthesizedPolicy renders an extracted age as policy text. ParseMinAge
// recovers the same age from the result.
func SynthesizedPolicy(age int) string {
	return fmt.Sprintf("Minimum age to check-in: %d", age)
}
