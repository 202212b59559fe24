package model

import (
	"encoding/json"
	"fmt"
)

// Confidence tags how a minimum check-in age was obtained.
type Confidence string

const (
	// ConfidenceExplicit means the age came from a verified structured field.
	ConfidenceExplicit Confidence = "explicit"

	// ConfidenceParsed means the age was extracted from free text by regex.
	ConfidenceParsed Confidence = "parsed"

	// ConfidenceOverride means the age was set manually.
	ConfidenceOverride Confidence = "override"

	// ConfidenceCrowd means the age was reported by users.
	ConfidenceCrowd Confidence = "crowd"

	// ConfidenceUnknown means no age is known.
	ConfidenceUnknown Confidence = "unknown"
)

// Valid reports whether c is one of the known confidence values.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceExplicit, ConfidenceParsed, ConfidenceOverride, ConfidenceCrowd, ConfidenceUnknown:
		return true
	default:
		return false
	}
}

// UnmarshalJSON rejects values outside the known set.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v := Confidence(s)
	if !v.Valid() {
		return fmt.Errorf("unknown confidence %q", s)
	}
	*c = v
	return nil
}

// Source identifies the backend a Hotel came from.
type Source string

const (
	// SourceMock is the built-in static dataset.
	SourceMock Source = "mock"

	// SourceBooking is the first scraped travel site.
	SourceBooking Source = "booking"

	// SourceExpedia is the second scraped travel site.
	SourceExpedia Source = "expedia"
)

// Sources returns every known source in a stable order.
func Sources() []Source {
	return []Source{SourceMock, SourceBooking, SourceExpedia}
}

// ParseSource converts a provider name into a Source.
func ParseSource(name string) (Source, bool) {
	for _, s := range Sources() {
		if string(s) == name {
			return s, true
		}
	}
	return "", false
}
