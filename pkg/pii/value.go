package pii

import (
	"math"
	"unicode"

	"github.com/spf13/cast"
)

// Sampling limits for value-based detection.
const (
	// ValueSampleSize is the number of non-null values inspected by value detection.
	ValueSampleSize = 50

	// ValueMatchThreshold is the number of matches a value pattern needs in the sample.
	ValueMatchThreshold = 3

	// HeuristicSampleSize is the number of non-null values inspected by the fallback.
	HeuristicSampleSize = 20

	// HeuristicMatchThreshold is the number of whitespace-bearing values the fallback needs.
	HeuristicMatchThreshold = 5
)

// isNull reports whether v represents a missing value.
func isNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// isText reports whether v is a textual value.
func isText(v any) bool {
	switch v.(type) {
	case string, []byte:
		return true
	}
	return false
}

// CoerceText converts a non-null value to text. It reports false for null
// values and for values that have no textual form.
func CoerceText(v any) (string, bool) {
	if isNull(v) {
		return "", false
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

// sampleValues collects up to limit coerced non-null values in input order.
// Values that cannot be coerced are skipped and do not count toward limit.
// Reading stops once the window is full, so textual reports whether any
// non-null value inside the window is a string.
func sampleValues(values []any, limit int) (sample []string, textual bool) {
	for _, v := range values {
		if len(sample) >= limit {
			break
		}
		if isNull(v) {
			continue
		}
		if isText(v) {
			textual = true
		}
		if s, ok := CoerceText(v); ok {
			sample = append(sample, s)
		}
	}
	return sample, textual
}

func containsSpace(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
