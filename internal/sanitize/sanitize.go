// Package sanitize coerces loosely-typed input (values decoded from JSON or
// handed over by the document extraction step) into safe primitives.
//
// Every function in this package is total: whatever the input, it returns a
// usable value and never an error. Error signaling is reserved for genuine
// infrastructure failures elsewhere.
package sanitize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToText converts an arbitrary value to its text representation.
// nil yields "". Strings pass through unchanged.
func ToText(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return "0"
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// ToLowerText is ToText followed by a case fold.
func ToLowerText(v any) string {
	return strings.ToLower(ToText(v))
}

// ToNumber converts an arbitrary value to a float64. nil, non-numeric text,
// NaN and infinities all collapse to 0.
func ToNumber(v any) float64 {
	switch value := v.(type) {
	case nil:
		return 0
	case float64:
		return safeFloat(value)
	case float32:
		return safeFloat(float64(value))
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case bool:
		if value {
			return 1
		}
		return 0
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		return safeFloat(n)
	default:
		return 0
	}
}

// ToBool converts an arbitrary value to a boolean. nil, false, zero, NaN,
// and the empty string are false; everything else is true.
func ToBool(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case float64:
		return value != 0 && !math.IsNaN(value)
	case string:
		return value != ""
	default:
		return true
	}
}

func safeFloat(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// CleanText strips C0/C1 control characters (including DEL) from s and trims
// surrounding whitespace. Run on every string before it is serialized for
// encryption so stray control bytes cannot end up inside sealed payloads.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || (r >= 0x7F && r <= 0x9F) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// DeepClean walks v recursively and returns a copy with every string cleaned
// (see CleanText) and every non-finite number coerced to 0. Maps and slices
// are rebuilt; scalar types other than string/float64/bool fall back to their
// text representation, mirroring what a JSON round-trip produces.
func DeepClean(v any) any {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return CleanText(value)
	case float64:
		return safeFloat(value)
	case bool:
		return value
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = DeepClean(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = DeepClean(item)
		}
		return out
	default:
		return ToText(value)
	}
}
