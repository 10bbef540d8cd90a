package normalize

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Candidate keys probed, in order, when extracting a display string from an
// object-shaped value.
var stringProbeKeys = []string{"name", "label", "value", "title", "code", "id"}

// Candidate keys probed, in order, when extracting a number from an
// object-shaped value.
var numberProbeKeys = []string{"count", "total", "value", "n", "score", "nombre"}

// SafeString extracts a human-usable string from an arbitrarily shaped value.
//
// Strings are trimmed; the literals "[object Object]" and "NaN" (frequent in
// upstream exports) are rejected. Finite numbers are stringified. Arrays are
// recursively extracted then joined by ", " with blanks filtered out. Objects
// are probed for the usual identifier keys, then fall back to their first
// non-empty string value, then their first finite numeric value. Anything else
// yields the fallback.
func SafeString(v any, fallback string) string {
	switch val := v.(type) {
	case nil:
		return fallback
	case string:
		s := strings.TrimSpace(val)
		if s == "" || s == "[object Object]" || s == "NaN" {
			return fallback
		}
		return s
	case bool:
		if val {
			return "oui"
		}
		return "non"
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fallback
		}
		return formatNumber(val)
	case int:
		return strconv.Itoa(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := SafeString(item, ""); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return fallback
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		for _, key := range stringProbeKeys {
			if inner, ok := val[key]; ok {
				if s := SafeString(inner, ""); s != "" {
					return s
				}
			}
		}
		// Fall back to the first non-empty string value, then the first
		// finite number. Keys are visited in sorted order so the result is
		// deterministic regardless of map iteration order.
		keys := sortedKeys(val)
		for _, k := range keys {
			if s, ok := val[k].(string); ok {
				s = strings.TrimSpace(s)
				if s != "" && s != "[object Object]" && s != "NaN" {
					return s
				}
			}
		}
		for _, k := range keys {
			if n, ok := val[k].(float64); ok && !math.IsNaN(n) && !math.IsInf(n, 0) {
				return formatNumber(n)
			}
		}
		return fallback
	default:
		return fallback
	}
}

// SafeNumber extracts a finite number from an arbitrarily shaped value.
// It accepts numbers, locale-formatted numeric strings ("1 250 000,50"),
// and objects carrying a count-like key. Returns nil on failure, never NaN.
func SafeNumber(v any) *float64 {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		return finite(val)
	case int:
		f := float64(val)
		return &f
	case bool:
		return nil
	case string:
		return parseLocaleNumber(val)
	case []any:
		// Arrays are ambiguous; a single-element array is unwrapped.
		if len(val) == 1 {
			return SafeNumber(val[0])
		}
		return nil
	case map[string]any:
		for _, key := range numberProbeKeys {
			if inner, ok := val[key]; ok {
				if n := SafeNumber(inner); n != nil {
					return n
				}
			}
		}
		for _, k := range sortedKeys(val) {
			if n, ok := val[k].(float64); ok {
				if f := finite(n); f != nil {
					return f
				}
			}
		}
		return nil
	default:
		return nil
	}
}

// Dig walks obj through the given keys, short-circuiting to nil as soon as an
// intermediate value is not an object.
func Dig(obj any, keys ...string) any {
	current := obj
	for _, key := range keys {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[key]
		if !ok {
			return nil
		}
	}
	return current
}

// parseLocaleNumber parses numeric strings tolerant of French formatting:
// regular/non-breaking/narrow spaces as thousand separators, comma as decimal
// separator, optional unit suffixes ("250 000 €", "7,2 %").
func parseLocaleNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "NaN" {
		return nil
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', ' ':
			return -1
		case ',':
			return '.'
		}
		return r
	}, s)
	cleaned = strings.TrimRight(cleaned, "€%$kK")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
