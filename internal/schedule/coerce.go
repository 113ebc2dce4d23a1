package schedule

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var falseWords = map[string]bool{
	"":      true,
	"false": true,
	"0":     true,
	"no":    true,
	"なし":    true,
}

// Truthy coerces the boolean-ish values found in reservation documents.
// Arrays are true when any element is.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return !falseWords[strings.ToLower(strings.TrimSpace(x))]
	case []any:
		for _, e := range x {
			if Truthy(e) {
				return true
			}
		}
		return false
	case []string:
		for _, e := range x {
			if Truthy(e) {
				return true
			}
		}
		return false
	case []bool:
		for _, e := range x {
			if e {
				return true
			}
		}
		return false
	}

	if f, ok := toFloat(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// toFloat accepts the numeric types produced by encoding/json and Go callers.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// toInt reads a non-negative integer from numbers and numeric strings.
func toInt(v any) (int, bool) {
	if f, ok := toFloat(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return max(int(f), 0), true
	}
	if s, ok := v.(string); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		return max(int(n), 0), true
	}
	return 0, false
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// collectStrings flattens strings, numbers, comma-separated lists and arrays.
func collectStrings(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		var out []string
		for _, part := range strings.Split(x, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []string:
		var out []string
		for _, e := range x {
			out = append(out, collectStrings(e)...)
		}
		return out
	case []any:
		var out []string
		for _, e := range x {
			out = append(out, collectStrings(e)...)
		}
		return out
	}
	if s := toString(v); s != "" {
		return []string{s}
	}
	return nil
}
