package scoring

import (
	"math"
	"strconv"
	"strings"
)

// Coerce turns a declared metric value into a float.
// Numbers pass through, strings are trimmed and may carry a trailing "%".
// Booleans, NaN, infinities and anything unparsable are rejected.
func Coerce(raw any) (float64, bool) {
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case int32:
		v = float64(n)
	case uint64:
		v = float64(n)
	case uint:
		v = float64(n)
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// InferUnit returns the declared unit, or "%" when none is declared and the
// raw value was a percent string.
func InferUnit(raw any, declared string) string {
	if declared != "" {
		return declared
	}
	if s, ok := raw.(string); ok && strings.HasSuffix(strings.TrimSpace(s), "%") {
		return "%"
	}
	return ""
}

// Round2 rounds to two decimals, halves to even.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
