package pipeline

import (
	"strconv"
	"strings"
	"unicode"
)

// numericJunk is the set of currency, grouping and percent symbols
// stripped from a cell before parsing. Upstream exports decorate
// numeric columns with these freely ("₹1,234.50", "85 %").
const numericJunk = ",₹$€£¥%"

// Coerce parses a raw cell value into a finite number, absorbing every
// failure into 0. Malformed cells must never abort a load; a chart over
// slightly degraded data beats no chart. The second return reports
// whether the value was a non-empty cell that fell back to 0, so loads
// can count degraded rows without changing the default.
func Coerce(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return v, false
	case float32:
		return float64(v), false
	case int:
		return float64(v), false
	case int32:
		return float64(v), false
	case int64:
		return float64(v), false
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		cleaned := strings.Map(func(r rune) rune {
			if strings.ContainsRune(numericJunk, r) || unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s)
		n, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, true
		}
		return n, false
	default:
		return 0, true
	}
}

// CoerceNumber is Coerce without the fallback report, for callers that
// only want the value.
func CoerceNumber(raw any) float64 {
	n, _ := Coerce(raw)
	return n
}

// cellString renders a raw cell as a trimmed string; non-string scalars
// keep their natural formatting so grouping keys stay readable.
func cellString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// cellEmpty reports whether a raw cell carries no data at all.
func cellEmpty(raw any) bool {
	if raw == nil {
		return true
	}
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
