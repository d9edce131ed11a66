package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

// Number coerces a numeric or numeric-string value, defaulting to 0.
func Number(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(t, ",", ".")), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Int coerces a value to an integer count, defaulting to 0. Strings such
// as "1,204 reviews" keep only their digits.
func Int(v any) int {
	if s, ok := v.(string); ok {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, s)
		n, err := strconv.Atoi(digits)
		if err != nil {
			return 0
		}
		return n
	}
	return int(Number(v))
}

// BuildRating returns a rating only when both the value and the review
// count are strictly positive. Absence, not zero, means "no rating".
func BuildRating(value, count any) *domain.Rating {
	v := Number(value)
	c := Int(count)
	if v <= 0 || c <= 0 {
		return nil
	}
	return &domain.Rating{Value: v, Count: c}
}
