package memory

import (
	"strings"
	"time"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

func utcNow() time.Time {
	return time.Now().UTC()
}

// newerFirst orders by lastSeenAt descending, breaking ties by key so
// results are stable across calls.
func newerFirst(a, b domain.Tracking) bool {
	if !a.LastSeenAt.Equal(b.LastSeenAt) {
		return a.LastSeenAt.After(b.LastSeenAt)
	}
	return a.UniqueKey < b.UniqueKey
}

func inRange(v float64, lo, hi *float64) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

// containsText matches a case-insensitive substring in any of the fields.
func containsText(text string, fields ...string) bool {
	if text == "" {
		return true
	}
	needle := strings.ToLower(text)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// page applies skip and limit; limit <= 0 means no limit.
func page[T any](items []T, skip, limit int) []T {
	if skip > 0 {
		if skip >= len(items) {
			return []T{}
		}
		items = items[skip:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	if items == nil {
		return []T{}
	}
	return items
}
