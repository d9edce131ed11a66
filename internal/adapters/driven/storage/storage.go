// Package storage holds behaviour shared by every catalog store backend.
package storage

import (
	"context"
	"errors"
	"sort"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/logger"
)

// UpsertFunc upserts one entity and reports whether it was newly inserted.
type UpsertFunc[T any] func(ctx context.Context, item T) (inserted bool, err error)

// UpsertEach applies upsert to every item independently. A failing item is
// counted and logged, and the loop moves on. An error wrapping
// domain.ErrStoreUnavailable, or a cancelled context, stops the batch and
// is returned with the partial summary.
func UpsertEach[T any](ctx context.Context, items []T, upsert UpsertFunc[T]) (domain.UpsertSummary, error) {
	var summary domain.UpsertSummary
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		inserted, err := upsert(ctx, item)
		switch {
		case err == nil && inserted:
			summary.Inserted++
		case err == nil:
			summary.Updated++
		case errors.Is(err, domain.ErrStoreUnavailable):
			summary.Errors++
			return summary, err
		default:
			summary.Errors++
			logger.Warn("upsert item %d failed: %v", i, err)
		}
	}
	return summary, nil
}

// Groups turns a count map into buckets sorted by count descending, then
// key ascending. Empty keys are dropped. limit <= 0 keeps every bucket.
func Groups(counts map[string]int, limit int) []domain.GroupCount {
	out := make([]domain.GroupCount, 0, len(counts))
	for k, n := range counts {
		if k == "" {
			continue
		}
		out = append(out, domain.GroupCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ValidateKey rejects entities that cannot be keyed.
func ValidateKey(id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	return nil
}
