package driven

import (
	"context"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

// JobStore keeps the raw record of every job event.
type JobStore interface {
	// Save stores or replaces the raw record for a job.
	Save(ctx context.Context, job domain.RawJob) error

	// Get retrieves a raw job by ID, or domain.ErrNotFound.
	Get(ctx context.Context, jobID string) (*domain.RawJob, error)

	// CountByState returns the number of jobs per final state.
	CountByState(ctx context.Context) (map[domain.JobState]int, error)
}
