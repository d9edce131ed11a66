package driving

import (
	"context"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

// JobService answers queries about received job events.
type JobService interface {
	GetJob(ctx context.Context, jobID string) (*domain.RawJob, error)

	// JobStats counts jobs per final state. Both states are always present.
	JobStats(ctx context.Context) (map[domain.JobState]int, error)
}
