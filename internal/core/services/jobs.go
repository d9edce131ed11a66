package services

import (
	"context"
	"fmt"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driving"
)

// Ensure JobService implements the interface.
var _ driving.JobService = (*JobService)(nil)

// JobService reads the raw job records kept by the router.
type JobService struct {
	store driven.JobStore
}

// NewJobService creates a job service.
func NewJobService(store driven.JobStore) *JobService {
	return &JobService{store: store}
}

// GetJob returns the raw record of one job.
func (s *JobService) GetJob(ctx context.Context, jobID string) (*domain.RawJob, error) {
	if jobID == "" {
		return nil, fmt.Errorf("empty job id: %w", domain.ErrInvalidInput)
	}
	return s.store.Get(ctx, jobID)
}

// JobStats counts jobs per final state.
func (s *JobService) JobStats(ctx context.Context) (map[domain.JobState]int, error) {
	counts, err := s.store.CountByState(ctx)
	if err != nil {
		return nil, err
	}
	out := map[domain.JobState]int{domain.JobCompleted: 0, domain.JobFailed: 0}
	for state, n := range counts {
		out[state] = n
	}
	return out, nil
}
