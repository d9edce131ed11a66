package memory

import (
	"context"
	"sync"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
)

// Ensure JobStore implements the interface.
var _ driven.JobStore = (*JobStore)(nil)

// JobStore is an in-memory implementation of driven.JobStore.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.RawJob
}

// NewJobStore creates a new in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]domain.RawJob),
	}
}

// Save stores or replaces a raw job.
func (s *JobStore) Save(_ context.Context, job domain.RawJob) error {
	if job.JobID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.JobID] = job
	return nil
}

// Get retrieves a raw job by ID.
func (s *JobStore) Get(_ context.Context, jobID string) (*domain.RawJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &job, nil
}

// CountByState returns the number of jobs per final state.
func (s *JobStore) CountByState(_ context.Context) (map[domain.JobState]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.JobState]int)
	for _, job := range s.jobs {
		counts[job.State]++
	}
	return counts, nil
}
