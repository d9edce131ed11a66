package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
)

// jobStore implements driven.JobStore.
type jobStore struct {
	store *Store
}

var _ driven.JobStore = (*jobStore)(nil)

// Save stores or replaces a raw job.
func (s *jobStore) Save(ctx context.Context, job domain.RawJob) error {
	if job.JobID == "" {
		return domain.ErrInvalidInput
	}
	if job.ReceivedAt.IsZero() {
		job.ReceivedAt = s.store.now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO jobs (job_id, url, domain, state, failure_reason, result, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			url = excluded.url,
			domain = excluded.domain,
			state = excluded.state,
			failure_reason = excluded.failure_reason,
			result = excluded.result,
			received_at = excluded.received_at
	`, job.JobID, job.URL, job.Domain, string(job.State), job.FailureReason, job.Result, toNanos(job.ReceivedAt))
	return wrapErr("saving job", err)
}

// Get retrieves a raw job by ID.
func (s *jobStore) Get(ctx context.Context, jobID string) (*domain.RawJob, error) {
	var job domain.RawJob
	var state string
	var receivedAt int64
	err := s.store.db.QueryRowContext(ctx, `
		SELECT job_id, url, domain, state, failure_reason, result, received_at
		FROM jobs WHERE job_id = ?
	`, jobID).Scan(&job.JobID, &job.URL, &job.Domain, &state, &job.FailureReason, &job.Result, &receivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("scanning job", err)
	}
	job.State = domain.JobState(state)
	job.ReceivedAt = fromNanos(receivedAt)
	return &job, nil
}

// CountByState returns the number of jobs per final state.
func (s *jobStore) CountByState(ctx context.Context) (map[domain.JobState]int, error) {
	raw, err := groupCounts(ctx, s.store.db, "jobs", "state")
	if err != nil {
		return nil, fmt.Errorf("counting jobs: %w", err)
	}
	counts := make(map[domain.JobState]int, len(raw))
	for state, n := range raw {
		counts[domain.JobState(state)] = n
	}
	return counts, nil
}
