package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
)

// jobDocument is the BSON shape of a raw job; the job ID is the _id.
type jobDocument struct {
	ID            string    `bson:"_id"`
	URL           string    `bson:"url"`
	Domain        string    `bson:"domain"`
	State         string    `bson:"state"`
	FailureReason string    `bson:"failureReason,omitempty"`
	Result        []byte    `bson:"result,omitempty"`
	ReceivedAt    time.Time `bson:"receivedAt"`
}

// jobStore implements driven.JobStore.
type jobStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ driven.JobStore = (*jobStore)(nil)

// Save stores or replaces a raw job.
func (s *jobStore) Save(ctx context.Context, job domain.RawJob) error {
	if job.JobID == "" {
		return domain.ErrInvalidInput
	}
	if job.ReceivedAt.IsZero() {
		job.ReceivedAt = s.now()
	}
	doc := jobDocument{
		ID:            job.JobID,
		URL:           job.URL,
		Domain:        job.Domain,
		State:         string(job.State),
		FailureReason: job.FailureReason,
		Result:        job.Result,
		ReceivedAt:    job.ReceivedAt,
	}
	_, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: job.JobID}}, doc, options.Replace().SetUpsert(true))
	return wrapErr("saving job", err)
}

// Get retrieves a raw job by ID.
func (s *jobStore) Get(ctx context.Context, jobID string) (*domain.RawJob, error) {
	var doc jobDocument
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: jobID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("finding job", err)
	}
	return &domain.RawJob{
		JobID:         doc.ID,
		URL:           doc.URL,
		Domain:        doc.Domain,
		State:         domain.JobState(doc.State),
		FailureReason: doc.FailureReason,
		Result:        doc.Result,
		ReceivedAt:    doc.ReceivedAt.UTC(),
	}, nil
}

// CountByState returns the number of jobs per final state.
func (s *jobStore) CountByState(ctx context.Context) (map[domain.JobState]int, error) {
	groups, err := aggregateGroups(ctx, s.coll, "state", 0)
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.JobState]int, len(groups))
	for _, g := range groups {
		counts[domain.JobState(g.Key)] = g.Count
	}
	return counts, nil
}
