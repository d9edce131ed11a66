package domain

import (
	"encoding/json"
	"time"
)

// JobState is the terminal state of a crawl job.
type JobState string

const (
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
)

// Kind is the entity family a payload is routed to.
type Kind string

const (
	KindCommerce   Kind = "commerce"
	KindRealEstate Kind = "real_estate"
)

// JobEvent is a "job finished" notification from the crawl queue.
type JobEvent struct {
	JobID         string          `json:"jobId"`
	URL           string          `json:"url"`
	Result        json.RawMessage `json:"resultPayload,omitempty"`
	State         JobState        `json:"finalState"`
	FailureReason string          `json:"failureReason,omitempty"`
}

// Validate checks the fields every event must carry.
func (e JobEvent) Validate() error {
	if e.URL == "" {
		return ErrInvalidInput
	}
	switch e.State {
	case JobCompleted, JobFailed:
		return nil
	default:
		return ErrInvalidInput
	}
}

// RawJob is the record kept for every job event, completed or failed.
type RawJob struct {
	JobID         string    `json:"jobId"`
	URL           string    `json:"url"`
	Domain        string    `json:"domain"`
	State         JobState  `json:"state"`
	FailureReason string    `json:"failureReason,omitempty"`
	Result        []byte    `json:"-"`
	ReceivedAt    time.Time `json:"receivedAt"`
}

// RouteResult summarises how one job event was handled.
type RouteResult struct {
	JobID     string        `json:"jobId"`
	Kind      Kind          `json:"kind,omitempty"`
	Strategy  string        `json:"strategy,omitempty"`
	Extracted int           `json:"extracted"`
	Summary   UpsertSummary `json:"summary"`
	Errors    []string      `json:"errors,omitempty"`
	Skipped   bool          `json:"skipped,omitempty"`
}
