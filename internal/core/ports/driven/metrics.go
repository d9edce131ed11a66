package driven

import (
	"time"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

// Metrics records routing and storage outcomes.
type Metrics interface {
	// JobReceived counts one job event by final state.
	JobReceived(state domain.JobState)

	// Extracted records one extraction run.
	Extracted(kind domain.Kind, strategy string, entities int, failed bool, took time.Duration)

	// Upserted records the outcome of one bulk upsert.
	Upserted(kind domain.Kind, summary domain.UpsertSummary)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) JobReceived(domain.JobState) {}

func (NopMetrics) Extracted(domain.Kind, string, int, bool, time.Duration) {}

func (NopMetrics) Upserted(domain.Kind, domain.UpsertSummary) {}
