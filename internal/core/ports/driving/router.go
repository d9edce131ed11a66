package driving

import (
	"context"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

// JobRouter handles job-finished events end to end: raw record, routing,
// extraction and storage.
type JobRouter interface {
	// Handle processes one event. Extraction and per-item storage problems
	// are reported in the result; the error is reserved for failures that
	// must stop the caller, such as an unreachable store.
	Handle(ctx context.Context, event domain.JobEvent) (*domain.RouteResult, error)
}
