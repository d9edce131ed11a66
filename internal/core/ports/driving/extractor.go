package driving

import "github.com/KKogaa/extracto-storage-service/internal/core/domain"

// Extractor turns a payload into canonical entities of one kind.
// Extract never fails: problems are reported in the result metadata.
type Extractor[T any] interface {
	Extract(payload domain.Payload, url, jobID string) domain.ExtractionResult[T]

	// Claims reports whether a site-specific strategy claims the payload,
	// ignoring the unconditional fallback.
	Claims(payload domain.Payload, url string) bool

	// Strategies returns the registered strategy names in priority order.
	Strategies() []string
}
