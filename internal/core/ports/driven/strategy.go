package driven

import "github.com/KKogaa/extracto-storage-service/internal/core/domain"

// Strategy parses one payload shape (or one site) into canonical entities.
// Implementations must be stateless: Extract may run concurrently.
type Strategy[T any] interface {
	// Name identifies the strategy in extraction metadata and logs.
	Name() string

	// CanHandle reports whether this strategy claims the payload.
	CanHandle(payload domain.Payload, url string) bool

	// Extract maps the payload to entities. Malformed raw records are
	// dropped, not reported: one bad record yields one fewer entity.
	Extract(payload domain.Payload, url, jobID string) ([]T, error)
}
