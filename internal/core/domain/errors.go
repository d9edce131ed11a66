package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedKind indicates an unknown entity kind.
	ErrUnsupportedKind = errors.New("unsupported entity kind")

	// ErrStoreUnavailable indicates the backing store cannot be reached.
	// It is fatal for a batch: no further upserts can succeed, so callers
	// must stop processing instead of retrying item by item.
	ErrStoreUnavailable = errors.New("store unavailable")
)
