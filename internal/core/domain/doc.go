// Package domain defines the core business entities for extracto.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Product, Listing: canonical entities produced by extraction
//   - StoredProduct, StoredListing: canonical entities plus tracking metadata
//   - Payload: a scraped job result before extraction
//   - JobEvent, RawJob: job-finished notifications and their raw record
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
