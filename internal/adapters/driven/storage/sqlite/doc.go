// Package sqlite provides a SQLite-based implementation of the catalog
// store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements several store interfaces
// through a single database connection:
//
//   - ProductStore: versioned product upserts, search and stats
//   - ListingStore: versioned listing upserts, search and stats
//   - JobStore: raw job event persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Canonical entities are kept as JSON in a data column; the columns used for
// filtering and grouping are denormalised next to it. Timestamps are stored
// as Unix nanoseconds.
//
// # Data Location
//
// By default, the database is stored at ~/.extracto/data/catalog.db
//
// # Thread Safety
//
// All operations are thread-safe. The pool is limited to one connection, so
// every upsert transaction (read, compute, write) runs alone and concurrent
// upserts of the same key cannot lose a version.
package sqlite
