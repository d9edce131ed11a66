package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/KKogaa/extracto-storage-service/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
)

// DBFile is the database file name inside the data directory.
const DBFile = "catalog.db"

// Store is a unified SQLite-based storage that provides access to
// the catalog store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.extracto/data/catalog.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".extracto", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection: upsert transactions are serialized in-process.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:   db,
		path: dbPath,
		now:  func() time.Time { return time.Now().UTC() },
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return wrapErr("ping", s.db.PingContext(ctx))
}

// ProductStore returns a ProductStore interface backed by this store.
func (s *Store) ProductStore() driven.ProductStore {
	return &productStore{store: s}
}

// ListingStore returns a ListingStore interface backed by this store.
func (s *Store) ListingStore() driven.ListingStore {
	return &listingStore{store: s}
}

// JobStore returns a JobStore interface backed by this store.
func (s *Store) JobStore() driven.JobStore {
	return &jobStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// withTx runs fn in a transaction, committing when fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return wrapErr("commit", tx.Commit())
}

// wrapErr annotates err with op and marks connection-level failures as
// domain.ErrStoreUnavailable.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if unavailable(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func unavailable(err error) bool {
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	// database/sql does not export its closed-pool error.
	return strings.Contains(err.Error(), "database is closed")
}

// ==================== Tracking columns ====================

// trackingRow is the tracking state read back inside an upsert.
type trackingRow struct {
	tracking domain.Tracking
	price    domain.Price
}

// loadTracking reads the tracking columns for key from table within tx.
// found is false when no row exists.
func loadTracking(ctx context.Context, tx *sql.Tx, table, key string) (row trackingRow, found bool, err error) {
	var history string
	var first, last, updated int64
	err = tx.QueryRowContext(ctx, `
		SELECT price_amount, price_currency, price_history, version,
			first_seen_at, last_seen_at, last_updated_at
		FROM `+table+` WHERE unique_key = ?
	`, key).Scan(&row.price.Amount, &row.price.Currency, &history, &row.tracking.Version,
		&first, &last, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return row, false, nil
	}
	if err != nil {
		return row, false, wrapErr("reading tracking", err)
	}

	row.tracking.UniqueKey = key
	row.tracking.FirstSeenAt = fromNanos(first)
	row.tracking.LastSeenAt = fromNanos(last)
	row.tracking.LastUpdatedAt = fromNanos(updated)
	if err := json.Unmarshal([]byte(history), &row.tracking.PriceHistory); err != nil {
		return row, false, fmt.Errorf("unmarshaling price history: %w", err)
	}
	return row, true, nil
}

// nextTracking applies the insert or update rule at now.
func nextTracking(ctx context.Context, tx *sql.Tx, table, key string, price domain.Price, now time.Time) (domain.Tracking, bool, error) {
	row, found, err := loadTracking(ctx, tx, table, key)
	if err != nil {
		return domain.Tracking{}, false, err
	}
	if !found {
		return domain.NewTracking(key, price, now), true, nil
	}
	return row.tracking.Advance(row.price, price, now), false, nil
}

func toNanos(t time.Time) int64 {
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// likePattern builds a case-insensitive substring pattern for LIKE ... ESCAPE '\'.
func likePattern(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(text) + "%"
}

// limitOffset converts a filter page into SQLite LIMIT/OFFSET values.
func limitOffset(limit, skip int) (int, int) {
	if limit <= 0 {
		limit = -1
	}
	if skip < 0 {
		skip = 0
	}
	return limit, skip
}

// groupCounts runs a GROUP BY over column and returns raw counts.
func groupCounts(ctx context.Context, db *sql.DB, table, column string) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM `+table+` GROUP BY `+column)
	if err != nil {
		return nil, wrapErr("grouping "+column, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		counts[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating groups: %w", err)
	}
	return counts, nil
}

func countRows(ctx context.Context, db *sql.DB, table string) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, wrapErr("counting "+table, err)
	}
	return n, nil
}
