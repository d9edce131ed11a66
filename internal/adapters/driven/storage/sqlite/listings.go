package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/KKogaa/extracto-storage-service/internal/adapters/driven/storage"
	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
)

const listingsTable = "real_estate_listings"

// listingStore implements driven.ListingStore.
type listingStore struct {
	store *Store
}

var _ driven.ListingStore = (*listingStore)(nil)

// UpsertOne inserts or updates a listing.
func (s *listingStore) UpsertOne(ctx context.Context, l domain.Listing) error {
	_, err := s.upsert(ctx, l)
	return err
}

// UpsertMany upserts each listing in its own transaction.
func (s *listingStore) UpsertMany(ctx context.Context, listings []domain.Listing) (domain.UpsertSummary, error) {
	return storage.UpsertEach(ctx, listings, s.upsert)
}

func (s *listingStore) upsert(ctx context.Context, l domain.Listing) (bool, error) {
	if err := storage.ValidateKey(l.ListingID); err != nil {
		return false, err
	}
	key := l.Key()
	data, err := json.Marshal(l)
	if err != nil {
		return false, fmt.Errorf("marshalling listing: %w", err)
	}

	var inserted bool
	err = s.store.withTx(ctx, func(tx *sql.Tx) error {
		tracking, isNew, err := nextTracking(ctx, tx, listingsTable, key, l.Price, s.store.now())
		if err != nil {
			return err
		}
		inserted = isNew

		history, err := json.Marshal(tracking.PriceHistory)
		if err != nil {
			return fmt.Errorf("marshalling price history: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO real_estate_listings (unique_key, domain, listing_id, title, description,
				listing_type, property_type, district, city, bedrooms, bathrooms,
				price_amount, price_currency, data, price_history, version,
				first_seen_at, last_seen_at, last_updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(unique_key) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				listing_type = excluded.listing_type,
				property_type = excluded.property_type,
				district = excluded.district,
				city = excluded.city,
				bedrooms = excluded.bedrooms,
				bathrooms = excluded.bathrooms,
				price_amount = excluded.price_amount,
				price_currency = excluded.price_currency,
				data = excluded.data,
				price_history = excluded.price_history,
				version = excluded.version,
				last_seen_at = excluded.last_seen_at,
				last_updated_at = excluded.last_updated_at
		`, key, l.Source.Domain, l.ListingID, l.Title, l.Description,
			string(l.ListingType), l.PropertyType, l.Location.District, l.Location.City, l.Features.Bedrooms, l.Features.Bathrooms,
			l.Price.Amount, l.Price.Currency, string(data), string(history), tracking.Version,
			toNanos(tracking.FirstSeenAt), toNanos(tracking.LastSeenAt), toNanos(tracking.LastUpdatedAt))
		return wrapErr("saving listing", err)
	})
	return inserted, err
}

const listingColumns = `data, unique_key, price_history, version, first_seen_at, last_seen_at, last_updated_at`

// Get retrieves a listing by site and ID.
func (s *listingStore) Get(ctx context.Context, site, listingID string) (*domain.StoredListing, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM real_estate_listings WHERE unique_key = ?`,
		domain.UniqueKey(site, listingID))

	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Search returns matching listings, most recently seen first.
func (s *listingStore) Search(ctx context.Context, f domain.ListingFilter) ([]domain.StoredListing, error) {
	var where []string
	var args []any
	eq := func(clause string, v any) {
		where = append(where, clause)
		args = append(args, v)
	}
	if f.Domain != "" {
		eq("domain = ?", f.Domain)
	}
	if f.ListingType != "" {
		eq("listing_type = ?", string(f.ListingType))
	}
	if f.PropertyType != "" {
		eq("property_type = ? COLLATE NOCASE", f.PropertyType)
	}
	if f.District != "" {
		eq("district = ? COLLATE NOCASE", f.District)
	}
	if f.City != "" {
		eq("city = ? COLLATE NOCASE", f.City)
	}
	if f.MinBedrooms > 0 {
		eq("bedrooms >= ?", f.MinBedrooms)
	}
	if f.MinPrice != nil {
		eq("price_amount >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		eq("price_amount <= ?", *f.MaxPrice)
	}
	if f.Text != "" {
		where = append(where, `(title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR district LIKE ? ESCAPE '\')`)
		pattern := likePattern(f.Text)
		args = append(args, pattern, pattern, pattern)
	}

	query := `SELECT ` + listingColumns + ` FROM real_estate_listings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit, skip := limitOffset(f.Limit, f.Skip)
	query += " ORDER BY last_seen_at DESC, unique_key ASC LIMIT ? OFFSET ?"
	args = append(args, limit, skip)

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("querying listings", err)
	}
	defer rows.Close()

	listings := []domain.StoredListing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating listings: %w", err)
	}
	return listings, nil
}

// Stats counts listings by domain, district and listing type.
func (s *listingStore) Stats(ctx context.Context) (*domain.Stats, error) {
	total, err := countRows(ctx, s.store.db, listingsTable)
	if err != nil {
		return nil, err
	}
	byDomain, err := groupCounts(ctx, s.store.db, listingsTable, "domain")
	if err != nil {
		return nil, err
	}
	byDistrict, err := groupCounts(ctx, s.store.db, listingsTable, "district")
	if err != nil {
		return nil, err
	}
	byType, err := groupCounts(ctx, s.store.db, listingsTable, "listing_type")
	if err != nil {
		return nil, err
	}
	return &domain.Stats{
		Total:      total,
		ByDomain:   storage.Groups(byDomain, 0),
		GroupField: "district",
		ByGroup:    storage.Groups(byDistrict, domain.TopDistricts),
		ByType:     storage.Groups(byType, 0),
	}, nil
}

func scanListing(row scanner) (*domain.StoredListing, error) {
	var data string
	var tracking domain.Tracking
	var history string
	var first, last, updated int64
	if err := row.Scan(&data, &tracking.UniqueKey, &history, &tracking.Version, &first, &last, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, wrapErr("scanning listing", err)
	}

	var l domain.StoredListing
	if err := json.Unmarshal([]byte(data), &l.Listing); err != nil {
		return nil, fmt.Errorf("unmarshaling listing: %w", err)
	}
	if err := json.Unmarshal([]byte(history), &tracking.PriceHistory); err != nil {
		return nil, fmt.Errorf("unmarshaling price history: %w", err)
	}
	tracking.FirstSeenAt = fromNanos(first)
	tracking.LastSeenAt = fromNanos(last)
	tracking.LastUpdatedAt = fromNanos(updated)
	l.Tracking = tracking
	return &l, nil
}
