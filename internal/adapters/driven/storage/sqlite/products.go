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

const productsTable = "products"

// productStore implements driven.ProductStore.
type productStore struct {
	store *Store
}

var _ driven.ProductStore = (*productStore)(nil)

// UpsertOne inserts or updates a product.
func (s *productStore) UpsertOne(ctx context.Context, p domain.Product) error {
	_, err := s.upsert(ctx, p)
	return err
}

// UpsertMany upserts each product in its own transaction.
func (s *productStore) UpsertMany(ctx context.Context, products []domain.Product) (domain.UpsertSummary, error) {
	return storage.UpsertEach(ctx, products, s.upsert)
}

func (s *productStore) upsert(ctx context.Context, p domain.Product) (bool, error) {
	if err := storage.ValidateKey(p.ProductID); err != nil {
		return false, err
	}
	key := p.Key()
	data, err := json.Marshal(p)
	if err != nil {
		return false, fmt.Errorf("marshalling product: %w", err)
	}

	var inserted bool
	err = s.store.withTx(ctx, func(tx *sql.Tx) error {
		tracking, isNew, err := nextTracking(ctx, tx, productsTable, key, p.Price, s.store.now())
		if err != nil {
			return err
		}
		inserted = isNew

		history, err := json.Marshal(tracking.PriceHistory)
		if err != nil {
			return fmt.Errorf("marshalling price history: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (unique_key, domain, product_id, name, description, brand, category, rating_value,
				price_amount, price_currency, data, price_history, version,
				first_seen_at, last_seen_at, last_updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(unique_key) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				brand = excluded.brand,
				category = excluded.category,
				rating_value = excluded.rating_value,
				price_amount = excluded.price_amount,
				price_currency = excluded.price_currency,
				data = excluded.data,
				price_history = excluded.price_history,
				version = excluded.version,
				last_seen_at = excluded.last_seen_at,
				last_updated_at = excluded.last_updated_at
		`, key, p.Source.Domain, p.ProductID, p.Name, p.Description, p.Brand, p.Category, ratingValue(p.Rating),
			p.Price.Amount, p.Price.Currency, string(data), string(history), tracking.Version,
			toNanos(tracking.FirstSeenAt), toNanos(tracking.LastSeenAt), toNanos(tracking.LastUpdatedAt))
		return wrapErr("saving product", err)
	})
	return inserted, err
}

const productColumns = `data, unique_key, price_history, version, first_seen_at, last_seen_at, last_updated_at`

// Get retrieves a product by site and ID.
func (s *productStore) Get(ctx context.Context, site, productID string) (*domain.StoredProduct, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE unique_key = ?`,
		domain.UniqueKey(site, productID))

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Search returns matching products, most recently seen first.
func (s *productStore) Search(ctx context.Context, f domain.ProductFilter) ([]domain.StoredProduct, error) {
	var where []string
	var args []any
	if f.Domain != "" {
		where = append(where, "domain = ?")
		args = append(args, f.Domain)
	}
	if f.Brand != "" {
		where = append(where, "brand = ? COLLATE NOCASE")
		args = append(args, f.Brand)
	}
	if f.Category != "" {
		where = append(where, "category = ? COLLATE NOCASE")
		args = append(args, f.Category)
	}
	if f.MinPrice != nil {
		where = append(where, "price_amount >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		where = append(where, "price_amount <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.Text != "" {
		where = append(where, `(name LIKE ? ESCAPE '\' OR brand LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`)
		pattern := likePattern(f.Text)
		args = append(args, pattern, pattern, pattern)
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	limit, skip := limitOffset(f.Limit, f.Skip)
	query += " ORDER BY last_seen_at DESC, unique_key ASC LIMIT ? OFFSET ?"
	args = append(args, limit, skip)

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("querying products", err)
	}
	defer rows.Close()

	products := []domain.StoredProduct{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}
	return products, nil
}

// Stats counts products by domain and brand.
func (s *productStore) Stats(ctx context.Context) (*domain.Stats, error) {
	total, err := countRows(ctx, s.store.db, productsTable)
	if err != nil {
		return nil, err
	}
	byDomain, err := groupCounts(ctx, s.store.db, productsTable, "domain")
	if err != nil {
		return nil, err
	}
	byBrand, err := groupCounts(ctx, s.store.db, productsTable, "brand")
	if err != nil {
		return nil, err
	}
	return &domain.Stats{
		Total:      total,
		ByDomain:   storage.Groups(byDomain, 0),
		GroupField: "brand",
		ByGroup:    storage.Groups(byBrand, domain.TopBrands),
	}, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*domain.StoredProduct, error) {
	var data string
	var tracking domain.Tracking
	var history string
	var first, last, updated int64
	if err := row.Scan(&data, &tracking.UniqueKey, &history, &tracking.Version, &first, &last, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, wrapErr("scanning product", err)
	}

	var p domain.StoredProduct
	if err := json.Unmarshal([]byte(data), &p.Product); err != nil {
		return nil, fmt.Errorf("unmarshaling product: %w", err)
	}
	if err := json.Unmarshal([]byte(history), &tracking.PriceHistory); err != nil {
		return nil, fmt.Errorf("unmarshaling price history: %w", err)
	}
	tracking.FirstSeenAt = fromNanos(first)
	tracking.LastSeenAt = fromNanos(last)
	tracking.LastUpdatedAt = fromNanos(updated)
	p.Tracking = tracking
	return &p, nil
}

func ratingValue(r *domain.Rating) float64 {
	if r == nil {
		return 0
	}
	return r.Value
}
