package driven

import (
	"context"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

// ProductStore is the versioned upsert store for products.
//
// Upsert rules:
//   - first upsert of a key inserts version 1 with a one-entry price history
//   - every later upsert overwrites canonical fields, bumps version by one,
//     refreshes lastSeenAt/lastUpdatedAt and keeps firstSeenAt
//   - a price history entry is appended only when amount or currency changed,
//     keeping the newest domain.MaxPriceHistory entries
//
// Errors wrapping domain.ErrStoreUnavailable are fatal for the caller.
type ProductStore interface {
	// UpsertOne inserts or updates a single product.
	UpsertOne(ctx context.Context, p domain.Product) error

	// UpsertMany upserts each product independently. A failing item is
	// counted in Errors; only store unavailability aborts the batch.
	UpsertMany(ctx context.Context, products []domain.Product) (domain.UpsertSummary, error)

	// Get returns the product stored under domain:id, or domain.ErrNotFound.
	Get(ctx context.Context, site, productID string) (*domain.StoredProduct, error)

	// Search returns products matching filter, most recently seen first.
	Search(ctx context.Context, filter domain.ProductFilter) ([]domain.StoredProduct, error)

	// Stats returns grouped counts by domain and brand.
	Stats(ctx context.Context) (*domain.Stats, error)
}

// ListingStore is the versioned upsert store for real-estate listings.
// It follows the same upsert rules as ProductStore.
type ListingStore interface {
	// UpsertOne inserts or updates a single listing.
	UpsertOne(ctx context.Context, l domain.Listing) error

	// UpsertMany upserts each listing independently.
	UpsertMany(ctx context.Context, listings []domain.Listing) (domain.UpsertSummary, error)

	// Get returns the listing stored under domain:id, or domain.ErrNotFound.
	Get(ctx context.Context, site, listingID string) (*domain.StoredListing, error)

	// Search returns listings matching filter, most recently seen first.
	Search(ctx context.Context, filter domain.ListingFilter) ([]domain.StoredListing, error)

	// Stats returns grouped counts by domain, district and listing type.
	Stats(ctx context.Context) (*domain.Stats, error)
}
