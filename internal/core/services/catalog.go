package services

import (
	"context"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driving"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// Page size bounds for catalog searches.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// CatalogService answers read queries over the stored catalog.
type CatalogService struct {
	products driven.ProductStore
	listings driven.ListingStore
}

// NewCatalogService creates a catalog service.
func NewCatalogService(products driven.ProductStore, listings driven.ListingStore) *CatalogService {
	return &CatalogService{products: products, listings: listings}
}

// GetProduct returns one stored product.
func (s *CatalogService) GetProduct(ctx context.Context, site, productID string) (*domain.StoredProduct, error) {
	if site == "" || productID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.products.Get(ctx, site, productID)
}

// SearchProducts returns one page of matching products.
func (s *CatalogService) SearchProducts(ctx context.Context, f domain.ProductFilter) ([]domain.StoredProduct, error) {
	if err := checkRange(f.MinPrice, f.MaxPrice, f.Skip); err != nil {
		return nil, err
	}
	f.Limit = clampLimit(f.Limit)
	return s.products.Search(ctx, f)
}

// ProductStats returns grouped product counts.
func (s *CatalogService) ProductStats(ctx context.Context) (*domain.Stats, error) {
	return s.products.Stats(ctx)
}

// GetListing returns one stored listing.
func (s *CatalogService) GetListing(ctx context.Context, site, listingID string) (*domain.StoredListing, error) {
	if site == "" || listingID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.listings.Get(ctx, site, listingID)
}

// SearchListings returns one page of matching listings.
func (s *CatalogService) SearchListings(ctx context.Context, f domain.ListingFilter) ([]domain.StoredListing, error) {
	if err := checkRange(f.MinPrice, f.MaxPrice, f.Skip); err != nil {
		return nil, err
	}
	switch f.ListingType {
	case "", domain.ListingSale, domain.ListingRent:
	default:
		return nil, domain.ErrInvalidInput
	}
	f.Limit = clampLimit(f.Limit)
	return s.listings.Search(ctx, f)
}

// ListingStats returns grouped listing counts.
func (s *CatalogService) ListingStats(ctx context.Context) (*domain.Stats, error) {
	return s.listings.Stats(ctx)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func checkRange(lo, hi *float64, skip int) error {
	if skip < 0 || (lo != nil && hi != nil && *lo > *hi) {
		return domain.ErrInvalidInput
	}
	return nil
}
