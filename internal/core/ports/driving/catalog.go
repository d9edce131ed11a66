package driving

import (
	"context"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

// CatalogService is the read side of the catalog.
type CatalogService interface {
	GetProduct(ctx context.Context, site, productID string) (*domain.StoredProduct, error)
	SearchProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.StoredProduct, error)
	ProductStats(ctx context.Context) (*domain.Stats, error)

	GetListing(ctx context.Context, site, listingID string) (*domain.StoredListing, error)
	SearchListings(ctx context.Context, filter domain.ListingFilter) ([]domain.StoredListing, error)
	ListingStats(ctx context.Context) (*domain.Stats, error)
}
