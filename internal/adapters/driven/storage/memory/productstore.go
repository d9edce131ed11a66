package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/KKogaa/extracto-storage-service/internal/adapters/driven/storage"
	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
)

// Ensure ProductStore implements the interface.
var _ driven.ProductStore = (*ProductStore)(nil)

// ProductStore is an in-memory implementation of driven.ProductStore.
// The whole read-compute-write of an upsert runs under one lock.
type ProductStore struct {
	mu       sync.RWMutex
	products map[string]domain.StoredProduct
	now      func() time.Time
}

// NewProductStore creates a new in-memory product store.
func NewProductStore() *ProductStore {
	return &ProductStore{
		products: make(map[string]domain.StoredProduct),
		now:      utcNow,
	}
}

// UpsertOne inserts or updates a product.
func (s *ProductStore) UpsertOne(ctx context.Context, p domain.Product) error {
	_, err := s.upsert(ctx, p)
	return err
}

// UpsertMany upserts each product independently.
func (s *ProductStore) UpsertMany(ctx context.Context, products []domain.Product) (domain.UpsertSummary, error) {
	return storage.UpsertEach(ctx, products, s.upsert)
}

func (s *ProductStore) upsert(_ context.Context, p domain.Product) (bool, error) {
	if err := storage.ValidateKey(p.ProductID); err != nil {
		return false, err
	}
	key := p.Key()

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	existing, ok := s.products[key]
	if !ok {
		s.products[key] = domain.StoredProduct{Product: p, Tracking: domain.NewTracking(key, p.Price, now)}
		return true, nil
	}
	s.products[key] = domain.StoredProduct{
		Product:  p,
		Tracking: existing.Tracking.Advance(existing.Price, p.Price, now),
	}
	return false, nil
}

// Get retrieves a product by site and ID.
func (s *ProductStore) Get(_ context.Context, site, productID string) (*domain.StoredProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[domain.UniqueKey(site, productID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// Search returns matching products, most recently seen first.
func (s *ProductStore) Search(_ context.Context, f domain.ProductFilter) ([]domain.StoredProduct, error) {
	s.mu.RLock()
	var result []domain.StoredProduct
	for _, p := range s.products {
		if matchProduct(p, f) {
			result = append(result, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return newerFirst(result[i].Tracking, result[j].Tracking)
	})
	return page(result, f.Skip, f.Limit), nil
}

// Stats counts products by domain and brand.
func (s *ProductStore) Stats(_ context.Context) (*domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byDomain := make(map[string]int)
	byBrand := make(map[string]int)
	for _, p := range s.products {
		byDomain[p.Source.Domain]++
		byBrand[p.Brand]++
	}
	return &domain.Stats{
		Total:      len(s.products),
		ByDomain:   storage.Groups(byDomain, 0),
		GroupField: "brand",
		ByGroup:    storage.Groups(byBrand, domain.TopBrands),
	}, nil
}

func matchProduct(p domain.StoredProduct, f domain.ProductFilter) bool {
	if f.Domain != "" && p.Source.Domain != f.Domain {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if !inRange(p.Price.Amount, f.MinPrice, f.MaxPrice) {
		return false
	}
	return containsText(f.Text, p.Name, p.Brand, p.Description)
}
