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

// Ensure ListingStore implements the interface.
var _ driven.ListingStore = (*ListingStore)(nil)

// ListingStore is an in-memory implementation of driven.ListingStore.
type ListingStore struct {
	mu       sync.RWMutex
	listings map[string]domain.StoredListing
	now      func() time.Time
}

// NewListingStore creates a new in-memory listing store.
func NewListingStore() *ListingStore {
	return &ListingStore{
		listings: make(map[string]domain.StoredListing),
		now:      utcNow,
	}
}

// UpsertOne inserts or updates a listing.
func (s *ListingStore) UpsertOne(ctx context.Context, l domain.Listing) error {
	_, err := s.upsert(ctx, l)
	return err
}

// UpsertMany upserts each listing independently.
func (s *ListingStore) UpsertMany(ctx context.Context, listings []domain.Listing) (domain.UpsertSummary, error) {
	return storage.UpsertEach(ctx, listings, s.upsert)
}

func (s *ListingStore) upsert(_ context.Context, l domain.Listing) (bool, error) {
	if err := storage.ValidateKey(l.ListingID); err != nil {
		return false, err
	}
	key := l.Key()

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	existing, ok := s.listings[key]
	if !ok {
		s.listings[key] = domain.StoredListing{Listing: l, Tracking: domain.NewTracking(key, l.Price, now)}
		return true, nil
	}
	s.listings[key] = domain.StoredListing{
		Listing:  l,
		Tracking: existing.Tracking.Advance(existing.Price, l.Price, now),
	}
	return false, nil
}

// Get retrieves a listing by site and ID.
func (s *ListingStore) Get(_ context.Context, site, listingID string) (*domain.StoredListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[domain.UniqueKey(site, listingID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

// Search returns matching listings, most recently seen first.
func (s *ListingStore) Search(_ context.Context, f domain.ListingFilter) ([]domain.StoredListing, error) {
	s.mu.RLock()
	var result []domain.StoredListing
	for _, l := range s.listings {
		if matchListing(l, f) {
			result = append(result, l)
		}
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return newerFirst(result[i].Tracking, result[j].Tracking)
	})
	return page(result, f.Skip, f.Limit), nil
}

// Stats counts listings by domain, district and listing type.
func (s *ListingStore) Stats(_ context.Context) (*domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byDomain := make(map[string]int)
	byDistrict := make(map[string]int)
	byType := make(map[string]int)
	for _, l := range s.listings {
		byDomain[l.Source.Domain]++
		byDistrict[l.Location.District]++
		byType[string(l.ListingType)]++
	}
	return &domain.Stats{
		Total:      len(s.listings),
		ByDomain:   storage.Groups(byDomain, 0),
		GroupField: "district",
		ByGroup:    storage.Groups(byDistrict, domain.TopDistricts),
		ByType:     storage.Groups(byType, 0),
	}, nil
}

func matchListing(l domain.StoredListing, f domain.ListingFilter) bool {
	switch {
	case f.Domain != "" && l.Source.Domain != f.Domain:
		return false
	case f.ListingType != "" && l.ListingType != f.ListingType:
		return false
	case f.PropertyType != "" && !strings.EqualFold(l.PropertyType, f.PropertyType):
		return false
	case f.District != "" && !strings.EqualFold(l.Location.District, f.District):
		return false
	case f.City != "" && !strings.EqualFold(l.Location.City, f.City):
		return false
	case f.MinBedrooms > 0 && l.Features.Bedrooms < f.MinBedrooms:
		return false
	case !inRange(l.Price.Amount, f.MinPrice, f.MaxPrice):
		return false
	}
	return containsText(f.Text, l.Title, l.Description, l.Location.District)
}
