package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

func listing(id, district string, lt domain.ListingType, amount float64, beds int) domain.Listing {
	return domain.Listing{
		ListingID:   id,
		Title:       "Departamento " + id,
		ListingType: lt,
		Price:       domain.Price{Amount: amount, Currency: "PEN"},
		Location:    domain.Location{District: district, City: "Lima"},
		Features:    domain.Features{Bedrooms: beds},
		Source:      domain.Provenance{Domain: "urbania"},
	}
}

func newListingStore() *ListingStore {
	s := NewListingStore()
	s.now = tick(epoch)
	return s
}

func TestListingStore_Upsert(t *testing.T) {
	store := newListingStore()
	ctx := context.Background()

	summary, err := store.UpsertMany(ctx, []domain.Listing{
		listing("1", "Miraflores", domain.ListingRent, 2500, 2),
		listing("1", "Miraflores", domain.ListingRent, 2400, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UpsertSummary{Inserted: 1, Updated: 1}, summary)

	got, err := store.Get(ctx, "urbania", "1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	require.Len(t, got.PriceHistory, 2)
	assert.Equal(t, 2400.0, got.Price.Amount)
	assert.Equal(t, epoch.Add(time.Second), got.FirstSeenAt)
}

func TestListingStore_SearchAndStats(t *testing.T) {
	store := newListingStore()
	ctx := context.Background()

	for _, l := range []domain.Listing{
		listing("1", "Miraflores", domain.ListingRent, 2500, 2),
		listing("2", "Miraflores", domain.ListingSale, 300000, 3),
		listing("3", "Barranco", domain.ListingRent, 1800, 1),
		listing("4", "", domain.ListingRent, 900, 0),
	} {
		require.NoError(t, store.UpsertOne(ctx, l))
	}

	rent, err := store.Search(ctx, domain.ListingFilter{ListingType: domain.ListingRent})
	require.NoError(t, err)
	assert.Len(t, rent, 3)

	big, err := store.Search(ctx, domain.ListingFilter{MinBedrooms: 2, District: "miraflores"})
	require.NoError(t, err)
	assert.Len(t, big, 2)

	ceiling := 2000.0
	cheap, err := store.Search(ctx, domain.ListingFilter{MaxPrice: &ceiling, City: "Lima"})
	require.NoError(t, err)
	assert.Len(t, cheap, 2)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, "district", stats.GroupField)
	assert.Equal(t, []domain.GroupCount{{Key: "Miraflores", Count: 2}, {Key: "Barranco", Count: 1}}, stats.ByGroup)
	assert.Equal(t, []domain.GroupCount{{Key: "rent", Count: 3}, {Key: "sale", Count: 1}}, stats.ByType)
}

func TestListingStore_GetNotFound(t *testing.T) {
	_, err := newListingStore().Get(context.Background(), "urbania", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListingStore_TextSearchCoversDistrict(t *testing.T) {
	store := newListingStore()
	ctx := context.Background()

	require.NoError(t, store.UpsertOne(ctx, listing("1", "Miraflores", domain.ListingRent, 2500, 2)))
	require.NoError(t, store.UpsertOne(ctx, listing("2", "Barranco", domain.ListingRent, 1800, 1)))

	hits, err := store.Search(ctx, domain.ListingFilter{Text: "miraflores"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "1", hits[0].ListingID)
}
