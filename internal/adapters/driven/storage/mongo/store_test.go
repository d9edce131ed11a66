package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

// URIEnv names the variable that enables the integration tests.
const URIEnv = "EXTRACTO_TEST_MONGO_URI"

var epoch = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func ptr(f float64) *float64 { return &f }

func TestUpsertPipeline_Stages(t *testing.T) {
	price := domain.Price{Amount: 19.99, Currency: "USD", Label: "sale"}
	fields := bson.M{"productId": "1", "name": "$weird"}

	p := upsertPipeline("shop:1", fields, price, epoch)
	require.Len(t, p, 2)

	set := p[0].Map()["$set"].(bson.D).Map()
	assert.Equal(t, "shop:1", set["uniqueKey"])
	assert.Equal(t, epoch, set["lastSeenAt"])
	assert.Equal(t, epoch, set["lastUpdatedAt"])
	assert.Contains(t, set, "version")
	assert.Contains(t, set, "firstSeenAt")
	assert.Contains(t, set, "priceHistory")

	replace := p[1].Map()["$replaceWith"].(bson.D).Map()["$mergeObjects"].(bson.A)
	require.Len(t, replace, 2)
	literal := replace[0].(bson.D).Map()["$literal"]
	assert.Equal(t, fields, literal)

	kept := replace[1].(bson.D).Map()
	assert.Equal(t, "$_id", kept["_id"])
	for _, f := range trackingFields {
		assert.Equal(t, "$"+f, kept[f])
	}
}

func TestUpsertPipeline_HistoryBound(t *testing.T) {
	p := upsertPipeline("k", bson.M{}, domain.Price{Amount: 1, Currency: "PEN"}, epoch)
	set := p[0].Map()["$set"].(bson.D).Map()
	cond := set["priceHistory"].(bson.D).Map()["$cond"].(bson.A)
	require.Len(t, cond, 3)

	slice := cond[2].(bson.D).Map()["$slice"].(bson.A)
	assert.Equal(t, -domain.MaxPriceHistory, slice[1])
}

func TestCanonicalFields_UsesBSONNames(t *testing.T) {
	fields, err := canonicalFields(domain.Product{
		ProductID: "1",
		Name:      "Widget",
		Price:     domain.Price{Amount: 5, Currency: "PEN"},
		Source:    domain.Provenance{Domain: "shop"},
	})
	require.NoError(t, err)

	assert.Equal(t, "1", fields["productId"])
	assert.Equal(t, "Widget", fields["name"])
	assert.Contains(t, fields, "price")
	assert.Contains(t, fields, "source")
	assert.NotContains(t, fields, "brand")
}

func TestProductQuery(t *testing.T) {
	assert.Empty(t, productQuery(domain.ProductFilter{}))

	q := productQuery(domain.ProductFilter{
		Domain:   "shop",
		Brand:    "Acme (EU)",
		MinPrice: ptr(10),
		MaxPrice: ptr(20),
		Text:     "widget",
	}).Map()

	assert.Equal(t, "shop", q["source.domain"])
	assert.Equal(t, primitive.Regex{Pattern: `^Acme \(EU\)$`, Options: "i"}, q["brand"])
	assert.Equal(t, bson.D{{Key: "$gte", Value: 10.0}, {Key: "$lte", Value: 20.0}}, q["price.amount"])
	assert.Equal(t, bson.D{{Key: "$search", Value: "widget"}}, q["$text"])
	assert.NotContains(t, q, "category")
}

func TestListingQuery(t *testing.T) {
	q := listingQuery(domain.ListingFilter{
		ListingType: domain.ListingRent,
		District:    "Miraflores",
		MinBedrooms: 2,
		MaxPrice:    ptr(3000),
	}).Map()

	assert.Equal(t, "rent", q["listingType"])
	assert.Equal(t, equalFold("Miraflores"), q["location.district"])
	assert.Equal(t, bson.D{{Key: "$gte", Value: 2}}, q["features.bedrooms"])
	assert.Equal(t, bson.D{{Key: "$lte", Value: 3000.0}}, q["price.amount"])
	assert.NotContains(t, q, "location.city")
}

func TestGroupPipeline(t *testing.T) {
	p := groupPipeline("brand", 20)
	require.Len(t, p, 4)
	assert.Equal(t, "$match", p[0][0].Key)
	assert.Equal(t, "$group", p[1][0].Key)
	assert.Equal(t, bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}, p[2][0].Value)
	assert.Equal(t, bson.D{{Key: "$limit", Value: 20}}, p[3])

	assert.Len(t, groupPipeline("state", 0), 3)
}

func TestFindOptions(t *testing.T) {
	opts := findOptions(5, 0)
	require.NotNil(t, opts.Skip)
	assert.Equal(t, int64(5), *opts.Skip)
	assert.Nil(t, opts.Limit)

	opts = findOptions(0, 10)
	assert.Nil(t, opts.Skip)
	assert.Equal(t, int64(10), *opts.Limit)
}

func TestWrapErr(t *testing.T) {
	assert.NoError(t, wrapErr("op", nil))

	err := wrapErr("op", mongo.ErrClientDisconnected)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	err = wrapErr("op", errors.New("duplicate key"))
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.EqualError(t, err, "op: duplicate key")
}

func TestIndexModels(t *testing.T) {
	models := indexModels()
	assert.Len(t, models, 3)
	for _, name := range []string{ProductsCollection, ListingsCollection} {
		first := models[name][0]
		assert.Equal(t, bson.D{{Key: "uniqueKey", Value: 1}}, first.Keys)
		require.NotNil(t, first.Options.Unique)
		assert.True(t, *first.Options.Unique)
	}

	keys := func(name string) []bson.D {
		var out []bson.D
		for _, m := range models[name] {
			out = append(out, m.Keys.(bson.D))
		}
		return out
	}
	assert.Contains(t, keys(ProductsCollection), bson.D{{Key: "rating.value", Value: -1}})
	assert.Contains(t, keys(ListingsCollection), bson.D{{Key: "location.city", Value: 1}})
	assert.Contains(t, keys(ListingsCollection),
		bson.D{{Key: "features.bedrooms", Value: 1}, {Key: "features.bathrooms", Value: 1}})
	assert.Contains(t, keys(ListingsCollection),
		bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}, {Key: "location.district", Value: "text"}})
}

// setupTestStore connects to the server named by URIEnv using a fresh
// database, or skips the test.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv(URIEnv)
	if uri == "" {
		t.Skipf("%s not set", URIEnv)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := Connect(ctx, uri, fmt.Sprintf("extracto_test_%d", time.Now().UnixNano()))
	require.NoError(t, err)
	require.NoError(t, store.EnsureIndexes(ctx))

	var mu sync.Mutex
	cur := epoch
	store.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(time.Second)
		return cur
	}

	t.Cleanup(func() {
		_ = store.db.Drop(context.Background())
		_ = store.Close(context.Background())
	})
	return store
}

func testProduct(site, id string, amount float64) domain.Product {
	return domain.Product{
		ProductID: id,
		Name:      "Product " + id,
		Brand:     "Acme",
		Price:     domain.Price{Amount: amount, Currency: "PEN"},
		Source:    domain.Provenance{Domain: site, URL: "https://" + site + ".test", ScrapedAt: epoch},
	}
}

func TestProductStore_Integration(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	products := store.ProductStore()

	require.NoError(t, products.UpsertOne(ctx, testProduct("shop", "1", 10)))
	require.NoError(t, products.UpsertOne(ctx, testProduct("shop", "1", 10)))

	changed := testProduct("shop", "1", 12)
	changed.Brand = ""
	require.NoError(t, products.UpsertOne(ctx, changed))

	got, err := products.Get(ctx, "shop", "1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Version)
	assert.Equal(t, "shop:1", got.UniqueKey)
	assert.Equal(t, epoch.Add(time.Second), got.FirstSeenAt)
	assert.Equal(t, epoch.Add(3*time.Second), got.LastSeenAt)
	assert.Empty(t, got.Brand)
	require.Len(t, got.PriceHistory, 2)
	assert.Equal(t, 12.0, got.PriceHistory[1].Price.Amount)

	summary, err := products.UpsertMany(ctx, []domain.Product{
		testProduct("shop", "1", 12),
		testProduct("shop", "2", 5),
		testProduct("shop", "", 5),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UpsertSummary{Inserted: 1, Updated: 1, Errors: 1}, summary)

	found, err := products.Search(ctx, domain.ProductFilter{MaxPrice: ptr(6)})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "2", found[0].ProductID)

	stats, err := products.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, []domain.GroupCount{{Key: "shop", Count: 2}}, stats.ByDomain)

	_, err = products.Get(ctx, "shop", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductStore_ConcurrentIntegration(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	products := store.ProductStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, products.UpsertOne(ctx, testProduct("shop", "hot", float64(i%2))))
		}(i)
	}
	wg.Wait()

	got, err := products.Get(ctx, "shop", "hot")
	require.NoError(t, err)
	assert.Equal(t, 20, got.Version)
}

func TestJobStore_Integration(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	jobs := store.JobStore()

	require.NoError(t, jobs.Save(ctx, domain.RawJob{JobID: "j1", URL: "https://shop.test", Domain: "shop", State: domain.JobCompleted}))
	require.NoError(t, jobs.Save(ctx, domain.RawJob{JobID: "j2", URL: "https://shop.test", Domain: "shop", State: domain.JobFailed, FailureReason: "timeout"}))
	assert.ErrorIs(t, jobs.Save(ctx, domain.RawJob{}), domain.ErrInvalidInput)

	got, err := jobs.Get(ctx, "j2")
	require.NoError(t, err)
	assert.Equal(t, "timeout", got.FailureReason)

	counts, err := jobs.CountByState(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[domain.JobState]int{domain.JobCompleted: 1, domain.JobFailed: 1}, counts)
}
