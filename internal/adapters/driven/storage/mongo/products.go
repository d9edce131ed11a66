package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/KKogaa/extracto-storage-service/internal/adapters/driven/storage"
	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
)

// productStore implements driven.ProductStore.
type productStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ driven.ProductStore = (*productStore)(nil)

// UpsertOne inserts or updates a product.
func (s *productStore) UpsertOne(ctx context.Context, p domain.Product) error {
	_, err := s.upsert(ctx, p)
	return err
}

// UpsertMany upserts each product with its own atomic update.
func (s *productStore) UpsertMany(ctx context.Context, products []domain.Product) (domain.UpsertSummary, error) {
	return storage.UpsertEach(ctx, products, s.upsert)
}

func (s *productStore) upsert(ctx context.Context, p domain.Product) (bool, error) {
	if err := storage.ValidateKey(p.ProductID); err != nil {
		return false, err
	}
	return upsertDocument(ctx, s.coll, p.Key(), p, p.Price, s.now())
}

// Get retrieves a product by site and ID.
func (s *productStore) Get(ctx context.Context, site, productID string) (*domain.StoredProduct, error) {
	var p domain.StoredProduct
	err := s.coll.FindOne(ctx, bson.D{{Key: "uniqueKey", Value: domain.UniqueKey(site, productID)}}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("finding product", err)
	}
	return &p, nil
}

// Search returns matching products, most recently seen first.
func (s *productStore) Search(ctx context.Context, f domain.ProductFilter) ([]domain.StoredProduct, error) {
	cur, err := s.coll.Find(ctx, productQuery(f), findOptions(f.Skip, f.Limit))
	if err != nil {
		return nil, wrapErr("querying products", err)
	}
	products := []domain.StoredProduct{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, wrapErr("decoding products", err)
	}
	return products, nil
}

// Stats counts products by domain and brand.
func (s *productStore) Stats(ctx context.Context) (*domain.Stats, error) {
	total, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, wrapErr("counting products", err)
	}
	byDomain, err := aggregateGroups(ctx, s.coll, "source.domain", 0)
	if err != nil {
		return nil, err
	}
	byBrand, err := aggregateGroups(ctx, s.coll, "brand", domain.TopBrands)
	if err != nil {
		return nil, err
	}
	return &domain.Stats{
		Total:      int(total),
		ByDomain:   byDomain,
		GroupField: "brand",
		ByGroup:    byBrand,
	}, nil
}

func productQuery(f domain.ProductFilter) bson.D {
	q := bson.D{}
	if f.Domain != "" {
		q = append(q, bson.E{Key: "source.domain", Value: f.Domain})
	}
	if f.Brand != "" {
		q = append(q, bson.E{Key: "brand", Value: equalFold(f.Brand)})
	}
	if f.Category != "" {
		q = append(q, bson.E{Key: "category", Value: equalFold(f.Category)})
	}
	if r := priceRange(f.MinPrice, f.MaxPrice); r != nil {
		q = append(q, bson.E{Key: "price.amount", Value: r})
	}
	if f.Text != "" {
		q = append(q, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: f.Text}}})
	}
	return q
}

// equalFold matches a whole string case-insensitively.
func equalFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}

func priceRange(lo, hi *float64) bson.D {
	var r bson.D
	if lo != nil {
		r = append(r, bson.E{Key: "$gte", Value: *lo})
	}
	if hi != nil {
		r = append(r, bson.E{Key: "$lte", Value: *hi})
	}
	return r
}

func findOptions(skip, limit int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{
		{Key: "lastSeenAt", Value: -1},
		{Key: "uniqueKey", Value: 1},
	})
	if skip > 0 {
		opts.SetSkip(int64(skip))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

// groupPipeline counts documents by field, dropping empty keys, largest
// group first.
func groupPipeline(field string, limit int) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: field, Value: bson.D{{Key: "$nin", Value: bson.A{nil, ""}}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	if limit > 0 {
		p = append(p, bson.D{{Key: "$limit", Value: limit}})
	}
	return p
}

func aggregateGroups(ctx context.Context, coll *mongo.Collection, field string, limit int) ([]domain.GroupCount, error) {
	cur, err := coll.Aggregate(ctx, groupPipeline(field, limit))
	if err != nil {
		return nil, wrapErr("grouping by "+field, err)
	}
	var rows []struct {
		Key   string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, wrapErr("decoding groups", err)
	}
	out := make([]domain.GroupCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.GroupCount{Key: r.Key, Count: r.Count})
	}
	return out, nil
}
