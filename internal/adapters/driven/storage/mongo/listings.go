package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/KKogaa/extracto-storage-service/internal/adapters/driven/storage"
	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
)

// listingStore implements driven.ListingStore.
type listingStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ driven.ListingStore = (*listingStore)(nil)

// UpsertOne inserts or updates a listing.
func (s *listingStore) UpsertOne(ctx context.Context, l domain.Listing) error {
	_, err := s.upsert(ctx, l)
	return err
}

// UpsertMany upserts each listing with its own atomic update.
func (s *listingStore) UpsertMany(ctx context.Context, listings []domain.Listing) (domain.UpsertSummary, error) {
	return storage.UpsertEach(ctx, listings, s.upsert)
}

func (s *listingStore) upsert(ctx context.Context, l domain.Listing) (bool, error) {
	if err := storage.ValidateKey(l.ListingID); err != nil {
		return false, err
	}
	return upsertDocument(ctx, s.coll, l.Key(), l, l.Price, s.now())
}

// Get retrieves a listing by site and ID.
func (s *listingStore) Get(ctx context.Context, site, listingID string) (*domain.StoredListing, error) {
	var l domain.StoredListing
	err := s.coll.FindOne(ctx, bson.D{{Key: "uniqueKey", Value: domain.UniqueKey(site, listingID)}}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("finding listing", err)
	}
	return &l, nil
}

// Search returns matching listings, most recently seen first.
func (s *listingStore) Search(ctx context.Context, f domain.ListingFilter) ([]domain.StoredListing, error) {
	cur, err := s.coll.Find(ctx, listingQuery(f), findOptions(f.Skip, f.Limit))
	if err != nil {
		return nil, wrapErr("querying listings", err)
	}
	listings := []domain.StoredListing{}
	if err := cur.All(ctx, &listings); err != nil {
		return nil, wrapErr("decoding listings", err)
	}
	return listings, nil
}

// Stats counts listings by domain, district and listing type.
func (s *listingStore) Stats(ctx context.Context) (*domain.Stats, error) {
	total, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, wrapErr("counting listings", err)
	}
	byDomain, err := aggregateGroups(ctx, s.coll, "source.domain", 0)
	if err != nil {
		return nil, err
	}
	byDistrict, err := aggregateGroups(ctx, s.coll, "location.district", domain.TopDistricts)
	if err != nil {
		return nil, err
	}
	byType, err := aggregateGroups(ctx, s.coll, "listingType", 0)
	if err != nil {
		return nil, err
	}
	return &domain.Stats{
		Total:      int(total),
		ByDomain:   byDomain,
		GroupField: "district",
		ByGroup:    byDistrict,
		ByType:     byType,
	}, nil
}

func listingQuery(f domain.ListingFilter) bson.D {
	q := bson.D{}
	if f.Domain != "" {
		q = append(q, bson.E{Key: "source.domain", Value: f.Domain})
	}
	if f.ListingType != "" {
		q = append(q, bson.E{Key: "listingType", Value: string(f.ListingType)})
	}
	if f.PropertyType != "" {
		q = append(q, bson.E{Key: "propertyType", Value: equalFold(f.PropertyType)})
	}
	if f.District != "" {
		q = append(q, bson.E{Key: "location.district", Value: equalFold(f.District)})
	}
	if f.City != "" {
		q = append(q, bson.E{Key: "location.city", Value: equalFold(f.City)})
	}
	if f.MinBedrooms > 0 {
		q = append(q, bson.E{Key: "features.bedrooms", Value: bson.D{{Key: "$gte", Value: f.MinBedrooms}}})
	}
	if r := priceRange(f.MinPrice, f.MaxPrice); r != nil {
		q = append(q, bson.E{Key: "price.amount", Value: r})
	}
	if f.Text != "" {
		q = append(q, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: f.Text}}})
	}
	return q
}
