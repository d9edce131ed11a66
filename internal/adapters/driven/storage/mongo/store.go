// Package mongo provides a MongoDB implementation of the catalog store
// ports.
//
// Every upsert is a single FindOneAndUpdate with an aggregation-pipeline
// update: version, firstSeenAt and the bounded price history are computed
// server-side from the document's previous values, so concurrent writers
// to the same key cannot lose a version. Returning the pre-image makes the
// insert/update classification exact.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
)

// Collection names.
const (
	ProductsCollection = "products"
	ListingsCollection = "real_estate_listings"
	JobsCollection     = "raw_jobs"
)

// DefaultDatabase is used when no database name is configured.
const DefaultDatabase = "extracto"

// Store gives access to the catalog collections of one database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// Connect dials uri, verifies the connection and returns a store on the
// given database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, wrapErr("ping", err)
	}
	return New(client, database), nil
}

// New wraps an existing client.
func New(client *mongo.Client, database string) *Store {
	return &Store{
		client: client,
		db:     client.Database(database),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return wrapErr("ping", s.client.Ping(ctx, nil))
}

// ProductStore returns a ProductStore interface backed by this store.
func (s *Store) ProductStore() driven.ProductStore {
	return &productStore{coll: s.db.Collection(ProductsCollection), now: s.now}
}

// ListingStore returns a ListingStore interface backed by this store.
func (s *Store) ListingStore() driven.ListingStore {
	return &listingStore{coll: s.db.Collection(ListingsCollection), now: s.now}
}

// JobStore returns a JobStore interface backed by this store.
func (s *Store) JobStore() driven.JobStore {
	return &jobStore{coll: s.db.Collection(JobsCollection), now: s.now}
}

// EnsureIndexes creates the unique key, secondary, text and geo indexes.
// It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for name, models := range indexModels() {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return wrapErr("creating indexes on "+name, err)
		}
	}
	return nil
}

func indexModels() map[string][]mongo.IndexModel {
	unique := options.Index().SetUnique(true)
	return map[string][]mongo.IndexModel{
		ProductsCollection: {
			{Keys: bson.D{{Key: "uniqueKey", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "source.domain", Value: 1}, {Key: "productId", Value: 1}}},
			{Keys: bson.D{{Key: "brand", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "price.amount", Value: 1}}},
			{Keys: bson.D{{Key: "rating.value", Value: -1}}},
			{Keys: bson.D{{Key: "lastSeenAt", Value: -1}}},
			{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "brand", Value: "text"}, {Key: "description", Value: "text"}}},
		},
		ListingsCollection: {
			{Keys: bson.D{{Key: "uniqueKey", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "source.domain", Value: 1}, {Key: "listingId", Value: 1}}},
			{Keys: bson.D{{Key: "listingType", Value: 1}, {Key: "propertyType", Value: 1}}},
			{Keys: bson.D{{Key: "location.district", Value: 1}}},
			{Keys: bson.D{{Key: "location.city", Value: 1}}},
			{Keys: bson.D{{Key: "features.bedrooms", Value: 1}, {Key: "features.bathrooms", Value: 1}}},
			{Keys: bson.D{{Key: "price.amount", Value: 1}}},
			{Keys: bson.D{{Key: "lastSeenAt", Value: -1}}},
			{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}, {Key: "location.district", Value: "text"}}},
			{Keys: bson.D{{Key: "location.geo", Value: "2dsphere"}}},
		},
		JobsCollection: {
			{Keys: bson.D{{Key: "state", Value: 1}}},
			{Keys: bson.D{{Key: "domain", Value: 1}}},
		},
	}
}

// wrapErr annotates err with op and marks connectivity failures as
// domain.ErrStoreUnavailable.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if unavailable(err) {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func unavailable(err error) bool {
	var sse topology.ServerSelectionError
	return errors.Is(err, mongo.ErrClientDisconnected) ||
		errors.As(err, &sse) ||
		mongo.IsNetworkError(err)
}
