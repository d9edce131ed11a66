package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

// canonicalFields converts an entity to its top-level BSON fields.
func canonicalFields(entity any) (bson.M, error) {
	raw, err := bson.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("marshalling entity: %w", err)
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("unmarshalling entity: %w", err)
	}
	return fields, nil
}

// upsertPipeline builds the update applied to the document stored under
// key. The first stage derives the tracking fields from the previous
// price, version and history; the second replaces the entity fields so
// attributes missing from the new scrape do not linger. Fields are
// wrapped in $literal so scraped strings starting with "$" are not read
// as field paths.
func upsertPipeline(key string, fields bson.M, price domain.Price, now time.Time) mongo.Pipeline {
	point := bson.D{
		{Key: "price", Value: bson.D{
			{Key: "amount", Value: price.Amount},
			{Key: "currency", Value: price.Currency},
		}},
		{Key: "recordedAt", Value: now},
	}
	history := bson.D{{Key: "$ifNull", Value: bson.A{"$priceHistory", bson.A{}}}}
	samePrice := bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$price.amount", price.Amount}}},
		bson.D{{Key: "$eq", Value: bson.A{"$price.currency", price.Currency}}},
	}}}

	tracking := bson.D{
		{Key: "uniqueKey", Value: key},
		{Key: "version", Value: bson.D{{Key: "$add", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$version", 0}}}, 1,
		}}}},
		{Key: "firstSeenAt", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$firstSeenAt", now}}}},
		{Key: "lastSeenAt", Value: now},
		{Key: "lastUpdatedAt", Value: now},
		{Key: "priceHistory", Value: bson.D{{Key: "$cond", Value: bson.A{
			samePrice,
			history,
			bson.D{{Key: "$slice", Value: bson.A{
				bson.D{{Key: "$concatArrays", Value: bson.A{history, bson.A{point}}}},
				-domain.MaxPriceHistory,
			}}},
		}}}},
	}

	kept := bson.D{{Key: "_id", Value: "$_id"}}
	for _, f := range trackingFields {
		kept = append(kept, bson.E{Key: f, Value: "$" + f})
	}

	return mongo.Pipeline{
		{{Key: "$set", Value: tracking}},
		{{Key: "$replaceWith", Value: bson.D{{Key: "$mergeObjects", Value: bson.A{
			bson.D{{Key: "$literal", Value: fields}},
			kept,
		}}}}},
	}
}

// trackingFields survive the replacement stage of an upsert.
var trackingFields = []string{"uniqueKey", "version", "firstSeenAt", "lastSeenAt", "lastUpdatedAt", "priceHistory"}

// upsertDocument applies the pipeline atomically and reports whether the
// document was created.
func upsertDocument(ctx context.Context, coll *mongo.Collection, key string, entity any, price domain.Price, now time.Time) (bool, error) {
	fields, err := canonicalFields(entity)
	if err != nil {
		return false, err
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before).
		SetProjection(bson.D{{Key: "_id", Value: 1}})

	err = coll.FindOneAndUpdate(ctx, bson.D{{Key: "uniqueKey", Value: key}},
		upsertPipeline(key, fields, price, now), opts).Err()
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return true, nil
	case err != nil:
		return false, wrapErr("upserting "+key, err)
	default:
		return false, nil
	}
}
