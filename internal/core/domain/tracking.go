package domain

import "time"

// MaxPriceHistory bounds the number of price points kept per entity.
const MaxPriceHistory = 100

// PricePoint is one entry of an entity's price history.
type PricePoint struct {
	Price      Price     `json:"price" bson:"price"`
	RecordedAt time.Time `json:"recordedAt" bson:"recordedAt"`
}

// Tracking is the persistence metadata attached to a stored entity.
type Tracking struct {
	UniqueKey     string       `json:"uniqueKey" bson:"uniqueKey"`
	FirstSeenAt   time.Time    `json:"firstSeenAt" bson:"firstSeenAt"`
	LastSeenAt    time.Time    `json:"lastSeenAt" bson:"lastSeenAt"`
	LastUpdatedAt time.Time    `json:"lastUpdatedAt" bson:"lastUpdatedAt"`
	Version       int          `json:"version" bson:"version"`
	PriceHistory  []PricePoint `json:"priceHistory" bson:"priceHistory"`
}

// NewTracking returns the metadata for a first insert.
func NewTracking(key string, price Price, now time.Time) Tracking {
	return Tracking{
		UniqueKey:     key,
		FirstSeenAt:   now,
		LastSeenAt:    now,
		LastUpdatedAt: now,
		Version:       1,
		PriceHistory:  []PricePoint{{Price: trackedPrice(price), RecordedAt: now}},
	}
}

// Advance returns the metadata after one more successful upsert.
// stored is the price currently persisted; incoming is the new one.
// UniqueKey and FirstSeenAt never change.
func (t Tracking) Advance(stored, incoming Price, now time.Time) Tracking {
	next := t
	next.LastSeenAt = now
	next.LastUpdatedAt = now
	next.Version = t.Version + 1

	history := make([]PricePoint, len(t.PriceHistory), len(t.PriceHistory)+1)
	copy(history, t.PriceHistory)
	if !stored.Equal(incoming) {
		history = append(history, PricePoint{Price: trackedPrice(incoming), RecordedAt: now})
	}
	if len(history) > MaxPriceHistory {
		history = history[len(history)-MaxPriceHistory:]
	}
	next.PriceHistory = history
	return next
}

// LatestPrice returns the most recent history entry, if any.
func (t Tracking) LatestPrice() (PricePoint, bool) {
	if len(t.PriceHistory) == 0 {
		return PricePoint{}, false
	}
	return t.PriceHistory[len(t.PriceHistory)-1], true
}

// trackedPrice keeps only the fields that matter for history.
func trackedPrice(p Price) Price {
	return Price{Amount: p.Amount, Currency: p.Currency}
}

// StoredProduct is a product as kept in the catalog.
type StoredProduct struct {
	Product  `bson:",inline"`
	Tracking `bson:",inline"`
}

// StoredListing is a listing as kept in the catalog.
type StoredListing struct {
	Listing  `bson:",inline"`
	Tracking `bson:",inline"`
}

// UpsertSummary reports the outcome of a bulk upsert.
// The Inserted/Updated split is telemetry, not an exact count under
// concurrent writers to the same keys.
type UpsertSummary struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Errors   int `json:"errors"`
}

// Add merges another summary into s.
func (s *UpsertSummary) Add(other UpsertSummary) {
	s.Inserted += other.Inserted
	s.Updated += other.Updated
	s.Errors += other.Errors
}
