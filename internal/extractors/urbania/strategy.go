// Package urbania extracts real-estate listings from the Navent portals
// (urbania.pe, adondevivir.com). Three payload shapes are supported: the
// JSON posting API, HTML pages with schema.org blocks, and HTML search
// pages scraped card by card.
package urbania

import (
	"strings"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
	"github.com/KKogaa/extracto-storage-service/internal/extractors/jsonld"
)

// Ensure Strategy implements the interface.
var _ driven.Strategy[domain.Listing] = (*Strategy)(nil)

const (
	// Name is reported as strategyUsed.
	Name = "Urbania"

	defaultCurrency = "PEN"
)

// Hosts are the URL markers the strategy claims.
var Hosts = []string{"urbania.pe", "adondevivir.com"}

// Strategy handles Navent portal payloads.
type Strategy struct{}

// New creates a new Urbania strategy.
func New() *Strategy {
	return &Strategy{}
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return Name
}

// CanHandle claims payloads whose URL belongs to one of the portals.
func (s *Strategy) CanHandle(_ domain.Payload, url string) bool {
	lower := strings.ToLower(url)
	for _, h := range Hosts {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

// Extract picks the mode from the payload shape. Pre-parsed JSON bypasses
// HTML handling entirely; HTML prefers JSON-LD and falls back to cards.
func (s *Strategy) Extract(payload domain.Payload, url, jobID string) ([]domain.Listing, error) {
	if payload.IsJSON() {
		return fromAPI(payload.Data, url, jobID), nil
	}

	text := payload.Text()
	if jsonld.Has(text) {
		if listings := fromJSONLD(text, url, jobID); len(listings) > 0 {
			return listings, nil
		}
	}
	return fromCards(text, url, jobID)
}

func fromJSONLD(text, url, jobID string) []domain.Listing {
	var listings []domain.Listing
	for _, rec := range jsonld.Filter(jsonld.Parse(text), jsonld.ListingTypes...) {
		if l, ok := jsonld.Listing(rec, url, jobID, defaultCurrency); ok {
			listings = append(listings, l)
		}
	}
	return listings
}
