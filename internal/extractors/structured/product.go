// Package structured extracts products from schema.org JSON-LD blocks
// embedded in HTML product and category pages.
package structured

import (
	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
	"github.com/KKogaa/extracto-storage-service/internal/extractors/jsonld"
	"github.com/KKogaa/extracto-storage-service/internal/extractors/normalize"
)

// Ensure ProductStrategy implements the interface.
var _ driven.Strategy[domain.Product] = (*ProductStrategy)(nil)

// Name is reported as strategyUsed.
const Name = "StructuredData"

// ProductStrategy maps schema.org Product records.
type ProductStrategy struct{}

// NewProductStrategy creates the structured-data product strategy.
func NewProductStrategy() *ProductStrategy {
	return &ProductStrategy{}
}

// Name returns the strategy name.
func (s *ProductStrategy) Name() string {
	return Name
}

// CanHandle claims HTML payloads that embed at least one JSON-LD block.
// JSON payloads are left to the JSON strategies.
func (s *ProductStrategy) CanHandle(payload domain.Payload, _ string) bool {
	return !payload.IsJSON() && jsonld.Has(payload.Text())
}

// Extract maps every Product record; records without an id or name are
// skipped.
func (s *ProductStrategy) Extract(payload domain.Payload, url, jobID string) ([]domain.Product, error) {
	records := jsonld.Filter(jsonld.Parse(payload.Text()), jsonld.ProductTypes...)
	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		if p, ok := jsonld.Product(rec, url, jobID, normalize.DefaultCurrency); ok {
			products = append(products, p)
		}
	}
	return products, nil
}
