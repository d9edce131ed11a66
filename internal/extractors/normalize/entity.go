package normalize

import (
	"time"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

// now is replaceable in tests.
var now = func() time.Time { return time.Now().UTC() }

// NewProvenance builds the provenance block for an entity extracted from
// url. The timestamp is the extraction time, not the storage time.
func NewProvenance(url, jobID string) domain.Provenance {
	return domain.Provenance{
		Domain:    domain.SiteFromURL(url),
		URL:       url,
		ScrapedAt: now(),
		JobID:     jobID,
	}
}

// NewProduct returns a product with identity, name and provenance set.
func NewProduct(id, name, url, jobID string, raw map[string]any) domain.Product {
	return domain.Product{
		ProductID: id,
		Name:      name,
		Source:    NewProvenance(url, jobID),
		Raw:       domain.Extension(raw),
	}
}

// NewListing returns a listing with identity, title and provenance set.
func NewListing(id, title, url, jobID string, raw map[string]any) domain.Listing {
	return domain.Listing{
		ListingID: id,
		Title:     title,
		Source:    NewProvenance(url, jobID),
		Raw:       domain.Extension(raw),
	}
}
