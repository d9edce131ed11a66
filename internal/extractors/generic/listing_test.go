package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

func extractListings(t *testing.T, raw, url string) []domain.Listing {
	t.Helper()
	listings, err := NewListingStrategy().Extract(domain.NewPayload([]byte(raw)), url, "job-3")
	require.NoError(t, err)
	return listings
}

func TestListingStrategy_JSON(t *testing.T) {
	raw := `{"listings":[
	  {"id":"L1","title":"Depa en alquiler, Miraflores","price":{"amount":"2500","currency":"PEN"},
	   "propertyType":"Departamento","location":{"district":"Miraflores","city":"Lima","lat":-12.12,"lng":-77.03},
	   "bedrooms":"3","features":{"bathrooms":2,"area":"95 m2"},"images":["a.jpg"]},
	  {"id":"L2"}
	]}`
	listings := extractListings(t, raw, "https://homes.example.com/search")

	require.Len(t, listings, 1)
	l := listings[0]
	assert.Equal(t, "L1", l.ListingID)
	assert.Equal(t, domain.ListingRent, l.ListingType)
	assert.Equal(t, 2500.0, l.Price.Amount)
	assert.Equal(t, "PEN", l.Price.Currency)
	assert.Equal(t, "Departamento", l.PropertyType)
	assert.Equal(t, "Miraflores", l.Location.District)
	assert.Equal(t, "Lima", l.Location.City)
	require.NotNil(t, l.Location.Geo)
	assert.Equal(t, [2]float64{-77.03, -12.12}, l.Location.Geo.Coordinates)
	assert.Equal(t, 3, l.Features.Bedrooms)
	assert.Equal(t, 2, l.Features.Bathrooms)
	assert.Equal(t, 95.0, l.Features.AreaTotal)
	assert.Equal(t, "example", l.Source.Domain)
}

func TestListingStrategy_JSONLD(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
	{"@context":"https://schema.org","@type":"Apartment","@id":"apt-9","name":"Flat for sale",
	 "address":{"streetAddress":"Av. Larco 100","addressLocality":"Miraflores","addressRegion":"Lima"},
	 "numberOfRooms":2,"floorSize":{"value":70},
	 "offers":{"price":"150000","priceCurrency":"USD"}}
	</script></head></html>`
	listings := extractListings(t, html, "https://homes.example.com/p/9")

	require.Len(t, listings, 1)
	l := listings[0]
	assert.Equal(t, "apt-9", l.ListingID)
	assert.Equal(t, domain.ListingSale, l.ListingType)
	assert.Equal(t, 150000.0, l.Price.Amount)
	assert.Equal(t, "USD", l.Price.Currency)
	assert.Equal(t, "Apartment", l.PropertyType)
	assert.Equal(t, "Av. Larco 100", l.Location.Address)
	assert.Equal(t, 2, l.Features.Bedrooms)
	assert.Equal(t, 70.0, l.Features.AreaTotal)
}

func TestListingStrategy_Empty(t *testing.T) {
	assert.Empty(t, extractListings(t, `plain text`, ""))
	assert.NotNil(t, extractListings(t, `plain text`, ""))
	assert.Empty(t, extractListings(t, `{"foo":1}`, ""))
}
