package generic

import (
	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
	"github.com/KKogaa/extracto-storage-service/internal/extractors/jsonld"
	"github.com/KKogaa/extracto-storage-service/internal/extractors/normalize"
)

// Ensure ListingStrategy implements the interface.
var _ driven.Strategy[domain.Listing] = (*ListingStrategy)(nil)

var (
	listingIDKeys    = []string{"id", "listingId", "listing_id", "postingId", "propertyId", "code"}
	listingTitleKeys = []string{"title", "name", "headline"}
	listingPriceKeys = []string{"price", "priceAmount", "amount", "rent", "salePrice"}
	operationKeys    = []string{"listingType", "operationType", "operation", "transactionType", "type"}
	propertyKeys     = []string{"propertyType", "property_type", "realEstateType", "category"}
	bedroomKeys      = []string{"bedrooms", "beds", "rooms", "dormitorios"}
	bathroomKeys     = []string{"bathrooms", "baths", "banos"}
	parkingKeys      = []string{"parking", "parkingSpots", "garages"}
	areaKeys         = []string{"areaTotal", "totalArea", "area", "surface"}
	builtKeys        = []string{"areaBuilt", "coveredArea", "builtArea"}
	listingListKeys  = []string{"listings", "results", "items", "postings", "properties", "data"}
)

// ListingStrategy is the last-resort listing parser. JSON payloads are
// mapped by alias; HTML payloads fall back to schema.org residences.
type ListingStrategy struct{}

// NewListingStrategy creates the generic listing fallback.
func NewListingStrategy() *ListingStrategy {
	return &ListingStrategy{}
}

// Name returns the strategy name.
func (s *ListingStrategy) Name() string {
	return Name
}

// CanHandle always claims the payload.
func (s *ListingStrategy) CanHandle(domain.Payload, string) bool {
	return true
}

// Extract maps listing records found in the payload.
func (s *ListingStrategy) Extract(payload domain.Payload, url, jobID string) ([]domain.Listing, error) {
	if !payload.IsJSON() {
		return fromJSONLD(payload.Text(), url, jobID), nil
	}
	records := listingRecords(payload.Data)
	listings := make([]domain.Listing, 0, len(records))
	for _, rec := range records {
		if !looksLikeListing(rec) {
			continue
		}
		listings = append(listings, toListing(rec, url, jobID))
	}
	return listings, nil
}

func fromJSONLD(text, url, jobID string) []domain.Listing {
	listings := []domain.Listing{}
	if !jsonld.Has(text) {
		return listings
	}
	for _, rec := range jsonld.Filter(jsonld.Parse(text), jsonld.ListingTypes...) {
		if l, ok := jsonld.Listing(rec, url, jobID, normalize.DefaultCurrency); ok {
			listings = append(listings, l)
		}
	}
	return listings
}

func listingRecords(data any) []map[string]any {
	switch t := data.(type) {
	case []any:
		return normalize.Objects(t)
	case map[string]any:
		for _, key := range listingListKeys {
			if _, ok := t[key].([]any); ok {
				return normalize.Objects(t[key])
			}
		}
		if looksLikeListing(t) {
			return []map[string]any{t}
		}
	}
	return nil
}

func looksLikeListing(rec map[string]any) bool {
	return normalize.FirstString(rec, listingIDKeys...) != "" &&
		normalize.FirstString(rec, listingTitleKeys...) != ""
}

func toListing(rec map[string]any, url, jobID string) domain.Listing {
	title := normalize.FirstString(rec, listingTitleKeys...)
	l := normalize.NewListing(normalize.FirstString(rec, listingIDKeys...), title, url, jobID, normalize.Clone(rec))
	l.Description = normalize.CollapseSpace(normalize.FirstString(rec, "description"))
	l.URL = normalize.AbsoluteURL(url, normalize.FirstString(rec, urlKeys...))
	l.PropertyType = nameOf(rec, propertyKeys...)
	l.ListingType = normalize.ListingType(normalize.FirstString(rec, operationKeys...), title, l.URL)
	l.Price = listingPrice(rec)
	l.Images = productImages(rec)
	l.Publisher = nameOf(rec, "publisher", "agency", "broker", "advertiser")
	l.Location = listingLocation(rec)
	l.Features = domain.Features{
		Bedrooms:  normalize.Int(first(rec, bedroomKeys)),
		Bathrooms: normalize.Int(first(rec, bathroomKeys)),
		Parking:   normalize.Int(first(rec, parkingKeys)),
		AreaTotal: normalize.Area(first(rec, areaKeys)),
		AreaBuilt: normalize.Area(first(rec, builtKeys)),
	}
	if features, ok := normalize.Object(rec["features"]); ok {
		mergeFeatures(&l.Features, features)
	}
	return l
}

func first(rec map[string]any, keys []string) any {
	v, _ := normalize.FirstOf(rec, keys...)
	return v
}

// mergeFeatures fills zero counts from a nested features object.
func mergeFeatures(f *domain.Features, m map[string]any) {
	if f.Bedrooms == 0 {
		f.Bedrooms = normalize.Int(first(m, bedroomKeys))
	}
	if f.Bathrooms == 0 {
		f.Bathrooms = normalize.Int(first(m, bathroomKeys))
	}
	if f.Parking == 0 {
		f.Parking = normalize.Int(first(m, parkingKeys))
	}
	if f.AreaTotal == 0 {
		f.AreaTotal = normalize.Area(first(m, areaKeys))
	}
	if f.AreaBuilt == 0 {
		f.AreaBuilt = normalize.Area(first(m, builtKeys))
	}
}

func listingPrice(rec map[string]any) domain.Price {
	code := normalize.FirstString(rec, currencyKeys...)
	v, _ := normalize.FirstOf(rec, listingPriceKeys...)
	if m, ok := normalize.Object(v); ok {
		if code == "" {
			code = normalize.FirstString(m, currencyKeys...)
		}
		v, _ = normalize.FirstOf(m, "amount", "value", "price")
	}
	return domain.Price{
		Amount:   normalize.Amount(v),
		Currency: normalize.Currency(code, normalize.String(v), normalize.DefaultCurrency),
	}
}

func listingLocation(rec map[string]any) domain.Location {
	src := rec
	if m, ok := normalize.Object(rec["location"]); ok {
		src = m
	}
	loc := domain.Location{
		Address:  normalize.FirstString(src, "address", "street", "streetAddress"),
		District: normalize.FirstString(src, "district", "neighborhood", "neighbourhood", "zone"),
		City:     normalize.FirstString(src, "city", "province", "region"),
	}
	lat := normalize.Number(first(src, []string{"lat", "latitude"}))
	lng := normalize.Number(first(src, []string{"lng", "lon", "longitude"}))
	if lat != 0 || lng != 0 {
		loc.Geo = domain.NewGeoPoint(lat, lng)
	}
	return loc
}
