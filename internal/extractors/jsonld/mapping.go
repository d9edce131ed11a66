package jsonld

import (
	"strings"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/extractors/normalize"
)

// ProductTypes are the schema.org types mapped to products.
var ProductTypes = []string{"Product", "ProductGroup", "IndividualProduct"}

// ListingTypes are the schema.org types mapped to real-estate listings.
var ListingTypes = []string{
	"RealEstateListing", "Residence", "Apartment", "House",
	"SingleFamilyResidence", "Accommodation", "ApartmentComplex",
}

// Product maps a schema.org Product record. ok is false when the record
// lacks an identifier or a name.
func Product(rec map[string]any, url, jobID, currency string) (domain.Product, bool) {
	id := normalize.FirstString(rec, "sku", "productID", "mpn", "gtin13", "gtin", "@id", "url")
	name := normalize.FirstString(rec, "name")
	if id == "" || name == "" {
		return domain.Product{}, false
	}

	p := normalize.NewProduct(id, name, url, jobID, normalize.Clone(rec))
	p.Brand = nameOf(rec["brand"])
	p.Category = normalize.FirstString(rec, "category")
	p.Description = normalize.CollapseSpace(normalize.FirstString(rec, "description"))
	p.URL = normalize.AbsoluteURL(url, normalize.FirstString(rec, "url"))
	p.Images = normalize.Strings(rec["image"])

	offer := firstOffer(rec["offers"])
	p.Price = offerPrice(offer, currency)
	p.Availability = domain.Availability{InStock: inStock(offer)}

	if agg, ok := normalize.Object(rec["aggregateRating"]); ok {
		count, _ := normalize.FirstOf(agg, "reviewCount", "ratingCount")
		p.Rating = normalize.BuildRating(agg["ratingValue"], count)
	}
	if seller, ok := normalize.Object(offer["seller"]); ok {
		if n := normalize.FirstString(seller, "name"); n != "" {
			p.Seller = &domain.Seller{Name: n}
		}
	}
	return p, true
}

// Listing maps a schema.org residence or RealEstateListing record. The
// property itself may be nested under mainEntity or about.
func Listing(rec map[string]any, url, jobID, currency string) (domain.Listing, bool) {
	prop := rec
	for _, key := range []string{"mainEntity", "about", "itemOffered"} {
		if m, ok := normalize.Object(rec[key]); ok {
			prop = m
			break
		}
	}

	id := normalize.FirstString(rec, "identifier", "@id", "sku", "url")
	if id == "" {
		id = normalize.FirstString(prop, "identifier", "@id", "url")
	}
	title := normalize.FirstString(rec, "name")
	if title == "" {
		title = normalize.FirstString(prop, "name")
	}
	if id == "" || title == "" {
		return domain.Listing{}, false
	}

	l := normalize.NewListing(id, title, url, jobID, normalize.Clone(rec))
	l.Description = normalize.CollapseSpace(normalize.FirstString(rec, "description"))
	l.URL = normalize.AbsoluteURL(url, normalize.FirstString(rec, "url"))
	l.Images = normalize.Strings(rec["image"])
	if len(l.Images) == 0 {
		l.Images = normalize.Strings(prop["image"])
	}
	if types := Types(prop); len(types) > 0 {
		l.PropertyType = types[0]
	}

	offerSrc := rec["offers"]
	if offerSrc == nil {
		offerSrc = prop["offers"]
	}
	offer := firstOffer(offerSrc)
	l.Price = offerPrice(offer, currency)
	l.ListingType = listingType(offer, title, url)

	l.Location = location(prop)
	l.Features = domain.Features{
		Bedrooms:  normalize.Int(firstValue(prop, "numberOfBedrooms", "numberOfRooms")),
		Bathrooms: normalize.Int(firstValue(prop, "numberOfBathroomsTotal", "numberOfFullBathrooms")),
		AreaTotal: quantity(prop["floorSize"]),
	}
	if seller, ok := normalize.Object(offer["seller"]); ok {
		l.Publisher = normalize.FirstString(seller, "name")
	}
	return l, true
}

func nameOf(v any) string {
	if m, ok := normalize.Object(v); ok {
		return normalize.FirstString(m, "name")
	}
	return normalize.String(v)
}

// firstOffer returns the first offer of an offer, list or AggregateOffer.
func firstOffer(v any) map[string]any {
	if m, ok := normalize.Object(v); ok {
		if inner := normalize.Objects(m["offers"]); len(inner) > 0 && IsType(m, "AggregateOffer") {
			if _, hasPrice := normalize.FirstOf(m, "lowPrice", "price"); !hasPrice {
				return inner[0]
			}
		}
		return m
	}
	if list := normalize.Objects(v); len(list) > 0 {
		return list[0]
	}
	return map[string]any{}
}

func offerPrice(offer map[string]any, currency string) domain.Price {
	v, _ := normalize.FirstOf(offer, "price", "lowPrice")
	if spec, ok := normalize.Object(offer["priceSpecification"]); ok && v == nil {
		v = spec["price"]
		if code := normalize.FirstString(spec, "priceCurrency"); code != "" {
			offer = map[string]any{"priceCurrency": code}
		}
	}
	p := domain.Price{
		Amount:   normalize.Amount(v),
		Currency: normalize.Currency(normalize.FirstString(offer, "priceCurrency"), normalize.String(v), currency),
	}
	if high := normalize.Amount(offer["highPrice"]); high > p.Amount {
		p.Original = high
	}
	return p
}

// inStock reads schema.org availability URLs. Missing availability means
// in stock.
func inStock(offer map[string]any) bool {
	av := strings.ToLower(normalize.FirstString(offer, "availability"))
	if av == "" {
		return true
	}
	return !strings.Contains(av, "outofstock") && !strings.Contains(av, "discontinued") &&
		!strings.Contains(av, "soldout")
}

func listingType(offer map[string]any, title, url string) domain.ListingType {
	switch strings.ToLower(normalize.FirstString(offer, "businessFunction")) {
	case "http://purl.org/goodrelations/v1#leaseout", "leaseout":
		return domain.ListingRent
	case "http://purl.org/goodrelations/v1#sell", "sell":
		return domain.ListingSale
	}
	return normalize.ListingType(title, url)
}

func location(prop map[string]any) domain.Location {
	var loc domain.Location
	switch addr := prop["address"].(type) {
	case string:
		loc.Address = normalize.CollapseSpace(addr)
	case map[string]any:
		loc.Address = normalize.FirstString(addr, "streetAddress", "name")
		loc.District = normalize.FirstString(addr, "addressLocality")
		loc.City = normalize.FirstString(addr, "addressRegion")
	}
	if geo, ok := normalize.Object(prop["geo"]); ok {
		lat := normalize.Number(geo["latitude"])
		lng := normalize.Number(geo["longitude"])
		if lat != 0 || lng != 0 {
			loc.Geo = domain.NewGeoPoint(lat, lng)
		}
	}
	return loc
}

func firstValue(m map[string]any, keys ...string) any {
	v, _ := normalize.FirstOf(m, keys...)
	if q, ok := normalize.Object(v); ok {
		return q["value"]
	}
	return v
}

// quantity reads a QuantitativeValue or a bare number.
func quantity(v any) float64 {
	if q, ok := normalize.Object(v); ok {
		return normalize.Number(q["value"])
	}
	return normalize.Area(v)
}
