package urbania

import (
	"sort"
	"strings"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/extractors/normalize"
)

// postingLists are the keys under which the API returns postings.
var postingLists = []string{"listPostings", "postings", "results", "data"}

// mainFeatures codes used by the posting API.
const (
	featureArea      = "CFT100"
	featureAreaBuilt = "CFT101"
	featureBedrooms  = "CFT2"
	featureBathrooms = "CFT3"
	featureParking   = "CFT7"
)

func fromAPI(data any, url, jobID string) []domain.Listing {
	records := postings(data)
	listings := make([]domain.Listing, 0, len(records))
	for _, rec := range records {
		id := normalize.FirstString(rec, "postingId", "id", "posting_id")
		title := normalize.FirstString(rec, "title", "generatedTitle")
		if id == "" || title == "" {
			continue
		}
		listings = append(listings, postingToListing(rec, id, title, url, jobID))
	}
	return listings
}

func postings(data any) []map[string]any {
	if arr, ok := data.([]any); ok {
		return normalize.Objects(arr)
	}
	m, ok := normalize.Object(data)
	if !ok {
		return nil
	}
	for _, key := range postingLists {
		if recs := normalize.Objects(m[key]); len(recs) > 0 {
			return recs
		}
	}
	return nil
}

func postingToListing(rec map[string]any, id, title, url, jobID string) domain.Listing {
	l := normalize.NewListing(id, title, url, jobID, normalize.Clone(rec))
	l.Description = normalize.CollapseSpace(normalize.FirstString(rec, "descriptionNormalized", "description"))
	l.URL = normalize.AbsoluteURL(url, normalize.FirstString(rec, "url"))

	if rt, ok := normalize.Object(rec["realEstateType"]); ok {
		l.PropertyType = normalize.FirstString(rt, "name")
	} else {
		l.PropertyType = normalize.FirstString(rec, "realEstateType", "propertyType")
	}
	if pub, ok := normalize.Object(rec["publisher"]); ok {
		l.Publisher = normalize.FirstString(pub, "name")
	}

	operation, price := operationPrice(rec)
	l.Price = price
	l.ListingType = normalize.ListingType(operation, title, url)
	l.Location = postingLocation(rec)
	l.Features = mainFeatures(rec)
	l.Images = pictures(rec)
	return l
}

// operationPrice reads the first priced operation. Postings offered for
// both rent and sale report the first operation listed.
func operationPrice(rec map[string]any) (string, domain.Price) {
	for _, op := range normalize.Objects(rec["priceOperationTypes"]) {
		name := ""
		if ot, ok := normalize.Object(op["operationType"]); ok {
			name = normalize.FirstString(ot, "operationName", "name")
		}
		for _, p := range normalize.Objects(op["prices"]) {
			return name, domain.Price{
				Amount:   normalize.Amount(p["amount"]),
				Currency: normalize.Currency(normalize.FirstString(p, "currency", "currencyCode"), normalize.String(p["formattedAmount"]), defaultCurrency),
			}
		}
	}

	var operation string
	if ot, ok := normalize.Object(rec["operationType"]); ok {
		operation = normalize.FirstString(ot, "operationName", "name")
	} else {
		operation = normalize.FirstString(rec, "operationType", "operation")
	}
	v, _ := normalize.FirstOf(rec, "price", "priceAmount")
	return operation, domain.Price{
		Amount:   normalize.Amount(v),
		Currency: normalize.Currency(normalize.FirstString(rec, "currency"), normalize.String(v), defaultCurrency),
	}
}

func postingLocation(rec map[string]any) domain.Location {
	var loc domain.Location
	pl, ok := normalize.Object(rec["postingLocation"])
	if !ok {
		return loc
	}
	if addr, ok := normalize.Object(pl["address"]); ok {
		loc.Address = normalize.FirstString(addr, "name")
	}
	if l, ok := normalize.Object(pl["location"]); ok {
		loc.District = normalize.FirstString(l, "name")
		if parent, ok := normalize.Object(l["parent"]); ok {
			loc.City = normalize.FirstString(parent, "name")
		}
	}
	if geo, ok := normalize.Path(pl, "postingGeolocation", "geolocation"); ok {
		if g, ok := normalize.Object(geo); ok {
			lat, lng := normalize.Number(g["latitude"]), normalize.Number(g["longitude"])
			if lat != 0 || lng != 0 {
				loc.Geo = domain.NewGeoPoint(lat, lng)
			}
		}
	}
	return loc
}

// mainFeatures reads the coded feature map. Known codes are read first in
// a fixed order; codes outside that set are matched by label so renamed
// codes still land, but never overwrite a value a known code already set.
// Half baths ("Medio baño") are not counted as bathrooms.
func mainFeatures(rec map[string]any) domain.Features {
	var f domain.Features
	features, ok := normalize.Object(rec["mainFeatures"])
	if !ok {
		return f
	}
	known := map[string]bool{}
	for _, code := range knownFeatures {
		feat, ok := normalize.Object(features[code])
		if !ok {
			continue
		}
		known[code] = true
		setFeature(&f, code, feat["value"])
	}

	codes := make([]string, 0, len(features))
	for code := range features {
		if !known[code] {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	for _, code := range codes {
		feat, ok := normalize.Object(features[code])
		if !ok {
			continue
		}
		label := normalize.Fold(normalize.FirstString(feat, "label"))
		if target := featureByLabel(label); target != "" && !known[target] {
			known[target] = true
			setFeature(&f, target, feat["value"])
		}
	}
	return f
}

var knownFeatures = []string{featureArea, featureAreaBuilt, featureBedrooms, featureBathrooms, featureParking}

func featureByLabel(label string) string {
	switch {
	case strings.Contains(label, "medio"):
		return ""
	case strings.Contains(label, "total"):
		return featureArea
	case strings.Contains(label, "techada"), strings.Contains(label, "construida"):
		return featureAreaBuilt
	case strings.Contains(label, "dormitorio"):
		return featureBedrooms
	case strings.Contains(label, "bano"):
		return featureBathrooms
	case strings.Contains(label, "estacionamiento"):
		return featureParking
	}
	return ""
}

func setFeature(f *domain.Features, code string, value any) {
	switch code {
	case featureArea:
		f.AreaTotal = normalize.Area(value)
	case featureAreaBuilt:
		f.AreaBuilt = normalize.Area(value)
	case featureBedrooms:
		f.Bedrooms = normalize.Int(value)
	case featureBathrooms:
		f.Bathrooms = normalize.Int(value)
	case featureParking:
		f.Parking = normalize.Int(value)
	}
}

func pictures(rec map[string]any) []string {
	var out []string
	vp, _ := normalize.Object(rec["visiblePictures"])
	for _, pic := range normalize.Objects(vp["pictures"]) {
		if u := normalize.FirstString(pic, "url730x532", "url360x266", "url"); u != "" {
			out = append(out, u)
		}
	}
	if len(out) == 0 {
		out = normalize.Strings(rec["images"])
	}
	return out
}
