// Package falabella extracts products from Falabella's Next.js page state
// (the __NEXT_DATA__ blob captured by the crawler).
package falabella

import (
	"strings"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
	"github.com/KKogaa/extracto-storage-service/internal/extractors/normalize"
)

// Ensure Strategy implements the interface.
var _ driven.Strategy[domain.Product] = (*Strategy)(nil)

const (
	// Name is reported as strategyUsed.
	Name = "Falabella"

	urlMarker       = "falabella.com"
	defaultCurrency = "PEN"
	internetPrice   = "internetPrice"
)

// resultPaths are the known locations of the product list, most specific
// first. The first three also serve as the payload signature.
var resultPaths = [][]string{
	{"props", "pageProps", "results"},
	{"props", "pageProps", "searchResults", "results"},
	{"pageProps", "results"},
	{"results"},
}

const signaturePaths = 3

// Strategy handles Falabella listing pages.
type Strategy struct{}

// New creates a new Falabella strategy.
func New() *Strategy {
	return &Strategy{}
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return Name
}

// CanHandle claims Falabella URLs and payloads carrying the page-state
// signature regardless of URL.
func (s *Strategy) CanHandle(payload domain.Payload, url string) bool {
	if strings.Contains(strings.ToLower(url), urlMarker) {
		return true
	}
	for _, path := range resultPaths[:signaturePaths] {
		if v, ok := normalize.Path(payload.Data, path...); ok {
			if _, isList := v.([]any); isList {
				return true
			}
		}
	}
	return false
}

// Extract maps every well-formed record of the result list.
func (s *Strategy) Extract(payload domain.Payload, url, jobID string) ([]domain.Product, error) {
	records := findRecords(payload.Data)
	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		if !wellFormed(rec) {
			continue
		}
		products = append(products, toProduct(rec, url, jobID))
	}
	return products, nil
}

func findRecords(data any) []map[string]any {
	for _, path := range resultPaths {
		if v, ok := normalize.Path(data, path...); ok {
			if recs := normalize.Objects(v); len(recs) > 0 {
				return recs
			}
		}
	}
	if arr, ok := data.([]any); ok {
		return normalize.Objects(arr)
	}
	return nil
}

func wellFormed(rec map[string]any) bool {
	return normalize.FirstString(rec, "productId", "skuId") != "" &&
		normalize.FirstString(rec, "displayName", "name") != ""
}

func toProduct(rec map[string]any, url, jobID string) domain.Product {
	p := normalize.NewProduct(
		normalize.FirstString(rec, "productId", "skuId"),
		normalize.FirstString(rec, "displayName", "name"),
		url, jobID, normalize.Clone(rec),
	)
	p.Brand = normalize.FirstString(rec, "brand", "brandName")
	p.Category = normalize.FirstString(rec, "category", "merchantCategoryId")
	p.URL = normalize.FirstString(rec, "url")
	p.Price = pickPrice(rec)
	p.Rating = normalize.BuildRating(rec["rating"], rec["totalReviews"])
	p.Images = images(rec)
	p.Availability = availability(rec)
	p.Badges = badges(rec)
	p.Variants = variants(rec)
	if name := normalize.FirstString(rec, "sellerName"); name != "" {
		p.Seller = &domain.Seller{ID: normalize.FirstString(rec, "sellerId"), Name: name}
	}
	return p
}

// pickPrice selects the internet price entry when present, else the first
// entry. A crossed entry supplies the original price.
func pickPrice(rec map[string]any) domain.Price {
	entries := normalize.Objects(rec["prices"])
	if len(entries) == 0 {
		if v, ok := normalize.FirstOf(rec, "price", "salePrice"); ok {
			text := normalize.String(v)
			return domain.Price{
				Amount:   normalize.Amount(v),
				Currency: normalize.CurrencyFromSymbol(text, defaultCurrency),
			}
		}
		return domain.Price{Currency: defaultCurrency}
	}

	chosen := entries[0]
	for _, e := range entries {
		if normalize.String(e["type"]) == internetPrice {
			chosen = e
			break
		}
	}

	text := strings.Join(normalize.Strings(chosen["price"]), " ")
	price := domain.Price{
		Amount:   normalize.Amount(chosen["price"]),
		Currency: normalize.Currency(normalize.String(chosen["currency"]), normalize.String(chosen["symbol"])+text, defaultCurrency),
		Label:    normalize.String(chosen["type"]),
	}
	for _, e := range entries {
		if normalize.Bool(e["crossed"]) {
			price.Original = normalize.Amount(e["price"])
			price.Flags = append(price.Flags, "crossed:"+normalize.String(e["type"]))
		}
	}
	return price
}

func images(rec map[string]any) []string {
	for _, key := range []string{"mediaUrls", "media", "images"} {
		if imgs := normalize.Strings(rec[key]); len(imgs) > 0 {
			return imgs
		}
	}
	return nil
}

// availability reads the shipping flags Falabella attaches to results.
// Products without any flag are assumed in stock: the site omits
// out-of-stock items from listing pages.
func availability(rec map[string]any) domain.Availability {
	av, ok := normalize.Object(rec["availability"])
	if !ok {
		return domain.Availability{InStock: true}
	}
	home := isAvailable(av["homeDeliveryShipping"])
	pickup := isAvailable(av["pickUpFromStoreShipping"])
	inStock := home || pickup || isAvailable(av["internationalShipping"]) || isAvailable(av["primeShipping"])
	if _, known := normalize.FirstOf(av, "homeDeliveryShipping", "pickUpFromStoreShipping",
		"internationalShipping", "primeShipping"); !known {
		inStock = true
	}
	return domain.Availability{InStock: inStock, HomeDelivery: home, StorePickup: pickup}
}

func isAvailable(v any) bool {
	if s, ok := v.(string); ok {
		return s != "" && !strings.EqualFold(s, "unavailable")
	}
	return normalize.Bool(v)
}

func badges(rec map[string]any) []string {
	var out []string
	for _, key := range []string{"badges", "multipurposeBadges", "meatStickers"} {
		out = append(out, normalize.Strings(rec[key])...)
	}
	return out
}

func variants(rec map[string]any) []domain.Variant {
	var out []domain.Variant
	for _, v := range normalize.Objects(rec["variants"]) {
		var options []string
		for _, opt := range normalize.Objects(v["options"]) {
			if label := normalize.FirstString(opt, "label", "value", "name"); label != "" {
				options = append(options, label)
			}
		}
		if len(options) == 0 {
			continue
		}
		out = append(out, domain.Variant{Type: normalize.String(v["type"]), Options: options})
	}
	return out
}
