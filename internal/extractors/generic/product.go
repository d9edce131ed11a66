package generic

import (
	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
	"github.com/KKogaa/extracto-storage-service/internal/extractors/normalize"
)

// Ensure ProductStrategy implements the interface.
var _ driven.Strategy[domain.Product] = (*ProductStrategy)(nil)

// Field aliases, most common first.
var (
	productIDKeys   = []string{"id", "productId", "product_id", "sku", "itemId", "item_id", "asin"}
	productNameKeys = []string{"name", "title", "displayName", "productName", "product_name"}
	priceKeys       = []string{"price", "salePrice", "sale_price", "currentPrice", "current_price", "finalPrice", "offerPrice"}
	originalKeys    = []string{"originalPrice", "original_price", "listPrice", "list_price", "regularPrice", "wasPrice"}
	currencyKeys    = []string{"currency", "currencyCode", "currency_code", "priceCurrency"}
	imageKeys       = []string{"images", "image", "imageUrl", "image_url", "img", "thumbnail", "mainImage", "pictures"}
	ratingKeys      = []string{"rating", "averageRating", "average_rating", "ratingValue", "stars"}
	reviewKeys      = []string{"reviewCount", "review_count", "reviews", "totalReviews", "ratingCount", "numReviews"}
	urlKeys         = []string{"url", "link", "productUrl", "product_url", "href"}
	stockKeys       = []string{"inStock", "in_stock", "available", "availability", "stock"}
	listKeys        = []string{"products", "items", "results"}
)

// ProductStrategy is the last-resort product parser.
type ProductStrategy struct{}

// NewProductStrategy creates the generic product fallback.
func NewProductStrategy() *ProductStrategy {
	return &ProductStrategy{}
}

// Name returns the strategy name.
func (s *ProductStrategy) Name() string {
	return Name
}

// CanHandle always claims the payload.
func (s *ProductStrategy) CanHandle(domain.Payload, string) bool {
	return true
}

// Extract accepts a bare array, an object exposing a products/items/results
// array, or a single object that looks like a product.
func (s *ProductStrategy) Extract(payload domain.Payload, url, jobID string) ([]domain.Product, error) {
	records := productRecords(payload.Data)
	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		if !looksLikeProduct(rec) {
			continue
		}
		products = append(products, toProduct(rec, url, jobID))
	}
	return products, nil
}

func productRecords(data any) []map[string]any {
	switch t := data.(type) {
	case []any:
		return normalize.Objects(t)
	case map[string]any:
		for _, key := range listKeys {
			if _, ok := t[key].([]any); ok {
				return normalize.Objects(t[key])
			}
		}
		if looksLikeProduct(t) {
			return []map[string]any{t}
		}
	}
	return nil
}

// looksLikeProduct requires both an id-like and a name-like field.
func looksLikeProduct(rec map[string]any) bool {
	return normalize.FirstString(rec, productIDKeys...) != "" &&
		normalize.FirstString(rec, productNameKeys...) != ""
}

func toProduct(rec map[string]any, url, jobID string) domain.Product {
	p := normalize.NewProduct(
		normalize.FirstString(rec, productIDKeys...),
		normalize.FirstString(rec, productNameKeys...),
		url, jobID, normalize.Clone(rec),
	)
	p.Brand = nameOf(rec, "brand", "manufacturer")
	p.Category = nameOf(rec, "category", "categoryName", "category_name")
	p.Description = normalize.FirstString(rec, "description", "desc")
	p.URL = normalize.AbsoluteURL(url, normalize.FirstString(rec, urlKeys...))
	p.Price = price(rec)
	p.Rating = rating(rec)
	p.Images = productImages(rec)
	p.Availability = domain.Availability{InStock: inStock(rec)}
	return p
}

// nameOf reads a field that may be a plain string or an object with a name.
func nameOf(rec map[string]any, keys ...string) string {
	v, ok := normalize.FirstOf(rec, keys...)
	if !ok {
		return ""
	}
	if m, ok := normalize.Object(v); ok {
		return normalize.FirstString(m, "name", "title", "label")
	}
	return normalize.String(v)
}

func price(rec map[string]any) domain.Price {
	code := normalize.FirstString(rec, currencyKeys...)
	v, _ := normalize.FirstOf(rec, priceKeys...)

	// {"price": {"amount": 10, "currency": "EUR"}}
	if m, ok := normalize.Object(v); ok {
		if code == "" {
			code = normalize.FirstString(m, currencyKeys...)
		}
		v, _ = normalize.FirstOf(m, "amount", "value", "current", "price")
	}

	text := normalize.String(v)
	p := domain.Price{
		Amount:   normalize.Amount(v),
		Currency: normalize.Currency(code, text, normalize.DefaultCurrency),
	}
	if orig, ok := normalize.FirstOf(rec, originalKeys...); ok {
		p.Original = normalize.Amount(orig)
	}
	return p
}

func rating(rec map[string]any) *domain.Rating {
	v, _ := normalize.FirstOf(rec, ratingKeys...)
	count, _ := normalize.FirstOf(rec, reviewKeys...)
	if m, ok := normalize.Object(v); ok {
		if c, ok := normalize.FirstOf(m, "count", "reviews", "reviewCount", "ratingCount"); ok {
			count = c
		}
		v, _ = normalize.FirstOf(m, "value", "average", "rate", "ratingValue")
	}
	// "reviews" may be the review list itself.
	if list, ok := count.([]any); ok {
		count = len(list)
	}
	return normalize.BuildRating(v, count)
}

func productImages(rec map[string]any) []string {
	for _, key := range imageKeys {
		if imgs := normalize.Strings(rec[key]); len(imgs) > 0 {
			return imgs
		}
	}
	return nil
}

// inStock treats missing stock information as available.
func inStock(rec map[string]any) bool {
	v, ok := normalize.FirstOf(rec, stockKeys...)
	if !ok {
		return true
	}
	if s, isString := v.(string); isString {
		return normalize.Bool(s) || normalize.Fold(s) == "in stock"
	}
	return normalize.Bool(v)
}
