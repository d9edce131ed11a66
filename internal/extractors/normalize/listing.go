package normalize

import (
	"regexp"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

// Operation words must stand alone so "transparente" or "salen" do not
// classify a listing. Inflections ("alquileres", "vendo") still match.
var (
	rentWordsRe = regexp.MustCompile(`\b(?:alquil\w*|arriend\w*|rent(?:a|al|als|ed)?|lease\w*)\b`)
	saleWordsRe = regexp.MustCompile(`\b(?:venta|vend[eo]\w*|sale|sell\w*|compra)\b`)
)

// ListingType classifies a listing from free text such as an operation
// field, a title or a URL. Texts are consulted in order and the first one
// that classifies wins. Within one text rent words win over sale words
// since rental titles often say "venta o alquiler". Unknown text yields "".
func ListingType(texts ...string) domain.ListingType {
	for _, text := range texts {
		folded := Fold(text)
		if rentWordsRe.MatchString(folded) {
			return domain.ListingRent
		}
		if saleWordsRe.MatchString(folded) {
			return domain.ListingSale
		}
	}
	return ""
}

var (
	bedroomsRe  = regexp.MustCompile(`(\d+)\s*(?:dorm|hab|recamara|bed|br\b)`)
	bathroomsRe = regexp.MustCompile(`(\d+)\s*(?:ban|bath|wc)`)
	parkingRe   = regexp.MustCompile(`(\d+)\s*(?:estac|cochera|parking|garage)`)
	areaRe      = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:m²|m2|mts|sqm)`)
)

// FeaturesFromText reads bedroom, bathroom, parking and area counts out of
// a free-text feature line ("120 m² · 3 dorm. · 2 baños · 1 estac.").
func FeaturesFromText(text string) domain.Features {
	folded := Fold(text)
	var f domain.Features
	if m := bedroomsRe.FindStringSubmatch(folded); m != nil {
		f.Bedrooms = Int(m[1])
	}
	if m := bathroomsRe.FindStringSubmatch(folded); m != nil {
		f.Bathrooms = Int(m[1])
	}
	if m := parkingRe.FindStringSubmatch(folded); m != nil {
		f.Parking = Int(m[1])
	}
	if m := areaRe.FindStringSubmatch(folded); m != nil {
		f.AreaTotal = Number(m[1])
	}
	return f
}

var leadingNumber = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// Area reads a surface value. Strings keep only their first number so
// the unit ("95 m2") does not leak into the digits.
func Area(v any) float64 {
	if s, ok := v.(string); ok {
		return Number(leadingNumber.FindString(s))
	}
	return Number(v)
}
