package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

func TestListingType(t *testing.T) {
	tests := []struct {
		texts []string
		want  domain.ListingType
	}{
		{[]string{"Departamento en alquiler"}, domain.ListingRent},
		{[]string{"https://urbania.pe/buscar/venta-de-departamentos"}, domain.ListingSale},
		{[]string{"", "For Rent"}, domain.ListingRent},
		{[]string{"Casa en Venta o Alquiler"}, domain.ListingRent},
		{[]string{"Oficina"}, ""},
		{[]string{"Casa en venta con techo transparente"}, domain.ListingSale},
		{[]string{"Departamento para padres y parientes"}, ""},
		{[]string{"Los vecinos salen temprano", "https://example.com/alquileres/99"}, domain.ListingRent},
		{[]string{"Vendo casa de campo"}, domain.ListingSale},
		{[]string{"current listing"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ListingType(tt.texts...), tt.texts)
	}
}

func TestFeaturesFromText(t *testing.T) {
	f := FeaturesFromText("120 m² tot. · 3 Dormitorios · 2 Baños · 1 Estac.")
	assert.Equal(t, domain.Features{Bedrooms: 3, Bathrooms: 2, Parking: 1, AreaTotal: 120}, f)

	f = FeaturesFromText("85,5 m2 · 1 dorm.")
	assert.Equal(t, 1, f.Bedrooms)
	assert.InDelta(t, 85.5, f.AreaTotal, 0.001)

	assert.Equal(t, domain.Features{}, FeaturesFromText("Sin datos"))
}

func TestArea(t *testing.T) {
	assert.Equal(t, 95.0, Area("95 m2"))
	assert.Equal(t, 70.5, Area("70,5 m²"))
	assert.Equal(t, 120.0, Area(120))
	assert.Equal(t, 0.0, Area("n/a"))
	assert.Equal(t, 0.0, Area(nil))
}

func TestListingType_FirstTextWins(t *testing.T) {
	got := ListingType("Venta", "Casa", "https://urbania.pe/buscar/alquiler-de-casas")
	assert.Equal(t, domain.ListingSale, got)
}
