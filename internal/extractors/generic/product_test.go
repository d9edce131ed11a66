package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

func extractProducts(t *testing.T, raw string) []domain.Product {
	t.Helper()
	products, err := NewProductStrategy().Extract(domain.NewPayload([]byte(raw)), "https://shop.example.com/list", "job-9")
	require.NoError(t, err)
	return products
}

func TestProductStrategy_ClaimsEverything(t *testing.T) {
	s := NewProductStrategy()
	assert.Equal(t, "Generic", s.Name())
	assert.True(t, s.CanHandle(domain.NewPayload(nil), ""))
	assert.True(t, s.CanHandle(domain.NewPayload([]byte(`<html/>`)), "https://x.test"))
}

func TestProductStrategy_BareArray(t *testing.T) {
	products := extractProducts(t, `[{"id":"a1","name":"Widget","price":"$19.99"}]`)

	require.Len(t, products, 1)
	p := products[0]
	assert.Equal(t, "a1", p.ProductID)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, 19.99, p.Price.Amount)
	assert.Equal(t, "USD", p.Price.Currency)
	assert.Equal(t, "example", p.Source.Domain)
	assert.Equal(t, "job-9", p.Source.JobID)
	assert.Nil(t, p.Rating)
	assert.True(t, p.Availability.InStock)
}

func TestProductStrategy_Aliases(t *testing.T) {
	raw := `{"items":[
	  {"sku":"S-1","title":"Lamp","salePrice":{"amount":"25.50","currency":"eur"},
	   "brand":{"name":"Lumo"},"imageUrl":"/img/1.jpg","rating":{"value":4.2,"count":"12"},
	   "inStock":false,"link":"/p/s-1"},
	  {"productId":7,"productName":"Chair","price":40,"currencyCode":"PEN","reviews":[{},{}],"averageRating":"3"},
	  {"name":"no id"}
	]}`
	products := extractProducts(t, raw)

	require.Len(t, products, 2)

	lamp := products[0]
	assert.Equal(t, "S-1", lamp.ProductID)
	assert.Equal(t, 25.5, lamp.Price.Amount)
	assert.Equal(t, "EUR", lamp.Price.Currency)
	assert.Equal(t, "Lumo", lamp.Brand)
	assert.Equal(t, []string{"/img/1.jpg"}, lamp.Images)
	assert.Equal(t, &domain.Rating{Value: 4.2, Count: 12}, lamp.Rating)
	assert.False(t, lamp.Availability.InStock)
	assert.Equal(t, "https://shop.example.com/p/s-1", lamp.URL)

	chair := products[1]
	assert.Equal(t, "7", chair.ProductID)
	assert.Equal(t, 40.0, chair.Price.Amount)
	assert.Equal(t, "PEN", chair.Price.Currency)
	assert.Equal(t, &domain.Rating{Value: 3, Count: 2}, chair.Rating)
}

func TestProductStrategy_SingleObject(t *testing.T) {
	products := extractProducts(t, `{"id":"x","name":"Solo","price":"S/. 350"}`)
	require.Len(t, products, 1)
	assert.Equal(t, 350.0, products[0].Price.Amount)
	assert.Equal(t, "PEN", products[0].Price.Currency)
}

func TestProductStrategy_NothingUsable(t *testing.T) {
	assert.Empty(t, extractProducts(t, `{"foo":"bar"}`))
	assert.Empty(t, extractProducts(t, `<html><body>hi</body></html>`))
	assert.NotNil(t, extractProducts(t, `[]`))
}
