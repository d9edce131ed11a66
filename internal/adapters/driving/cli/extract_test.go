package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

func TestExtractCmd_Product(t *testing.T) {
	stores, cleanup := setupTestServices()
	defer cleanup()

	path := writeFile(t, "p.json", `[{"id":"a1","name":"Widget","price":"$19.99"}]`)
	out, err := run(t, "extract", "--url", "https://other.test/list", path)
	require.NoError(t, err)

	var result domain.ExtractionResult[domain.Product]
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "Generic", result.Metadata.StrategyUsed)
	require.Len(t, result.Entities, 1)
	assert.Equal(t, 19.99, result.Entities[0].Price.Amount)
	assert.Equal(t, "USD", result.Entities[0].Price.Currency)

	stats, err := stores.products.Stats(t.Context())
	require.NoError(t, err)
	assert.Zero(t, stats.Total, "extract must not store")
}

func TestExtractCmd_AutoListing(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	path := writeFile(t, "u.json", `{"listPostings":[{"postingId":"9","title":"Casa en venta"}]}`)
	out, err := run(t, "extract", "--url", "https://urbania.pe/buscar/venta-de-casas", path)
	require.NoError(t, err)

	var result domain.ExtractionResult[domain.Listing]
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "Urbania", result.Metadata.StrategyUsed)
	require.Len(t, result.Entities, 1)
	assert.Equal(t, domain.ListingSale, result.Entities[0].ListingType)
}

func TestExtractCmd_UnknownKind(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := run(t, "extract", "--kind", "car", writeFile(t, "x.json", "{}"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)
	assert.Contains(t, err.Error(), `"car"`)
}
