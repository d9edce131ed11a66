package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

const falabellaPayload = `{"props":{"pageProps":{"results":[{"productId":"123","displayName":"Phone X","prices":[{"type":"internetPrice","price":["999"],"symbol":"S/ "}]}]}}}`

func TestIngestCmd_Flags(t *testing.T) {
	for _, name := range []string{"url", "job-id", "events", "json"} {
		assert.NotNil(t, ingestCmd.Flags().Lookup(name), name)
	}
}

func TestIngestCmd_RequiresURL(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := run(t, "ingest", writeFile(t, "p.json", "[]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--url is required")
}

func TestIngestCmd_JobIDSingleFileOnly(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := run(t, "ingest", "--url", "https://shop.test", "--job-id", "j",
		writeFile(t, "a.json", "[]"), writeFile(t, "b.json", "[]"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single file")
}

func TestIngestCmd_PayloadFiles(t *testing.T) {
	stores, cleanup := setupTestServices()
	defer cleanup()
	ctx := context.Background()

	url := "https://www.falabella.com.pe/falabella-pe/product/123"
	path := writeFile(t, "falabella.json", falabellaPayload)

	out, err := run(t, "ingest", "--url", url, "--job-id", "job-1", path)
	require.NoError(t, err)
	assert.Contains(t, out, "falabella.json: commerce via Falabella, 1 extracted, 1 inserted")

	out, err = run(t, "ingest", "--url", url, "--json", path)
	require.NoError(t, err)
	var results []domain.RouteResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Summary.Updated)

	stored, err := stores.products.Get(ctx, "falabella", "123")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	assert.Equal(t, 999.0, stored.Price.Amount)

	job, err := stores.jobs.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "falabella", job.Domain)
}

func TestIngestCmd_HTMLPayload(t *testing.T) {
	stores, cleanup := setupTestServices()
	defer cleanup()

	html := `<html><head><script type="application/ld+json">
{"@context":"https://schema.org","@type":"Product","sku":"S-1","name":"Lamp","offers":{"@type":"Offer","price":"59.90","priceCurrency":"PEN"}}
</script></head><body></body></html>`

	out, err := run(t, "ingest", "--url", "https://tienda.example.com/lamp", writeFile(t, "page.html", html))
	require.NoError(t, err)
	assert.Contains(t, out, "via StructuredData")

	stored, err := stores.products.Get(context.Background(), "example", "S-1")
	require.NoError(t, err)
	assert.Equal(t, 59.9, stored.Price.Amount)
}

func TestIngestCmd_EventFiles(t *testing.T) {
	stores, cleanup := setupTestServices()
	defer cleanup()

	failed := writeFile(t, "failed.json", `{"jobId":"f1","url":"https://shop.test","finalState":"failed","failureReason":"timeout"}`)
	broken := writeFile(t, "broken.json", `{"jobId":`)

	_, err := run(t, "ingest", "--events", failed, broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")

	job, err := stores.jobs.Get(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, job.State)
}

func TestRawResult(t *testing.T) {
	assert.JSONEq(t, `{"a":1}`, string(rawResult([]byte(`{"a":1}`))))

	var html string
	require.NoError(t, json.Unmarshal(rawResult([]byte(`<p>hi</p>`)), &html))
	assert.Equal(t, "<p>hi</p>", html)
}
