package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KKogaa/extracto-storage-service/internal/adapters/driven/storage/memory"
	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
)

// listingStub is a minimal listing strategy.
type listingStub struct {
	name   string
	claims func(domain.Payload, string) bool
	ids    []string
}

func (s *listingStub) Name() string { return s.name }

func (s *listingStub) CanHandle(p domain.Payload, url string) bool {
	return s.claims == nil || s.claims(p, url)
}

func (s *listingStub) Extract(_ domain.Payload, url, jobID string) ([]domain.Listing, error) {
	out := make([]domain.Listing, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, domain.Listing{
			ListingID: id,
			Title:     "Listing " + id,
			Price:     domain.Price{Amount: 1000, Currency: "PEN"},
			Source:    domain.Provenance{Domain: domain.SiteFromURL(url), URL: url, JobID: jobID},
		})
	}
	return out, nil
}

// productsFrom returns a product stub that builds one product per id.
func productsFrom(url string, ids ...string) *stubStrategy {
	s := &stubStrategy{name: "Generic"}
	for _, id := range ids {
		s.entities = append(s.entities, domain.Product{
			ProductID: id,
			Name:      "Product " + id,
			Price:     domain.Price{Amount: 10, Currency: "USD"},
			Source:    domain.Provenance{Domain: domain.SiteFromURL(url), URL: url},
		})
	}
	return s
}

// unavailableProducts fails every write as if the store were down.
type unavailableProducts struct {
	*memory.ProductStore
}

func (unavailableProducts) UpsertMany(context.Context, []domain.Product) (domain.UpsertSummary, error) {
	return domain.UpsertSummary{Errors: 1}, domain.ErrStoreUnavailable
}

// recordingMetrics keeps the calls it receives.
type recordingMetrics struct {
	jobs      []domain.JobState
	extracted []string
	upserts   []domain.UpsertSummary
}

func (m *recordingMetrics) JobReceived(s domain.JobState) { m.jobs = append(m.jobs, s) }

func (m *recordingMetrics) Extracted(_ domain.Kind, strategy string, _ int, _ bool, _ time.Duration) {
	m.extracted = append(m.extracted, strategy)
}

func (m *recordingMetrics) Upserted(_ domain.Kind, s domain.UpsertSummary) {
	m.upserts = append(m.upserts, s)
}

type routerFixture struct {
	router   *Router
	products *memory.ProductStore
	listings *memory.ListingStore
	jobs     *memory.JobStore
	metrics  *recordingMetrics
}

func newRouterFixture(productStrategy *stubStrategy, listingSite *listingStub, opts ...RouterOption) routerFixture {
	f := routerFixture{
		products: memory.NewProductStore(),
		listings: memory.NewListingStore(),
		jobs:     memory.NewJobStore(),
		metrics:  &recordingMetrics{},
	}
	listingFallback := &listingStub{name: "Generic"}
	opts = append([]RouterOption{WithMetrics(f.metrics)}, opts...)
	f.router = NewRouter(
		NewOrchestrator[domain.Product](productStrategy),
		NewOrchestrator[domain.Listing](listingFallback, listingSite),
		f.products, f.listings, f.jobs, opts...,
	)
	return f
}

func urbaniaStub(ids ...string) *listingStub {
	return &listingStub{
		name:   "Urbania",
		claims: func(_ domain.Payload, url string) bool { return strings.Contains(url, "urbania.pe") },
		ids:    ids,
	}
}

func TestRouter_CommerceJob(t *testing.T) {
	url := "https://shop.example.com/p/1"
	f := newRouterFixture(productsFrom(url, "a1", "a2"), urbaniaStub())
	ctx := context.Background()

	result, err := f.router.Handle(ctx, domain.JobEvent{
		JobID:  "job-1",
		URL:    url,
		Result: json.RawMessage(`[{"id":"a1"}]`),
		State:  domain.JobCompleted,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.KindCommerce, result.Kind)
	assert.Equal(t, "Generic", result.Strategy)
	assert.Equal(t, 2, result.Extracted)
	assert.Equal(t, domain.UpsertSummary{Inserted: 2}, result.Summary)

	stored, err := f.products.Get(ctx, "example", "a1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)

	job, err := f.jobs.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "example", job.Domain)
	assert.Equal(t, domain.JobCompleted, job.State)

	assert.Equal(t, []domain.JobState{domain.JobCompleted}, f.metrics.jobs)
	assert.Equal(t, []string{"Generic"}, f.metrics.extracted)
	assert.Len(t, f.metrics.upserts, 1)
}

func TestRouter_RealEstateByAllowList(t *testing.T) {
	// adondevivir is allow-listed even though no strategy claims its URLs.
	url := "https://www.adondevivir.com/propiedades/x.html"
	f := newRouterFixture(productsFrom(url, "p"), urbaniaStub("ignored"))

	result, err := f.router.Handle(context.Background(), domain.JobEvent{
		JobID: "job-2", URL: url, Result: json.RawMessage(`{}`), State: domain.JobCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KindRealEstate, result.Kind)
	assert.Equal(t, "Generic", result.Strategy)
}

func TestRouter_RealEstateByStrategyClaim(t *testing.T) {
	url := "https://urbania.pe/inmueble/123"
	f := newRouterFixture(productsFrom(url, "p"), urbaniaStub("123"), WithRealEstateSites())
	ctx := context.Background()

	result, err := f.router.Handle(ctx, domain.JobEvent{
		JobID: "job-3", URL: url, Result: json.RawMessage(`{}`), State: domain.JobCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KindRealEstate, result.Kind)
	assert.Equal(t, "Urbania", result.Strategy)

	stored, err := f.listings.Get(ctx, "urbania", "123")
	require.NoError(t, err)
	assert.Equal(t, "urbania:123", stored.UniqueKey)

	stats, err := f.products.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

func TestRouter_FailedJobIsNotExtracted(t *testing.T) {
	url := "https://shop.test/x"
	strategy := productsFrom(url, "p")
	f := newRouterFixture(strategy, urbaniaStub())
	ctx := context.Background()

	result, err := f.router.Handle(ctx, domain.JobEvent{
		JobID: "job-4", URL: url, State: domain.JobFailed, FailureReason: "timeout",
	})
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, 0, strategy.calls)

	job, err := f.jobs.Get(ctx, "job-4")
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, job.State)
	assert.Equal(t, "timeout", job.FailureReason)
	assert.Empty(t, f.metrics.extracted)
}

func TestRouter_ExtractionErrorsAreReported(t *testing.T) {
	strategy := &stubStrategy{name: "Generic", err: errors.New("bad shape")}
	f := newRouterFixture(strategy, urbaniaStub())

	result, err := f.router.Handle(context.Background(), domain.JobEvent{
		JobID: "job-5", URL: "https://shop.test", Result: json.RawMessage(`{}`), State: domain.JobCompleted,
	})
	require.NoError(t, err)
	assert.Zero(t, result.Extracted)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "bad shape")
	assert.Empty(t, f.metrics.upserts)
}

func TestRouter_StoreUnavailablePropagates(t *testing.T) {
	url := "https://shop.test"
	f := newRouterFixture(productsFrom(url, "p"), urbaniaStub())
	f.router.productStore = unavailableProducts{f.products}

	result, err := f.router.Handle(context.Background(), domain.JobEvent{
		JobID: "job-6", URL: url, Result: json.RawMessage(`{}`), State: domain.JobCompleted,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Summary.Errors)
}

func TestRouter_InvalidEvent(t *testing.T) {
	f := newRouterFixture(productsFrom("", "p"), urbaniaStub())

	_, err := f.router.Handle(context.Background(), domain.JobEvent{JobID: "x", State: domain.JobCompleted})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.router.Handle(context.Background(), domain.JobEvent{JobID: "x", URL: "https://a.test", State: "running"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRouter_AssignsJobID(t *testing.T) {
	f := newRouterFixture(productsFrom("https://shop.test", "p"), urbaniaStub())

	result, err := f.router.Handle(context.Background(), domain.JobEvent{
		URL: "https://shop.test", State: domain.JobFailed,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.JobID)

	_, err = f.jobs.Get(context.Background(), result.JobID)
	assert.NoError(t, err)
}

func TestRouter_Classify(t *testing.T) {
	f := newRouterFixture(productsFrom("", "p"), urbaniaStub())

	tests := []struct {
		url  string
		want domain.Kind
	}{
		{"https://www.falabella.com.pe/falabella-pe/product/1", domain.KindCommerce},
		{"https://urbania.pe/buscar/venta", domain.KindRealEstate},
		{"https://www.adondevivir.com/x", domain.KindRealEstate},
		{"not a url", domain.KindCommerce},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, f.router.Classify(domain.Payload{}, tt.url))
		})
	}
}
