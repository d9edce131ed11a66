package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driving"
	"github.com/KKogaa/extracto-storage-service/internal/logger"
)

// Ensure Router implements the interface.
var _ driving.JobRouter = (*Router)(nil)

// DefaultRealEstateSites are the canonical sites routed to the listing
// pipeline without consulting its strategies.
var DefaultRealEstateSites = []string{"urbania", "adondevivir"}

// Router records every job event and dispatches completed payloads to
// the commerce or real-estate pipeline.
type Router struct {
	products driving.Extractor[domain.Product]
	listings driving.Extractor[domain.Listing]

	productStore driven.ProductStore
	listingStore driven.ListingStore
	jobStore     driven.JobStore
	metrics      driven.Metrics

	realEstateSites map[string]bool
	now             func() time.Time
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRealEstateSites replaces the real-estate allow-list.
func WithRealEstateSites(sites ...string) RouterOption {
	return func(r *Router) {
		r.realEstateSites = make(map[string]bool, len(sites))
		for _, s := range sites {
			r.realEstateSites[s] = true
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m driven.Metrics) RouterOption {
	return func(r *Router) {
		if m != nil {
			r.metrics = m
		}
	}
}

// NewRouter creates a router over the given extractors and stores.
func NewRouter(
	products driving.Extractor[domain.Product],
	listings driving.Extractor[domain.Listing],
	productStore driven.ProductStore,
	listingStore driven.ListingStore,
	jobStore driven.JobStore,
	opts ...RouterOption,
) *Router {
	r := &Router{
		products:     products,
		listings:     listings,
		productStore: productStore,
		listingStore: listingStore,
		jobStore:     jobStore,
		metrics:      driven.NopMetrics{},
		now:          func() time.Time { return time.Now().UTC() },
	}
	WithRealEstateSites(DefaultRealEstateSites...)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classify decides which pipeline a payload from url belongs to.
func (r *Router) Classify(payload domain.Payload, url string) domain.Kind {
	if r.realEstateSites[domain.SiteFromURL(url)] || r.listings.Claims(payload, url) {
		return domain.KindRealEstate
	}
	return domain.KindCommerce
}

// Handle records the raw job and, for completed jobs, extracts and
// stores the entities in its payload.
func (r *Router) Handle(ctx context.Context, event domain.JobEvent) (*domain.RouteResult, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("job %q: %w", event.JobID, err)
	}
	if event.JobID == "" {
		event.JobID = uuid.NewString()
	}
	log := logger.Logger().With("job_id", event.JobID, "url", event.URL)

	job := domain.RawJob{
		JobID:         event.JobID,
		URL:           event.URL,
		Domain:        domain.SiteFromURL(event.URL),
		State:         event.State,
		FailureReason: event.FailureReason,
		Result:        event.Result,
		ReceivedAt:    r.now(),
	}
	r.metrics.JobReceived(event.State)
	if err := r.jobStore.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("saving job %s: %w", event.JobID, err)
	}

	result := &domain.RouteResult{JobID: event.JobID}
	if event.State == domain.JobFailed {
		log.Info("job failed upstream, not extracting", "reason", event.FailureReason)
		result.Skipped = true
		return result, nil
	}

	payload := domain.NewPayload(event.Result)
	result.Kind = r.Classify(payload, event.URL)

	var err error
	switch result.Kind {
	case domain.KindRealEstate:
		err = process(ctx, r, result, r.listings, r.listingStore.UpsertMany, payload, event)
	default:
		err = process(ctx, r, result, r.products, r.productStore.UpsertMany, payload, event)
	}
	if err != nil {
		log.Error("storing entities failed", "kind", result.Kind, "error", err)
		return result, err
	}

	log.Info("job routed",
		"kind", result.Kind,
		"strategy", result.Strategy,
		"extracted", result.Extracted,
		"inserted", result.Summary.Inserted,
		"updated", result.Summary.Updated,
		"errors", result.Summary.Errors,
	)
	return result, nil
}

// process runs one extraction and bulk upsert, filling result.
func process[T any](
	ctx context.Context,
	r *Router,
	result *domain.RouteResult,
	extractor driving.Extractor[T],
	upsert func(context.Context, []T) (domain.UpsertSummary, error),
	payload domain.Payload,
	event domain.JobEvent,
) error {
	start := time.Now()
	extraction := extractor.Extract(payload, event.URL, event.JobID)
	r.metrics.Extracted(result.Kind, extraction.Metadata.StrategyUsed, len(extraction.Entities), extraction.Failed(), time.Since(start))

	result.Strategy = extraction.Metadata.StrategyUsed
	result.Extracted = len(extraction.Entities)
	result.Errors = extraction.Metadata.Errors
	if len(extraction.Entities) == 0 {
		return nil
	}

	summary, err := upsert(ctx, extraction.Entities)
	result.Summary = summary
	r.metrics.Upserted(result.Kind, summary)
	return err
}
