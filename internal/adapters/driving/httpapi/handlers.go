package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/logger"
)

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Health != nil {
			if err := deps.Health(r.Context()); err != nil {
				httpError(w, http.StatusServiceUnavailable, "unavailable", "%v", err)
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleEvent(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxEventBodySize)
		defer r.Body.Close()

		var event domain.JobEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid event body: %v", err)
			return
		}

		result, err := deps.Router.Handle(r.Context(), event)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func handleSearchProducts(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := queryParams{values: r.URL.Query()}
		filter := domain.ProductFilter{
			Domain:   q.values.Get("domain"),
			Brand:    q.values.Get("brand"),
			Category: q.values.Get("category"),
			Text:     q.values.Get("q"),
			MinPrice: q.floatParam("minPrice"),
			MaxPrice: q.floatParam("maxPrice"),
			Limit:    q.intParam("limit"),
			Skip:     q.intParam("skip"),
		}
		if q.err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", q.err)
			return
		}
		products, err := deps.Catalog.SearchProducts(r.Context(), filter)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": len(products), "products": products})
	}
}

func handleProductStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := deps.Catalog.ProductStats(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func handleGetProduct(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Catalog.GetProduct(r.Context(), chi.URLParam(r, "domain"), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleSearchListings(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := queryParams{values: r.URL.Query()}
		filter := domain.ListingFilter{
			Domain:       q.values.Get("domain"),
			ListingType:  domain.ListingType(q.values.Get("type")),
			PropertyType: q.values.Get("propertyType"),
			District:     q.values.Get("district"),
			City:         q.values.Get("city"),
			Text:         q.values.Get("q"),
			MinPrice:     q.floatParam("minPrice"),
			MaxPrice:     q.floatParam("maxPrice"),
			MinBedrooms:  q.intParam("minBedrooms"),
			Limit:        q.intParam("limit"),
			Skip:         q.intParam("skip"),
		}
		if q.err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", q.err)
			return
		}
		listings, err := deps.Catalog.SearchListings(r.Context(), filter)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": len(listings), "listings": listings})
	}
}

func handleListingStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := deps.Catalog.ListingStats(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func handleGetListing(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := deps.Catalog.GetListing(r.Context(), chi.URLParam(r, "domain"), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

// queryParams parses numeric query parameters, keeping the first error.
type queryParams struct {
	values url.Values
	err    error
}

func (q *queryParams) floatParam(name string) *float64 {
	raw := q.values.Get(name)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.fail(name, raw)
		return nil
	}
	return &f
}

func (q *queryParams) intParam(name string) int {
	raw := q.values.Get(name)
	if raw == "" {
		return 0
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(name, raw)
		return 0
	}
	return i
}

func (q *queryParams) fail(name, raw string) {
	if q.err == nil {
		q.err = fmt.Errorf("invalid %s %q", name, raw)
	}
}

func handleGetJob(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := deps.Jobs.GetJob(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

func handleJobStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := deps.Jobs.JobStats(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		writeJSON(w, http.StatusOK, map[string]any{"total": total, "byState": counts})
	}
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found", "%v", err)
	case errors.Is(err, domain.ErrInvalidInput):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
	case errors.Is(err, domain.ErrStoreUnavailable):
		httpError(w, http.StatusServiceUnavailable, "unavailable", "%v", err)
	default:
		logger.Error("request failed: %v", err)
		httpError(w, http.StatusInternalServerError, "api_error", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}
