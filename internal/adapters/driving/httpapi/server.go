// Package httpapi exposes job intake and catalog queries over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"golang.org/x/time/rate"

	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driving"
	"github.com/KKogaa/extracto-storage-service/internal/logger"
	"github.com/KKogaa/extracto-storage-service/internal/metrics"
)

const maxEventBodySize = 32 << 20 // 32MB

// Deps are the collaborators of the HTTP handler.
type Deps struct {
	Router  driving.JobRouter
	Catalog driving.CatalogService
	// Jobs serves /jobs. Nil means the routes are not mounted.
	Jobs driving.JobService
	// Limiter throttles POST /events. Nil means unlimited.
	Limiter *rate.Limiter
	// Metrics is optional; when nil /metrics is not mounted.
	Metrics *metrics.Recorder
	// Health reports store connectivity for /healthz. Nil means always healthy.
	Health func(context.Context) error
}

// NewHandler builds the chi router.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httplog.RequestLogger(logger.Logger(), &httplog.Options{
		Level:             slog.LevelDebug,
		Schema:            httplog.SchemaECS.Concise(true),
		LogRequestHeaders: []string{},
	}))
	if deps.Metrics != nil {
		r.Use(instrument(deps.Metrics))
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Get("/healthz", handleHealth(deps))
	r.With(throttle(deps.Limiter)).Post("/events", handleEvent(deps))

	r.Route("/products", func(r chi.Router) {
		r.Get("/", handleSearchProducts(deps))
		r.Get("/stats", handleProductStats(deps))
		r.Get("/{domain}/{id}", handleGetProduct(deps))
	})
	r.Route("/listings", func(r chi.Router) {
		r.Get("/", handleSearchListings(deps))
		r.Get("/stats", handleListingStats(deps))
		r.Get("/{domain}/{id}", handleGetListing(deps))
	})
	if deps.Jobs != nil {
		r.Route("/jobs", func(r chi.Router) {
			r.Get("/stats", handleJobStats(deps))
			r.Get("/{id}", handleGetJob(deps))
		})
	}

	return r
}

// throttle rejects requests beyond the limiter's rate with 429.
func throttle(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil && !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				httpError(w, http.StatusTooManyRequests, "rate_limited", "too many events, retry later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// instrument records request counts and durations by route pattern.
func instrument(rec *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			rec.RecordRequest(r.Method, route, status, time.Since(start))
		})
	}
}

// Serve runs the handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	}
}
