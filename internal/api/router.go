// Package api exposes the compressor over HTTP.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/iamNilotpal/epubpress/internal/metrics"
)

// Options configures request limits of the API.
type Options struct {
	MaxUploadBytes    int64
	MaxBatchFiles     int
	MaxBatchFileBytes int64

	// RateLimit bounds uploads per client IP and window; 0 disables it.
	RateLimit       int
	RateLimitWindow time.Duration

	// Metrics mounts the Prometheus handler on /metrics.
	Metrics bool
}

func (o Options) withDefaults() Options {
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = 4 << 20
	}
	if o.MaxBatchFiles <= 0 {
		o.MaxBatchFiles = 10
	}
	if o.MaxBatchFileBytes <= 0 {
		o.MaxBatchFileBytes = 50 << 20
	}
	if o.RateLimitWindow <= 0 {
		o.RateLimitWindow = time.Minute
	}
	return o
}

// Routes builds the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(countRequests)

	r.Get("/healthz", h.Health)
	if h.opts.Metrics {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if h.opts.RateLimit > 0 {
				r.Use(httprate.Limit(
					h.opts.RateLimit,
					h.opts.RateLimitWindow,
					httprate.WithKeyFuncs(httprate.KeyByIP),
					httprate.WithLimitHandler(h.rateLimited),
				))
			}
			r.Post("/compress", h.Compress)
			r.Post("/batch-compress", h.BatchCompress)
		})

		r.Get("/status", h.Status)
		r.Get("/download", h.Download)
		r.Get("/progress", h.Progress)
	})

	r.Get("/ws", h.WebSocket)
	return r
}

// countRequests records every response by route pattern and status code.
func countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}
