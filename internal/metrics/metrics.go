// Package metrics exposes the Prometheus instruments of the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Pipeline Metrics
	ArchivesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epubpress_archives_processed_total",
			Help: "Archives run through the pipeline by outcome and level",
		},
		[]string{"outcome", "level"}, // outcome: "completed", or the failure code
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "epubpress_pipeline_duration_seconds",
			Help:    "Wall time of one pipeline run",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"level"},
	)

	EntriesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epubpress_entries_processed_total",
			Help: "Archive entries processed by category and outcome",
		},
		[]string{"category", "outcome"}, // outcome: "optimized", "unchanged", "fallback"
	)

	OptimizationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epubpress_optimization_fallbacks_total",
			Help: "Entries that kept their original bytes after a failed optimization",
		},
		[]string{"category", "reason"},
	)

	BytesSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epubpress_bytes_saved_total",
			Help: "Uncompressed bytes removed by entry optimization",
		},
		[]string{"category"},
	)

	// Task Metrics
	TasksActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "epubpress_tasks_active",
			Help: "Tasks currently processing",
		},
	)

	TasksSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "epubpress_tasks_swept_total",
			Help: "Task records removed after the retention window",
		},
	)

	ArtifactsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "epubpress_artifacts_swept_total",
			Help: "Stored artifacts removed after the retention window",
		},
	)

	// Batch Metrics
	BatchFiles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epubpress_batch_files_total",
			Help: "Files processed by batch runs by status",
		},
		[]string{"status"},
	)

	// API Metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epubpress_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	ProgressSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "epubpress_progress_subscribers",
			Help: "Open SSE and WebSocket progress streams",
		},
	)
)

// ObservePipeline records one finished pipeline run.
func ObservePipeline(level, outcome string, started time.Time) {
	ArchivesProcessed.WithLabelValues(outcome, level).Inc()
	PipelineDuration.WithLabelValues(level).Observe(time.Since(started).Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
