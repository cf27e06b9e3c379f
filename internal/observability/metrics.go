// Package observability — metrics.go
//
// Prometheus metrics for fbas-analyzer's bulk runner and search engine.
//
// Endpoint: GET /metrics on the address given by --metrics-addr (or
// observability.metrics_addr in the config file); not started when that
// address is empty, which is the default.
// Format: Prometheus text exposition format (OpenMetrics compatible).
//
// Metric naming convention: fbas_<subsystem>_<name>_<unit>
//
// All metrics are registered on a dedicated prometheus.Registry (not the
// default global registry) to avoid collisions with other instrumented
// libraries in the same process.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metric descriptors for fbas-analyzer.
type Metrics struct {
	registry *prometheus.Registry

	// ─── Search ───────────────────────────────────────────────────────────────

	// SetsFoundTotal counts candidate node sets emitted by a search, by kind
	// (quorums, blocking_sets, splitting_sets).
	SetsFoundTotal *prometheus.CounterVec

	// SearchDuration records wall-clock duration of a completed search, by kind.
	SearchDuration *prometheus.HistogramVec

	// ─── Bulk runner ────────────────────────────────────────────────────────────

	// BulkFilesProcessedTotal counts FBAS files analyzed by the bulk runner.
	BulkFilesProcessedTotal prometheus.Counter

	// BulkFilesFailedTotal counts FBAS files that failed to parse or analyze.
	BulkFilesFailedTotal prometheus.Counter

	// BulkAnalysisDuration records per-file analysis duration.
	BulkAnalysisDuration prometheus.Histogram

	// ─── Cache ──────────────────────────────────────────────────────────────────

	// CacheHitsTotal / CacheMissesTotal count standard-form cache lookups.
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	startTime time.Time
}

// NewMetrics creates and registers all fbas-analyzer Prometheus metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		SetsFoundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fbas",
			Subsystem: "search",
			Name:      "sets_found_total",
			Help:      "Total candidate node sets emitted by a search, by search kind.",
		}, []string{"kind"}),

		SearchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fbas",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of a completed search, by search kind.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12),
		}, []string{"kind"}),

		BulkFilesProcessedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fbas",
			Subsystem: "bulk",
			Name:      "files_processed_total",
			Help:      "Total FBAS files successfully analyzed by the bulk runner.",
		}),

		BulkFilesFailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fbas",
			Subsystem: "bulk",
			Name:      "files_failed_total",
			Help:      "Total FBAS files that failed to parse or analyze in the bulk runner.",
		}),

		BulkAnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fbas",
			Subsystem: "bulk",
			Name:      "analysis_duration_seconds",
			Help:      "Per-file analysis duration in the bulk runner.",
			Buckets:   prometheus.DefBuckets,
		}),

		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fbas",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total standard-form cache hits.",
		}),

		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fbas",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total standard-form cache misses.",
		}),
	}

	reg.MustRegister(
		m.SetsFoundTotal,
		m.SearchDuration,
		m.BulkFilesProcessedTotal,
		m.BulkFilesFailedTotal,
		m.BulkAnalysisDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return m
}

// ServeMetrics starts the Prometheus HTTP metrics server on the given address.
// Blocks until ctx is cancelled or the server fails.
func (m *Metrics) ServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server on %s: %w", addr, err)
	}
	return nil
}
