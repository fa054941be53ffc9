// Package metrics provides Prometheus metrics for LogWise: analysis
// pipeline counters, runtime connectivity, and HTTP instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Analysis pipeline ──────────────────────────────────────────────────────

// AnalysesTotal counts finished analyses by outcome
// (ok, runtime_down, model_missing, generate_failed, empty_input).
var AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "logwise",
	Name:      "analyses_total",
	Help:      "Total analysis runs by outcome.",
}, []string{"outcome"})

// AnalyzeDuration tracks end-to-end analysis wall time.
var AnalyzeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "logwise",
	Name:      "analyze_duration_seconds",
	Help:      "End-to-end analysis duration in seconds.",
	Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
}, []string{"model"})

// FilteredLines tracks how many log lines survive time filtering per run.
var FilteredLines = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "logwise",
	Name:      "filtered_lines",
	Help:      "Log lines fed to the model per analysis.",
	Buckets:   []float64{10, 50, 100, 200, 500, 1000},
})

// ─── Runtime ────────────────────────────────────────────────────────────────

// RuntimeUp is 1 when the model runtime answered the last health check.
var RuntimeUp = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "logwise",
	Name:      "runtime_up",
	Help:      "Whether the model runtime answered the last probe.",
})

// PullBytes counts bytes reported downloaded by model pulls.
var PullBytes = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "logwise",
	Name:      "pull_bytes_total",
	Help:      "Bytes reported downloaded by model pulls.",
})

// ─── History ────────────────────────────────────────────────────────────────

// ReportsStored tracks the number of reports in the archive.
var ReportsStored = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "logwise",
	Name:      "reports_stored",
	Help:      "Reports currently stored in the history archive.",
})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests counts API requests by route and status class.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "logwise",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total HTTP requests.",
}, []string{"route", "method", "status"})

// HTTPDuration tracks request duration by route.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "logwise",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "method"})
