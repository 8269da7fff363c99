// Package metrics provides Prometheus metrics for translatord
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for translatord
type Metrics struct {
	// HTTP request metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Pipeline metrics
	PipelineRunsTotal  *prometheus.CounterVec
	TranslateDuration  prometheus.Histogram
	TranscribeDuration prometheus.Histogram

	// Terminology protection metrics
	TermsProtectedTotal         prometheus.Counter
	CoverageGapsTotal           prometheus.Counter
	UnresolvedPlaceholdersTotal prometheus.Counter

	// Glossary metrics
	GlossaryEntries      prometheus.Gauge
	GlossaryReloadsTotal *prometheus.CounterVec

	// Server metrics
	ServerUptimeSeconds prometheus.Gauge
	ServerStartTime     time.Time
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		ServerStartTime: time.Now(),
	}

	// HTTP request metrics
	m.HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translatord_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)

	m.HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "translatord_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "translatord_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Pipeline metrics
	m.PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translatord_pipeline_runs_total",
			Help: "Total number of protected translation runs",
		},
		[]string{"status"},
	)

	m.TranslateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "translatord_translate_duration_seconds",
			Help:    "Duration of external translation calls in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	m.TranscribeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "translatord_transcribe_duration_seconds",
			Help:    "Duration of external transcription calls in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// Terminology protection metrics
	m.TermsProtectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "translatord_terms_protected_total",
			Help: "Total number of glossary terms replaced by placeholders",
		},
	)

	m.CoverageGapsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "translatord_coverage_gaps_total",
			Help: "Total number of restorations that fell back to the canonical term",
		},
	)

	m.UnresolvedPlaceholdersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "translatord_unresolved_placeholders_total",
			Help: "Total number of placeholders the fuzzy cascade could not recover",
		},
	)

	// Glossary metrics
	m.GlossaryEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "translatord_glossary_entries",
			Help: "Number of entries in the active glossary index",
		},
	)

	m.GlossaryReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translatord_glossary_reloads_total",
			Help: "Total number of glossary reload attempts",
		},
		[]string{"status"},
	)

	// Server metrics
	m.ServerUptimeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "translatord_server_uptime_seconds",
			Help: "Server uptime in seconds",
		},
	)

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime periodically updates the server uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.ServerUptimeSeconds.Set(time.Since(m.ServerStartTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request with its status
func (m *Metrics) RecordHTTPRequest(route string, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordPipelineRun records one protected translation and its findings
func (m *Metrics) RecordPipelineRun(status string, protected, coverageGaps, unresolvedCount int) {
	m.PipelineRunsTotal.WithLabelValues(status).Inc()
	m.TermsProtectedTotal.Add(float64(protected))
	m.CoverageGapsTotal.Add(float64(coverageGaps))
	m.UnresolvedPlaceholdersTotal.Add(float64(unresolvedCount))
}

// RecordGlossaryReload records a reload attempt and the resulting entry count
func (m *Metrics) RecordGlossaryReload(status string, entries int) {
	m.GlossaryReloadsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		m.GlossaryEntries.Set(float64(entries))
	}
}
