package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/benjaminschreck/docfill/pkg/docfill"
)

// Metrics holds the Prometheus metrics of the fill service
type Metrics struct {
	// Request metrics
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram

	// Fill metrics
	paragraphsSubstituted prometheus.Counter
	paragraphsSkipped     prometheus.Counter
	rowsAdded             prometheus.Counter
	tablesTotal           *prometheus.CounterVec

	// Configuration reload metrics
	configReloads *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics instance registered on a private registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docfill_requests_total",
				Help: "Total number of process requests by response status",
			},
			[]string{"status"},
		),

		requestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docfill_request_duration_seconds",
				Help:    "Process request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		paragraphsSubstituted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docfill_paragraphs_substituted_total",
				Help: "Total number of paragraphs rewritten by substitution",
			},
		),

		paragraphsSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docfill_paragraphs_skipped_total",
				Help: "Total number of paragraphs skipped after a substitution failure",
			},
		),

		rowsAdded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docfill_rows_added_total",
				Help: "Total number of table rows added by replication",
			},
		),

		tablesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docfill_tables_total",
				Help: "Total number of top-level tables filled by kind",
			},
			[]string{"kind"},
		),

		configReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docfill_config_reloads_total",
				Help: "Total number of configuration reloads by result",
			},
			[]string{"result"},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.paragraphsSubstituted,
		m.paragraphsSkipped,
		m.rowsAdded,
		m.tablesTotal,
		m.configReloads,
	)

	return m
}

// RecordRequest records a finished process request
func (m *Metrics) RecordRequest(status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	m.requestDuration.Observe(duration.Seconds())
}

// RecordReport adds the counts of a fill to the totals
func (m *Metrics) RecordReport(report docfill.Report) {
	m.paragraphsSubstituted.Add(float64(report.ParagraphsSubstituted))
	m.paragraphsSkipped.Add(float64(report.ParagraphsSkipped))
	m.rowsAdded.Add(float64(report.RowsAdded))
	m.tablesTotal.WithLabelValues(docfill.KindStandard.String()).Add(float64(report.StandardTables))
	m.tablesTotal.WithLabelValues(docfill.KindMarkedListing.String()).Add(float64(report.ListingTables))
}

// RecordConfigReload records a configuration reload; result is "success" or
// "failure"
func (m *Metrics) RecordConfigReload(result string) {
	m.configReloads.WithLabelValues(result).Inc()
}

// Handler returns the Prometheus metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the metrics registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
