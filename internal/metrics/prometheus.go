// Package metrics provides Prometheus metrics for the analysis pipeline
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Document outcome labels
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the pipeline collectors of one registry
type Metrics struct {
	registry *prometheus.Registry

	DocumentsTotal    *prometheus.CounterVec
	ParseDuration     prometheus.Histogram
	AnalysisDuration  prometheus.Histogram
	TrianglesAnalyzed prometheus.Counter
	WarningsTotal     *prometheus.CounterVec
	UnmatchedVolume   prometheus.Gauge
	CarbonTotal       prometheus.Gauge
}

// New registers the pipeline collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		DocumentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gomassing_documents_total",
				Help: "Total number of documents processed",
			},
			[]string{"status", "kind"},
		),

		ParseDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gomassing_parse_duration_seconds",
				Help:    "Time taken to parse a document",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
		),

		AnalysisDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gomassing_analysis_duration_seconds",
				Help:    "Time taken to analyze a parsed scene",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
		),

		TrianglesAnalyzed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gomassing_triangles_analyzed_total",
				Help: "Total number of triangles measured",
			},
		),

		WarningsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gomassing_warnings_total",
				Help: "Total number of data quality warnings",
			},
			[]string{"kind"},
		),

		UnmatchedVolume: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gomassing_unmatched_volume_cubic_meters",
				Help: "Volume without a carbon factor in the last analyzed document",
			},
		),

		CarbonTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gomassing_carbon_total_kgco2e",
				Help: "Estimated embodied carbon of the last analyzed document",
			},
		),
	}
}

// Registry returns the registry the collectors are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordParse records a parse attempt. kind is the document format on
// success and the error kind on failure.
func (m *Metrics) RecordParse(status, kind string, duration time.Duration) {
	m.DocumentsTotal.WithLabelValues(status, kind).Inc()
	m.ParseDuration.Observe(duration.Seconds())
}

// RecordAnalysis records an analysis run
func (m *Metrics) RecordAnalysis(triangles int, duration time.Duration) {
	m.TrianglesAnalyzed.Add(float64(triangles))
	m.AnalysisDuration.Observe(duration.Seconds())
}

// RecordWarning counts a data quality warning
func (m *Metrics) RecordWarning(kind string) {
	m.WarningsTotal.WithLabelValues(kind).Inc()
}

// RecordCarbon records the carbon figures of the last document
func (m *Metrics) RecordCarbon(total, unmatchedVolume float64) {
	m.CarbonTotal.Set(total)
	m.UnmatchedVolume.Set(unmatchedVolume)
}

// Timer is a helper for measuring duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
