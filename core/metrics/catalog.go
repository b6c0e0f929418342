package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CatalogMetrics contains Prometheus metrics for catalog operations.
// All recording methods are safe to call on a nil receiver.
type CatalogMetrics struct {
	registry *prometheus.Registry

	itemsAddedTotal        *prometheus.CounterVec
	itemsRemovedTotal      *prometheus.CounterVec
	duplicatesFlaggedTotal *prometheus.CounterVec
	bucketPassesTotal      *prometheus.CounterVec
	bucketPassDuration     *prometheus.HistogramVec
	keyFailuresTotal       *prometheus.CounterVec
	statsDivergenceTotal   prometheus.Counter

	collectors []prometheus.Collector
}

// NewCatalogMetrics creates and registers new catalog metrics.
func NewCatalogMetrics(registry *prometheus.Registry) (*CatalogMetrics, error) {
	m := &CatalogMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *CatalogMetrics) initMetrics() {
	m.itemsAddedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_items_added_total",
			Help: "Total number of items added to the catalog",
		},
		[]string{"kind"},
	)

	m.itemsRemovedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_items_removed_total",
			Help: "Total number of items physically removed from the catalog",
		},
		[]string{"kind"},
	)

	m.duplicatesFlaggedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_duplicates_flagged_total",
			Help: "Total number of items flagged as duplicates by merging",
		},
		[]string{"dedupe"},
	)

	m.bucketPassesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_bucket_passes_total",
			Help: "Total number of bucketing passes",
		},
		[]string{"key", "status"}, // status: success, error, cancelled
	)

	m.bucketPassDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_bucket_pass_duration_seconds",
			Help:    "Time taken by bucketing passes",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~65s
		},
		[]string{"key"},
	)

	m.keyFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_key_failures_total",
			Help: "Total number of keys skipped because processing them failed",
		},
		[]string{"stage"},
	)

	m.statsDivergenceTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_statistics_divergence_total",
			Help: "Total number of times running statistics disagreed with a full recount",
		},
	)

	m.collectors = []prometheus.Collector{
		m.itemsAddedTotal,
		m.itemsRemovedTotal,
		m.duplicatesFlaggedTotal,
		m.bucketPassesTotal,
		m.bucketPassDuration,
		m.keyFailuresTotal,
		m.statsDivergenceTotal,
	}
}

// Describe implements the Collector interface
func (m *CatalogMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *CatalogMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *CatalogMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordItemsAdded records items added to the catalog.
func (m *CatalogMetrics) RecordItemsAdded(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.itemsAddedTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordItemsRemoved records items physically removed from the catalog.
func (m *CatalogMetrics) RecordItemsRemoved(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.itemsRemovedTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordDuplicatesFlagged records items flagged by a merge pass.
func (m *CatalogMetrics) RecordDuplicatesFlagged(dedupe string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.duplicatesFlaggedTotal.WithLabelValues(dedupe).Add(float64(n))
}

// RecordBucketPass records a completed bucketing pass.
func (m *CatalogMetrics) RecordBucketPass(key, status string, seconds float64) {
	if m == nil {
		return
	}
	m.bucketPassesTotal.WithLabelValues(key, status).Inc()
	m.bucketPassDuration.WithLabelValues(key).Observe(seconds)
}

// RecordKeyFailure records a key skipped during a catalog-wide pass.
func (m *CatalogMetrics) RecordKeyFailure(stage string) {
	if m == nil {
		return
	}
	m.keyFailuresTotal.WithLabelValues(stage).Inc()
}

// RecordStatsDivergence records running statistics disagreeing with a recount.
func (m *CatalogMetrics) RecordStatsDivergence() {
	if m == nil {
		return
	}
	m.statsDivergenceTotal.Inc()
}
