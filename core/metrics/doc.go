// Package metrics exposes Prometheus metrics for the catalog engine.
//
// CatalogMetrics is registered on a caller supplied registry and passed to the
// catalog, which records item churn, merge results, bucketing passes and
// per-key failures. A nil *CatalogMetrics disables recording.
//
// # Usage
//
//	reg := prometheus.NewRegistry()
//	m, err := metrics.NewCatalogMetrics(reg)
//	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
package metrics
