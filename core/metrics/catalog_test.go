package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewCatalogMetrics(reg)
	require.NoError(t, err)

	m.RecordItemsAdded("rom", 3)
	m.RecordItemsRemoved("rom", 1)
	m.RecordDuplicatesFlagged("full", 2)
	m.RecordBucketPass("sha1", "success", 0.01)
	m.RecordKeyFailure("relocate")
	m.RecordStatsDivergence()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.itemsAddedTotal.WithLabelValues("rom")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.itemsRemovedTotal.WithLabelValues("rom")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.duplicatesFlaggedTotal.WithLabelValues("full")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bucketPassesTotal.WithLabelValues("sha1", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.keyFailuresTotal.WithLabelValues("relocate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statsDivergenceTotal))

	t.Run("Duplicate registration fails", func(t *testing.T) {
		_, err := NewCatalogMetrics(reg)
		assert.Error(t, err)
	})

	t.Run("Handler exposes metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "catalog_items_added_total")
	})
}

func TestCatalogMetrics_NilSafe(t *testing.T) {
	var m *CatalogMetrics
	assert.NotPanics(t, func() {
		m.RecordItemsAdded("rom", 1)
		m.RecordItemsRemoved("rom", 1)
		m.RecordDuplicatesFlagged("game", 1)
		m.RecordBucketPass("machine", "error", 1)
		m.RecordKeyFailure("merge")
		m.RecordStatsDivergence()
	})
}
