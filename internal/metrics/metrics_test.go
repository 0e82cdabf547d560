package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveBuild(t *testing.T) {
	m := New(nil)

	m.ObserveBuild(20*time.Millisecond, 8, 2, nil)
	m.ObserveBuild(time.Millisecond, 0, 0, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexBuildsTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexBuildsTotal.WithLabelValues(ResultError)))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.DocumentsIndexedTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsSkippedTotal))
}

func TestObserveSearch(t *testing.T) {
	m := New(nil)

	m.ObserveSearch(time.Millisecond, 4, 3, nil)
	m.ObserveSearch(time.Millisecond, 0, 0, nil)
	m.ObserveSearch(time.Millisecond, 0, 0, errors.New("too short"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(ResultEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(ResultError)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBuild(time.Second, 1, 1, nil)
		m.ObserveSearch(time.Second, 1, 1, nil)
		m.ObserveHTTP(http.MethodGet, "/health", http.StatusOK, time.Millisecond)
		m.TrackInFlight()()
	})
}

func TestHandler(t *testing.T) {
	m := New(nil)
	m.ObserveSearch(time.Millisecond, 2, 1, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lsh_search_queries_total")
}

func TestObserveHTTP(t *testing.T) {
	m := New(nil)

	done := m.TrackInFlight()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsInFlight))
	done()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsInFlight))

	m.ObserveHTTP(http.MethodPost, "/indexes/:indexName/_search", http.StatusOK, 3*time.Millisecond)
	m.ObserveHTTP(http.MethodPost, "/indexes/:indexName/_search", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/indexes/:indexName/_search", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/indexes/:indexName/_search", "404")))
}
