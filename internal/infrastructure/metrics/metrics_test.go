package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jhoicas/stockledger-api/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveMovement(t *testing.T) {
	m := metrics.New("test")
	m.ObserveMovement("restock", "ok", 5*time.Millisecond)
	m.ObserveMovement("restock", "ok", 7*time.Millisecond)
	m.ObserveMovement("deplete", "insufficient_stock", time.Millisecond)
	m.IncConflictRetry("transfer")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MovementsTotal.WithLabelValues("restock", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MovementsTotal.WithLabelValues("deplete", "insufficient_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConflictRetries.WithLabelValues("transfer")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.MovementDuration))
}

func TestHandler_ExponeMetricas(t *testing.T) {
	m := metrics.New("test")
	m.ObserveHTTP("GET", "/api/inventory", 200, 3*time.Millisecond)
	m.ObserveCacheLookup("hit")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_http_requests_total{method="GET",path="/api/inventory",status="200"} 1`)
	assert.Contains(t, string(body), `test_price_cache_lookups_total{result="hit"} 1`)
}
