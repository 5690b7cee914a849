package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New("test")

	m.RecordOrder("storefront", 12.5)
	m.RecordOrder("admin", 7.5)
	m.RecordPersistFailure("products")
	m.SetTableRows("orders", 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersTotal.WithLabelValues("storefront")))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.OrderRevenue))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistFailures.WithLabelValues("products")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TableRows.WithLabelValues("orders")))
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordOrder("storefront", 1)
		m.RecordEmail("sent")
		m.RecordPersistFailure("orders")
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("expose")
	m.RecordPayment("success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "nexoshop_expose_payments_total"))
}
