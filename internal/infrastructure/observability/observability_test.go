package observability

import (
	"testing"

	"github.com/Zhima-Mochi/minishop-pos/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-pos/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FallsBackToNop(t *testing.T) {
	tel := New(nil, nil, Instruments{})
	require.NotNil(t, tel.Tracer())
	require.NotNil(t, tel.Logger())

	assert.NotPanics(t, func() {
		tel.Metrics().Counter(observability.MTransactions).Add(1)
		tel.Metrics().Histogram(observability.MUsecaseDuration).Observe(1)
		tel.Metrics().Gauge(observability.MStockLevel).Set(1)
	})
}

func TestRegisterInstruments_WiresEveryKey(t *testing.T) {
	reg := prometheus.NewRegistry()
	tel := New(nil, nil, RegisterInstruments(prometrics.New("", "", reg)))

	m := tel.Metrics()
	m.Counter(observability.MUsecaseRequests).Add(1, observability.L("use_case", "sale.create"), observability.L("outcome", "success"))
	m.Counter(observability.MTransactions).Add(1, observability.L("kind", "sale"), observability.L("outcome", "completed"))
	m.Counter(observability.MSalesRevenue).Add(5.5)
	m.Counter(observability.MReturnsRefund).Add(1)
	m.Counter(observability.MHTTPRequests).Add(1, observability.L("method", "GET"), observability.L("route", "GET /health"), observability.L("status", "200"))
	m.Histogram(observability.MUsecaseDuration).Observe(0.1, observability.L("use_case", "sale.create"))
	m.Histogram(observability.MEventHandleDuration).Observe(0.1, observability.L("event", "sale.completed"), observability.L("outcome", "success"))
	m.Histogram(observability.MHTTPDuration).Observe(0.1, observability.L("method", "GET"), observability.L("route", "GET /health"), observability.L("status", "200"))
	m.Gauge(observability.MStockLevel).Set(40, observability.L("product_id", "P005"))

	for _, name := range []string{
		"usecase_requests_total",
		"transactions_total",
		"sales_revenue_total",
		"returns_refund_total",
		"http_requests_total",
		"usecase_duration_seconds",
		"event_handle_duration_seconds",
		"http_request_duration_seconds",
		"catalog_stock_level",
	} {
		count, err := testutil.GatherAndCount(reg, name)
		require.NoError(t, err)
		assert.Equal(t, 1, count, name)
	}

	m.Counter("unknown_metric").Add(1)
}
