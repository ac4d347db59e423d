package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeRegistersMetrics(t *testing.T) {
	srv := Serve("127.0.0.1:0", nil)
	defer Shutdown(srv)

	SignalsTotal.WithLabelValues("AAPL", "BUY").Inc()
	OrdersTotal.WithLabelValues("AAPL", "BUY", OrderFilled).Inc()
	TickerErrorsTotal.WithLabelValues("MSFT", "provider").Inc()

	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{"trader_signals_total", "trader_orders_total", "trader_ticker_errors_total"} {
		assert.True(t, names[want], want)
	}
}

func TestCounterIncrements(t *testing.T) {
	before := testutil.ToFloat64(OrdersTotal.WithLabelValues("TSLA", "SELL", OrderFailed))
	OrdersTotal.WithLabelValues("TSLA", "SELL", OrderFailed).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(OrdersTotal.WithLabelValues("TSLA", "SELL", OrderFailed)))
}

func TestHandlerExposesText(t *testing.T) {
	SignalsTotal.WithLabelValues("NVDA", "NONE").Inc()

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `trader_signals_total{action="NONE",ticker="NVDA"}`)
}

func TestShutdownNil(t *testing.T) {
	assert.NoError(t, Shutdown(nil))
}
