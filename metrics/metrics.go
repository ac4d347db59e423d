// Package metrics exposes prometheus counters for the daily run.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trader_signals_total", Help: "Decisions per ticker, including NONE"},
		[]string{"ticker", "action"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trader_orders_total", Help: "Orders by outcome"},
		[]string{"ticker", "side", "status"},
	)
	TickerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trader_ticker_errors_total", Help: "Tickers skipped because of an error"},
		[]string{"ticker", "kind"},
	)
	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "trader_run_duration_seconds",
		Help:    "Wall time of one daily run",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)

func init() {
	prometheus.MustRegister(SignalsTotal, OrdersTotal, TickerErrorsTotal, RunDuration)
}

// Order status label values.
const (
	OrderFilled    = "filled"
	OrderFailed    = "failed"
	OrderCancelled = "cancelled"
)

// Serve starts a /metrics endpoint in the background. ListenAndServe errors
// other than a clean shutdown are passed to onErr when it is non-nil.
func Serve(addr string, onErr func(error)) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && onErr != nil {
			onErr(err)
		}
	}()
	return srv
}

// Shutdown stops a server started by Serve, waiting at most two seconds.
func Shutdown(srv *http.Server) error {
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
