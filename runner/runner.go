// Package runner drives one daily run: for every monitored ticker it
// fetches the EMA series, asks the crossover engine for a decision and,
// when the decision lands on today, charts it, places the order and
// records every step in the audit journal.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/stocktrader/broker"
	"github.com/rustyeddy/stocktrader/chart"
	"github.com/rustyeddy/stocktrader/journal"
	"github.com/rustyeddy/stocktrader/market"
	"github.com/rustyeddy/stocktrader/metrics"
	"github.com/rustyeddy/stocktrader/pkg/id"
	"github.com/rustyeddy/stocktrader/strategies"
)

// DefaultPace keeps a free Alpha Vantage key under its per-minute quota.
const DefaultPace = 60 * time.Second

// ChartWriter renders a chart artifact and returns where it went.
type ChartWriter interface {
	Write(chart.Data) (string, error)
}

// Confirmer asks a human before an order goes out.
type Confirmer interface {
	Confirm(ctx context.Context, d strategies.Decision) (bool, error)
}

// Runner holds the collaborators for a run. Provider, Prices, Broker and
// Journal are required; Charts and Confirm are optional.
type Runner struct {
	Provider market.Provider
	Prices   market.PriceSource
	Broker   broker.Broker
	Journal  journal.Journal
	Charts   ChartWriter
	Confirm  Confirmer
	Log      zerolog.Logger

	Pace     time.Duration // pause between tickers; negative means none
	Quantity float64       // shares per order, default 1
	DryRun   bool

	Now func() time.Time

	mu    sync.Mutex // serializes orders and journal appends
	runID string
}

// Result is the outcome for one ticker.
type Result struct {
	Ticker    string
	Decision  strategies.Decision
	Events    []strategies.CrossoverEvent
	Chart     string
	Fill      *broker.OrderFill
	Cancelled bool
	Err       error
}

type Summary struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Results  []Result
}

// Failed returns the results that ended in an error.
func (s Summary) Failed() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Triggered returns the results whose decision was BUY or SELL.
func (s Summary) Triggered() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Decision.Triggered() {
			out = append(out, r)
		}
	}
	return out
}

func (r *Runner) validate() error {
	switch {
	case r.Provider == nil:
		return errors.New("runner: Provider is required")
	case r.Prices == nil:
		return errors.New("runner: Prices is required")
	case r.Broker == nil && !r.DryRun:
		return errors.New("runner: Broker is required")
	case r.Journal == nil:
		return errors.New("runner: Journal is required")
	}
	return nil
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) pace() time.Duration {
	switch {
	case r.Pace < 0:
		return 0
	case r.Pace == 0:
		return DefaultPace
	}
	return r.Pace
}

func (r *Runner) quantity() float64 {
	if r.Quantity <= 0 {
		return 1
	}
	return r.Quantity
}

// Run evaluates every ticker in order:
//  1. journal DAILY RUN STARTED
//  2. Evaluate each ticker, pausing Pace between them
//  3. journal DAILY RUN COMPLETED
//
// Per-ticker failures are recorded in the Result and never stop the batch.
// Only context cancellation ends the run early.
func (r *Runner) Run(ctx context.Context, tickers []string) (Summary, error) {
	if err := r.validate(); err != nil {
		return Summary{}, err
	}

	start := r.now()
	r.runID = id.NewAt(start)
	sum := Summary{RunID: r.runID, Started: start}
	log := r.Log.With().Str("run_id", r.runID).Logger()

	log.Info().Int("tickers", len(tickers)).Bool("dry_run", r.DryRun).Msg("daily run started")
	r.record(journal.ActionDailyRun, journal.StatusStarted, "", 0)

	for i, t := range tickers {
		if i > 0 {
			if err := Sleep(ctx, r.pace()); err != nil {
				return r.interrupted(log, sum, err)
			}
		}
		res := r.Evaluate(ctx, t)
		sum.Results = append(sum.Results, res)

		if err := ctx.Err(); err != nil {
			return r.interrupted(log, sum, err)
		}
	}

	r.record(journal.ActionDailyRun, journal.StatusCompleted, "", 0)
	sum.Finished = r.now()
	metrics.RunDuration.Observe(sum.Finished.Sub(start).Seconds())

	log.Info().
		Int("triggered", len(sum.Triggered())).
		Int("failed", len(sum.Failed())).
		Dur("took", sum.Finished.Sub(start)).
		Msg("daily run completed")
	return sum, nil
}

// interrupted closes the run in the journal with an ERROR row.
func (r *Runner) interrupted(log zerolog.Logger, sum Summary, err error) (Summary, error) {
	r.record(journal.ActionDailyRun, journal.ErrorStatus(err.Error()), "", 0)
	sum.Finished = r.now()
	log.Warn().Err(err).Int("done", len(sum.Results)).Msg("daily run interrupted")
	return sum, err
}

// Evaluate runs one ticker end to end. Provider and alignment errors skip
// the ticker after journaling an ERROR row; order errors are journaled
// against the trade.
func (r *Runner) Evaluate(ctx context.Context, ticker string) Result {
	res := Result{Ticker: ticker}
	log := r.Log.With().Str("ticker", ticker).Logger()

	in, actual, err := r.fetch(ctx, log, ticker)
	if err != nil {
		return r.fail(log, res, journal.ActionEvaluate, "provider", err, 0)
	}

	out, err := strategies.EvaluateEMACross(in)
	if err != nil {
		return r.fail(log, res, journal.ActionEvaluate, "alignment", err, in.CurrentPrice)
	}
	res.Decision = out.Decision
	res.Events = out.Events

	action := out.Decision.Action.String()
	metrics.SignalsTotal.WithLabelValues(ticker, action).Inc()
	log = log.With().Str("action", action).Float64("price", in.CurrentPrice).Logger()

	if !out.Decision.Triggered() {
		log.Info().Int("events", len(out.Events)).Msg("no signal today")
		return res
	}
	if r.DryRun {
		log.Info().Time("event", out.Decision.EventDate).Msg("dry run: order skipped")
		return res
	}

	r.record(action, journal.StatusStarted, ticker, in.CurrentPrice)

	if r.Charts != nil {
		path, err := r.Charts.Write(chart.Data{
			Ticker: ticker,
			Action: action,
			Now:    in.Today,
			Actual: actual,
			Daily:  in.Daily,
			Weekly: in.Weekly,
		})
		if err != nil {
			log.Warn().Err(err).Msg("chart not rendered")
		} else {
			res.Chart = path
			log.Debug().Str("chart", path).Msg("chart written")
		}
	}

	side := broker.Buy
	if out.Decision.Action == strategies.Sell {
		side = broker.Sell
	}

	if r.Confirm != nil {
		ok, err := r.Confirm.Confirm(ctx, out.Decision)
		if err != nil {
			return r.fail(log, res, action, "confirm", err, in.CurrentPrice)
		}
		if !ok {
			res.Cancelled = true
			metrics.OrdersTotal.WithLabelValues(ticker, string(side), metrics.OrderCancelled).Inc()
			r.record(action, journal.StatusCancelled, ticker, in.CurrentPrice)
			log.Info().Msg("order cancelled by operator")
			return res
		}
	}

	fill, err := r.placeOrder(ctx, broker.OrderRequest{Ticker: ticker, Quantity: r.quantity(), Side: side})
	if err != nil {
		metrics.OrdersTotal.WithLabelValues(ticker, string(side), metrics.OrderFailed).Inc()
		return r.fail(log, res, action, "order", err, in.CurrentPrice)
	}

	res.Fill = &fill
	metrics.OrdersTotal.WithLabelValues(ticker, string(side), metrics.OrderFilled).Inc()
	r.record(action, journal.StatusCompleted, ticker, in.CurrentPrice)
	log.Info().Str("order_id", fill.OrderID).Str("state", fill.State).Msg("order placed")
	return res
}

// fetch gathers the live price, the weekly close (only when charting),
// and both EMA series, in that order. The weekly close only feeds the
// chart, so failing to get it leaves actual empty.
func (r *Runner) fetch(ctx context.Context, log zerolog.Logger, ticker string) (strategies.EMACrossInput, market.Series, error) {
	in := strategies.EMACrossInput{Ticker: ticker, Today: r.now()}
	var actual market.Series

	price, err := r.Prices.Price(ctx, ticker)
	if err != nil {
		return in, actual, err
	}
	in.CurrentPrice = price

	if r.Charts != nil {
		if actual, err = r.Provider.WeeklyClose(ctx, ticker); err != nil {
			log.Warn().Err(err).Msg("weekly close unavailable, chart will omit it")
			actual = market.Series{}
		}
	}
	if in.Daily, err = r.Provider.EMA(ctx, ticker, market.Daily); err != nil {
		return in, actual, err
	}
	if in.Weekly, err = r.Provider.EMA(ctx, ticker, market.Weekly); err != nil {
		return in, actual, err
	}
	return in, actual, nil
}

func (r *Runner) placeOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderFill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fill, err := r.Broker.PlaceOrder(ctx, req)
	if err != nil && !errors.Is(err, broker.ErrOrder) {
		err = broker.NewOrderError("broker", req, err)
	}
	return fill, err
}

func (r *Runner) fail(log zerolog.Logger, res Result, action, kind string, err error, price float64) Result {
	res.Err = err
	metrics.TickerErrorsTotal.WithLabelValues(res.Ticker, kind).Inc()
	log.Error().Err(err).Str("kind", kind).Msg("ticker skipped")
	r.record(action, journal.ErrorStatus(err.Error()), res.Ticker, price)
	return res
}

// record appends to the journal. A journal failure is logged and does not
// abort the run.
func (r *Runner) record(action string, status journal.Status, ticker string, price float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	rec := journal.Record{
		ID:     id.NewAt(now),
		RunID:  r.runID,
		Action: action,
		Status: status,
		Ticker: ticker,
		Time:   now,
		Price:  journal.PriceOf(price),
	}
	if err := r.Journal.Append(rec); err != nil {
		metrics.TickerErrorsTotal.WithLabelValues(rec.TickerString(), "journal").Inc()
		r.Log.Error().Err(err).Str("action", action).Str("status", string(status)).Msg("journal append failed")
	}
}

// String is used in CLI summaries.
func (res Result) String() string {
	switch {
	case res.Err != nil:
		return fmt.Sprintf("%-6s ERROR %v", res.Ticker, res.Err)
	case res.Cancelled:
		return fmt.Sprintf("%-6s %s cancelled", res.Ticker, res.Decision.Action)
	case res.Fill != nil:
		return fmt.Sprintf("%-6s %s filled order=%s", res.Ticker, res.Decision.Action, res.Fill.OrderID)
	default:
		return fmt.Sprintf("%-6s %s", res.Ticker, res.Decision.Action)
	}
}
