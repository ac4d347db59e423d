// Package strategies implements the daily/weekly EMA crossover engine.
//
// The engine is pure: it aligns two already-fetched EMA series, finds the
// points where the daily EMA crosses the weekly EMA, classifies each one
// and decides whether the latest signal lands on today.
package strategies

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/stocktrader/market"
)

// ErrAlignment is matched by every *AlignmentError via errors.Is.
var ErrAlignment = errors.New("no overlapping timestamps")

// ErrEmptySeries is returned when either input series has no points.
var ErrEmptySeries = errors.New("empty ema series")

// AlignmentError means the daily and weekly series share no timestamp, so
// no signal can be computed for the ticker.
type AlignmentError struct {
	Ticker    string
	DailyLen  int
	WeeklyLen int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("ema-cross %s: %v (daily=%d weekly=%d)",
		e.Ticker, ErrAlignment, e.DailyLen, e.WeeklyLen)
}

func (e *AlignmentError) Is(target error) bool { return target == ErrAlignment }

// AlignedPoint is a timestamp present in both series.
type AlignedPoint struct {
	Time   time.Time
	Day    float64
	Week   float64
	Ticker string
}

// Diff is positive while the daily EMA leads.
func (p AlignedPoint) Diff() float64 { return p.Day - p.Week }

// CrossoverEvent is an aligned point where the daily EMA changed sides.
type CrossoverEvent struct {
	AlignedPoint
	Signal Signal
}

func (e CrossoverEvent) String() string {
	return fmt.Sprintf("%s %s day=%.4f week=%.4f",
		e.Time.Format(market.DateLayout), e.Signal, e.Day, e.Week)
}

// Decision is the outcome for one ticker on one run.
type Decision struct {
	Action       Signal
	Ticker       string
	CurrentPrice float64
	EventDate    time.Time // zero when Action is None
}

// Triggered reports whether the decision calls for an order.
func (d Decision) Triggered() bool { return d.Action != None }

// EMACrossInput bundles everything the engine needs for one ticker.
type EMACrossInput struct {
	Ticker       string
	Daily        market.Series
	Weekly       market.Series
	Today        time.Time
	CurrentPrice float64
}

// EMACrossResult carries the decision plus the supporting data used for
// charting and audit.
type EMACrossResult struct {
	Decision Decision
	Points   []AlignedPoint
	Events   []CrossoverEvent
}

// Buys and Sells filter the events by signal, keeping chronological order.
func (r EMACrossResult) Buys() []CrossoverEvent  { return filter(r.Events, Buy) }
func (r EMACrossResult) Sells() []CrossoverEvent { return filter(r.Events, Sell) }

// EvaluateEMACross runs align, detect, classify and decide.
func EvaluateEMACross(in EMACrossInput) (EMACrossResult, error) {
	if in.Daily.Len() == 0 || in.Weekly.Len() == 0 {
		return EMACrossResult{}, fmt.Errorf("ema-cross %s: %w (daily=%d weekly=%d)",
			in.Ticker, ErrEmptySeries, in.Daily.Len(), in.Weekly.Len())
	}

	points, err := Align(in.Ticker, in.Daily, in.Weekly)
	if err != nil {
		return EMACrossResult{}, err
	}

	events := DetectCrossovers(points)
	return EMACrossResult{
		Decision: Decide(in.Ticker, events, in.Today, in.CurrentPrice),
		Points:   points,
		Events:   events,
	}, nil
}

// Align inner-joins the two series on exact timestamp equality and returns
// the result sorted by ascending time.
func Align(ticker string, daily, weekly market.Series) ([]AlignedPoint, error) {
	week := make(map[int64]float64, weekly.Len())
	for _, p := range weekly.Points {
		week[p.Time.UnixNano()] = p.Value
	}

	points := make([]AlignedPoint, 0, min(daily.Len(), weekly.Len()))
	for _, p := range daily.Points {
		w, ok := week[p.Time.UnixNano()]
		if !ok {
			continue
		}
		points = append(points, AlignedPoint{Time: p.Time, Day: p.Value, Week: w, Ticker: ticker})
	}

	if len(points) == 0 {
		return nil, &AlignmentError{Ticker: ticker, DailyLen: daily.Len(), WeeklyLen: weekly.Len()}
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}

// DetectCrossovers scans the aligned points in order and emits an event
// wherever the sign of Diff flips. A zero diff carries the previous
// non-zero sign forward; the very first signed point only sets the
// baseline.
func DetectCrossovers(points []AlignedPoint) []CrossoverEvent {
	var (
		events  []CrossoverEvent
		prevRel int // 0 until the first non-zero diff
	)

	for _, p := range points {
		rel := sign(p.Diff())
		if rel == 0 {
			continue
		}
		if prevRel != 0 && rel != prevRel {
			events = append(events, CrossoverEvent{AlignedPoint: p, Signal: Classify(p)})
		}
		prevRel = rel
	}
	return events
}

// Classify returns Buy when the daily EMA is above the weekly EMA, Sell
// when below and None on a tie.
func Classify(p AlignedPoint) Signal {
	switch {
	case p.Day > p.Week:
		return Buy
	case p.Day < p.Week:
		return Sell
	default:
		return None
	}
}

// Decide looks at the last buy and the last sell event. The last buy is
// checked first, so if both fall on today the buy wins.
func Decide(ticker string, events []CrossoverEvent, today time.Time, currentPrice float64) Decision {
	d := Decision{Action: None, Ticker: ticker, CurrentPrice: currentPrice}

	lastBuy, okBuy := last(events, Buy)
	lastSell, okSell := last(events, Sell)

	switch {
	case okBuy && market.SameDay(lastBuy.Time, today):
		d.Action = Buy
		d.EventDate = lastBuy.Time
	case okSell && market.SameDay(lastSell.Time, today):
		d.Action = Sell
		d.EventDate = lastSell.Time
	}
	return d
}

func last(events []CrossoverEvent, s Signal) (CrossoverEvent, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Signal == s {
			return events[i], true
		}
	}
	return CrossoverEvent{}, false
}

func filter(events []CrossoverEvent, s Signal) []CrossoverEvent {
	var out []CrossoverEvent
	for _, e := range events {
		if e.Signal == s {
			out = append(out, e)
		}
	}
	return out
}
