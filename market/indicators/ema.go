package indicators

import (
	"fmt"

	"github.com/rustyeddy/stocktrader/market"
)

// EMA is a streaming exponential moving average over float prices.
//
// The first value seeds the average; Ready turns true once period values
// have been seen. This matches the common "seed with first close"
// convention rather than seeding with an SMA.
type EMA struct {
	n     int
	alpha float64

	seen  int
	value float64
	ready bool

	name string
}

func NewEMA(period int) (*EMA, error) {
	if period <= 0 {
		return nil, fmt.Errorf("ema period must be > 0 (got %d)", period)
	}
	return &EMA{
		n:     period,
		alpha: 2.0 / float64(period+1),
		name:  fmt.Sprintf("EMA(%d)", period),
	}, nil
}

func (e *EMA) Name() string     { return e.name }
func (e *EMA) Warmup() int      { return e.n }
func (e *EMA) Ready() bool      { return e.ready }
func (e *EMA) Float64() float64 { return e.value }

func (e *EMA) Reset() {
	e.seen = 0
	e.value = 0
	e.ready = false
}

func (e *EMA) Update(x float64) {
	e.seen++
	if e.seen == 1 {
		e.value = x
	} else {
		e.value = e.alpha*x + (1.0-e.alpha)*e.value
	}

	if e.seen >= e.n {
		e.ready = true
	}
}

// EMASeries runs an EMA over closes and returns one point per input point
// once the average is warmed up.
func EMASeries(closes market.Series, period int, cadence market.Cadence) (market.Series, error) {
	ema, err := NewEMA(period)
	if err != nil {
		return market.Series{}, err
	}

	out := market.Series{Ticker: closes.Ticker, Cadence: cadence}
	for _, p := range closes.Sorted().Points {
		ema.Update(p.Value)
		if !ema.Ready() {
			continue
		}
		out.Points = append(out.Points, market.TimePoint{Time: p.Time, Value: ema.Float64()})
	}
	return out, nil
}
