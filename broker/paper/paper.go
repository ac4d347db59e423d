// Package paper is an in-memory broker that fills market orders at the live
// price. It is the default venue so a fresh install never trades for real.
package paper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rustyeddy/stocktrader/broker"
	"github.com/rustyeddy/stocktrader/market"
	"github.com/rustyeddy/stocktrader/pkg/id"
)

const venue = "paper"

var ErrNoPrice = errors.New("no price for ticker")

type Position struct {
	Ticker   string
	Quantity float64 // negative when more was sold than bought
	Cost     float64 // signed cash spent, buys positive
}

type Broker struct {
	mu        sync.Mutex
	prices    market.PriceSource
	positions map[string]*Position
	fills     []broker.OrderFill
	now       func() time.Time
}

func New(prices market.PriceSource) *Broker {
	return &Broker{
		prices:    prices,
		positions: make(map[string]*Position),
		now:       time.Now,
	}
}

func (b *Broker) PlaceOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderFill, error) {
	if err := req.Validate(); err != nil {
		return broker.OrderFill{}, broker.NewOrderError(venue, req, err)
	}
	if b.prices == nil {
		return broker.OrderFill{}, broker.NewOrderError(venue, req, ErrNoPrice)
	}

	px, err := b.prices.Price(ctx, req.Ticker)
	if err != nil {
		return broker.OrderFill{}, broker.NewOrderError(venue, req, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	qty := req.Quantity
	if req.Side == broker.Sell {
		qty = -qty
	}

	pos, ok := b.positions[req.Ticker]
	if !ok {
		pos = &Position{Ticker: req.Ticker}
		b.positions[req.Ticker] = pos
	}
	pos.Quantity += qty
	pos.Cost += qty * px

	fill := broker.OrderFill{
		OrderID:  id.New(),
		Ticker:   req.Ticker,
		Quantity: req.Quantity,
		Side:     req.Side,
		Price:    px,
		State:    "filled",
		Time:     b.now(),
	}
	b.fills = append(b.fills, fill)
	return fill, nil
}

// Position returns a copy of the ticker's position.
func (b *Broker) Position(ticker string) (Position, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.positions[ticker]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Fills returns every fill in placement order.
func (b *Broker) Fills() []broker.OrderFill {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]broker.OrderFill, len(b.fills))
	copy(out, b.fills)
	return out
}
