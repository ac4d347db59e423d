// Package yahoo reads live prices from Yahoo Finance.
package yahoo

import (
	"context"
	"errors"
	"strings"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"

	"github.com/rustyeddy/stocktrader/market"
)

const source = "yahoo"

// QuoteFunc fetches one quote; quote.Get in production.
type QuoteFunc func(symbol string) (*finance.Quote, error)

type Quoter struct {
	get QuoteFunc
}

func NewQuoter() *Quoter { return &Quoter{get: quote.Get} }

// NewQuoterWith is used by tests to stub the network call.
func NewQuoterWith(get QuoteFunc) *Quoter { return &Quoter{get: get} }

// Price returns the regular market price. The upstream client has no
// context support, so ctx is only checked before the call.
func (q *Quoter) Price(ctx context.Context, ticker string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	qt, err := q.get(symbol)
	if err != nil {
		return 0, market.NewProviderError(source, "quote", symbol, err)
	}
	if qt == nil {
		return 0, market.NewProviderError(source, "quote", symbol, errors.New("symbol not found"))
	}
	if qt.RegularMarketPrice <= 0 {
		return 0, market.NewProviderError(source, "quote", symbol, errors.New("no market price"))
	}
	return qt.RegularMarketPrice, nil
}
