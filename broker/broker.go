// Package broker defines the order placement boundary. Only market orders
// for whole shares exist; sizing and risk are out of scope.
package broker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	default:
		return "", fmt.Errorf("unknown order side %q", s)
	}
}

type Broker interface {
	PlaceOrder(ctx context.Context, req OrderRequest) (OrderFill, error)
}

type OrderRequest struct {
	Ticker   string
	Quantity float64
	Side     Side
}

func (r OrderRequest) Validate() error {
	if strings.TrimSpace(r.Ticker) == "" {
		return errors.New("missing ticker")
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive (got %v)", r.Quantity)
	}
	if r.Side != Buy && r.Side != Sell {
		return fmt.Errorf("unknown order side %q", r.Side)
	}
	return nil
}

type OrderFill struct {
	OrderID  string
	Ticker   string
	Quantity float64
	Side     Side
	Price    float64 // zero when the venue has not reported a fill price yet
	State    string
	Time     time.Time
}

// ErrOrder is matched by every *OrderError via errors.Is.
var ErrOrder = errors.New("order rejected")

// OrderError reports a rejected or unplaceable order.
type OrderError struct {
	Venue string
	Req   OrderRequest
	Err   error
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("%s %s %v %s: %v", e.Venue, e.Req.Side, e.Req.Quantity, e.Req.Ticker, e.Err)
}

func (e *OrderError) Unwrap() error { return e.Err }

func (e *OrderError) Is(target error) bool { return target == ErrOrder }

func NewOrderError(venue string, req OrderRequest, err error) error {
	return &OrderError{Venue: venue, Req: req, Err: err}
}
