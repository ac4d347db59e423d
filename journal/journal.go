// Package journal is the append-only audit trail: one record per
// lifecycle event per ticker per run.
package journal

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NA fills the ticker and price columns of run-level rows.
const NA = "N/A"

const (
	ActionDailyRun = "DAILY RUN"
	// ActionEvaluate tags per-ticker failures that happen before a
	// decision exists (provider or alignment errors).
	ActionEvaluate = "EVALUATE"
)

type Status string

const (
	StatusStarted   Status = "STARTED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "MANUALLY CANCELLED"

	errorPrefix = "ERROR: "
)

// ErrorStatus builds an "ERROR: <detail>" status.
func ErrorStatus(detail string) Status {
	return Status(errorPrefix + strings.TrimSpace(detail))
}

func (s Status) IsError() bool { return strings.HasPrefix(string(s), errorPrefix) }

// Detail returns the text after "ERROR: ", or "" for other statuses.
func (s Status) Detail() string {
	if !s.IsError() {
		return ""
	}
	return strings.TrimPrefix(string(s), errorPrefix)
}

type Record struct {
	ID     string
	RunID  string
	Action string // DAILY RUN, BUY, SELL
	Status Status
	Ticker string
	Time   time.Time
	Price  decimal.NullDecimal // invalid renders as N/A
}

// PriceOf wraps a float price; zero and negative prices are unknown.
func PriceOf(px float64) decimal.NullDecimal {
	if px <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(px))
}

// PriceString renders the price column.
func (r Record) PriceString() string {
	if !r.Price.Valid {
		return NA
	}
	return r.Price.Decimal.StringFixed(2)
}

// TickerString renders the ticker column.
func (r Record) TickerString() string {
	if r.Ticker == "" {
		return NA
	}
	return r.Ticker
}

type Journal interface {
	Append(Record) error
	Close() error
}

// Querier reads records back for reporting.
type Querier interface {
	// ListBetween returns records with start <= time < end, oldest first.
	ListBetween(start, end time.Time) ([]Record, error)
	ListByTicker(ticker string) ([]Record, error)
	ListByRun(runID string) ([]Record, error)
}
