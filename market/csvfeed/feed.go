// Package csvfeed is an offline market data provider backed by daily close
// CSV files, one file per ticker (<dir>/<TICKER>.csv).
//
// Accepted rows:
//
//	date,close
//	time,instrument,granularity,complete,volume,o,h,l,c
//
// A header row is required; the date column is "date" or "time" and the
// close column is "close" or "c". Dates are YYYY-MM-DD or RFC3339.
package csvfeed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/stocktrader/market"
	"github.com/rustyeddy/stocktrader/market/indicators"
)

const source = "csvfeed"

// Feed computes EMAs locally from daily closes. The weekly EMA runs over
// the last close of each week, so its dates line up with daily dates.
type Feed struct {
	Dir    string
	Period int
}

func New(dir string, period int) *Feed {
	if period <= 0 {
		period = 20
	}
	return &Feed{Dir: dir, Period: period}
}

func (f *Feed) EMA(ctx context.Context, ticker string, cadence market.Cadence) (market.Series, error) {
	closes, err := f.DailyClose(ctx, ticker)
	if err != nil {
		return market.Series{}, err
	}
	if cadence == market.Weekly {
		closes = indicators.WeeklyCloses(closes)
	}

	s, err := indicators.EMASeries(closes, f.Period, cadence)
	if err != nil {
		return market.Series{}, market.NewProviderError(source, "ema", ticker, err)
	}
	if s.Len() == 0 {
		return market.Series{}, market.NewProviderError(source, "ema", ticker,
			fmt.Errorf("not enough %s closes for EMA(%d)", cadence, f.Period))
	}
	return s, nil
}

func (f *Feed) WeeklyClose(ctx context.Context, ticker string) (market.Series, error) {
	closes, err := f.DailyClose(ctx, ticker)
	if err != nil {
		return market.Series{}, err
	}
	return indicators.WeeklyCloses(closes), nil
}

// Price returns the most recent close, which is what the feed knows as
// the live price.
func (f *Feed) Price(ctx context.Context, ticker string) (float64, error) {
	closes, err := f.DailyClose(ctx, ticker)
	if err != nil {
		return 0, err
	}
	last, ok := closes.Last()
	if !ok {
		return 0, market.NewProviderError(source, "price", ticker, errors.New("no closes"))
	}
	return last.Value, nil
}

// DailyClose reads and sorts the ticker's close file.
func (f *Feed) DailyClose(ctx context.Context, ticker string) (market.Series, error) {
	if err := ctx.Err(); err != nil {
		return market.Series{}, err
	}

	path := filepath.Join(f.Dir, strings.ToUpper(ticker)+".csv")
	file, err := os.Open(path)
	if err != nil {
		return market.Series{}, market.NewProviderError(source, "read", ticker, err)
	}
	defer file.Close()

	s, err := ReadCloses(file)
	if err != nil {
		return market.Series{}, market.NewProviderError(source, "parse", ticker, err)
	}
	s.Ticker = strings.ToUpper(ticker)
	return s, nil
}

// ReadCloses parses a close CSV into an ascending daily series.
func ReadCloses(r io.Reader) (market.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return market.Series{}, fmt.Errorf("read header: %w", err)
	}

	dateCol, closeCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date", "time":
			dateCol = i
		case "close", "c":
			closeCol = i
		}
	}
	if dateCol < 0 || closeCol < 0 {
		return market.Series{}, fmt.Errorf("header %v: need date/time and close/c columns", header)
	}

	out := market.Series{Cadence: market.Daily}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return market.Series{}, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) <= dateCol || len(row) <= closeCol {
			continue
		}

		t, err := parseDate(row[dateCol])
		if err != nil {
			return market.Series{}, fmt.Errorf("line %d: %w", line, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[closeCol]), 64)
		if err != nil {
			return market.Series{}, fmt.Errorf("line %d: bad close %q: %w", line, row[closeCol], err)
		}
		out.Points = append(out.Points, market.TimePoint{Time: t, Value: v})
	}
	return out.Sorted(), nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := market.ParseDay(s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", s)
	}
	return market.Day(t.UTC()), nil
}
