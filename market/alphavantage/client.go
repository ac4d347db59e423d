// Package alphavantage fetches EMA and weekly close series from the Alpha
// Vantage REST API.
package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rustyeddy/stocktrader/market"
)

const (
	DefaultBaseURL = "https://www.alphavantage.co"
	source         = "alphavantage"

	emaKey    = "Technical Analysis: EMA"
	weeklyKey = "Weekly Time Series"
)

// ErrRateLimited is wrapped when the API answers with its quota note
// instead of data.
var ErrRateLimited = errors.New("alphavantage: rate limited")

type Options struct {
	BaseURL    string
	APIKey     string
	TimePeriod int    // EMA window, default 20
	SeriesType string // close|open|high|low, default close
	Timeout    time.Duration
	Retries    int
}

type Client struct {
	http       *resty.Client
	apiKey     string
	timePeriod int
	seriesType string
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("alphavantage: missing api key")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.TimePeriod <= 0 {
		opts.TimePeriod = 20
	}
	if opts.SeriesType == "" {
		opts.SeriesType = "close"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	hc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(20 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})

	return &Client{
		http:       hc,
		apiKey:     opts.APIKey,
		timePeriod: opts.TimePeriod,
		seriesType: opts.SeriesType,
	}, nil
}

// EMA returns the EMA series for ticker at the given cadence, oldest first.
func (c *Client) EMA(ctx context.Context, ticker string, cadence market.Cadence) (market.Series, error) {
	op := "ema " + string(cadence)

	body, err := c.query(ctx, op, ticker, map[string]string{
		"function":    "EMA",
		"symbol":      ticker,
		"interval":    string(cadence),
		"time_period": strconv.Itoa(c.timePeriod),
		"series_type": c.seriesType,
	})
	if err != nil {
		return market.Series{}, err
	}

	pts, err := parseSeries(body, emaKey, "EMA")
	if err != nil {
		return market.Series{}, market.NewProviderError(source, op, ticker, err)
	}
	return market.Series{Ticker: ticker, Cadence: cadence, Points: pts}.Sorted(), nil
}

// WeeklyClose returns raw weekly closes, oldest first. Only the chart uses it.
func (c *Client) WeeklyClose(ctx context.Context, ticker string) (market.Series, error) {
	body, err := c.query(ctx, "weekly", ticker, map[string]string{
		"function": "TIME_SERIES_WEEKLY",
		"symbol":   ticker,
	})
	if err != nil {
		return market.Series{}, err
	}

	pts, err := parseSeries(body, weeklyKey, "4. close")
	if err != nil {
		return market.Series{}, market.NewProviderError(source, "weekly", ticker, err)
	}
	return market.Series{Ticker: ticker, Cadence: market.Weekly, Points: pts}.Sorted(), nil
}

func (c *Client) query(ctx context.Context, op, ticker string, params map[string]string) (map[string]json.RawMessage, error) {
	params["apikey"] = c.apiKey

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/query")
	if err != nil {
		return nil, market.NewProviderError(source, op, ticker, err)
	}
	if resp.StatusCode() != 200 {
		return nil, market.NewProviderError(source, op, ticker,
			fmt.Errorf("http %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String())))
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, market.NewProviderError(source, op, ticker, fmt.Errorf("decode: %w", err))
	}

	if msg, ok := str(body, "Error Message"); ok {
		return nil, market.NewProviderError(source, op, ticker, errors.New(msg))
	}
	for _, k := range []string{"Note", "Information"} {
		if msg, ok := str(body, k); ok {
			return nil, market.NewProviderError(source, op, ticker, fmt.Errorf("%w: %s", ErrRateLimited, msg))
		}
	}
	return body, nil
}

func parseSeries(body map[string]json.RawMessage, key, field string) ([]market.TimePoint, error) {
	raw, ok := body[key]
	if !ok {
		return nil, fmt.Errorf("missing %q in response", key)
	}

	var rows map[string]map[string]string
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode %q: %w", key, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty %q", key)
	}

	pts := make([]market.TimePoint, 0, len(rows))
	for date, vals := range rows {
		t, err := parseTimestamp(date)
		if err != nil {
			return nil, err
		}
		s, ok := vals[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", date, field)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad %q value %q", date, field, s)
		}
		pts = append(pts, market.TimePoint{Time: t, Value: v})
	}
	return pts, nil
}

// Daily/weekly rows are dated; intraday rows carry a time as well.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := market.ParseDay(s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}

func str(body map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := body[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw), true
	}
	return s, true
}
