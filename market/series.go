// Package market holds the time series types shared by the data providers,
// the crossover engine and the chart renderer.
package market

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Cadence is the sampling period of a series.
type Cadence string

const (
	Daily  Cadence = "daily"
	Weekly Cadence = "weekly"
)

// ParseCadence accepts "daily"/"weekly" in any case.
func ParseCadence(s string) (Cadence, error) {
	switch Cadence(strings.ToLower(strings.TrimSpace(s))) {
	case Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	default:
		return "", fmt.Errorf("unknown cadence %q (want daily|weekly)", s)
	}
}

// TimePoint is one sampled reading.
type TimePoint struct {
	Time  time.Time
	Value float64
}

// Series is an ordered sequence of readings for one (ticker, cadence).
type Series struct {
	Ticker  string
	Cadence Cadence
	Points  []TimePoint
}

func (s Series) Len() int { return len(s.Points) }

// Last returns the most recent point, or false if the series is empty.
func (s Series) Last() (TimePoint, bool) {
	if len(s.Points) == 0 {
		return TimePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Sorted returns a copy of the series ordered by ascending time.
func (s Series) Sorted() Series {
	pts := make([]TimePoint, len(s.Points))
	copy(pts, s.Points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time.Before(pts[j].Time) })
	return Series{Ticker: s.Ticker, Cadence: s.Cadence, Points: pts}
}

// Between returns the points with from <= t < to. Zero bounds are open.
func (s Series) Between(from, to time.Time) Series {
	out := Series{Ticker: s.Ticker, Cadence: s.Cadence}
	for _, p := range s.Points {
		if !from.IsZero() && p.Time.Before(from) {
			continue
		}
		if !to.IsZero() && !p.Time.Before(to) {
			continue
		}
		out.Points = append(out.Points, p)
	}
	return out
}

// Times and Values split the series into parallel slices (used for charting).
func (s Series) Times() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Time
	}
	return out
}

func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

const DateLayout = "2006-01-02"

// Day truncates t to a calendar date at UTC midnight, keeping t's own
// year/month/day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD provider date.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// SameDay reports whether a and b fall on the same calendar date, each
// read in its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
