// Package chart renders the PNG that accompanies a triggered trade: actual
// weekly close, daily EMA and weekly EMA over the last eighteen months.
package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/rustyeddy/stocktrader/market"
)

const (
	DefaultMonthsBefore = 18
	DefaultMonthsAfter  = 1
)

type Data struct {
	Ticker string
	Action string
	Now    time.Time

	Actual market.Series
	Daily  market.Series
	Weekly market.Series

	MonthsBefore int
	MonthsAfter  int
}

// MonthDelta moves t by delta calendar months, pinning the day to the end
// of the target month when it would overflow (Mar 31 - 1 month = Feb 28/29).
func MonthDelta(t time.Time, delta int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(delta), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// Window returns the x-axis range around now.
func (d Data) Window() (time.Time, time.Time) {
	before, after := d.MonthsBefore, d.MonthsAfter
	if before <= 0 {
		before = DefaultMonthsBefore
	}
	if after <= 0 {
		after = DefaultMonthsAfter
	}
	return MonthDelta(d.Now, -before), MonthDelta(d.Now, after)
}

func (d Data) Title() string {
	return fmt.Sprintf("%s %s %s", d.Ticker, d.Action, d.Now.Format(market.DateLayout))
}

// Render writes the chart as PNG.
func Render(w io.Writer, d Data) error {
	start, end := d.Window()

	var series []gochart.Series
	for _, s := range []struct {
		name string
		data market.Series
	}{
		{"Actual Price", d.Actual},
		{"day ema", d.Daily},
		{"weekly ema", d.Weekly},
	} {
		pts := s.data.Sorted().Between(start, end)
		if pts.Len() < 2 {
			continue
		}
		series = append(series, gochart.TimeSeries{
			Name:    s.name,
			XValues: pts.Times(),
			YValues: pts.Values(),
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("chart %s: no data inside %s..%s", d.Ticker,
			start.Format(market.DateLayout), end.Format(market.DateLayout))
	}

	graph := gochart.Chart{
		Title:  d.Title(),
		Width:  1280,
		Height: 720,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:           "date",
			ValueFormatter: gochart.TimeValueFormatterWithFormat("Jan 2006"),
			Range: &gochart.ContinuousRange{
				Min: gochart.TimeToFloat64(start),
				Max: gochart.TimeToFloat64(end),
			},
			GridMajorStyle: gochart.Style{StrokeColor: gochart.ColorLightGray, StrokeWidth: 1},
		},
		YAxis: gochart.YAxis{
			Name:           "price",
			GridMajorStyle: gochart.Style{StrokeColor: gochart.ColorLightGray, StrokeWidth: 1},
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	return graph.Render(gochart.PNG, w)
}

// Filename is <dir>/<action>-<ticker>-<YYYY-MM-DD HH.MM>.png.
func Filename(dir, action, ticker string, now time.Time) string {
	stamp := strings.ReplaceAll(now.Format("2006-01-02 15:04"), ":", ".")
	return filepath.Join(dir, fmt.Sprintf("%s-%s-%s.png", action, ticker, stamp))
}

// Writer renders charts into a directory.
type Writer struct {
	Dir          string
	MonthsBefore int
	MonthsAfter  int
}

// Write renders d to Filename(...) and returns the path.
func (cw Writer) Write(d Data) (string, error) {
	if d.MonthsBefore == 0 {
		d.MonthsBefore = cw.MonthsBefore
	}
	if d.MonthsAfter == 0 {
		d.MonthsAfter = cw.MonthsAfter
	}

	if err := os.MkdirAll(cw.Dir, 0o755); err != nil {
		return "", fmt.Errorf("chart dir: %w", err)
	}

	path := Filename(cw.Dir, d.Action, d.Ticker, d.Now)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart: %w", err)
	}

	if err := Render(f, d); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
