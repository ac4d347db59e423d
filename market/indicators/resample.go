package indicators

import (
	"github.com/rustyeddy/stocktrader/market"
)

// WeeklyCloses keeps the last daily close of each ISO week, stamped with
// that trading day's date. Weekly bars from most providers are labelled
// the same way (the Friday, or the last trading day of a short week).
func WeeklyCloses(daily market.Series) market.Series {
	out := market.Series{Ticker: daily.Ticker, Cadence: market.Weekly}

	var (
		curYear, curWeek int
		have             bool
		last             market.TimePoint
	)
	for _, p := range daily.Sorted().Points {
		y, w := p.Time.ISOWeek()
		if have && (y != curYear || w != curWeek) {
			out.Points = append(out.Points, last)
		}
		curYear, curWeek, have = y, w, true
		last = p
	}
	if have {
		out.Points = append(out.Points, last)
	}
	return out
}
