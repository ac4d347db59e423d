package csvfeed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rustyeddy/stocktrader/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCloses(t *testing.T, dir, ticker string, start time.Time, closes []float64) {
	t.Helper()

	var b strings.Builder
	b.WriteString("date,close\n")
	d := start
	for _, c := range closes {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		fmt.Fprintf(&b, "%s,%.2f\n", d.Format("2006-01-02"), c)
		d = d.AddDate(0, 0, 1)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, ticker+".csv"), []byte(b.String()), 0o644))
}

func TestReadCloses_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"date/close", "date,close\n2024-01-03,12\n2024-01-02,11\n"},
		{"candle csv", "time,instrument,granularity,complete,volume,o,h,l,c\n" +
			"2024-01-02T00:00:00Z,ABC,D,true,10,1,1,1,11\n" +
			"2024-01-03T00:00:00Z,ABC,D,true,10,1,1,1,12\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := ReadCloses(strings.NewReader(tt.in))
			require.NoError(t, err)
			assert.Equal(t, []float64{11, 12}, s.Values())
			assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), s.Points[0].Time)
		})
	}
}

func TestReadCloses_Errors(t *testing.T) {
	t.Parallel()

	_, err := ReadCloses(strings.NewReader("foo,bar\n1,2\n"))
	assert.ErrorContains(t, err, "need date/time and close/c columns")

	_, err = ReadCloses(strings.NewReader("date,close\n2024-01-02,abc\n"))
	assert.ErrorContains(t, err, "bad close")

	_, err = ReadCloses(strings.NewReader("date,close\nyesterday,1\n"))
	assert.ErrorContains(t, err, "bad date")

	_, err = ReadCloses(strings.NewReader(""))
	assert.Error(t, err)
}

func TestFeed_EMAAndPrice(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	writeCloses(t, dir, "ABC", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), closes)

	f := New(dir, 5)
	ctx := context.Background()

	daily, err := f.EMA(ctx, "abc", market.Daily)
	require.NoError(t, err)
	assert.Equal(t, "ABC", daily.Ticker)
	assert.Equal(t, market.Daily, daily.Cadence)
	assert.Len(t, daily.Points, 56)

	weekly, err := f.EMA(ctx, "ABC", market.Weekly)
	require.NoError(t, err)
	assert.Equal(t, market.Weekly, weekly.Cadence)
	assert.Len(t, weekly.Points, 8)

	// every weekly date is also a daily date, so the engine can join them
	dailyDates := map[time.Time]bool{}
	for _, p := range daily.Points {
		dailyDates[p.Time] = true
	}
	for _, p := range weekly.Points {
		assert.True(t, dailyDates[p.Time], p.Time)
	}

	px, err := f.Price(ctx, "ABC")
	require.NoError(t, err)
	assert.Equal(t, 159.0, px)

	wc, err := f.WeeklyClose(ctx, "ABC")
	require.NoError(t, err)
	assert.Len(t, wc.Points, 12)
}

func TestFeed_MissingTickerIsProviderError(t *testing.T) {
	t.Parallel()

	f := New(t.TempDir(), 0)
	assert.Equal(t, 20, f.Period)

	_, err := f.EMA(context.Background(), "NOPE", market.Daily)
	require.Error(t, err)
	assert.True(t, errors.Is(err, market.ErrProvider))
}

func TestFeed_NotEnoughHistory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCloses(t, dir, "ABC", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), []float64{1, 2, 3})

	_, err := New(dir, 5).EMA(context.Background(), "ABC", market.Daily)
	require.Error(t, err)
	assert.True(t, errors.Is(err, market.ErrProvider))
	assert.Contains(t, err.Error(), "not enough daily closes")
}
