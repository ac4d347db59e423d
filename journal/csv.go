package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var csvHeader = []string{"action", "status", "ticker", "timestamp", "price", "run_id", "id"}

// CSVJournal appends to a transaction log file. The file is never
// truncated; the header is written only when the file is empty.
type CSVJournal struct {
	mu   sync.Mutex
	path string
	f    *os.File
	w    *csv.Writer
}

func NewCSV(path string) (*CSVJournal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open transaction log: %w", err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, err
		}
	}

	return &CSVJournal{path: path, f: f, w: w}, nil
}

func (j *CSVJournal) Path() string { return j.path }

func (j *CSVJournal) Append(r Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.w.Write([]string{
		r.Action,
		string(r.Status),
		r.TickerString(),
		r.Time.Format(time.RFC3339),
		r.PriceString(),
		r.RunID,
		r.ID,
	}); err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSVJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.w.Flush()
	if err := j.w.Error(); err != nil {
		j.f.Close()
		return err
	}
	return j.f.Close()
}

// ReadCSV parses a transaction log. Rows in the older five-column
// format (no header, no ids) are accepted too.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []Record
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if line == 1 && len(row) > 0 && row[0] == csvHeader[0] {
			continue
		}
		if len(row) < 5 {
			continue
		}

		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRow(row []string) (Record, error) {
	rec := Record{
		Action: row[0],
		Status: Status(row[1]),
	}
	if row[2] != NA {
		rec.Ticker = row[2]
	}

	t, err := parseTimestamp(row[3])
	if err != nil {
		return Record{}, err
	}
	rec.Time = t

	if p := strings.TrimSpace(row[4]); p != NA && p != "" {
		d, err := decimal.NewFromString(p)
		if err != nil {
			return Record{}, fmt.Errorf("bad price %q: %w", p, err)
		}
		rec.Price = decimal.NewNullDecimal(d)
	}
	if len(row) > 5 {
		rec.RunID = row[5]
	}
	if len(row) > 6 {
		rec.ID = row[6]
	}
	return rec, nil
}

func parseTimestamp(s string) (time.Time, error) {
	// RFC3339 from this package, "2020-08-28 09:30:00.123456" from older logs
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", s)
}

// CSVFile answers queries by scanning a transaction log.
type CSVFile struct {
	Path string
}

func (c CSVFile) all() ([]Record, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

func (c CSVFile) ListBetween(start, end time.Time) ([]Record, error) {
	return c.where(func(r Record) bool { return !r.Time.Before(start) && r.Time.Before(end) })
}

func (c CSVFile) ListByTicker(ticker string) ([]Record, error) {
	ticker = strings.ToUpper(ticker)
	return c.where(func(r Record) bool { return r.Ticker == ticker })
}

func (c CSVFile) ListByRun(runID string) ([]Record, error) {
	return c.where(func(r Record) bool { return r.RunID == runID })
}

func (c CSVFile) where(keep func(Record) bool) ([]Record, error) {
	recs, err := c.all()
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, r := range recs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}
