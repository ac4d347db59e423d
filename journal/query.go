package journal

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const selectCols = `SELECT id, run_id, action, status, ticker, time, price FROM transactions`

// ListBetween returns records whose time is within [start, end). Times are
// stored in UTC so the text comparison sqlite3 does on DATETIME holds.
func (j *SQLiteJournal) ListBetween(start, end time.Time) ([]Record, error) {
	return j.query(selectCols+`
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, id ASC`, start.UTC(), end.UTC())
}

func (j *SQLiteJournal) ListByTicker(ticker string) ([]Record, error) {
	return j.query(selectCols+`
		WHERE ticker = ?
		ORDER BY time ASC, id ASC`, strings.ToUpper(ticker))
}

func (j *SQLiteJournal) ListByRun(runID string) ([]Record, error) {
	return j.query(selectCols+`
		WHERE run_id = ?
		ORDER BY time ASC, id ASC`, runID)
}

// GetRecord returns a single record by ID.
func (j *SQLiteJournal) GetRecord(recordID string) (Record, error) {
	recs, err := j.query(selectCols+` WHERE id = ?`, recordID)
	if err != nil {
		return Record{}, err
	}
	if len(recs) == 0 {
		return Record{}, fmt.Errorf("record %q not found", recordID)
	}
	return recs[0], nil
}

func (j *SQLiteJournal) query(q string, args ...any) ([]Record, error) {
	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec    Record
			status string
			price  sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Action, &status, &rec.Ticker, &rec.Time, &price); err != nil {
			return nil, err
		}
		rec.Status = Status(status)
		if rec.Ticker == NA {
			rec.Ticker = ""
		}
		if price.Valid {
			d, err := decimal.NewFromString(price.String)
			if err != nil {
				return nil, fmt.Errorf("record %s: bad price %q: %w", rec.ID, price.String, err)
			}
			rec.Price = decimal.NewNullDecimal(d)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
