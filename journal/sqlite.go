package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/stocktrader/pkg/id"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) Append(r Record) error {
	if r.ID == "" {
		r.ID = id.NewAt(r.Time)
	}

	var price sql.NullString
	if r.Price.Valid {
		price = sql.NullString{String: r.Price.Decimal.String(), Valid: true}
	}

	_, err := j.db.Exec(`
		INSERT INTO transactions
		(id, run_id, action, status, ticker, time, price)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.RunID, r.Action, string(r.Status), r.TickerString(), r.Time.UTC(), price,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
