package journal

const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	action TEXT NOT NULL,
	status TEXT NOT NULL,
	ticker TEXT NOT NULL,
	time DATETIME NOT NULL,
	price TEXT
);

CREATE INDEX IF NOT EXISTS idx_transactions_time ON transactions(time);
CREATE INDEX IF NOT EXISTS idx_transactions_ticker ON transactions(ticker);
CREATE INDEX IF NOT EXISTS idx_transactions_run ON transactions(run_id);
`
