package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteJournal writes records to a single SQLite database file.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and ensures
// the schema exists.
func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}
	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordSignal(s SignalRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO signals (id, time, symbol, strategy, action, confidence, reason, price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Time, s.Symbol, s.Strategy, s.Action, s.Confidence, s.Reason, s.Price,
	)
	return err
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades (id, time, symbol, side, amount, price, value, fee, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Time, t.Symbol, t.Side, t.Amount, t.Price, t.Value, t.Fee, t.Reason,
	)
	return err
}

func (j *SQLiteJournal) RecordPortfolio(p PortfolioSnapshot) error {
	balances, err := json.Marshal(p.Balances)
	if err != nil {
		return fmt.Errorf("marshal balances: %w", err)
	}
	_, err = j.db.Exec(`
		INSERT INTO portfolio (time, total_value, balances)
		VALUES (?, ?, ?)`,
		p.Time, p.TotalValue, string(balances),
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
