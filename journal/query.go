package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetTrade returns a single trade record by ID.
func (j *SQLiteJournal) GetTrade(id string) (TradeRecord, error) {
	var rec TradeRecord

	row := j.db.QueryRow(`
		SELECT id, time, symbol, side, amount, price, value, fee, reason
		FROM trades
		WHERE id = ?`, id)

	err := row.Scan(
		&rec.ID,
		&rec.Time,
		&rec.Symbol,
		&rec.Side,
		&rec.Amount,
		&rec.Price,
		&rec.Value,
		&rec.Fee,
		&rec.Reason,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", id)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesBetween returns trades executed within [start, end),
// oldest first.
func (j *SQLiteJournal) ListTradesBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, time, symbol, side, amount, price, value, fee, reason
		FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Time,
			&rec.Symbol,
			&rec.Side,
			&rec.Amount,
			&rec.Price,
			&rec.Value,
			&rec.Fee,
			&rec.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSignals returns the most recent signals for a symbol, newest first.
// A zero limit returns everything.
func (j *SQLiteJournal) ListSignals(symbol string, limit int) ([]SignalRecord, error) {
	q := `
		SELECT id, time, symbol, strategy, action, confidence, reason, price
		FROM signals
		WHERE symbol = ?
		ORDER BY time DESC`
	args := []any{symbol}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SignalRecord
	for rows.Next() {
		var rec SignalRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Time,
			&rec.Symbol,
			&rec.Strategy,
			&rec.Action,
			&rec.Confidence,
			&rec.Reason,
			&rec.Price,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
