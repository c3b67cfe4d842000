package journal

// Summary aggregates a session's recorded activity.
type Summary struct {
	Trades     int
	Buys       int
	Sells      int
	Volume     float64 // total traded value
	Fees       float64
	FirstValue float64 // earliest portfolio snapshot
	LastValue  float64 // latest portfolio snapshot
	PnL        float64 // LastValue - FirstValue; 0 without snapshots
}

// Summary computes totals over everything recorded so far.
func (j *SQLiteJournal) Summary() (Summary, error) {
	var s Summary

	row := j.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN side = 'buy' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN side = 'sell' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(value), 0),
		       COALESCE(SUM(fee), 0)
		FROM trades`)
	if err := row.Scan(&s.Trades, &s.Buys, &s.Sells, &s.Volume, &s.Fees); err != nil {
		return Summary{}, err
	}

	var count int
	row = j.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE((SELECT total_value FROM portfolio ORDER BY time ASC LIMIT 1), 0),
		       COALESCE((SELECT total_value FROM portfolio ORDER BY time DESC LIMIT 1), 0)
		FROM portfolio`)
	if err := row.Scan(&count, &s.FirstValue, &s.LastValue); err != nil {
		return Summary{}, err
	}
	if count > 0 {
		s.PnL = s.LastValue - s.FirstValue
	}
	return s, nil
}
