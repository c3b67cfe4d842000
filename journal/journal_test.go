package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreampivot/trader/config"
)

func sampleTrade(id string, ts time.Time) TradeRecord {
	return TradeRecord{
		ID:     id,
		Time:   ts,
		Symbol: "BTC/USDT",
		Side:   "buy",
		Amount: 0.1,
		Price:  50000,
		Value:  5000,
		Fee:    5,
		Reason: "MACD bullish crossover + uptrend",
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.sqlite")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(sampleTrade("trade-1", ts)))

	got, err := j.GetTrade("trade-1")
	require.NoError(t, err)
	assert.Equal(t, "BTC/USDT", got.Symbol)
	assert.Equal(t, "buy", got.Side)
	assert.InDelta(t, 5000.0, got.Value, 1e-9)

	_, err = j.GetTrade("missing")
	assert.Error(t, err)
}

func TestSQLiteListTradesBetween(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.sqlite")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, j.RecordTrade(sampleTrade(id, base.Add(time.Duration(i)*time.Hour))))
	}

	trades, err := j.ListTradesBetween(base, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, trades, 2)
	assert.Equal(t, "a", trades[0].ID)
	assert.Equal(t, "b", trades[1].ID)
}

func TestSQLiteListSignals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.sqlite")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordSignal(SignalRecord{
			ID:         string(rune('a' + i)),
			Time:       base.Add(time.Duration(i) * time.Hour),
			Symbol:     "BTC/USDT",
			Strategy:   "momentum",
			Action:     "hold",
			Confidence: 0.5,
			Reason:     "No clear signal",
			Price:      50000,
		}))
	}

	signals, err := j.ListSignals("BTC/USDT", 2)
	require.NoError(t, err)
	assert.Len(t, signals, 2)
	// Newest first.
	assert.Equal(t, "c", signals[0].ID)

	none, err := j.ListSignals("ETH/USDT", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestJSONLAppendsOneObjectPerLine(t *testing.T) {
	dir := t.TempDir()
	j, err := NewJSONL(dir)
	require.NoError(t, err)

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(sampleTrade("t1", ts)))
	require.NoError(t, j.RecordTrade(sampleTrade("t2", ts)))
	require.NoError(t, j.RecordPortfolio(PortfolioSnapshot{
		Time:       ts,
		TotalValue: 10000,
		Balances:   map[string]float64{"USDT": 10000},
	}))
	require.NoError(t, j.Close())

	lines := readLines(t, filepath.Join(dir, "trades.jsonl"))
	require.Len(t, lines, 2)

	var rec TradeRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "t1", rec.ID)
	assert.Equal(t, "BTC/USDT", rec.Symbol)

	assert.Len(t, readLines(t, filepath.Join(dir, "portfolio.jsonl")), 1)
}

func TestJSONLAppendsAcrossReopens(t *testing.T) {
	dir := t.TempDir()
	ts := time.Now().UTC()

	for i := 0; i < 2; i++ {
		j, err := NewJSONL(dir)
		require.NoError(t, err)
		require.NoError(t, j.RecordSignal(SignalRecord{ID: "s", Time: ts}))
		require.NoError(t, j.Close())
	}

	assert.Len(t, readLines(t, filepath.Join(dir, "signals.jsonl")), 2)
}

func TestSQLiteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.sqlite")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	buy := sampleTrade("b1", base)
	sell := sampleTrade("s1", base.Add(time.Hour))
	sell.Side = "sell"
	require.NoError(t, j.RecordTrade(buy))
	require.NoError(t, j.RecordTrade(sell))

	require.NoError(t, j.RecordPortfolio(PortfolioSnapshot{Time: base, TotalValue: 10000}))
	require.NoError(t, j.RecordPortfolio(PortfolioSnapshot{Time: base.Add(2 * time.Hour), TotalValue: 10400}))

	s, err := j.Summary()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Trades)
	assert.Equal(t, 1, s.Buys)
	assert.Equal(t, 1, s.Sells)
	assert.InDelta(t, 10000.0, s.Volume, 1e-9)
	assert.InDelta(t, 10.0, s.Fees, 1e-9)
	assert.InDelta(t, 400.0, s.PnL, 1e-9)
}

func TestSQLiteSummaryEmpty(t *testing.T) {
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.sqlite"))
	require.NoError(t, err)
	defer j.Close()

	s, err := j.Summary()
	require.NoError(t, err)
	assert.Zero(t, s.Trades)
	assert.Zero(t, s.PnL)
}

func TestNewSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	j, err := New(config.JournalConfig{Type: "sqlite", DBPath: filepath.Join(dir, "j.sqlite")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteJournal{}, j)
	j.Close()

	j, err = New(config.JournalConfig{Type: "jsonl", Dir: dir})
	require.NoError(t, err)
	assert.IsType(t, &JSONLJournal{}, j)
	j.Close()

	j, err = New(config.JournalConfig{Type: "none"})
	require.NoError(t, err)
	assert.IsType(t, Nop{}, j)

	_, err = New(config.JournalConfig{Type: "carrier-pigeon"})
	assert.Error(t, err)
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}
