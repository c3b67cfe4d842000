package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// JSONLJournal appends one JSON object per line to three files in a
// directory: signals.jsonl, trades.jsonl, and portfolio.jsonl. Files are
// opened in append mode so restarts keep history.
type JSONLJournal struct {
	mu        sync.Mutex
	signals   *os.File
	trades    *os.File
	portfolio *os.File
}

// NewJSONL creates the directory if needed and opens the record files.
func NewJSONL(dir string) (*JSONLJournal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir %s: %w", dir, err)
	}

	open := func(name string) (*os.File, error) {
		return os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	}

	signals, err := open("signals.jsonl")
	if err != nil {
		return nil, err
	}
	trades, err := open("trades.jsonl")
	if err != nil {
		signals.Close()
		return nil, err
	}
	portfolio, err := open("portfolio.jsonl")
	if err != nil {
		signals.Close()
		trades.Close()
		return nil, err
	}

	return &JSONLJournal{signals: signals, trades: trades, portfolio: portfolio}, nil
}

func (j *JSONLJournal) RecordSignal(s SignalRecord) error {
	return j.append(j.signals, s)
}

func (j *JSONLJournal) RecordTrade(t TradeRecord) error {
	return j.append(j.trades, t)
}

func (j *JSONLJournal) RecordPortfolio(p PortfolioSnapshot) error {
	return j.append(j.portfolio, p)
}

func (j *JSONLJournal) append(f *os.File, v any) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	enc := json.NewEncoder(f)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("append journal record: %w", err)
	}
	return nil
}

func (j *JSONLJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var firstErr error
	for _, f := range []*os.File{j.signals, j.trades, j.portfolio} {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
