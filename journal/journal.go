// Package journal persists generated signals, executed trades, and
// portfolio snapshots for later analysis.
package journal

import (
	"fmt"
	"time"

	"github.com/dreampivot/trader/config"
)

// SignalRecord is one strategy decision, whether or not it was acted on.
type SignalRecord struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"`
	Symbol     string    `json:"symbol"`
	Strategy   string    `json:"strategy"`
	Action     string    `json:"action"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason"`
	Price      float64   `json:"price"`
}

// TradeRecord is one executed order.
type TradeRecord struct {
	ID     string    `json:"id"`
	Time   time.Time `json:"time"`
	Symbol string    `json:"symbol"`
	Side   string    `json:"side"`
	Amount float64   `json:"amount"`
	Price  float64   `json:"price"`
	Value  float64   `json:"value"`
	Fee    float64   `json:"fee"`
	Reason string    `json:"reason"`
}

// PortfolioSnapshot is the account state after an engine cycle.
type PortfolioSnapshot struct {
	Time       time.Time          `json:"time"`
	TotalValue float64            `json:"total_value"`
	Balances   map[string]float64 `json:"balances"`
}

// Journal records engine activity. Implementations must be safe for
// concurrent use.
type Journal interface {
	RecordSignal(SignalRecord) error
	RecordTrade(TradeRecord) error
	RecordPortfolio(PortfolioSnapshot) error
	Close() error
}

// New builds the journal selected by the configuration.
func New(cfg config.JournalConfig) (Journal, error) {
	switch cfg.Type {
	case "sqlite":
		return NewSQLite(cfg.DBPath)
	case "jsonl", "":
		dir := cfg.Dir
		if dir == "" {
			dir = "data"
		}
		return NewJSONL(dir)
	case "none":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}

// Nop discards everything. Used when journaling is disabled and in tests.
type Nop struct{}

func (Nop) RecordSignal(SignalRecord) error { return nil }

func (Nop) RecordTrade(TradeRecord) error { return nil }

func (Nop) RecordPortfolio(PortfolioSnapshot) error { return nil }

func (Nop) Close() error { return nil }
