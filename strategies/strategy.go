// Package strategies turns a price series into buy/sell/hold decisions.
package strategies

import (
	"fmt"
	"strings"

	"github.com/dreampivot/trader/market"
)

// Action is a trading decision.
type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
	Hold Action = "hold"
)

// TradeSignal is a complete trade decision with metadata. Signals are value
// objects created fresh on every analysis call and never mutated.
type TradeSignal struct {
	Action     Action
	Symbol     string
	Confidence float64 // 0.0 - 1.0
	Reason     string
	Indicators map[string]float64
}

// Strategy analyzes price data and generates signals.
//
// Analyze must never fail: when the series is shorter than
// RequiredHistory() it returns Hold with confidence 0 and the reason
// "Insufficient data".
type Strategy interface {
	Name() string
	Analyze(series market.Series, symbol string) TradeSignal
	RequiredHistory() int
}

// Params are the tunable knobs shared by the built-in strategies.
// Zero values select defaults.
type Params struct {
	FastPeriod    int     `yaml:"fast_period"`
	SlowPeriod    int     `yaml:"slow_period"`
	SignalPeriod  int     `yaml:"signal_period"`
	TrendPeriod   int     `yaml:"trend_period"`
	RSIPeriod     int     `yaml:"rsi_period"`
	RSIOversold   float64 `yaml:"rsi_oversold"`
	RSIOverbought float64 `yaml:"rsi_overbought"`
	BBPeriod      int     `yaml:"bb_period"`
	BBStd         float64 `yaml:"bb_std"`
}

// New creates a strategy by name.
func New(name string, p Params) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "momentum":
		return NewMomentum(p), nil
	case "mean_reversion", "mean-reversion", "meanreversion":
		return NewMeanReversion(p), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: momentum, mean_reversion)", name)
	}
}

func insufficientData(symbol string) TradeSignal {
	return TradeSignal{
		Action:     Hold,
		Symbol:     symbol,
		Confidence: 0.0,
		Reason:     "Insufficient data",
	}
}

func clamp01(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}
