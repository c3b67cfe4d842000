// Package risk provides position sizing and stop-loss/take-profit logic
// shared by the backtest and live engines.
package risk

import (
	"github.com/dreampivot/trader/market"
)

// Size is the result of sizing a trade from available balance.
type Size struct {
	Value  float64 // quote currency committed (fee included)
	Fee    float64
	Amount float64 // base currency units bought
}

// PositionSize sizes a buy from the free quote balance, a risk fraction
// r in (0, 1], the fee rate, and the current price. The fee comes out of
// the committed value before conversion: amount = (value - fee) / price.
// Sells always use the full held amount and are not sized here.
func PositionSize(freeBalance, riskFraction, feeRate, price float64) Size {
	value := freeBalance * riskFraction
	fee := value * feeRate
	amount := 0.0
	if price > 0 {
		amount = (value - fee) / price
	}
	return Size{Value: value, Fee: fee, Amount: amount}
}

// FractionForLevel maps a risk level knob (1-10) to the fraction of free
// balance committed per trade: level 1 = 1%, level 10 = 10%.
func FractionForLevel(level int) float64 {
	if level < 1 {
		level = 1
	}
	if level > 10 {
		level = 10
	}
	return float64(level) / 100.0
}

// MinConfidence maps a risk level (1-10) to the minimum signal confidence
// required to trade: higher risk accepts weaker signals.
// Level 1 = 0.95, level 5 = 0.75, level 10 = 0.50.
func MinConfidence(level int) float64 {
	if level < 1 {
		level = 1
	}
	if level > 10 {
		level = 10
	}
	return 1.0 - float64(level)*0.05
}

// Levels are the exit thresholds computed once at entry.
type Levels struct {
	Stop float64
	Take float64
}

// LevelsFor computes exit thresholds from the entry price:
// stop = entry*(1-slPct), take = entry*(1+tpPct). A non-positive
// percentage disables that side.
func LevelsFor(entry, slPct, tpPct float64) Levels {
	var l Levels
	if slPct > 0 {
		l.Stop = entry * (1 - slPct)
	}
	if tpPct > 0 {
		l.Take = entry * (1 + tpPct)
	}
	return l
}

// ExitReason identifies which threshold a candle breached.
type ExitReason string

const (
	ExitStopLoss   ExitReason = "stop-loss"
	ExitTakeProfit ExitReason = "take-profit"
)

// CheckExit tests the candle's intrabar range against the levels.
// The stop-loss is tested against the low before the take-profit is
// tested against the high: when a single candle spans both thresholds
// the intrabar order is unknown, so the stop wins the tie.
func (l Levels) CheckExit(c market.Candle) (price float64, reason ExitReason, hit bool) {
	if l.Stop > 0 && c.Low <= l.Stop {
		return l.Stop, ExitStopLoss, true
	}
	if l.Take > 0 && c.High >= l.Take {
		return l.Take, ExitTakeProfit, true
	}
	return 0, "", false
}
