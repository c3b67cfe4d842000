package strategies

import (
	"strings"

	"github.com/dreampivot/trader/indicators"
	"github.com/dreampivot/trader/market"
)

// MeanReversion assumes price reverts to its rolling mean and trades
// Bollinger Band touches confirmed by RSI.
//
// Signals:
//   - BUY: price at/below lower band + RSI oversold
//   - SELL: price at/above upper band + RSI overbought
//   - HOLD: price within bands
type MeanReversion struct {
	bbPeriod      int
	bbStd         float64
	rsiPeriod     int
	rsiOversold   float64
	rsiOverbought float64
}

// NewMeanReversion builds a mean-reversion strategy, filling unset params
// with the defaults (Bollinger 20/2.0, RSI 14 with 30/70 bands).
func NewMeanReversion(p Params) *MeanReversion {
	m := &MeanReversion{
		bbPeriod:      p.BBPeriod,
		bbStd:         p.BBStd,
		rsiPeriod:     p.RSIPeriod,
		rsiOversold:   p.RSIOversold,
		rsiOverbought: p.RSIOverbought,
	}
	if m.bbPeriod <= 0 {
		m.bbPeriod = 20
	}
	if m.bbStd <= 0 {
		m.bbStd = 2.0
	}
	if m.rsiPeriod <= 0 {
		m.rsiPeriod = 14
	}
	if m.rsiOversold <= 0 {
		m.rsiOversold = 30
	}
	if m.rsiOverbought <= 0 {
		m.rsiOverbought = 70
	}
	return m
}

func (m *MeanReversion) Name() string { return "mean_reversion" }

// RequiredHistory needs enough data for the Bollinger window to settle.
func (m *MeanReversion) RequiredHistory() int {
	return m.bbPeriod + 10
}

// Analyze generates a trading signal from the price series.
func (m *MeanReversion) Analyze(series market.Series, symbol string) TradeSignal {
	if len(series) < m.RequiredHistory() {
		return insufficientData(symbol)
	}

	closes := series.Closes()

	upper, middle, lower := indicators.BollingerBands(closes, m.bbPeriod, m.bbStd)
	rsi := indicators.RSI(closes, m.rsiPeriod)

	last := len(closes) - 1
	curPrice := closes[last]
	curSMA := middle[last]
	curUpper := upper[last]
	curLower := lower[last]
	curRSI := rsi[last]

	// Position within bands: 0 = lower, 1 = upper. Can exceed the bounds
	// when price pierces a band. A zero-width band would divide by zero,
	// so it degrades to the midpoint.
	width := curUpper - curLower
	bandPosition := 0.5
	if width > 0 {
		bandPosition = (curPrice - curLower) / width
	}

	var bandWidthPct float64
	if curSMA != 0 {
		bandWidthPct = width / curSMA * 100
	}

	rsiOversold := curRSI < m.rsiOversold
	rsiOverbought := curRSI > m.rsiOverbought
	rsiVeryOversold := curRSI < 25
	rsiVeryOverbought := curRSI > 75

	action := Hold
	confidence := 0.0
	var reasons []string

	switch {
	// Strong: price below lower band + RSI oversold
	case curPrice <= curLower && rsiOversold:
		action = Buy
		confidence = 0.85
		reasons = append(reasons, "Price at lower band + RSI oversold")

	// Medium: price near lower band + RSI very oversold
	case bandPosition < 0.1 && rsiVeryOversold:
		action = Buy
		confidence = 0.75
		reasons = append(reasons, "Price near lower band + RSI very oversold")

	// Weak: price below lower band (no RSI confirm)
	case curPrice < curLower:
		action = Buy
		confidence = 0.60
		reasons = append(reasons, "Price below lower band")

	// Strong: price above upper band + RSI overbought
	case curPrice >= curUpper && rsiOverbought:
		action = Sell
		confidence = 0.85
		reasons = append(reasons, "Price at upper band + RSI overbought")

	// Medium: price near upper band + RSI very overbought
	case bandPosition > 0.9 && rsiVeryOverbought:
		action = Sell
		confidence = 0.75
		reasons = append(reasons, "Price near upper band + RSI very overbought")

	// Weak: price above upper band (no RSI confirm)
	case curPrice > curUpper:
		action = Sell
		confidence = 0.60
		reasons = append(reasons, "Price above upper band")

	default:
		reasons = append(reasons, "Price within bands")
		switch {
		case bandPosition > 0.7:
			reasons = append(reasons, "Near upper band (watching)")
		case bandPosition < 0.3:
			reasons = append(reasons, "Near lower band (watching)")
		}
	}

	return TradeSignal{
		Action:     action,
		Symbol:     symbol,
		Confidence: clamp01(confidence),
		Reason:     strings.Join(reasons, " | "),
		Indicators: map[string]float64{
			"sma":           curSMA,
			"upper_band":    curUpper,
			"lower_band":    curLower,
			"band_width":    bandWidthPct,
			"band_position": bandPosition,
			"rsi":           curRSI,
		},
	}
}
