package strategies

import (
	"strings"

	"github.com/dreampivot/trader/indicators"
	"github.com/dreampivot/trader/market"
)

// Momentum trades MACD crossovers confirmed by RSI and a trend EMA filter.
//
// Signals:
//   - BUY: MACD bullish crossover + RSI not overbought
//   - SELL: MACD bearish crossover + RSI not oversold
//   - HOLD: unclear signals or neutral market
type Momentum struct {
	fastPeriod    int
	slowPeriod    int
	signalPeriod  int
	rsiPeriod     int
	rsiOversold   float64
	rsiOverbought float64
	trendPeriod   int
}

// NewMomentum builds a momentum strategy, filling unset params with the
// defaults (MACD 12/26/9, RSI 14 with 30/70 bands, trend EMA 50).
func NewMomentum(p Params) *Momentum {
	m := &Momentum{
		fastPeriod:    p.FastPeriod,
		slowPeriod:    p.SlowPeriod,
		signalPeriod:  p.SignalPeriod,
		rsiPeriod:     p.RSIPeriod,
		rsiOversold:   p.RSIOversold,
		rsiOverbought: p.RSIOverbought,
		trendPeriod:   p.TrendPeriod,
	}
	if m.fastPeriod <= 0 {
		m.fastPeriod = 12
	}
	if m.slowPeriod <= 0 {
		m.slowPeriod = 26
	}
	if m.signalPeriod <= 0 {
		m.signalPeriod = 9
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
	if m.trendPeriod <= 0 {
		m.trendPeriod = 50
	}
	return m
}

func (m *Momentum) Name() string { return "momentum" }

// RequiredHistory needs enough data for the trend EMA and a settled MACD
// signal line.
func (m *Momentum) RequiredHistory() int {
	n := m.slowPeriod + m.signalPeriod
	if m.trendPeriod > n {
		n = m.trendPeriod
	}
	return n + 10
}

// Analyze generates a trading signal from the price series.
func (m *Momentum) Analyze(series market.Series, symbol string) TradeSignal {
	if len(series) < m.RequiredHistory() {
		return insufficientData(symbol)
	}

	closes := series.Closes()

	macdLine, signalLine, histogram := indicators.MACD(closes, m.fastPeriod, m.slowPeriod, m.signalPeriod)
	rsi := indicators.RSI(closes, m.rsiPeriod)
	trendEMA := indicators.EMA(closes, m.trendPeriod)

	last := len(closes) - 1
	curMACD := macdLine[last]
	curSignal := signalLine[last]
	curHist := histogram[last]
	prevHist := histogram[last-1]
	curRSI := rsi[last]
	curPrice := closes[last]
	curTrend := trendEMA[last]

	uptrend := curPrice > curTrend
	downtrend := curPrice < curTrend

	bullishCross := curHist > 0 && prevHist <= 0
	bearishCross := curHist < 0 && prevHist >= 0
	macdBullish := curHist > 0
	macdBearish := curHist < 0

	rsiOversold := curRSI < m.rsiOversold
	rsiOverbought := curRSI > m.rsiOverbought
	rsiVeryOversold := curRSI < 25
	rsiVeryOverbought := curRSI > 75

	action := Hold
	confidence := 0.0
	var reasons []string

	switch {
	// Strong: MACD crossover in uptrend
	case bullishCross && uptrend && !rsiOverbought:
		action = Buy
		confidence = 0.85
		reasons = append(reasons, "MACD bullish crossover + uptrend")
		if rsiOversold {
			confidence = 0.90
			reasons = append(reasons, "RSI oversold")
		}

	// Medium: MACD crossover (no trend requirement)
	case bullishCross && !rsiOverbought:
		action = Buy
		confidence = 0.70
		reasons = append(reasons, "MACD bullish crossover")
		if rsiOversold {
			confidence += 0.10
			reasons = append(reasons, "RSI oversold")
		}

	// Weak: RSI very oversold in uptrend
	case rsiVeryOversold && uptrend && macdBullish:
		action = Buy
		confidence = 0.65
		reasons = append(reasons, "RSI very oversold + uptrend")

	// Strong: MACD crossover in downtrend
	case bearishCross && downtrend && !rsiOversold:
		action = Sell
		confidence = 0.85
		reasons = append(reasons, "MACD bearish crossover + downtrend")
		if rsiOverbought {
			confidence = 0.90
			reasons = append(reasons, "RSI overbought")
		}

	// Medium: MACD crossover (no trend requirement)
	case bearishCross && !rsiOversold:
		action = Sell
		confidence = 0.70
		reasons = append(reasons, "MACD bearish crossover")
		if rsiOverbought {
			confidence += 0.10
			reasons = append(reasons, "RSI overbought")
		}

	// Weak: RSI very overbought in downtrend
	case rsiVeryOverbought && downtrend && macdBearish:
		action = Sell
		confidence = 0.65
		reasons = append(reasons, "RSI very overbought + downtrend")

	default:
		reasons = append(reasons, "No clear signal")
		switch {
		case uptrend:
			reasons = append(reasons, "Uptrend (waiting for entry)")
		case downtrend:
			reasons = append(reasons, "Downtrend (waiting for exit)")
		default:
			reasons = append(reasons, "Trend neutral")
		}
	}

	return TradeSignal{
		Action:     action,
		Symbol:     symbol,
		Confidence: clamp01(confidence),
		Reason:     strings.Join(reasons, " | "),
		Indicators: map[string]float64{
			"macd":           curMACD,
			"macd_signal":    curSignal,
			"macd_histogram": curHist,
			"rsi":            curRSI,
			"trend_ema":      curTrend,
		},
	}
}
