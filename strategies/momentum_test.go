package strategies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dreampivot/trader/market"
)

func seriesFromCloses(closes []float64) market.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(market.Series, len(closes))
	for i, c := range closes {
		series[i] = market.Candle{
			Time:  start.Add(time.Duration(i) * time.Hour),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}
	return series
}

func flatCloses(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestMomentumInsufficientData(t *testing.T) {
	strat := NewMomentum(Params{})
	series := seriesFromCloses(flatCloses(100, 10))

	sig := strat.Analyze(series, "BTC/USDT")

	assert.Equal(t, Hold, sig.Action)
	assert.Equal(t, 0.0, sig.Confidence)
	assert.Equal(t, "Insufficient data", sig.Reason)
}

func TestMomentumBullishCrossoverInUptrend(t *testing.T) {
	// A long flat stretch keeps every EMA pinned at 100, so a single
	// strong up candle flips the histogram from zero to positive on the
	// final bar while the price sits above the trend EMA. The lone gain
	// leaves the RSI at its neutral fallback, clearing both RSI filters.
	closes := flatCloses(100, 70)
	closes[69] = 105
	strat := NewMomentum(Params{})

	sig := strat.Analyze(seriesFromCloses(closes), "BTC/USDT")

	assert.Equal(t, Buy, sig.Action)
	assert.InDelta(t, 0.85, sig.Confidence, 1e-9)
	assert.Contains(t, sig.Reason, "MACD bullish crossover + uptrend")
	assert.Greater(t, sig.Indicators["macd_histogram"], 0.0)
	assert.Greater(t, closes[69], sig.Indicators["trend_ema"])
}

func TestMomentumBearishCrossoverInDowntrend(t *testing.T) {
	// The small up candle before the drop puts a gain inside the RSI
	// window, keeping the RSI above the oversold line when the last bar
	// flips the histogram negative below the trend EMA.
	closes := flatCloses(100, 70)
	closes[68] = 100.5
	closes[69] = 99.5
	strat := NewMomentum(Params{})

	sig := strat.Analyze(seriesFromCloses(closes), "BTC/USDT")

	assert.Equal(t, Sell, sig.Action)
	assert.InDelta(t, 0.85, sig.Confidence, 1e-9)
	assert.Contains(t, sig.Reason, "MACD bearish crossover + downtrend")
	assert.Less(t, sig.Indicators["macd_histogram"], 0.0)
}

func TestMomentumHoldOnFlatMarket(t *testing.T) {
	strat := NewMomentum(Params{})

	sig := strat.Analyze(seriesFromCloses(flatCloses(100, 70)), "BTC/USDT")

	assert.Equal(t, Hold, sig.Action)
	assert.Equal(t, 0.0, sig.Confidence)
	assert.Contains(t, sig.Reason, "No clear signal")
}

func TestMomentumRequiredHistory(t *testing.T) {
	assert.Equal(t, 60, NewMomentum(Params{}).RequiredHistory())

	// A long trend EMA dominates the MACD settling time.
	long := NewMomentum(Params{TrendPeriod: 100})
	assert.Equal(t, 110, long.RequiredHistory())
}

func TestMomentumIndicatorPayload(t *testing.T) {
	strat := NewMomentum(Params{})

	sig := strat.Analyze(seriesFromCloses(flatCloses(100, 70)), "BTC/USDT")

	for _, key := range []string{"macd", "macd_signal", "macd_histogram", "rsi", "trend_ema"} {
		assert.Contains(t, sig.Indicators, key)
	}
	assert.InDelta(t, 50.0, sig.Indicators["rsi"], 1e-9)
}
