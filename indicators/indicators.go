// Package indicators provides technical analysis indicators for trading.
//
// All indicators are pure functions over a price sequence: deterministic,
// stateless, and re-computable from any prefix of the series. Each returns
// a sequence of the same length as its input.
package indicators

import "math"

// EMA calculates the Exponential Moving Average with the given span.
//
// The series is seeded at the first sample: ema[0] = series[0], then
// ema[i] = alpha*series[i] + (1-alpha)*ema[i-1] with alpha = 2/(span+1).
func EMA(series []float64, span int) []float64 {
	if len(series) == 0 {
		return nil
	}
	if span < 1 {
		span = 1
	}

	alpha := 2.0 / float64(span+1)
	ema := make([]float64, len(series))
	ema[0] = series[0]
	for i := 1; i < len(series); i++ {
		ema[i] = alpha*series[i] + (1-alpha)*ema[i-1]
	}
	return ema
}

// MACD calculates the Moving Average Convergence Divergence indicator.
//
// macdLine = EMA(fast) - EMA(slow); signalLine = EMA(macdLine, signal);
// histogram = macdLine - signalLine. The three sequences are parallel.
func MACD(series []float64, fast, slow, signal int) (macdLine, signalLine, histogram []float64) {
	if len(series) == 0 {
		return nil, nil, nil
	}

	fastEMA := EMA(series, fast)
	slowEMA := EMA(series, slow)

	macdLine = make([]float64, len(series))
	for i := range series {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine = EMA(macdLine, signal)

	histogram = make([]float64, len(series))
	for i := range series {
		histogram[i] = macdLine[i] - signalLine[i]
	}
	return macdLine, signalLine, histogram
}

// RSI calculates the Relative Strength Index over the given period.
//
// Price deltas are split into gain and loss components, each smoothed with
// a simple rolling mean of width period (a single sample is enough to
// start). When the average loss is zero the ratio is undefined, and the
// RSI is defined as the neutral value 50 rather than a division fault.
// The first element, which has no delta, is also 50.
func RSI(series []float64, period int) []float64 {
	if len(series) == 0 {
		return nil
	}
	if period < 1 {
		period = 1
	}

	rsi := make([]float64, len(series))
	rsi[0] = 50

	gains := make([]float64, len(series))
	losses := make([]float64, len(series))
	for i := 1; i < len(series); i++ {
		delta := series[i] - series[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	for i := 1; i < len(series); i++ {
		first := i - period + 1
		if first < 1 {
			first = 1
		}
		var sumGain, sumLoss float64
		for j := first; j <= i; j++ {
			sumGain += gains[j]
			sumLoss += losses[j]
		}
		n := float64(i - first + 1)
		avgGain := sumGain / n
		avgLoss := sumLoss / n

		if avgLoss == 0 {
			rsi[i] = 50
			continue
		}
		rs := avgGain / avgLoss
		rsi[i] = 100 - 100/(1+rs)
	}
	return rsi
}

// BollingerBands calculates a volatility envelope: a rolling mean plus and
// minus stdMultiplier population standard deviations over period samples.
//
// Positions before the first full window are computed over the available
// prefix, so every output value is finite.
func BollingerBands(series []float64, period int, stdMultiplier float64) (upper, middle, lower []float64) {
	if len(series) == 0 {
		return nil, nil, nil
	}
	if period < 1 {
		period = 1
	}

	upper = make([]float64, len(series))
	middle = make([]float64, len(series))
	lower = make([]float64, len(series))

	for i := range series {
		first := i - period + 1
		if first < 0 {
			first = 0
		}
		n := float64(i - first + 1)

		var sum float64
		for j := first; j <= i; j++ {
			sum += series[j]
		}
		mean := sum / n

		var variance float64
		for j := first; j <= i; j++ {
			d := series[j] - mean
			variance += d * d
		}
		std := math.Sqrt(variance / n)

		middle[i] = mean
		upper[i] = mean + stdMultiplier*std
		lower[i] = mean - stdMultiplier*std
	}
	return upper, middle, lower
}
