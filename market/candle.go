// Package market defines the value types shared across the engine:
// candles, tickers, balances, and orders.
package market

import "time"

// Candle represents OHLCV (Open, High, Low, Close, Volume) candlestick data
// for one time interval. Candles are immutable once produced.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is an ordered sequence of candles for one symbol, oldest first,
// with strictly increasing timestamps.
type Series []Candle

// Closes returns the close prices of the series as a flat slice.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, c := range s {
		closes[i] = c.Close
	}
	return closes
}

// Last returns the most recent candle. It panics on an empty series;
// callers are expected to check length first.
func (s Series) Last() Candle {
	return s[len(s)-1]
}
