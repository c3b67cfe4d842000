package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSymbol(t *testing.T) {
	base, quote, err := SplitSymbol("BTC/USDT")
	assert.NoError(t, err)
	assert.Equal(t, "BTC", base)
	assert.Equal(t, "USDT", quote)
}

func TestSplitSymbolRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"", "BTCUSDT", "BTC/", "/USDT", "A/B/C"} {
		_, _, err := SplitSymbol(bad)
		assert.Error(t, err, "symbol %q", bad)
	}
}

func TestFlattenSymbol(t *testing.T) {
	assert.Equal(t, "BTCUSDT", FlattenSymbol("BTC/USDT"))
	assert.Equal(t, "ETHBTC", FlattenSymbol("ETH/BTC"))
}

func TestSeriesCloses(t *testing.T) {
	series := Series{
		{Close: 100},
		{Close: 101.5},
		{Close: 99},
	}
	assert.Equal(t, []float64{100, 101.5, 99}, series.Closes())
	assert.Equal(t, 99.0, series.Last().Close)
}
