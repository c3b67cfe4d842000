package market

import (
	"fmt"
	"strings"
	"time"
)

// Side is an order direction.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// OrderType distinguishes market and limit orders.
type OrderType string

const (
	Market OrderType = "market"
	Limit  OrderType = "limit"
)

// Ticker is the current price for a symbol.
type Ticker struct {
	Symbol string
	Bid    float64
	Ask    float64
	Last   float64
	Volume float64
	Time   time.Time
}

// Balance is a per-currency account balance. Total = Free + Used.
type Balance struct {
	Currency string
	Free     float64
	Used     float64
	Total    float64
}

// Order is an executed or pending order. Simulated orders are immutable
// once created and always filled synchronously (status "closed").
type Order struct {
	ID     string
	Symbol string
	Side   Side
	Type   OrderType
	Amount float64
	Price  float64
	Status string
	Time   time.Time
}

// SplitSymbol splits a pair like "BTC/USDT" into base and quote currencies.
func SplitSymbol(symbol string) (base, quote string, err error) {
	parts := strings.Split(symbol, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid symbol %q (want BASE/QUOTE)", symbol)
	}
	return parts[0], parts[1], nil
}

// FlattenSymbol converts "BTC/USDT" to the exchange wire form "BTCUSDT".
func FlattenSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}
