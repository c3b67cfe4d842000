// Package exchange abstracts the market venue behind a single interface
// with a live Binance implementation and a paper-trading simulator.
package exchange

import (
	"context"
	"errors"

	"github.com/dreampivot/trader/market"
)

// ErrInsufficientBalance is returned by CreateOrder when the account
// cannot cover the order plus fees. Balances are left untouched.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Exchange is the market venue used by the engines. Symbols are in
// "BASE/QUOTE" form; implementations translate to their wire format.
type Exchange interface {
	// Name identifies the venue ("binance", "paper").
	Name() string

	// Connect verifies connectivity. It must be called before any other
	// method on a live exchange; the paper exchange accepts it as a no-op.
	Connect(ctx context.Context) error

	// FetchCandles returns up to limit of the most recent candles for the
	// symbol at the given timeframe ("1m", "1h", "4h", "1d"), oldest first.
	FetchCandles(ctx context.Context, symbol, timeframe string, limit int) (market.Series, error)

	// FetchTicker returns the current price snapshot for the symbol.
	FetchTicker(ctx context.Context, symbol string) (market.Ticker, error)

	// FetchBalances returns all non-zero account balances keyed by currency.
	FetchBalances(ctx context.Context) (map[string]market.Balance, error)

	// CreateOrder places an order. Market orders ignore price and fill at
	// the venue's current price. The returned order reflects the fill.
	CreateOrder(ctx context.Context, symbol string, side market.Side, orderType market.OrderType, amount, price float64) (market.Order, error)

	// CancelOrder cancels an open order, reporting whether anything was
	// actually cancelled.
	CancelOrder(ctx context.Context, id, symbol string) (bool, error)
}
