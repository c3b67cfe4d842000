package exchange

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dreampivot/trader/internal/id"
	"github.com/dreampivot/trader/market"
)

// Paper simulates order execution against a local balance sheet while
// optionally reading real prices from a backing exchange. All orders fill
// instantly at the requested or current price and close synchronously.
//
// Paper is safe for concurrent use.
type Paper struct {
	mu       sync.Mutex
	balances map[string]float64
	orders   []market.Order
	stats    Stats
	feeRate  float64
	prices   PriceSource
	log      zerolog.Logger
}

// Stats are cumulative fill statistics for a paper session.
type Stats struct {
	Orders    int
	Buys      int
	Sells     int
	Volume    float64 // total traded value in quote currency
	TotalFees float64
}

// PriceSource supplies current prices for market orders placed without an
// explicit price. A live exchange satisfies it directly.
type PriceSource interface {
	FetchTicker(ctx context.Context, symbol string) (market.Ticker, error)
}

// NewPaper creates a paper exchange funded with initial balances
// (currency to amount). The price source may be nil, in which case market
// orders must carry an explicit price.
func NewPaper(initial map[string]float64, feeRate float64, prices PriceSource, log zerolog.Logger) *Paper {
	balances := make(map[string]float64, len(initial))
	for cur, amt := range initial {
		balances[cur] = amt
	}
	return &Paper{
		balances: balances,
		feeRate:  feeRate,
		prices:   prices,
		log:      log.With().Str("exchange", "paper").Logger(),
	}
}

func (p *Paper) Name() string { return "paper" }

// Connect is a no-op; the paper exchange is always available.
func (p *Paper) Connect(ctx context.Context) error { return nil }

// FetchCandles delegates to the price source when one is configured.
func (p *Paper) FetchCandles(ctx context.Context, symbol, timeframe string, limit int) (market.Series, error) {
	src, ok := p.prices.(interface {
		FetchCandles(ctx context.Context, symbol, timeframe string, limit int) (market.Series, error)
	})
	if !ok {
		return nil, fmt.Errorf("paper exchange has no candle source")
	}
	return src.FetchCandles(ctx, symbol, timeframe, limit)
}

// FetchTicker delegates to the price source.
func (p *Paper) FetchTicker(ctx context.Context, symbol string) (market.Ticker, error) {
	if p.prices == nil {
		return market.Ticker{}, fmt.Errorf("paper exchange has no price source")
	}
	return p.prices.FetchTicker(ctx, symbol)
}

// FetchBalances returns a snapshot of the simulated balances. All funds
// are free; the simulator holds nothing in open orders.
func (p *Paper) FetchBalances(ctx context.Context) (map[string]market.Balance, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]market.Balance, len(p.balances))
	for cur, amt := range p.balances {
		out[cur] = market.Balance{Currency: cur, Free: amt, Used: 0, Total: amt}
	}
	return out, nil
}

// CreateOrder fills the order against the simulated balances. A buy moves
// cost plus fee out of the quote currency and the bought amount into the
// base currency; a sell is the reverse with the fee taken from proceeds.
// When the account cannot cover the order, ErrInsufficientBalance is
// returned and no balance changes.
func (p *Paper) CreateOrder(ctx context.Context, symbol string, side market.Side, orderType market.OrderType, amount, price float64) (market.Order, error) {
	base, quote, err := market.SplitSymbol(symbol)
	if err != nil {
		return market.Order{}, err
	}
	if amount <= 0 {
		return market.Order{}, fmt.Errorf("order amount must be positive, got %g", amount)
	}

	if price <= 0 {
		ticker, err := p.FetchTicker(ctx, symbol)
		if err != nil {
			return market.Order{}, fmt.Errorf("price for %s: %w", symbol, err)
		}
		price = ticker.Last
	}

	cost := amount * price
	fee := cost * p.feeRate

	p.mu.Lock()
	defer p.mu.Unlock()

	// Validate before mutating so a rejected order leaves no trace.
	switch side {
	case market.Buy:
		if p.balances[quote] < cost+fee {
			return market.Order{}, fmt.Errorf("%w: need %.2f %s, have %.2f", ErrInsufficientBalance, cost+fee, quote, p.balances[quote])
		}
		p.balances[quote] -= cost + fee
		p.balances[base] += amount
	case market.Sell:
		if p.balances[base] < amount {
			return market.Order{}, fmt.Errorf("%w: need %g %s, have %g", ErrInsufficientBalance, amount, base, p.balances[base])
		}
		p.balances[base] -= amount
		p.balances[quote] += cost - fee
	default:
		return market.Order{}, fmt.Errorf("unknown order side %q", side)
	}

	// Float subtraction can leave a tiny negative residue.
	if p.balances[base] < 0 {
		p.balances[base] = 0
	}
	if p.balances[quote] < 0 {
		p.balances[quote] = 0
	}

	p.stats.Orders++
	if side == market.Buy {
		p.stats.Buys++
	} else {
		p.stats.Sells++
	}
	p.stats.Volume += cost
	p.stats.TotalFees += fee

	order := market.Order{
		ID:     id.New(),
		Symbol: symbol,
		Side:   side,
		Type:   orderType,
		Amount: amount,
		Price:  price,
		Status: "closed",
		Time:   time.Now().UTC(),
	}
	p.orders = append(p.orders, order)

	p.log.Info().
		Str("symbol", symbol).
		Str("side", string(side)).
		Float64("amount", amount).
		Float64("price", price).
		Float64("fee", fee).
		Msg("paper order filled")

	return order, nil
}

// CancelOrder always reports false: every simulated order fills on
// creation, so there is never anything to cancel.
func (p *Paper) CancelOrder(ctx context.Context, orderID, symbol string) (bool, error) {
	return false, nil
}

// TradeHistory returns all filled orders, optionally filtered by symbol
// (empty matches everything).
func (p *Paper) TradeHistory(symbol string) []market.Order {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]market.Order, 0, len(p.orders))
	for _, o := range p.orders {
		if symbol == "" || o.Symbol == symbol {
			out = append(out, o)
		}
	}
	return out
}

// Stats returns the cumulative fill statistics so far.
func (p *Paper) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// PortfolioValue sums the balances converted into a single quote currency
// using the given prices (currency to quote price; the quote currency
// itself counts at 1).
func (p *Paper) PortfolioValue(prices map[string]float64, quote string) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := 0.0
	for cur, amt := range p.balances {
		if cur == quote {
			total += amt
			continue
		}
		total += amt * prices[cur]
	}
	return total
}
