// Package engine runs the live trading loop: fetch candles, consult the
// strategy, gate on confidence, execute through the exchange, and journal
// everything.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dreampivot/trader/config"
	"github.com/dreampivot/trader/exchange"
	"github.com/dreampivot/trader/internal/id"
	"github.com/dreampivot/trader/journal"
	"github.com/dreampivot/trader/market"
	"github.com/dreampivot/trader/risk"
	"github.com/dreampivot/trader/strategies"
)

// retryDelay is how long the loop waits after a failed cycle before the
// next attempt, regardless of the configured interval.
const retryDelay = 10 * time.Second

// Stats counts engine activity for the session.
type Stats struct {
	Cycles       int
	Signals      int
	TradesPlaced int
	Errors       int
}

// Engine drives one symbol and one strategy against an exchange.
// All methods are safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	cfg      config.TradingConfig
	strategy strategies.Strategy
	exchange exchange.Exchange
	journal  journal.Journal
	log      zerolog.Logger
	stats    Stats

	minConfidence float64
	riskFraction  float64
}

// New wires an engine from its collaborators. The risk level in the
// trading config decides both position sizing and the confidence gate.
func New(cfg config.TradingConfig, strat strategies.Strategy, ex exchange.Exchange, jnl journal.Journal, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:           cfg,
		strategy:      strat,
		exchange:      ex,
		journal:       jnl,
		log:           log.With().Str("symbol", cfg.Symbol).Str("strategy", strat.Name()).Logger(),
		minConfidence: risk.MinConfidence(cfg.RiskLevel),
		riskFraction:  risk.FractionForLevel(cfg.RiskLevel),
	}
}

// Stats returns a snapshot of the session counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Run executes cycles at the configured interval until the context is
// cancelled. A failed cycle is logged and retried after a short delay
// instead of aborting the loop.
func (e *Engine) Run(ctx context.Context) error {
	interval := time.Duration(e.cfg.Interval)
	if interval <= 0 {
		interval = time.Hour
	}
	e.log.Info().Dur("interval", interval).Msg("engine started")

	for {
		delay := interval
		if _, err := e.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.log.Error().Err(err).Msg("cycle failed")
			delay = retryDelay
		}

		select {
		case <-ctx.Done():
			e.log.Info().Msg("engine stopped")
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// RunOnce performs a single cycle and returns the signal it acted on.
func (e *Engine) RunOnce(ctx context.Context) (strategies.TradeSignal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stats.Cycles++

	limit := e.strategy.RequiredHistory() + 50
	series, err := e.exchange.FetchCandles(ctx, e.cfg.Symbol, e.cfg.Timeframe, limit)
	if err != nil {
		e.stats.Errors++
		return strategies.TradeSignal{}, fmt.Errorf("fetch candles: %w", err)
	}
	if len(series) == 0 {
		e.stats.Errors++
		return strategies.TradeSignal{}, fmt.Errorf("no candles for %s", e.cfg.Symbol)
	}

	signal := e.strategy.Analyze(series, e.cfg.Symbol)
	price := series.Last().Close
	e.stats.Signals++

	e.log.Info().
		Str("action", string(signal.Action)).
		Float64("confidence", signal.Confidence).
		Float64("price", price).
		Str("reason", signal.Reason).
		Msg("signal")

	if err := e.journal.RecordSignal(journal.SignalRecord{
		ID:         id.New(),
		Time:       time.Now().UTC(),
		Symbol:     e.cfg.Symbol,
		Strategy:   e.strategy.Name(),
		Action:     string(signal.Action),
		Confidence: signal.Confidence,
		Reason:     signal.Reason,
		Price:      price,
	}); err != nil {
		e.log.Warn().Err(err).Msg("journal signal failed")
	}

	if signal.Action == strategies.Hold {
		return signal, nil
	}
	if signal.Confidence < e.minConfidence {
		e.log.Debug().
			Float64("confidence", signal.Confidence).
			Float64("required", e.minConfidence).
			Msg("signal below confidence gate")
		return signal, nil
	}

	if err := e.execute(ctx, signal, price); err != nil {
		e.stats.Errors++
		return signal, err
	}

	e.snapshotPortfolio(ctx, price)
	return signal, nil
}

// execute turns an actionable signal into a market order. Buys are sized
// from the free quote balance; sells liquidate the full base position.
func (e *Engine) execute(ctx context.Context, signal strategies.TradeSignal, price float64) error {
	base, quote, err := market.SplitSymbol(e.cfg.Symbol)
	if err != nil {
		return err
	}

	balances, err := e.exchange.FetchBalances(ctx)
	if err != nil {
		return fmt.Errorf("fetch balances: %w", err)
	}

	var amount float64
	switch signal.Action {
	case strategies.Buy:
		free := balances[quote].Free
		size := risk.PositionSize(free, e.riskFraction, 0, price)
		if size.Amount <= 0 {
			e.log.Warn().Float64("free", free).Msg("nothing to buy with")
			return nil
		}
		amount = size.Amount
	case strategies.Sell:
		amount = balances[base].Free
		if amount <= 0 {
			e.log.Debug().Msg("no position to sell")
			return nil
		}
	}

	side := market.Side(signal.Action)
	order, err := e.exchange.CreateOrder(ctx, e.cfg.Symbol, side, market.Market, amount, price)
	if err != nil {
		return fmt.Errorf("place %s order: %w", side, err)
	}
	e.stats.TradesPlaced++

	e.log.Info().
		Str("order_id", order.ID).
		Str("side", string(order.Side)).
		Float64("amount", order.Amount).
		Float64("price", order.Price).
		Msg("order executed")

	if err := e.journal.RecordTrade(journal.TradeRecord{
		ID:     order.ID,
		Time:   order.Time,
		Symbol: order.Symbol,
		Side:   string(order.Side),
		Amount: order.Amount,
		Price:  order.Price,
		Value:  order.Amount * order.Price,
		Reason: signal.Reason,
	}); err != nil {
		e.log.Warn().Err(err).Msg("journal trade failed")
	}
	return nil
}

// snapshotPortfolio records the account value after a trade. Failures
// are logged, not returned; a missing snapshot should not stop trading.
func (e *Engine) snapshotPortfolio(ctx context.Context, price float64) {
	base, quote, err := market.SplitSymbol(e.cfg.Symbol)
	if err != nil {
		return
	}
	balances, err := e.exchange.FetchBalances(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("portfolio snapshot failed")
		return
	}

	flat := make(map[string]float64, len(balances))
	total := 0.0
	for cur, b := range balances {
		flat[cur] = b.Total
		switch cur {
		case quote:
			total += b.Total
		case base:
			total += b.Total * price
		}
	}

	if err := e.journal.RecordPortfolio(journal.PortfolioSnapshot{
		Time:       time.Now().UTC(),
		TotalValue: total,
		Balances:   flat,
	}); err != nil {
		e.log.Warn().Err(err).Msg("journal portfolio failed")
	}
}
