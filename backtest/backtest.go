// Package backtest replays a strategy over historical candles and measures
// how it would have performed.
package backtest

import (
	"fmt"
	"strings"
	"time"

	"github.com/dreampivot/trader/market"
	"github.com/dreampivot/trader/risk"
	"github.com/dreampivot/trader/strategies"
)

// Config holds the simulation parameters. Zero values select defaults.
type Config struct {
	InitialBalance  float64 // starting quote balance (default 10000)
	PositionSizePct float64 // fraction of balance per trade (default 0.03)
	FeeRate         float64 // taker fee rate (default 0.001)
	StopLossPct     float64 // exit below entry (default 0.02)
	TakeProfitPct   float64 // exit above entry (default 0.04)
}

func (c Config) withDefaults() Config {
	if c.InitialBalance <= 0 {
		c.InitialBalance = 10000
	}
	if c.PositionSizePct <= 0 {
		c.PositionSizePct = 0.03
	}
	if c.FeeRate < 0 {
		c.FeeRate = 0
	}
	if c.FeeRate == 0 {
		c.FeeRate = 0.001
	}
	if c.StopLossPct <= 0 {
		c.StopLossPct = 0.02
	}
	if c.TakeProfitPct <= 0 {
		c.TakeProfitPct = 0.04
	}
	return c
}

// Trade is one entry in the simulated trade ledger.
type Trade struct {
	Time   time.Time
	Symbol string
	Side   market.Side
	Price  float64
	Amount float64
	Value  float64
	Reason string
}

// Result aggregates the outcome of a backtest run. It is computed once at
// the end of the run and is read-only.
type Result struct {
	Symbol          string
	Start           time.Time
	End             time.Time
	InitialBalance  float64
	FinalBalance    float64
	TotalTrades     int
	WinningTrades   int
	LosingTrades    int
	StopLossExits   int
	TakeProfitExits int
	TotalPnL        float64
	PnLPercent      float64
	MaxDrawdown     float64 // percent of peak
	WinRate         float64 // percent of sells
	Trades          []Trade
}

// Engine walks a historical series candle-by-candle, consults the strategy,
// and mutates a simulated balance and position under fee, stop-loss, and
// take-profit rules.
//
// An Engine is stateless between Run calls; each call owns its own balance,
// position, and ledger, so distinct symbols may run in parallel on separate
// calls.
type Engine struct {
	strategy strategies.Strategy
	cfg      Config
}

// New creates a backtest engine for the given strategy.
func New(strategy strategies.Strategy, cfg Config) *Engine {
	return &Engine{strategy: strategy, cfg: cfg.withDefaults()}
}

// Run replays the series and returns the performance result. It fails when
// the series is shorter than the strategy's required history.
func (e *Engine) Run(series market.Series, symbol string) (Result, error) {
	need := e.strategy.RequiredHistory()
	if len(series) < need {
		return Result{}, fmt.Errorf("backtest %s: need at least %d candles, got %d", symbol, need, len(series))
	}

	balance := e.cfg.InitialBalance
	position := 0.0 // base units held; > 0 iff entryPrice > 0
	entryPrice := 0.0
	var levels risk.Levels
	var trades []Trade
	valueCurve := []float64{balance}

	for i := need; i < len(series); i++ {
		candle := series[i]

		// Exit checks come first: stop-loss against the low, then
		// take-profit against the high.
		if position > 0 && entryPrice > 0 {
			if price, reason, hit := levels.CheckExit(candle); hit {
				value := position * price
				fee := value * e.cfg.FeeRate
				balance += value - fee

				trades = append(trades, Trade{
					Time:   candle.Time,
					Symbol: symbol,
					Side:   market.Sell,
					Price:  price,
					Amount: position,
					Value:  value,
					Reason: exitReasonText(reason, e.cfg),
				})
				position = 0
				entryPrice = 0
			}
		}

		signal := e.strategy.Analyze(series[:i+1], symbol)

		switch {
		case signal.Action == strategies.Buy && position == 0:
			size := risk.PositionSize(balance, e.cfg.PositionSizePct, e.cfg.FeeRate, candle.Close)
			position = size.Amount
			entryPrice = candle.Close
			levels = risk.LevelsFor(entryPrice, e.cfg.StopLossPct, e.cfg.TakeProfitPct)
			balance -= size.Value

			trades = append(trades, Trade{
				Time:   candle.Time,
				Symbol: symbol,
				Side:   market.Buy,
				Price:  candle.Close,
				Amount: size.Amount,
				Value:  size.Value,
				Reason: signal.Reason,
			})

		case signal.Action == strategies.Sell && position > 0:
			value := position * candle.Close
			fee := value * e.cfg.FeeRate
			balance += value - fee

			trades = append(trades, Trade{
				Time:   candle.Time,
				Symbol: symbol,
				Side:   market.Sell,
				Price:  candle.Close,
				Amount: position,
				Value:  value,
				Reason: signal.Reason,
			})
			position = 0
			entryPrice = 0
		}

		// Mark-to-market total value for the drawdown curve.
		valueCurve = append(valueCurve, balance+position*candle.Close)
	}

	// Force-close anything still open at the final close price. The exit
	// is reflected in the final balance but not recorded as a trade.
	if position > 0 {
		value := position * series.Last().Close
		fee := value * e.cfg.FeeRate
		balance += value - fee
	}

	return e.result(symbol, series, balance, trades, valueCurve), nil
}

func (e *Engine) result(symbol string, series market.Series, finalBalance float64, trades []Trade, valueCurve []float64) Result {
	totalPnL := finalBalance - e.cfg.InitialBalance
	pnlPercent := totalPnL / e.cfg.InitialBalance * 100

	// Win/loss pairing is positional: the i-th sell against the i-th buy.
	// With the flat-only position model this is exactly causal pairing.
	var buys, sells []Trade
	stopExits, takeExits := 0, 0
	for _, t := range trades {
		if t.Side == market.Buy {
			buys = append(buys, t)
			continue
		}
		sells = append(sells, t)
		switch {
		case strings.HasPrefix(t.Reason, "Stop-loss hit"):
			stopExits++
		case strings.HasPrefix(t.Reason, "Take-profit hit"):
			takeExits++
		}
	}
	winning, losing := 0, 0
	for i, sell := range sells {
		if i >= len(buys) {
			break
		}
		if sell.Price > buys[i].Price {
			winning++
		} else {
			losing++
		}
	}

	maxDrawdown := 0.0
	peak := valueCurve[0]
	for _, v := range valueCurve {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > maxDrawdown {
				maxDrawdown = dd
			}
		}
	}

	winRate := 0.0
	if len(sells) > 0 {
		winRate = float64(winning) / float64(len(sells)) * 100
	}

	return Result{
		Symbol:          symbol,
		Start:           series[0].Time,
		End:             series.Last().Time,
		InitialBalance:  e.cfg.InitialBalance,
		FinalBalance:    finalBalance,
		TotalTrades:     len(trades),
		WinningTrades:   winning,
		LosingTrades:    losing,
		StopLossExits:   stopExits,
		TakeProfitExits: takeExits,
		TotalPnL:        totalPnL,
		PnLPercent:      pnlPercent,
		MaxDrawdown:     maxDrawdown * 100,
		WinRate:         winRate,
		Trades:          trades,
	}
}

func exitReasonText(reason risk.ExitReason, cfg Config) string {
	if reason == risk.ExitStopLoss {
		return fmt.Sprintf("Stop-loss hit (%.1f%%)", cfg.StopLossPct*100)
	}
	return fmt.Sprintf("Take-profit hit (%.1f%%)", cfg.TakeProfitPct*100)
}
