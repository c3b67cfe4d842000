package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dreampivot/trader/backtest"
	"github.com/dreampivot/trader/config"
	"github.com/dreampivot/trader/exchange"
	"github.com/dreampivot/trader/market"
	"github.com/dreampivot/trader/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay a strategy over historical candles",
	Long: `Backtest downloads historical candles from the exchange and replays
the strategy against them with simulated balances, fees, and stop-loss
and take-profit exits.

Example:
  dreampivot backtest --symbol BTC/USDT --strategy momentum --days 30
  dreampivot backtest --compare --days 90`,
	RunE: runBacktestCmd,
}

var (
	btSymbol    string
	btStrategy  string
	btTimeframe string
	btDays      int
	btCompare   bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btSymbol, "symbol", "s", "", "trading pair, e.g. BTC/USDT (overrides config)")
	backtestCmd.Flags().StringVar(&btStrategy, "strategy", "", "strategy name (overrides config)")
	backtestCmd.Flags().StringVar(&btTimeframe, "timeframe", "", "candle timeframe (overrides config)")
	backtestCmd.Flags().IntVarP(&btDays, "days", "d", 0, "days of history to replay (overrides config)")
	backtestCmd.Flags().BoolVar(&btCompare, "compare", false, "run every strategy and compare results")
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if btSymbol != "" {
		cfg.Trading.Symbol = btSymbol
	}
	if btStrategy != "" {
		cfg.Trading.Strategy = btStrategy
	}
	if btTimeframe != "" {
		cfg.Trading.Timeframe = btTimeframe
	}
	if btDays > 0 {
		cfg.Backtest.Days = btDays
	}
	log := newLogger(cfg)

	// Candle fetches need no credentials, so always go to the live venue.
	ex := exchange.NewBinance("", "", cfg.Exchange.Testnet, log)

	ctx := cmd.Context()
	limit := cfg.Backtest.Days * candlesPerDay(cfg.Trading.Timeframe)
	series, err := ex.FetchCandles(ctx, cfg.Trading.Symbol, cfg.Trading.Timeframe, limit)
	if err != nil {
		return err
	}
	log.Info().
		Int("candles", len(series)).
		Str("timeframe", cfg.Trading.Timeframe).
		Msg("history loaded")

	names := []string{cfg.Trading.Strategy}
	if btCompare {
		names = []string{"momentum", "mean_reversion"}
	}

	results := make(map[string]backtest.Result, len(names))
	for _, name := range names {
		result, err := runOneBacktest(ctx, cfg, name, series)
		if err != nil {
			return err
		}
		results[name] = result
		fmt.Println(backtest.FormatResult(result))
	}

	if btCompare {
		fmt.Println("Strategy Comparison")
		fmt.Println(strings.Repeat("-", 50))
		for _, name := range names {
			r := results[name]
			fmt.Printf("%-16s PnL %+9.2f (%+.2f%%)  win rate %5.1f%%  drawdown %5.2f%%\n",
				name, r.TotalPnL, r.PnLPercent, r.WinRate, r.MaxDrawdown)
		}
	}
	return nil
}

func runOneBacktest(ctx context.Context, cfg *config.Config, name string, series market.Series) (backtest.Result, error) {
	strat, err := strategies.New(name, cfg.Trading.Params)
	if err != nil {
		return backtest.Result{}, err
	}
	eng := backtest.New(strat, backtest.Config{
		InitialBalance:  cfg.Backtest.InitialBalance,
		PositionSizePct: cfg.Backtest.PositionSizePct,
		FeeRate:         cfg.Backtest.FeeRate,
		StopLossPct:     cfg.Backtest.StopLossPct,
		TakeProfitPct:   cfg.Backtest.TakeProfitPct,
	})
	return eng.Run(series, cfg.Trading.Symbol)
}

// candlesPerDay maps a timeframe to how many candles make up one day.
func candlesPerDay(timeframe string) int {
	switch timeframe {
	case "1m":
		return 1440
	case "5m":
		return 288
	case "15m":
		return 96
	case "30m":
		return 48
	case "1h":
		return 24
	case "4h":
		return 6
	case "1d":
		return 1
	default:
		return 24
	}
}
