package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dreampivot/trader/config"
	"github.com/dreampivot/trader/engine"
	"github.com/dreampivot/trader/exchange"
	"github.com/dreampivot/trader/journal"
	"github.com/dreampivot/trader/market"
	"github.com/dreampivot/trader/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the live trading loop",
	Long: `Run fetches fresh candles on an interval, generates a signal, and
executes it through the configured exchange. With paper mode enabled
(the default) orders fill against simulated balances while prices come
from the real market.

Example:
  dreampivot run --config config.yaml --interval 1h
  dreampivot run --once`,
	RunE: runLive,
}

var (
	runOnce     bool
	runInterval time.Duration
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runOnce, "once", false, "run a single cycle and exit")
	runCmd.Flags().DurationVar(&runInterval, "interval", 0, "cycle interval (overrides config)")
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runInterval > 0 {
		cfg.Trading.Interval = config.Duration(runInterval)
	}
	log := newLogger(cfg)

	strat, err := strategies.New(cfg.Trading.Strategy, cfg.Trading.Params)
	if err != nil {
		return err
	}

	_, quote, err := market.SplitSymbol(cfg.Trading.Symbol)
	if err != nil {
		return err
	}

	ex, err := exchange.New(cfg.Exchange, config.LoadAPIKeys(), quote, log)
	if err != nil {
		return err
	}

	jnl, err := journal.New(cfg.Journal)
	if err != nil {
		return err
	}
	defer jnl.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ex.Connect(ctx); err != nil {
		return fmt.Errorf("connect %s: %w", ex.Name(), err)
	}

	eng := engine.New(cfg.Trading, strat, ex, jnl, log)

	if runOnce {
		sig, err := eng.RunOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s: %s (%.0f%%) %s\n",
			cfg.Trading.Symbol, strat.Name(), sig.Action, sig.Confidence*100, sig.Reason)
		return nil
	}

	err = eng.Run(ctx)
	stats := eng.Stats()
	fmt.Printf("Session: %d cycles, %d signals, %d trades, %d errors\n",
		stats.Cycles, stats.Signals, stats.TradesPlaced, stats.Errors)

	if ctx.Err() != nil {
		// Normal shutdown via signal.
		return nil
	}
	return err
}
