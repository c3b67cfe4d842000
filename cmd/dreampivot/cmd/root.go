package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dreampivot/trader/config"
	"github.com/dreampivot/trader/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "dreampivot",
	Short: "A crypto signal generation and trading simulation engine",
	Long: `Dreampivot analyzes crypto markets with technical indicators and
turns them into trade signals, then either paper-trades them live or
replays them over historical data.

It provides tools for:
  - Generating signals from momentum and mean-reversion strategies
  - Backtesting strategies against historical candles
  - Paper trading with live market prices and simulated balances
  - Journaling signals, trades, and portfolio history`,
}

var (
	cfgPath  string
	logLevel string
	logJSON  bool
)

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log JSON instead of console format")
}

// loadConfig reads the config file and applies CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logJSON {
		cfg.Logging.Pretty = false
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Pretty)
}
