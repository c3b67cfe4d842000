// Package config loads the trading configuration from YAML and API
// credentials from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dreampivot/trader/strategies"
)

// Config is the complete application configuration.
type Config struct {
	Trading  TradingConfig  `yaml:"trading"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Backtest BacktestConfig `yaml:"backtest"`
	Journal  JournalConfig  `yaml:"journal"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Duration wraps time.Duration so YAML can carry values like "15m".
type Duration time.Duration

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("bad duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// TradingConfig selects the symbol, strategy, and risk appetite.
type TradingConfig struct {
	Symbol    string            `yaml:"symbol"`
	Timeframe string            `yaml:"timeframe"`
	Strategy  string            `yaml:"strategy"`
	RiskLevel int               `yaml:"risk_level"` // 1 (cautious) to 10 (aggressive)
	Interval  Duration          `yaml:"interval"`   // live loop cadence
	Params    strategies.Params `yaml:"params"`
}

// ExchangeConfig selects the venue. Paper mode simulates execution
// locally while still reading live prices.
type ExchangeConfig struct {
	Name           string  `yaml:"name"`
	Testnet        bool    `yaml:"testnet"`
	Paper          bool    `yaml:"paper"`
	InitialBalance float64 `yaml:"initial_balance"` // paper funding, quote currency
	FeeRate        float64 `yaml:"fee_rate"`
}

// BacktestConfig holds the historical simulation parameters.
type BacktestConfig struct {
	InitialBalance  float64 `yaml:"initial_balance"`
	PositionSizePct float64 `yaml:"position_size_pct"`
	FeeRate         float64 `yaml:"fee_rate"`
	StopLossPct     float64 `yaml:"stop_loss_pct"`
	TakeProfitPct   float64 `yaml:"take_profit_pct"`
	Days            int     `yaml:"days"`
}

// JournalConfig selects where signals and trades are recorded.
type JournalConfig struct {
	Type   string `yaml:"type"` // "sqlite", "jsonl", or "none"
	DBPath string `yaml:"db_path,omitempty"`
	Dir    string `yaml:"dir,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// APIKeys are exchange credentials, loaded from the environment rather
// than the config file so they never land in version control.
type APIKeys struct {
	Key    string
	Secret string
}

// Default returns the configuration used when no file is given. File
// values overlay these, so a partial config file is valid.
func Default() *Config {
	return &Config{
		Trading: TradingConfig{
			Symbol:    "BTC/USDT",
			Timeframe: "1h",
			Strategy:  "momentum",
			RiskLevel: 5,
			Interval:  Duration(time.Hour),
		},
		Exchange: ExchangeConfig{
			Name:           "binance",
			Paper:          true,
			InitialBalance: 10000,
			FeeRate:        0.001,
		},
		Backtest: BacktestConfig{
			InitialBalance:  10000,
			PositionSizePct: 0.03,
			FeeRate:         0.001,
			StopLossPct:     0.02,
			TakeProfitPct:   0.04,
			Days:            30,
		},
		Journal: JournalConfig{
			Type: "jsonl",
			Dir:  "data",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the cross-field constraints a YAML parse cannot.
func (c *Config) Validate() error {
	if c.Trading.Symbol == "" {
		return fmt.Errorf("trading.symbol is required")
	}
	if c.Trading.RiskLevel < 1 || c.Trading.RiskLevel > 10 {
		return fmt.Errorf("trading.risk_level must be 1-10, got %d", c.Trading.RiskLevel)
	}
	switch c.Trading.Strategy {
	case "momentum", "mean_reversion", "meanreversion", "mean-reversion":
	default:
		return fmt.Errorf("unknown strategy %q", c.Trading.Strategy)
	}
	if c.Exchange.FeeRate < 0 || c.Exchange.FeeRate >= 1 {
		return fmt.Errorf("exchange.fee_rate must be in [0, 1), got %g", c.Exchange.FeeRate)
	}
	if c.Backtest.PositionSizePct <= 0 || c.Backtest.PositionSizePct > 1 {
		return fmt.Errorf("backtest.position_size_pct must be in (0, 1], got %g", c.Backtest.PositionSizePct)
	}
	switch c.Journal.Type {
	case "sqlite", "jsonl", "none", "":
	default:
		return fmt.Errorf("journal.type must be sqlite, jsonl, or none, got %q", c.Journal.Type)
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path required for sqlite journal")
	}
	return nil
}

// LoadAPIKeys reads exchange credentials from the environment, merging in
// a .env file when one exists in the working directory. Missing keys are
// not an error; paper trading needs none.
func LoadAPIKeys() APIKeys {
	_ = godotenv.Load()
	return APIKeys{
		Key:    os.Getenv("EXCHANGE_API_KEY"),
		Secret: os.Getenv("EXCHANGE_API_SECRET"),
	}
}
