package exchange

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dreampivot/trader/config"
)

// New builds the exchange selected by the configuration. In paper mode
// the live venue still serves as the price source, so paper trading sees
// real market data while orders fill against the simulated balances. The
// paper account is funded with the initial balance in the quote currency.
func New(cfg config.ExchangeConfig, keys config.APIKeys, quote string, log zerolog.Logger) (Exchange, error) {
	var live Exchange
	switch cfg.Name {
	case "", "binance":
		live = NewBinance(keys.Key, keys.Secret, cfg.Testnet, log)
	default:
		return nil, fmt.Errorf("unknown exchange %q", cfg.Name)
	}

	if !cfg.Paper {
		return live, nil
	}

	initial := map[string]float64{quote: cfg.InitialBalance}
	return NewPaper(initial, cfg.FeeRate, live, log), nil
}
