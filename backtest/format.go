package backtest

import (
	"fmt"
	"strings"
)

// FormatResult renders a result as a human-readable report for the CLI.
func FormatResult(r Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Backtest Results: %s\n", r.Symbol)
	fmt.Fprintf(&b, "Period: %s to %s\n", r.Start.Format("2006-01-02 15:04"), r.End.Format("2006-01-02 15:04"))
	b.WriteString(strings.Repeat("-", 50) + "\n")
	fmt.Fprintf(&b, "Initial Balance:  %12.2f\n", r.InitialBalance)
	fmt.Fprintf(&b, "Final Balance:    %12.2f\n", r.FinalBalance)
	fmt.Fprintf(&b, "Total PnL:        %12.2f (%+.2f%%)\n", r.TotalPnL, r.PnLPercent)
	fmt.Fprintf(&b, "Total Trades:     %12d\n", r.TotalTrades)
	fmt.Fprintf(&b, "Winning Trades:   %12d\n", r.WinningTrades)
	fmt.Fprintf(&b, "Losing Trades:    %12d\n", r.LosingTrades)
	fmt.Fprintf(&b, "Stop-Loss Exits:  %12d\n", r.StopLossExits)
	fmt.Fprintf(&b, "Take-Profit Exits:%12d\n", r.TakeProfitExits)
	fmt.Fprintf(&b, "Win Rate:         %11.1f%%\n", r.WinRate)
	fmt.Fprintf(&b, "Max Drawdown:     %11.2f%%\n", r.MaxDrawdown)

	return b.String()
}
