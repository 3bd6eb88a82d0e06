package report

import (
	"fmt"
	"io"
	"strings"

	"tradesim/internal/session"
)

// Render writes the end-of-run summary as plain text. It reads only the
// Summary; the session itself is done mutating by the time this runs.
func Render(w io.Writer, sum session.Summary) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "FINAL TRADING SUMMARY")
	fmt.Fprintln(w, rule)

	if sum.HasPosition && sum.HasLastPrice {
		fmt.Fprintf(w, "Cash balance:      $%s\n", sum.CashBalance.StringFixed(2))
		fmt.Fprintf(w, "Coin holdings:     %s @ $%s\n", sum.CoinHoldings.StringFixed(2), sum.LastPrice.StringFixed(8))
		fmt.Fprintf(w, "Position value:    $%s\n", sum.PositionValue.StringFixed(2))
		fmt.Fprintf(w, "Unrealized P&L:    $%s (%s%%)\n", sum.UnrealizedPL.StringFixed(2), signed(sum.UnrealizedPLPct.StringFixed(2)))
	} else if sum.HasPosition {
		fmt.Fprintf(w, "Cash balance:      $%s\n", sum.CashBalance.StringFixed(2))
		fmt.Fprintf(w, "Coin holdings:     %s (no price available for valuation)\n", sum.CoinHoldings.StringFixed(2))
	}

	fmt.Fprintf(w, "Initial investment: $%s\n", sum.InitialInvestment.StringFixed(2))
	fmt.Fprintf(w, "Final value:        $%s\n", sum.FinalValue.StringFixed(2))
	fmt.Fprintf(w, "Total P&L:          $%s (%s%%)\n", sum.TotalPL.StringFixed(2), signed(sum.TotalPLPct.StringFixed(2)))
	fmt.Fprintf(w, "Trades:             %d (%d profitable)\n", sum.TotalTrades, sum.ProfitableTrades)
	fmt.Fprintf(w, "Win rate:           %s%%\n", sum.WinRatePct.StringFixed(1))
	fmt.Fprintf(w, "Runtime:            %.1f minutes\n", sum.Elapsed.Minutes())

	switch {
	case sum.TotalPL.IsPositive():
		fmt.Fprintln(w, "Overall: PROFIT")
	case sum.TotalPL.IsNegative():
		fmt.Fprintln(w, "Overall: LOSS")
	default:
		fmt.Fprintln(w, "Overall: BREAK EVEN")
	}
	fmt.Fprintln(w, rule)
}

// signed prefixes a "+" on non-negative percentages so gains read as gains.
func signed(s string) string {
	if strings.HasPrefix(s, "-") {
		return s
	}
	return "+" + s
}
