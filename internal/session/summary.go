package session

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the end-of-run valuation of a session. An open position is
// valued at the last known price; it is never auto-liquidated.
type Summary struct {
	InitialInvestment decimal.Decimal
	CashBalance       decimal.Decimal
	CoinHoldings      decimal.Decimal
	HasPosition       bool

	LastPrice    decimal.Decimal
	HasLastPrice bool

	// PositionValue and the unrealized figures are zero unless a position
	// is open and at least one price was ever recorded.
	PositionValue   decimal.Decimal
	UnrealizedPL    decimal.Decimal
	UnrealizedPLPct decimal.Decimal

	FinalValue decimal.Decimal
	TotalPL    decimal.Decimal
	TotalPLPct decimal.Decimal

	TotalTrades      int
	ProfitableTrades int
	WinRatePct       decimal.Decimal

	Elapsed time.Duration
}

// Summarize computes the final portfolio valuation. Degenerate ratios (zero
// investment, zero trades) report as 0% rather than propagating an undefined
// value.
func (s *Session) Summarize(now time.Time) Summary {
	sum := Summary{
		InitialInvestment: s.initialInvestment,
		CashBalance:       s.cashBalance,
		CoinHoldings:      s.coinHoldings,
		HasPosition:       s.hasPosition,
		LastPrice:         s.lastKnownPrice,
		HasLastPrice:      s.hasLastPrice,
		TotalTrades:       s.totalTrades,
		ProfitableTrades:  s.profitableTrades,
		Elapsed:           now.Sub(s.startTime),
	}

	sum.FinalValue = s.cashBalance
	if s.hasPosition && s.hasLastPrice {
		sum.PositionValue = s.positionCost.Mul(s.lastKnownPrice).Div(s.buyPrice)
		sum.UnrealizedPL = sum.PositionValue.Sub(s.positionCost)
		if s.positionCost.IsPositive() {
			sum.UnrealizedPLPct = sum.UnrealizedPL.Div(s.positionCost).Mul(hundred)
		}
		sum.FinalValue = s.cashBalance.Add(sum.PositionValue)
	}

	sum.TotalPL = sum.FinalValue.Sub(s.initialInvestment)
	if s.initialInvestment.IsPositive() {
		sum.TotalPLPct = sum.TotalPL.Div(s.initialInvestment).Mul(hundred)
	}
	if s.totalTrades > 0 {
		sum.WinRatePct = decimal.NewFromInt(int64(s.profitableTrades)).
			Div(decimal.NewFromInt(int64(s.totalTrades))).Mul(hundred)
	}
	return sum
}
