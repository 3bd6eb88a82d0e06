package strategy

import "github.com/shopspring/decimal"

// ReasonInitial labels the unconditional first buy of a session. There is no
// prior sell or buy price to compare against, so it bypasses the entry
// thresholds entirely.
const ReasonInitial = "initial"

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Rules holds the fixed entry/exit thresholds, each a fraction of the
// reference price (0.05 = 5%). Thresholds are inclusive.
type Rules struct {
	StopLoss     decimal.Decimal // exit when price falls this far below the buy price
	TakeProfit   decimal.Decimal // exit when price rises this far above the buy price
	RecoveryRise decimal.Decimal // re-enter when price rises this far above the last sell
	ReinvestFall decimal.Decimal // re-enter when price falls this far below the last buy
}

func DefaultRules() Rules {
	return Rules{
		StopLoss:     decimal.NewFromFloat(0.05),
		TakeProfit:   decimal.NewFromFloat(0.10),
		RecoveryRise: decimal.NewFromFloat(0.03),
		ReinvestFall: decimal.NewFromFloat(0.10),
	}
}

// Decide maps one tick snapshot to a trade intent. First matching rule wins;
// comparisons use the multiplicative form (price vs buy*(1-stop)) so no
// division rounding can flip an inclusive threshold.
func (r Rules) Decide(s TickSnapshot) TradeIntent {
	if s.HasPosition {
		if s.Price.Cmp(s.BuyPrice.Mul(one.Sub(r.StopLoss))) <= 0 {
			return TradeIntent{Action: Sell, Reason: r.stopLossReason()}
		}
		if s.Price.Cmp(s.BuyPrice.Mul(one.Add(r.TakeProfit))) >= 0 {
			return TradeIntent{Action: Sell, Reason: r.takeProfitReason()}
		}
		return TradeIntent{Action: Hold, Reason: "within thresholds"}
	}

	if !s.CashBalance.IsPositive() {
		return TradeIntent{Action: Hold, Reason: "no funds"}
	}
	if s.TradeCount == 0 {
		return TradeIntent{Action: Buy, Reason: ReasonInitial}
	}
	// Recovery wins the tie-break when both entry thresholds are met.
	if s.HasLastSellPrice && s.Price.Cmp(s.LastSellPrice.Mul(one.Add(r.RecoveryRise))) >= 0 {
		return TradeIntent{Action: Buy, Reason: r.recoveryReason()}
	}
	if s.HasBuyPrice && s.Price.Cmp(s.BuyPrice.Mul(one.Sub(r.ReinvestFall))) <= 0 {
		return TradeIntent{Action: Buy, Reason: r.reinvestReason()}
	}
	return TradeIntent{Action: Hold, Reason: "no entry signal"}
}

func (r Rules) stopLossReason() string   { return percent(r.StopLoss) + "% stop loss" }
func (r Rules) takeProfitReason() string { return percent(r.TakeProfit) + "% take profit" }
func (r Rules) recoveryReason() string   { return percent(r.RecoveryRise) + "% recovery" }
func (r Rules) reinvestReason() string   { return percent(r.ReinvestFall) + "% fall reinvest" }

func percent(fraction decimal.Decimal) string {
	return fraction.Mul(hundred).String()
}
