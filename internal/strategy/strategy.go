package strategy

import "github.com/shopspring/decimal"

type Action string

const (
	Hold      Action = "HOLD"
	Buy       Action = "BUY"
	Sell      Action = "SELL"
	Terminate Action = "TERMINATE"
)

// TickSnapshot is the slice of ledger state the rules read for one tick.
type TickSnapshot struct {
	Price decimal.Decimal

	HasPosition bool
	CashBalance decimal.Decimal

	BuyPrice    decimal.Decimal
	HasBuyPrice bool

	LastSellPrice    decimal.Decimal
	HasLastSellPrice bool

	TradeCount int
}

type TradeIntent struct {
	Action Action
	Reason string
}
