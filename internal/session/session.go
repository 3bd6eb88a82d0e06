package session

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidPrice is returned when a ledger operation receives a
	// non-positive price. The feed layer filters these before the core,
	// so seeing one here means a collaborator bug.
	ErrInvalidPrice = errors.New("price must be positive")

	// ErrAlreadyPositioned and ErrNoPosition indicate a precondition
	// violation in the calling decision logic. They are fatal: the rule
	// engine's branching must make them unreachable.
	ErrAlreadyPositioned = errors.New("buy while position is open")
	ErrNoPosition        = errors.New("sell without an open position")

	// ErrNoFunds is returned by Buy when the cash balance is zero.
	ErrNoFunds = errors.New("buy with no cash balance")
)

var hundred = decimal.NewFromInt(100)

// Session is the ledger for one bounded run: cash balance, holdings, and
// trade statistics for a single position. All mutation goes through Buy
// and Sell; the caller owns serialization, ticks are applied one at a time.
//
// Funds are never split: an open position means the entire balance is
// deployed and cash is zero.
type Session struct {
	initialInvestment decimal.Decimal
	cashBalance       decimal.Decimal
	coinHoldings      decimal.Decimal
	positionCost      decimal.Decimal
	hasPosition       bool

	buyPrice         decimal.Decimal
	hasBuyPrice      bool
	lastSellPrice    decimal.Decimal
	hasLastSellPrice bool
	lastKnownPrice   decimal.Decimal
	hasLastPrice     bool

	totalTrades      int
	profitableTrades int

	startTime time.Time
}

// New creates a session with the whole investment held as cash.
func New(initialInvestment decimal.Decimal, startTime time.Time) *Session {
	return &Session{
		initialInvestment: initialInvestment,
		cashBalance:       initialInvestment,
		startTime:         startTime,
	}
}

// RecordPrice notes the most recent observed price. It is applied on every
// tick before any decision logic, including the tick that ends the run, so
// the final valuation always uses the freshest price.
func (s *Session) RecordPrice(price decimal.Decimal) {
	s.lastKnownPrice = price
	s.hasLastPrice = true
}

// Buy deploys the entire cash balance at the given price. Sizing is never
// partial: after a buy the cash balance is zero and the position cost equals
// the balance that was deployed.
func (s *Session) Buy(price decimal.Decimal) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	if s.hasPosition {
		return ErrAlreadyPositioned
	}
	if !s.cashBalance.IsPositive() {
		return ErrNoFunds
	}

	s.positionCost = s.cashBalance
	s.coinHoldings = s.positionCost.Div(price)
	s.buyPrice = price
	s.hasBuyPrice = true
	s.hasPosition = true
	s.cashBalance = decimal.Zero
	return nil
}

// Sell liquidates the position at the given price and returns the realized
// profit/loss and its percentage of the position cost.
//
// The position value is computed as cost * price / buyPrice rather than
// coins * price: the two are equal mathematically, but scaling the exact
// cost basis means a round trip at the same price restores the balance
// exactly even when cost/price has no terminating decimal expansion.
func (s *Session) Sell(price decimal.Decimal) (profitLoss, profitLossPct decimal.Decimal, err error) {
	if !price.IsPositive() {
		return decimal.Zero, decimal.Zero, ErrInvalidPrice
	}
	if !s.hasPosition {
		return decimal.Zero, decimal.Zero, ErrNoPosition
	}

	value := s.positionCost.Mul(price).Div(s.buyPrice)
	profitLoss = value.Sub(s.positionCost)
	if s.positionCost.IsPositive() {
		profitLossPct = profitLoss.Div(s.positionCost).Mul(hundred)
	}

	s.cashBalance = value
	s.coinHoldings = decimal.Zero
	s.positionCost = decimal.Zero
	s.hasPosition = false
	s.lastSellPrice = price
	s.hasLastSellPrice = true
	s.totalTrades++
	if profitLoss.IsPositive() {
		s.profitableTrades++
	}
	return profitLoss, profitLossPct, nil
}

func (s *Session) InitialInvestment() decimal.Decimal { return s.initialInvestment }
func (s *Session) CashBalance() decimal.Decimal       { return s.cashBalance }
func (s *Session) CoinHoldings() decimal.Decimal      { return s.coinHoldings }
func (s *Session) HasPosition() bool                  { return s.hasPosition }
func (s *Session) TotalTrades() int                   { return s.totalTrades }
func (s *Session) ProfitableTrades() int              { return s.profitableTrades }
func (s *Session) StartTime() time.Time               { return s.startTime }

// BuyPrice reports the price the current or most recent position was opened
// at; the bool is false until the first buy.
func (s *Session) BuyPrice() (decimal.Decimal, bool) {
	return s.buyPrice, s.hasBuyPrice
}

// LastSellPrice reports the most recent sell execution price; the bool is
// false until the first sell.
func (s *Session) LastSellPrice() (decimal.Decimal, bool) {
	return s.lastSellPrice, s.hasLastSellPrice
}

// LastKnownPrice reports the most recent recorded tick price; the bool is
// false if no tick has ever been recorded.
func (s *Session) LastKnownPrice() (decimal.Decimal, bool) {
	return s.lastKnownPrice, s.hasLastPrice
}
