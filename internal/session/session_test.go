package session

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestBuyDeploysEntireBalance(t *testing.T) {
	s := New(dec("100"), time.Now())

	if err := s.Buy(dec("1.00")); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if !s.HasPosition() {
		t.Fatalf("expected open position after buy")
	}
	if !s.CashBalance().IsZero() {
		t.Fatalf("expected zero cash after buy, got %s", s.CashBalance())
	}
	if !s.CoinHoldings().Equal(dec("100")) {
		t.Fatalf("expected 100 coins, got %s", s.CoinHoldings())
	}
	if price, ok := s.BuyPrice(); !ok || !price.Equal(dec("1.00")) {
		t.Fatalf("expected buy price 1.00, got %s ok=%v", price, ok)
	}
}

func TestSellRealizesLoss(t *testing.T) {
	s := New(dec("100"), time.Now())
	if err := s.Buy(dec("1.00")); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	pl, pct, err := s.Sell(dec("0.94"))
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if !pl.Equal(dec("-6")) {
		t.Fatalf("expected P&L -6, got %s", pl)
	}
	if !pct.Equal(dec("-6")) {
		t.Fatalf("expected P&L -6%%, got %s", pct)
	}
	if !s.CashBalance().Equal(dec("94")) {
		t.Fatalf("expected balance 94, got %s", s.CashBalance())
	}
	if s.TotalTrades() != 1 || s.ProfitableTrades() != 0 {
		t.Fatalf("expected 1 trade, 0 profitable, got %d/%d", s.TotalTrades(), s.ProfitableTrades())
	}
	if last, ok := s.LastSellPrice(); !ok || !last.Equal(dec("0.94")) {
		t.Fatalf("expected last sell price 0.94, got %s ok=%v", last, ok)
	}
}

func TestSellAtSamePriceIsFlat(t *testing.T) {
	s := New(dec("100"), time.Now())
	if err := s.Buy(dec("1.37")); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	pl, _, err := s.Sell(dec("1.37"))
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if !pl.IsZero() {
		t.Fatalf("expected zero P&L, got %s", pl)
	}
	if s.ProfitableTrades() != 0 {
		t.Fatalf("flat trade must not count as profitable")
	}
}

func TestRoundTripRestoresBalanceExactly(t *testing.T) {
	// 100/3 has no terminating decimal expansion; the ledger must still
	// return the exact balance on a same-price round trip.
	s := New(dec("100"), time.Now())
	if err := s.Buy(dec("3")); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if _, _, err := s.Sell(dec("3")); err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if !s.CashBalance().Equal(dec("100")) {
		t.Fatalf("expected exact balance 100 after round trip, got %s", s.CashBalance())
	}
}

func TestTakeProfitPercent(t *testing.T) {
	s := New(dec("100"), time.Now())
	if err := s.Buy(dec("1.00")); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	pl, pct, err := s.Sell(dec("1.10"))
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if !pl.Equal(dec("10")) {
		t.Fatalf("expected P&L 10, got %s", pl)
	}
	if !pct.Equal(dec("10")) {
		t.Fatalf("expected P&L 10%%, got %s", pct)
	}
	if s.ProfitableTrades() != 1 {
		t.Fatalf("expected profitable trade recorded")
	}
}

func TestPreconditionViolations(t *testing.T) {
	s := New(dec("100"), time.Now())

	if _, _, err := s.Sell(dec("1.00")); !errors.Is(err, ErrNoPosition) {
		t.Fatalf("expected ErrNoPosition, got %v", err)
	}
	if err := s.Buy(dec("0")); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
	if err := s.Buy(dec("1.00")); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if err := s.Buy(dec("1.00")); !errors.Is(err, ErrAlreadyPositioned) {
		t.Fatalf("expected ErrAlreadyPositioned, got %v", err)
	}
}

func TestBuyWithNoFunds(t *testing.T) {
	s := New(decimal.Zero, time.Now())
	if err := s.Buy(dec("1.00")); !errors.Is(err, ErrNoFunds) {
		t.Fatalf("expected ErrNoFunds, got %v", err)
	}
}

func TestFundsNeverSplit(t *testing.T) {
	s := New(dec("50"), time.Now())
	prices := []string{"1.00", "0.94", "0.9682", "1.07"}

	for _, p := range prices {
		price := dec(p)
		s.RecordPrice(price)
		var err error
		if s.HasPosition() {
			_, _, err = s.Sell(price)
		} else {
			err = s.Buy(price)
		}
		if err != nil {
			t.Fatalf("ledger op at %s failed: %v", p, err)
		}
		if s.HasPosition() != s.CoinHoldings().IsPositive() {
			t.Fatalf("has_position must track holdings at %s", p)
		}
		if s.HasPosition() && !s.CashBalance().IsZero() {
			t.Fatalf("cash must be zero while positioned at %s", p)
		}
		if !s.HasPosition() && !s.CoinHoldings().IsZero() {
			t.Fatalf("holdings must be zero while flat at %s", p)
		}
	}
}

func TestSummarizeWithOpenPosition(t *testing.T) {
	start := time.Now()
	s := New(dec("100"), start)
	if err := s.Buy(dec("2.00")); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	s.RecordPrice(dec("2.10"))

	sum := s.Summarize(start.Add(5 * time.Minute))
	if !sum.PositionValue.Equal(dec("105")) {
		t.Fatalf("expected position value 105, got %s", sum.PositionValue)
	}
	if !sum.FinalValue.Equal(dec("105")) {
		t.Fatalf("expected final value 105, got %s", sum.FinalValue)
	}
	if !sum.UnrealizedPL.Equal(dec("5")) {
		t.Fatalf("expected unrealized P&L 5, got %s", sum.UnrealizedPL)
	}
	if !sum.TotalPL.Equal(dec("5")) {
		t.Fatalf("expected total P&L 5, got %s", sum.TotalPL)
	}
	if sum.Elapsed != 5*time.Minute {
		t.Fatalf("expected 5m elapsed, got %s", sum.Elapsed)
	}
}

func TestSummarizeWithoutAnyTicks(t *testing.T) {
	s := New(dec("100"), time.Now())

	sum := s.Summarize(time.Now())
	if sum.HasLastPrice {
		t.Fatalf("no price was ever recorded")
	}
	if !sum.FinalValue.Equal(dec("100")) {
		t.Fatalf("expected final value 100, got %s", sum.FinalValue)
	}
	if !sum.WinRatePct.IsZero() {
		t.Fatalf("win rate must be 0 with zero trades, got %s", sum.WinRatePct)
	}
}

func TestSummarizeDegenerateInvestment(t *testing.T) {
	s := New(decimal.Zero, time.Now())
	s.RecordPrice(dec("1.00"))

	sum := s.Summarize(time.Now())
	if !sum.TotalPLPct.IsZero() {
		t.Fatalf("zero investment must report 0%% total P&L, got %s", sum.TotalPLPct)
	}
}

func TestWinRate(t *testing.T) {
	s := New(dec("100"), time.Now())
	trades := []struct{ buy, sell string }{
		{"1.00", "1.10"},
		{"1.10", "1.00"},
	}
	for _, tr := range trades {
		if err := s.Buy(dec(tr.buy)); err != nil {
			t.Fatalf("buy failed: %v", err)
		}
		if _, _, err := s.Sell(dec(tr.sell)); err != nil {
			t.Fatalf("sell failed: %v", err)
		}
	}

	sum := s.Summarize(time.Now())
	if sum.TotalTrades != 2 || sum.ProfitableTrades != 1 {
		t.Fatalf("expected 2 trades, 1 profitable, got %d/%d", sum.TotalTrades, sum.ProfitableTrades)
	}
	if !sum.WinRatePct.Equal(dec("50")) {
		t.Fatalf("expected 50%% win rate, got %s", sum.WinRatePct)
	}
}
