package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"tradesim/internal/session"
	"tradesim/internal/strategy"
)

// ErrInvalidPrice guards the core against a feed bug. The tick gate upstream
// filters non-positive prices, so the engine only sees this defensively; the
// caller may skip the tick and continue.
var ErrInvalidPrice = errors.New("non-positive price reached the engine")

// Engine drives one session: it records each tick, enforces the runtime
// window, asks the rules for an intent, and applies at most one ledger
// mutation per tick. Ticks must arrive serialized; the engine holds no lock.
type Engine struct {
	rules        strategy.Rules
	runtimeLimit time.Duration
	session      *session.Session
	decisions    *DecisionLogger
}

func New(rules strategy.Rules, runtimeLimit time.Duration, sess *session.Session, decisions *DecisionLogger) *Engine {
	return &Engine{
		rules:        rules,
		runtimeLimit: runtimeLimit,
		session:      sess,
		decisions:    decisions,
	}
}

// Result is the outcome of one tick. Continue is false exactly when the
// runtime window has closed; an open position is left open for final
// valuation, never auto-liquidated.
type Result struct {
	Action        strategy.Action
	Reason        string
	ProfitLoss    decimal.Decimal
	ProfitLossPct decimal.Decimal
	Continue      bool
}

// OnPriceTick processes one price observation. The last known price is
// recorded before any other logic, including on the tick that closes the
// window. Precondition violations from the ledger are returned as-is and are
// fatal: the rules' own branching must make them unreachable.
func (e *Engine) OnPriceTick(price decimal.Decimal, now time.Time) (Result, error) {
	if !price.IsPositive() {
		return Result{Continue: true}, ErrInvalidPrice
	}

	e.session.RecordPrice(price)

	if now.Sub(e.session.StartTime()) >= e.runtimeLimit {
		res := Result{Action: strategy.Terminate, Reason: "runtime limit reached"}
		e.record(price, now, res)
		return res, nil
	}

	intent := e.rules.Decide(e.snapshot(price))
	res := Result{Action: intent.Action, Reason: intent.Reason, Continue: true}

	switch intent.Action {
	case strategy.Buy:
		if err := e.session.Buy(price); err != nil {
			return Result{}, fmt.Errorf("apply buy: %w", err)
		}
	case strategy.Sell:
		pl, pct, err := e.session.Sell(price)
		if err != nil {
			return Result{}, fmt.Errorf("apply sell: %w", err)
		}
		res.ProfitLoss = pl
		res.ProfitLossPct = pct
	}

	e.record(price, now, res)
	return res, nil
}

// Finalize values the session at the last known price and logs the outcome.
func (e *Engine) Finalize(now time.Time) session.Summary {
	sum := e.session.Summarize(now)
	slog.Info("session finalized",
		"final_value", sum.FinalValue,
		"total_pl", sum.TotalPL,
		"trades", sum.TotalTrades,
		"profitable", sum.ProfitableTrades,
		"elapsed", sum.Elapsed)
	return sum
}

func (e *Engine) snapshot(price decimal.Decimal) strategy.TickSnapshot {
	snap := strategy.TickSnapshot{
		Price:       price,
		HasPosition: e.session.HasPosition(),
		CashBalance: e.session.CashBalance(),
		TradeCount:  e.session.TotalTrades(),
	}
	snap.BuyPrice, snap.HasBuyPrice = e.session.BuyPrice()
	snap.LastSellPrice, snap.HasLastSellPrice = e.session.LastSellPrice()
	return snap
}

func (e *Engine) record(price decimal.Decimal, now time.Time, res Result) {
	if e.decisions != nil {
		e.decisions.Append(Decision{
			RunID:         e.decisions.RunID(),
			Timestamp:     now.UTC(),
			Price:         price,
			Action:        res.Action,
			Reason:        res.Reason,
			ProfitLoss:    res.ProfitLoss,
			ProfitLossPct: res.ProfitLossPct,
			CashBalance:   e.session.CashBalance(),
			CoinHoldings:  e.session.CoinHoldings(),
			TotalTrades:   e.session.TotalTrades(),
		})
	}
	switch res.Action {
	case strategy.Buy:
		slog.Info("buy executed", "price", price, "reason", res.Reason, "holdings", e.session.CoinHoldings())
	case strategy.Sell:
		slog.Info("sell executed", "price", price, "reason", res.Reason, "pl", res.ProfitLoss, "pl_pct", res.ProfitLossPct, "balance", e.session.CashBalance())
	case strategy.Terminate:
		slog.Info("runtime limit reached", "price", price)
	default:
		slog.Debug("hold", "price", price, "reason", res.Reason)
	}
}
