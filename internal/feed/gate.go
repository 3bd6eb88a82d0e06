package feed

import (
	"errors"
	"log/slog"
	"time"
)

var (
	ErrNonPositivePrice    = errors.New("non_positive_price")
	ErrTimestampRegression = errors.New("timestamp_regression")
)

// Gate filters ticks before they reach the engine: prices must be positive
// and timestamps non-decreasing. The core relies on its collaborators for
// this, so every tick passes through the gate first. Not safe for concurrent
// use; it sits on the single consumer side of the tick channel.
type Gate struct {
	lastTime time.Time
}

func (g *Gate) Check(t Tick) error {
	if !t.Price.IsPositive() {
		slog.Warn("tick rejected", "reason", "non_positive_price", "price", t.Price)
		return ErrNonPositivePrice
	}
	if t.Time.Before(g.lastTime) {
		slog.Warn("tick rejected", "reason", "timestamp_regression", "time", t.Time, "last", g.lastTime)
		return ErrTimestampRegression
	}
	g.lastTime = t.Time
	return nil
}
