package feed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Tick is one price observation with its arrival timestamp.
type Tick struct {
	Price decimal.Decimal
	Time  time.Time
}

// Source streams ticks into out until the context is cancelled or the source
// fails permanently. A source may produce from its own goroutines; the
// channel is the serialization point, consumed by a single decision loop.
type Source interface {
	Run(ctx context.Context, out chan<- Tick) error
}
