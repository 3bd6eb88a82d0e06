package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// Synthetic emits a seeded random-walk price series, for exercising the
// whole loop without network access or credentials.
type Synthetic struct {
	Start    decimal.Decimal
	Interval time.Duration
	Seed     int64
}

func (s *Synthetic) Run(ctx context.Context, out chan<- Tick) error {
	rng := rand.New(rand.NewSource(s.Seed))
	price := s.Start

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			// Step up to ±2% per tick.
			step := decimal.NewFromFloat((rng.Float64() - 0.5) * 0.04)
			price = price.Mul(one.Add(step))
			select {
			case out <- Tick{Price: price, Time: now.UTC()}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
