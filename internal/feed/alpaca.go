package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata/stream"
	"github.com/shopspring/decimal"
)

// Alpaca streams live crypto trades for one symbol (e.g. "BTC/USD") from the
// Alpaca marketdata stream.
type Alpaca struct {
	APIKey    string
	APISecret string
	Symbol    string
}

func (a *Alpaca) Run(ctx context.Context, out chan<- Tick) error {
	client := stream.NewCryptoClient(
		marketdata.US,
		stream.WithCredentials(a.APIKey, a.APISecret),
	)

	// Note: Connect must be called BEFORE subscribing in this SDK version
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect market data stream: %w", err)
	}

	if err := client.SubscribeToTrades(func(trade stream.CryptoTrade) {
		select {
		case out <- Tick{Price: decimal.NewFromFloat(trade.Price), Time: trade.Timestamp}:
		case <-ctx.Done():
		}
	}, a.Symbol); err != nil {
		return fmt.Errorf("subscribe to trades: %w", err)
	}

	slog.Info("feed connected", "feed", "alpaca", "symbol", a.Symbol)

	<-ctx.Done()
	return ctx.Err()
}
