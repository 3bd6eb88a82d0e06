package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const DefaultCMCURL = "wss://dws.coinmarketcap.com/ws"

// CMC streams token transaction quotes from the CoinMarketCap websocket,
// reconnecting with capped exponential backoff when the connection drops.
type CMC struct {
	URL             string
	ContractAddress string

	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
}

func NewCMC(url, contractAddress string) *CMC {
	return &CMC{
		URL:              url,
		ContractAddress:  contractAddress,
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      60 * time.Second,
	}
}

type cmcSubscription struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
}

type cmcQuote struct {
	D struct {
		Price json.Number `json:"t0pu"`
	} `json:"d"`
}

func (c *CMC) Run(ctx context.Context, out chan<- Tick) error {
	retry := 0
	for {
		conn, err := c.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			delay := backoff(retry)
			retry++
			slog.Warn("feed connect failed", "feed", "cmc", "err", err, "retry_in", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}

		retry = 0
		err = c.read(ctx, conn, out)
		conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("feed disconnected", "feed", "cmc", "err", err)
	}
}

func (c *CMC) connect(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: c.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return nil, err
	}

	sub := cmcSubscription{
		Method: "SUBSCRIPTION",
		Params: []string{"quote@transaction@16_" + c.ContractAddress},
	}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	slog.Info("feed connected", "feed", "cmc", "contract", c.ContractAddress)
	return conn, nil
}

func (c *CMC) read(ctx context.Context, conn *websocket.Conn, out chan<- Tick) error {
	// Unblock ReadMessage when the context is cancelled.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(c.ReadTimeout)); err != nil {
			return err
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		price, ok := parseQuote(msg)
		if !ok {
			continue
		}
		select {
		case out <- Tick{Price: price, Time: time.Now().UTC()}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// parseQuote extracts the token price from a transaction quote frame.
// Frames without a price field (acks, heartbeats) are skipped.
func parseQuote(msg []byte) (decimal.Decimal, bool) {
	var q cmcQuote
	if err := json.Unmarshal(msg, &q); err != nil {
		return decimal.Decimal{}, false
	}
	if q.D.Price == "" {
		return decimal.Decimal{}, false
	}
	price, err := decimal.NewFromString(q.D.Price.String())
	if err != nil {
		return decimal.Decimal{}, false
	}
	return price, true
}

func backoff(retry int) time.Duration {
	if retry > 5 {
		retry = 5
	}
	return time.Second << uint(retry)
}
