package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type FeedKind string

const (
	FeedSynthetic FeedKind = "synthetic"
	FeedCMC       FeedKind = "cmc"
	FeedAlpaca    FeedKind = "alpaca"
)

type Config struct {
	Feed            FeedKind
	ContractAddress string
	Symbol          string

	InitialInvestment decimal.Decimal
	Runtime           time.Duration

	// Rule thresholds, as fractions of the reference price.
	StopLoss     decimal.Decimal
	TakeProfit   decimal.Decimal
	RecoveryRise decimal.Decimal
	ReinvestFall decimal.Decimal

	// Synthetic feed knobs.
	TickInterval time.Duration
	StartPrice   decimal.Decimal
	Seed         int64

	DecisionsPath string
	CMCURL        string
	APIKey        string
	APISecret     string
}

func Load() (Config, error) {
	var cfg Config
	var feed string
	var investment, stopLoss, takeProfit, recoveryRise, reinvestFall, startPrice float64

	// .env is optional; real env always wins over flags-file conventions.
	_ = godotenv.Load()

	flag.StringVar(&feed, "feed", string(FeedSynthetic), "price feed: synthetic, cmc or alpaca")
	flag.StringVar(&cfg.ContractAddress, "contract", "", "token contract address (cmc feed)")
	flag.StringVar(&cfg.Symbol, "symbol", "BTC/USD", "crypto symbol (alpaca feed)")
	flag.Float64Var(&investment, "investment", 100, "initial investment")
	flag.DurationVar(&cfg.Runtime, "runtime", 10*time.Minute, "session runtime limit")
	flag.Float64Var(&stopLoss, "stop-loss", 0.05, "sell when price falls this fraction below the buy price")
	flag.Float64Var(&takeProfit, "take-profit", 0.10, "sell when price rises this fraction above the buy price")
	flag.Float64Var(&recoveryRise, "recovery-rise", 0.03, "re-buy when price rises this fraction above the last sell")
	flag.Float64Var(&reinvestFall, "reinvest-fall", 0.10, "re-buy when price falls this fraction below the last buy")
	flag.DurationVar(&cfg.TickInterval, "tick-interval", 500*time.Millisecond, "synthetic feed tick interval")
	flag.Float64Var(&startPrice, "start-price", 1.0, "synthetic feed starting price")
	flag.Int64Var(&cfg.Seed, "seed", time.Now().UnixNano(), "synthetic feed random seed")
	flag.StringVar(&cfg.DecisionsPath, "decisions-path", "decisions.ndjson", "path to decisions log")
	flag.Parse()

	cfg.Feed = FeedKind(feed)
	cfg.InitialInvestment = decimal.NewFromFloat(investment)
	cfg.StopLoss = decimal.NewFromFloat(stopLoss)
	cfg.TakeProfit = decimal.NewFromFloat(takeProfit)
	cfg.RecoveryRise = decimal.NewFromFloat(recoveryRise)
	cfg.ReinvestFall = decimal.NewFromFloat(reinvestFall)
	cfg.StartPrice = decimal.NewFromFloat(startPrice)

	cfg.CMCURL = os.Getenv("CMC_WS_URL")
	if cfg.CMCURL == "" {
		cfg.CMCURL = "wss://dws.coinmarketcap.com/ws"
	}
	cfg.APIKey = os.Getenv("APCA_API_KEY_ID")
	cfg.APISecret = os.Getenv("APCA_API_SECRET_KEY")

	if err := validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.Feed {
	case FeedSynthetic, FeedCMC, FeedAlpaca:
	default:
		return fmt.Errorf("invalid feed: %s", cfg.Feed)
	}
	if !cfg.InitialInvestment.IsPositive() {
		return fmt.Errorf("investment must be > 0")
	}
	if cfg.Runtime <= 0 {
		return fmt.Errorf("runtime must be > 0")
	}
	for name, threshold := range map[string]decimal.Decimal{
		"stop-loss":     cfg.StopLoss,
		"take-profit":   cfg.TakeProfit,
		"recovery-rise": cfg.RecoveryRise,
		"reinvest-fall": cfg.ReinvestFall,
	} {
		if !threshold.IsPositive() || threshold.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("%s must be in (0, 1)", name)
		}
	}
	if cfg.Feed == FeedCMC && cfg.ContractAddress == "" {
		return fmt.Errorf("contract address is required for the cmc feed")
	}
	if cfg.Feed == FeedAlpaca {
		if cfg.APIKey == "" || cfg.APISecret == "" {
			return fmt.Errorf("APCA_API_KEY_ID and APCA_API_SECRET_KEY are required for the alpaca feed")
		}
		if cfg.Symbol == "" {
			return fmt.Errorf("symbol is required for the alpaca feed")
		}
	}
	if cfg.Feed == FeedSynthetic {
		if cfg.TickInterval <= 0 {
			return fmt.Errorf("tick-interval must be > 0")
		}
		if !cfg.StartPrice.IsPositive() {
			return fmt.Errorf("start-price must be > 0")
		}
	}
	return nil
}
