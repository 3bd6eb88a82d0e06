package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"tradesim/internal/config"
	"tradesim/internal/engine"
	"tradesim/internal/feed"
	"tradesim/internal/report"
	"tradesim/internal/session"
	"tradesim/internal/strategy"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	runID := generateRunID()
	decisions, err := engine.NewDecisionLogger(cfg.DecisionsPath, runID)
	if err != nil {
		slog.Error("decision logger error", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := decisions.Close(); err != nil {
			slog.Error("failed to close decision logger", "err", err)
		}
	}()

	rules := strategy.Rules{
		StopLoss:     cfg.StopLoss,
		TakeProfit:   cfg.TakeProfit,
		RecoveryRise: cfg.RecoveryRise,
		ReinvestFall: cfg.ReinvestFall,
	}

	start := time.Now()
	sess := session.New(cfg.InitialInvestment, start)
	eng := engine.New(rules, cfg.Runtime, sess, decisions)

	slog.Info("starting trading session",
		"run_id", runID,
		"feed", cfg.Feed,
		"investment", cfg.InitialInvestment,
		"runtime", cfg.Runtime,
		"stop_loss", cfg.StopLoss,
		"take_profit", cfg.TakeProfit,
		"recovery_rise", cfg.RecoveryRise,
		"reinvest_fall", cfg.ReinvestFall)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalChan
		slog.Info("shutdown signal received")
		cancel()
	}()

	// The feed may produce from its own goroutines; this channel serializes
	// every tick into the single decision loop below.
	ticks := make(chan feed.Tick, 64)
	go func() {
		defer close(ticks)
		if err := newSource(cfg).Run(ctx, ticks); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("feed stopped", "err", err)
		}
	}()

	runLoop(eng, ticks)
	cancel()

	// Finalize runs no matter how the loop ended: timeout, feed failure, or
	// an interrupt.
	report.Render(os.Stdout, eng.Finalize(time.Now()))
}

func runLoop(eng *engine.Engine, ticks <-chan feed.Tick) {
	gate := &feed.Gate{}
	for tick := range ticks {
		if err := gate.Check(tick); err != nil {
			continue
		}
		res, err := eng.OnPriceTick(tick.Price, tick.Time)
		if err != nil {
			if errors.Is(err, engine.ErrInvalidPrice) {
				continue
			}
			// A ledger precondition violation means the decision logic is
			// unsound; stop trading rather than continue on bad state.
			slog.Error("decision loop aborted", "err", err)
			return
		}
		if !res.Continue {
			return
		}
	}
}

func newSource(cfg config.Config) feed.Source {
	switch cfg.Feed {
	case config.FeedCMC:
		return feed.NewCMC(cfg.CMCURL, cfg.ContractAddress)
	case config.FeedAlpaca:
		return &feed.Alpaca{APIKey: cfg.APIKey, APISecret: cfg.APISecret, Symbol: cfg.Symbol}
	default:
		return &feed.Synthetic{Start: cfg.StartPrice, Interval: cfg.TickInterval, Seed: cfg.Seed}
	}
}

func generateRunID() string {
	return time.Now().UTC().Format("20060102T150405") + "-" + uuid.NewString()[:8]
}
