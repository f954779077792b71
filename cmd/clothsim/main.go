// Package main is the entry point for the headless cloth simulator.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/config"
	"github.com/Faultbox/clothsim/internal/diagnostics"
	"github.com/Faultbox/clothsim/internal/logger"
	"github.com/Faultbox/clothsim/internal/sim"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Cloth Simulator ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, err := sim.New(cfg, logger.Named("sim"), diagnostics.NewZapSink(logger.Named("diag")))
	if err != nil {
		return fmt.Errorf("creating simulator: %w", err)
	}

	start := time.Now()
	initial := s.Cloth().AverageHeight()
	st, err := s.Run(ctx, cfg.Simulation.Ticks, cfg.Script)
	if errors.Is(err, context.Canceled) {
		logger.Warn("interrupted", zap.Uint64("tick", st.Tick))
	} else if err != nil {
		return err
	}

	ps := s.PartitionStats()
	logger.Info("run complete",
		zap.String("session", s.Session.String()),
		zap.Uint64("ticks", st.Tick),
		zap.Duration("elapsed", time.Since(start)),
		zap.Float32("initial_height", initial),
		zap.Float32("average_height", st.AverageHeight),
		zap.Int("contacts", st.Contacts),
		zap.Int("gjk_calls", st.Collision.GJKCalls),
		zap.Int("epa_fallbacks", st.Collision.Fallbacks),
		zap.Int("partition_nodes", ps.Nodes),
		zap.Int("partition_depth", ps.MaxDepth),
		zap.Ints("proxies_per_depth", ps.PerDepth),
	)
	return nil
}
