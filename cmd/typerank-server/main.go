package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/typerank/internal/config"
	"github.com/verte-zerg/typerank/internal/ranking"
	"github.com/verte-zerg/typerank/internal/server"
	"github.com/verte-zerg/typerank/internal/validation"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.LoadServer()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	st, err := ranking.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening ranking store: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("closing ranking store", "error", cerr)
		}
	}()
	logger.Info("opened ranking store", "path", cfg.DBPath)

	// --- HTTP Server ---
	validator := validation.New(time.Duration(cfg.ClientSkewMs) * time.Millisecond)
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Submitter:        ranking.NewService(validator, st),
		Leaderboard:      st,
		Health:           st,
		LeaderboardLimit: cfg.LeaderboardLimit,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
