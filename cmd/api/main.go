package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"smartflow-backend/internal/app"
	"smartflow-backend/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("❌ API server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, closeStorage, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	return app.Serve(ctx, a, cfg.HTTPAddr, cfg.CORSOrigins)
}
