package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"smartflow-backend/internal/ai"
	"smartflow-backend/internal/analytics"
	"smartflow-backend/internal/config"
	"smartflow-backend/internal/db"
	"smartflow-backend/internal/storage"
	"smartflow-backend/internal/suggestions"
	"smartflow-backend/internal/tasks"
)

// Build wires an App from cfg. The returned close func releases the
// database handle, if any.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, func() error, error) {
	slot, closeFn, err := OpenSlot(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("storage ready", slog.String("driver", cfg.StorageDriver), slog.String("key", cfg.StorageKey))

	store := tasks.Open(ctx, slot, cfg.StorageKey, logger)
	client := suggestions.New(NewGenerator(cfg), store, logger)

	return New(store, client, analytics.NewRecorder(logger), logger), closeFn, nil
}

// OpenSlot returns the durable slot selected by cfg.StorageDriver.
func OpenSlot(ctx context.Context, cfg *config.Config) (tasks.Slot, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageDriver {
	case "memory":
		return storage.NewMemorySlot(), noop, nil
	case "file":
		return storage.NewFileSlot(cfg.StorageDir), noop, nil
	case "sqlite":
		return openSQLSlot(ctx, db.DriverSQLite, cfg.SQLitePath)
	case "postgres":
		return openSQLSlot(ctx, db.DriverPostgres, cfg.ConnString())
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func openSQLSlot(ctx context.Context, driver, dsn string) (tasks.Slot, func() error, error) {
	dbx, err := db.Connect(ctx, driver, dsn)
	if err != nil {
		return nil, nil, err
	}
	kv, err := db.NewKV(ctx, dbx, driver)
	if err != nil {
		dbx.Close()
		return nil, nil, err
	}
	return kv, dbx.Close, nil
}

// NewGenerator picks the suggestion provider. Missing keys are not checked
// here; the first call fails instead.
func NewGenerator(cfg *config.Config) ai.Generator {
	hc := &http.Client{Timeout: cfg.SuggestTimeout}
	if cfg.SuggestProvider == "openai" {
		return ai.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel, hc)
	}
	return ai.NewGemini(cfg.GeminiKey, cfg.GeminiModel, hc)
}
