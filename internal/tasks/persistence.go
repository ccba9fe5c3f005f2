package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Slot is a single string-keyed durable cell.
type Slot interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string) error
}

// Load reads the stored collection. Absent, unreadable or malformed data
// all yield an empty collection.
func Load(ctx context.Context, slot Slot, key string, logger *slog.Logger) []Task {
	raw, ok, err := slot.Get(ctx, key)
	if err != nil {
		logger.Warn("task store read failed, starting empty",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return []Task{}
	}
	if !ok {
		logger.Debug("no stored tasks", slog.String("key", key))
		return []Task{}
	}

	var stored []Task
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		logger.Warn("stored tasks are malformed, starting empty",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return []Task{}
	}
	if stored == nil {
		stored = []Task{}
	}
	return stored
}

// Save overwrites the slot with the full collection.
func Save(ctx context.Context, slot Slot, key string, collection []Task) error {
	if collection == nil {
		collection = []Task{}
	}
	b, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	if err := slot.Put(ctx, key, string(b)); err != nil {
		return fmt.Errorf("write tasks: %w", err)
	}
	return nil
}
