package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// KV stores string slots in a kv_slots table.
type KV struct {
	DB *sql.DB

	getQuery string
	putQuery string
}

const createKV = `
	CREATE TABLE IF NOT EXISTS kv_slots (
		slot_key   TEXT PRIMARY KEY,
		slot_value TEXT NOT NULL
	)`

// NewKV creates the table if needed. driver picks the placeholder style.
func NewKV(ctx context.Context, dbx *sql.DB, driver string) (*KV, error) {
	kv := &KV{DB: dbx}

	switch driver {
	case DriverPostgres:
		kv.getQuery = `SELECT slot_value FROM kv_slots WHERE slot_key = $1`
		kv.putQuery = `
			INSERT INTO kv_slots (slot_key, slot_value)
			VALUES ($1, $2)
			ON CONFLICT (slot_key) DO UPDATE SET slot_value = EXCLUDED.slot_value`
	case DriverSQLite:
		kv.getQuery = `SELECT slot_value FROM kv_slots WHERE slot_key = ?`
		kv.putQuery = `
			INSERT INTO kv_slots (slot_key, slot_value)
			VALUES (?, ?)
			ON CONFLICT (slot_key) DO UPDATE SET slot_value = excluded.slot_value`
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	if _, err := dbx.ExecContext(ctx, createKV); err != nil {
		return nil, fmt.Errorf("create kv_slots: %w", err)
	}
	return kv, nil
}

func (kv *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := kv.DB.QueryRowContext(ctx, kv.getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select slot %q: %w", key, err)
	}
	return value, true, nil
}

func (kv *KV) Put(ctx context.Context, key, value string) error {
	if _, err := kv.DB.ExecContext(ctx, kv.putQuery, key, value); err != nil {
		return fmt.Errorf("upsert slot %q: %w", key, err)
	}
	return nil
}
