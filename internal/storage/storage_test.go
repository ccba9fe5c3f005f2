package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

type slot interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

func exerciseSlot(t *testing.T, s slot) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "smart-flow-todos"); err != nil || ok {
		t.Fatalf("empty Get = ok:%v err:%v", ok, err)
	}

	if err := s.Put(ctx, "smart-flow-todos", `[{"id":"1"}]`); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, "smart-flow-todos", `[]`); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, ok, err := s.Get(ctx, "smart-flow-todos")
	if err != nil || !ok {
		t.Fatalf("Get = ok:%v err:%v", ok, err)
	}
	if got != `[]` {
		t.Errorf("Get = %q, want full overwrite", got)
	}
}

func TestMemorySlot(t *testing.T) {
	t.Parallel()
	exerciseSlot(t, NewMemorySlot())
}

func TestFileSlot(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "nested", "store")
	fs := NewFileSlot(dir)
	exerciseSlot(t, fs)

	if _, err := os.Stat(fs.Path("smart-flow-todos") + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestFileSlotEscapesKey(t *testing.T) {
	t.Parallel()
	fs := NewFileSlot(t.TempDir())
	p := fs.Path("../escape")
	if filepath.Dir(p) != fs.Dir {
		t.Errorf("Path(%q) = %q escapes %q", "../escape", p, fs.Dir)
	}
}

func TestFileSlotReadError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	fs := NewFileSlot(dir)
	// A directory where the file should be makes ReadFile fail.
	if err := os.MkdirAll(fs.Path("k"), 0755); err != nil {
		t.Fatal(err)
	}
	if _, _, err := fs.Get(context.Background(), "k"); err == nil {
		t.Error("expected read error")
	}
}
