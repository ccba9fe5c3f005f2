package suggestions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"smartflow-backend/internal/ai"
	"smartflow-backend/internal/storage"
	"smartflow-backend/internal/tasks"
)

type fakeGenerator struct {
	calls   atomic.Int32
	prompt  atomic.Value
	reply   string
	err     error
	entered chan struct{} // closed on first call when non-nil
	release chan struct{} // call blocks until closed when non-nil
	once    sync.Once
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, prompt string, schema *ai.Schema) (string, error) {
	f.calls.Add(1)
	f.prompt.Store(prompt)
	if f.entered != nil {
		f.once.Do(func() { close(f.entered) })
	}
	if f.release != nil {
		<-f.release
	}
	return f.reply, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T) *tasks.Store {
	t.Helper()
	return tasks.Open(context.Background(), storage.NewMemorySlot(), "smart-flow-todos", discardLogger())
}

const threeSuggestions = `{"suggestions":[
	{"text":"Plan week","priority":"high","category":"Work"},
	{"text":"Stretch","priority":"low","category":"Health"},
	{"text":"Read","priority":"medium","category":"Learning"}
]}`

func TestFetchReplacesList(t *testing.T) {
	gen := &fakeGenerator{reply: threeSuggestions}
	c := New(gen, newStore(t), discardLogger())

	if !c.Fetch(context.Background(), nil) {
		t.Fatal("Fetch should start when idle")
	}
	got := c.Suggestions()
	if len(got) != 3 || got[0].Text != "Plan week" || got[2].Priority != tasks.PriorityMedium {
		t.Fatalf("suggestions = %+v", got)
	}
	if c.State() != Idle {
		t.Errorf("state = %v, want idle", c.State())
	}

	gen.reply = `{"suggestions":[{"text":"Only one","priority":"low","category":"X"}]}`
	c.Fetch(context.Background(), nil)
	if got := c.Suggestions(); len(got) != 1 || got[0].Text != "Only one" {
		t.Errorf("second fetch should replace wholesale, got %+v", got)
	}
}

func TestFetchPromptUsesFirstFiveTasks(t *testing.T) {
	gen := &fakeGenerator{reply: `{"suggestions":[]}`}
	store := newStore(t)
	c := New(gen, store, discardLogger())
	ctx := context.Background()

	c.Fetch(ctx, store.Tasks())
	if p := gen.prompt.Load().(string); !strings.Contains(p, "No tasks yet, suggest some general productivity goals.") {
		t.Errorf("empty-store prompt = %q", p)
	}

	for i := 1; i <= 7; i++ {
		store.Add(ctx, fmt.Sprintf("t%d", i), "", "")
	}
	c.Fetch(ctx, store.Tasks())
	p := gen.prompt.Load().(string)
	if !strings.Contains(p, `"Currently working on: t7, t6, t5, t4, t3"`) {
		t.Errorf("prompt = %q", p)
	}
}

func TestFetchDropsWhileInFlight(t *testing.T) {
	gen := &fakeGenerator{
		reply:   threeSuggestions,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := New(gen, newStore(t), discardLogger())

	done := make(chan bool)
	go func() { done <- c.Fetch(context.Background(), nil) }()

	select {
	case <-gen.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never reached the generator")
	}
	if c.State() != Requesting {
		t.Fatalf("state = %v, want requesting", c.State())
	}

	if c.Fetch(context.Background(), nil) {
		t.Error("second Fetch should be dropped")
	}
	if n := gen.calls.Load(); n != 1 {
		t.Errorf("generator calls = %d, want 1", n)
	}

	close(gen.release)
	if !<-done {
		t.Error("first Fetch should report started")
	}
	if c.State() != Idle {
		t.Errorf("state = %v after completion", c.State())
	}
	if len(c.Suggestions()) != 3 {
		t.Errorf("suggestions = %d", len(c.Suggestions()))
	}
}

func TestFetchFailuresYieldEmptyList(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"transport error", "", errors.New("connection refused")},
		{"api error", "", &ai.APIError{Provider: "gemini", StatusCode: 500}},
		{"malformed json", `{"suggestions": [`, nil},
		{"plain text", "Sure! Here are some ideas", nil},
		{"missing array", `{"ideas":[]}`, nil},
		{"bad priority", `{"suggestions":[{"text":"x","priority":"urgent","category":"c"}]}`, nil},
		{"missing text", `{"suggestions":[{"priority":"low","category":"c"}]}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{reply: threeSuggestions}
			store := newStore(t)
			c := New(gen, store, discardLogger())
			c.Fetch(context.Background(), nil)

			gen.reply, gen.err = tt.reply, tt.err
			if !c.Fetch(context.Background(), nil) {
				t.Fatal("Fetch should start")
			}
			if got := c.Suggestions(); len(got) != 0 {
				t.Errorf("suggestions = %+v, want empty", got)
			}
			if c.State() != Idle {
				t.Errorf("state = %v, want idle", c.State())
			}
			if len(store.Tasks()) != 0 {
				t.Error("failure touched the task store")
			}
		})
	}
}

func TestAcceptByPosition(t *testing.T) {
	gen := &fakeGenerator{reply: threeSuggestions}
	store := newStore(t)
	c := New(gen, store, discardLogger())
	ctx := context.Background()
	c.Fetch(ctx, nil)

	task, ok := c.Accept(ctx, 1)
	if !ok {
		t.Fatal("Accept returned false")
	}
	if task.Text != "Stretch" || task.Priority != tasks.PriorityLow || task.Category != "Health" {
		t.Errorf("task = %+v", task)
	}

	list := store.Tasks()
	if len(list) != 1 || list[0].ID != task.ID {
		t.Errorf("store = %+v", list)
	}

	rest := c.Suggestions()
	if len(rest) != 2 || rest[0].Text != "Plan week" || rest[1].Text != "Read" {
		t.Errorf("remaining = %+v", rest)
	}
}

func TestAcceptOutOfRange(t *testing.T) {
	gen := &fakeGenerator{reply: threeSuggestions}
	store := newStore(t)
	c := New(gen, store, discardLogger())
	ctx := context.Background()
	c.Fetch(ctx, nil)

	for _, i := range []int{-1, 3, 99} {
		if _, ok := c.Accept(ctx, i); ok {
			t.Errorf("Accept(%d) should be a no-op", i)
		}
	}
	if len(c.Suggestions()) != 3 || len(store.Tasks()) != 0 {
		t.Error("out-of-range accept changed state")
	}
}

type observingAdder struct {
	store  *tasks.Store
	client *Client
	seen   []int
}

func (a *observingAdder) Add(ctx context.Context, text string, priority tasks.Priority, category string) (tasks.Task, bool) {
	a.seen = append(a.seen, len(a.client.Suggestions()))
	return a.store.Add(ctx, text, priority, category)
}

func TestAcceptAddsBeforeRemoving(t *testing.T) {
	adder := &observingAdder{store: newStore(t)}
	c := New(&fakeGenerator{reply: threeSuggestions}, adder, discardLogger())
	adder.client = c
	ctx := context.Background()
	c.Fetch(ctx, nil)

	if _, ok := c.Accept(ctx, 0); !ok {
		t.Fatal("Accept returned false")
	}
	if len(adder.seen) != 1 || adder.seen[0] != 3 {
		t.Errorf("list length during Add = %v, want [3]", adder.seen)
	}
	if got := c.Suggestions(); len(got) != 2 || got[0].Text != "Stretch" {
		t.Errorf("remaining = %+v", got)
	}
}

func TestAcceptBlankTextStillDropsEntry(t *testing.T) {
	gen := &fakeGenerator{reply: `{"suggestions":[
		{"text":"   ","priority":"low","category":"X"},
		{"text":"Real","priority":"high","category":"Y"}
	]}`}
	store := newStore(t)
	c := New(gen, store, discardLogger())
	ctx := context.Background()
	c.Fetch(ctx, nil)

	if _, ok := c.Accept(ctx, 0); ok {
		t.Error("blank suggestion should not become a task")
	}
	if got := c.Suggestions(); len(got) != 1 || got[0].Text != "Real" {
		t.Errorf("remaining = %+v", got)
	}
	if len(store.Tasks()) != 0 {
		t.Errorf("store = %+v", store.Tasks())
	}
}

func TestStateText(t *testing.T) {
	b, _ := Requesting.MarshalText()
	if string(b) != "requesting" || Idle.String() != "idle" {
		t.Errorf("state text = %q / %q", b, Idle.String())
	}
}
