// Package suggestions turns a model reply into candidate tasks that can be
// accepted one at a time.
package suggestions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"smartflow-backend/internal/ai"
	"smartflow-backend/internal/tasks"
)

type State int

const (
	Idle State = iota
	Requesting
)

func (s State) String() string {
	if s == Requesting {
		return "requesting"
	}
	return "idle"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Suggestion struct {
	Text     string         `json:"text" validate:"required"`
	Priority tasks.Priority `json:"priority" validate:"required,oneof=low medium high"`
	Category string         `json:"category"`
}

type response struct {
	Suggestions []Suggestion `json:"suggestions" validate:"required,dive"`
}

// Adder is the task store surface Accept needs.
type Adder interface {
	Add(ctx context.Context, text string, priority tasks.Priority, category string) (tasks.Task, bool)
}

// Client allows one outstanding request; calls made meanwhile are dropped.
type Client struct {
	gen      ai.Generator
	store    Adder
	logger   *slog.Logger
	validate *validator.Validate

	mu    sync.Mutex
	state State
	list  []Suggestion
}

func New(gen ai.Generator, store Adder, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		gen:      gen,
		store:    store,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Fetch asks the model for suggestions based on current. It reports false
// without calling out when a request is already in flight. Failures leave
// an empty list and are only logged.
func (c *Client) Fetch(ctx context.Context, current []tasks.Task) bool {
	c.mu.Lock()
	if c.state == Requesting {
		c.mu.Unlock()
		c.logger.Debug("suggestion request already in flight, dropping")
		return false
	}
	c.state = Requesting
	c.mu.Unlock()

	texts := make([]string, 0, ai.MaxContextTasks)
	for i, t := range current {
		if i == ai.MaxContextTasks {
			break
		}
		texts = append(texts, t.Text)
	}
	prompt := ai.BuildSuggestionPrompt(ai.BuildContext(texts))

	list, err := c.request(ctx, prompt)
	if err != nil {
		c.logger.Warn("suggestion request failed", slog.Any("error", err))
		list = []Suggestion{}
	} else {
		c.logger.Info("suggestions received", slog.Int("count", len(list)))
	}

	c.mu.Lock()
	c.list = list
	c.state = Idle
	c.mu.Unlock()
	return true
}

func (c *Client) request(ctx context.Context, prompt string) ([]Suggestion, error) {
	raw, err := c.gen.GenerateJSON(ctx, prompt, ai.SuggestionSchema)
	if err != nil {
		return nil, err
	}
	return c.parse(raw)
}

func (c *Client) parse(raw string) ([]Suggestion, error) {
	var res response
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("parse suggestions: %w", err)
	}
	if err := c.validate.Struct(res); err != nil {
		return nil, fmt.Errorf("invalid suggestions: %w", err)
	}
	return res.Suggestions, nil
}

// Accept adds the suggestion at index as a task, then drops it from the
// list by position. The entry is dropped even when the store ignores it.
// Out-of-range indexes are ignored.
func (c *Client) Accept(ctx context.Context, index int) (tasks.Task, bool) {
	c.mu.Lock()
	if index < 0 || index >= len(c.list) {
		c.mu.Unlock()
		return tasks.Task{}, false
	}
	s := c.list[index]
	c.mu.Unlock()

	t, ok := c.store.Add(ctx, s.Text, s.Priority, s.Category)

	c.mu.Lock()
	// A fetch may have replaced the list while the store was writing.
	if index < len(c.list) && c.list[index] == s {
		next := make([]Suggestion, 0, len(c.list)-1)
		next = append(next, c.list[:index]...)
		next = append(next, c.list[index+1:]...)
		c.list = next
	}
	c.mu.Unlock()

	return t, ok
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Suggestions returns a copy of the transient list.
func (c *Client) Suggestions() []Suggestion {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Suggestion, len(c.list))
	copy(out, c.list)
	return out
}
