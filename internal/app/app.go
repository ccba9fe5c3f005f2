// Package app dispatches user commands to the task store and the
// suggestion client and renders the resulting state as a View.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"smartflow-backend/internal/analytics"
	"smartflow-backend/internal/suggestions"
	"smartflow-backend/internal/tasks"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command is one of the types below.
type Command interface {
	command()
}

type AddTask struct {
	Text     string
	Priority tasks.Priority
	Category string
}

type ToggleTask struct{ ID string }

type DeleteTask struct{ ID string }

type FetchSuggestions struct{}

type AcceptSuggestion struct{ Index int }

type SetFilter struct{ Filter string }

func (AddTask) command()          {}
func (ToggleTask) command()       {}
func (DeleteTask) command()       {}
func (FetchSuggestions) command() {}
func (AcceptSuggestion) command() {}
func (SetFilter) command()        {}

// View is everything a renderer needs.
type View struct {
	Filter          tasks.Filter             `json:"filter"`
	Tasks           []tasks.Task             `json:"tasks"`
	Stats           tasks.Stats              `json:"stats"`
	Suggestions     []suggestions.Suggestion `json:"suggestions"`
	SuggestionState suggestions.State        `json:"suggestionState"`
	// Dropped is set when FetchSuggestions found a request in flight.
	Dropped bool `json:"dropped,omitempty"`
}

type App struct {
	Store   *tasks.Store
	Suggest *suggestions.Client

	events *analytics.Recorder
	logger *slog.Logger

	mu     sync.Mutex
	filter tasks.Filter
}

func New(store *tasks.Store, suggest *suggestions.Client, events *analytics.Recorder, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		Store:   store,
		Suggest: suggest,
		events:  events,
		logger:  logger,
		filter:  tasks.FilterAll,
	}
}

// Dispatch applies cmd and returns the state after it. Domain no-ops
// (blank text, unknown id, bad index) are not errors.
func (a *App) Dispatch(ctx context.Context, cmd Command) (View, error) {
	switch c := cmd.(type) {
	case AddTask:
		if t, ok := a.Store.Add(ctx, c.Text, c.Priority, c.Category); ok {
			a.events.Log(ctx, "task_created", map[string]any{
				"task_id":  t.ID,
				"priority": t.Priority,
				"category": t.Category,
				"text_len": len(t.Text),
				"source":   "manual",
			})
		}

	case ToggleTask:
		if t, ok := a.Store.Toggle(ctx, c.ID); ok {
			event := "task_uncompleted"
			if t.Completed {
				event = "task_completed"
			}
			a.events.Log(ctx, event, map[string]any{"task_id": t.ID, "priority": t.Priority})
		}

	case DeleteTask:
		if t, ok := a.Store.Delete(ctx, c.ID); ok {
			a.events.Log(ctx, "task_deleted", map[string]any{"task_id": t.ID, "completed": t.Completed})
		}

	case FetchSuggestions:
		// Once started the external call runs to completion.
		started := a.Suggest.Fetch(context.WithoutCancel(ctx), a.Store.Tasks())
		v := a.View()
		v.Dropped = !started
		if started {
			a.events.Log(ctx, "suggestions_fetched", map[string]any{"count": len(v.Suggestions)})
		}
		return v, nil

	case AcceptSuggestion:
		if t, ok := a.Suggest.Accept(ctx, c.Index); ok {
			a.events.Log(ctx, "suggestion_accepted", map[string]any{
				"task_id":  t.ID,
				"index":    c.Index,
				"priority": t.Priority,
				"category": t.Category,
			})
		}

	case SetFilter:
		f, err := tasks.ParseFilter(c.Filter)
		if err != nil {
			return a.View(), err
		}
		a.mu.Lock()
		a.filter = f
		a.mu.Unlock()

	default:
		return a.View(), fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}

	return a.View(), nil
}

func (a *App) Filter() tasks.Filter {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filter
}

// View renders current state with the stored filter.
func (a *App) View() View {
	return a.ViewWith(a.Filter())
}

// ViewWith renders current state with f without changing the stored filter.
func (a *App) ViewWith(f tasks.Filter) View {
	all := a.Store.Tasks()
	return View{
		Filter:          f,
		Tasks:           tasks.Filtered(all, f),
		Stats:           tasks.ComputeStats(all),
		Suggestions:     a.Suggest.Suggestions(),
		SuggestionState: a.Suggest.State(),
	}
}
