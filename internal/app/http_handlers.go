package app

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/rs/cors"

	"smartflow-backend/internal/analytics"
	"smartflow-backend/internal/tasks"
)

var (
	queryDecoder = newQueryDecoder()
	validate     = validator.New(validator.WithRequiredStructEnabled())
)

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// Handler returns the full HTTP surface wrapped in CORS.
func Handler(a *App, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ListTasksHandler(a)(w, r)
		case http.MethodPost:
			AddTaskHandler(a)(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("POST /tasks/{id}/toggle", ToggleTaskHandler(a))
	mux.HandleFunc("DELETE /tasks/{id}", DeleteTaskHandler(a))
	mux.HandleFunc("GET /stats", StatsHandler(a))
	mux.HandleFunc("PUT /filter", SetFilterHandler(a))

	mux.HandleFunc("GET /suggestions", ListSuggestionsHandler(a))
	mux.HandleFunc("POST /suggestions", FetchSuggestionsHandler(a))
	mux.HandleFunc("POST /suggestions/{index}/accept", AcceptSuggestionHandler(a))

	mux.HandleFunc("POST /events/app-opened", analytics.AppOpenedHandler(a.events))

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Platform", "X-App-Version", "X-Session-Id"},
	})

	return c.Handler(analytics.Middleware(mux))
}

func ListTasksHandler(a *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q struct {
			Filter string `schema:"filter"`
		}
		if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
			http.Error(w, "invalid query", http.StatusBadRequest)
			return
		}

		if q.Filter == "" {
			a.writeJSON(w, http.StatusOK, a.View())
			return
		}
		f, err := tasks.ParseFilter(q.Filter)
		if err != nil {
			http.Error(w, "invalid filter", http.StatusBadRequest)
			return
		}
		a.writeJSON(w, http.StatusOK, a.ViewWith(f))
	}
}

func AddTaskHandler(a *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text     string `json:"text"`
			Priority string `json:"priority" validate:"omitempty,oneof=low medium high"`
			Category string `json:"category"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(body); err != nil {
			http.Error(w, "invalid priority", http.StatusBadRequest)
			return
		}

		a.dispatch(w, r, AddTask{
			Text:     body.Text,
			Priority: tasks.Priority(body.Priority),
			Category: body.Category,
		})
	}
}

func ToggleTaskHandler(a *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.dispatch(w, r, ToggleTask{ID: r.PathValue("id")})
	}
}

func DeleteTaskHandler(a *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.dispatch(w, r, DeleteTask{ID: r.PathValue("id")})
	}
}

func StatsHandler(a *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.writeJSON(w, http.StatusOK, tasks.ComputeStats(a.Store.Tasks()))
	}
}

func SetFilterHandler(a *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Filter string `json:"filter"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		a.dispatch(w, r, SetFilter{Filter: body.Filter})
	}
}

func ListSuggestionsHandler(a *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.writeJSON(w, http.StatusOK, map[string]any{
			"state":       a.Suggest.State(),
			"suggestions": a.Suggest.Suggestions(),
		})
	}
}

func FetchSuggestionsHandler(a *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := a.Dispatch(r.Context(), FetchSuggestions{})
		status := http.StatusOK
		if v.Dropped {
			status = http.StatusAccepted
		}
		a.writeJSON(w, status, v)
	}
}

func AcceptSuggestionHandler(a *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, err := strconv.Atoi(r.PathValue("index"))
		if err != nil {
			http.Error(w, "invalid index", http.StatusBadRequest)
			return
		}
		a.dispatch(w, r, AcceptSuggestion{Index: idx})
	}
}

func (a *App) dispatch(w http.ResponseWriter, r *http.Request, cmd Command) {
	v, err := a.Dispatch(r.Context(), cmd)
	if errors.Is(err, tasks.ErrInvalidFilter) {
		http.Error(w, "invalid filter", http.StatusBadRequest)
		return
	}
	if err != nil {
		a.logger.Error("dispatch failed", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	a.writeJSON(w, http.StatusOK, v)
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("encode response failed", slog.Any("error", err))
	}
}
