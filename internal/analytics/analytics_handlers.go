package analytics

import (
	"encoding/json"
	"net/http"
)

// AppOpenedHandler records a basic "the app was opened" metric.
func AppOpenedHandler(rec *Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ColdStart bool   `json:"cold_start"`
			From      string `json:"from"` // push/deeplink/icon/unknown
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		ctx := r.Context()
		if _, ok := EnvelopeFromContext(ctx); !ok {
			ctx = WithEnvelope(ctx, FromRequest(r))
		}

		rec.Log(ctx, "app_opened", map[string]any{
			"cold_start": body.ColdStart,
			"from":       body.From,
		})

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}
