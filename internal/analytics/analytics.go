package analytics

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type ctxKey string

const envelopeKey ctxKey = "analytics_envelope"

// Envelope is what we attach to every event.
type Envelope struct {
	SessionID    string
	Platform     string
	AppVersion   string
	DeviceLocale string
}

// FromRequest extracts event envelope fields from request headers.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	switch platform {
	case "ios", "android", "web", "cli":
	default:
		platform = "unknown"
	}

	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	return Envelope{
		SessionID:    strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:     platform,
		AppVersion:   strings.TrimSpace(r.Header.Get("X-App-Version")),
		DeviceLocale: locale,
	}
}

func WithEnvelope(ctx context.Context, env Envelope) context.Context {
	return context.WithValue(ctx, envelopeKey, env)
}

func EnvelopeFromContext(ctx context.Context) (Envelope, bool) {
	env, ok := ctx.Value(envelopeKey).(Envelope)
	return env, ok
}

// Middleware stores the request envelope in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithEnvelope(r.Context(), FromRequest(r))))
	})
}

// Recorder emits product events as structured log records.
// A nil Recorder drops everything.
type Recorder struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewRecorder(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{logger: logger.With(slog.String("component", "analytics")), now: time.Now}
}

// Log records one event. Never pass raw task text in props.
func (r *Recorder) Log(ctx context.Context, eventName string, props map[string]any) {
	if r == nil || eventName == "" {
		return
	}

	attrs := []slog.Attr{
		slog.String("event", eventName),
		slog.Time("event_time", r.now().UTC()),
	}
	if env, ok := EnvelopeFromContext(ctx); ok {
		attrs = append(attrs, slog.Group("envelope",
			slog.String("session_id", env.SessionID),
			slog.String("platform", env.Platform),
			slog.String("app_version", env.AppVersion),
			slog.String("device_locale", env.DeviceLocale),
		))
	}
	if len(props) > 0 {
		attrs = append(attrs, slog.Any("properties", props))
	}

	r.logger.LogAttrs(ctx, slog.LevelInfo, "analytics event", attrs...)
}
