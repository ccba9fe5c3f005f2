package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultStorageKey  = "smart-flow-todos"
	DefaultGeminiModel = "gemini-3-flash-preview"
	DefaultOpenAIModel = "gpt-4o-mini"
)

type Config struct {
	HTTPAddr    string
	CORSOrigins []string
	LogLevel    slog.Level

	StorageDriver string // file | memory | sqlite | postgres
	StorageDir    string
	StorageKey    string
	SQLitePath    string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	SuggestProvider string // gemini | openai
	SuggestTimeout  time.Duration

	GeminiKey   string
	GeminiModel string

	OpenAIKey   string
	OpenAIModel string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// .env is optional; real env vars win over it.
	_ = godotenv.Load()

	port, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		port = 5432 // fallback
	}

	level, err := ParseLevel(getenv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	var timeout time.Duration
	if raw := os.Getenv("SUGGEST_TIMEOUT"); raw != "" {
		timeout, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SUGGEST_TIMEOUT %q: %w", raw, err)
		}
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		geminiKey = os.Getenv("API_KEY")
	}

	cfg := &Config{
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "*")),
		LogLevel:    level,

		StorageDriver: strings.ToLower(getenv("STORAGE_DRIVER", "file")),
		StorageDir:    getenv("STORAGE_DIR", ".smartflow"),
		StorageKey:    getenv("STORAGE_KEY", DefaultStorageKey),
		SQLitePath:    getenv("SQLITE_PATH", "smartflow.db"),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     port,
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		SuggestProvider: strings.ToLower(getenv("SUGGEST_PROVIDER", "gemini")),
		SuggestTimeout:  timeout,

		GeminiKey:   geminiKey,
		GeminiModel: getenv("GEMINI_MODEL", DefaultGeminiModel),

		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: getenv("OPENAI_MODEL", DefaultOpenAIModel),
	}

	switch cfg.StorageDriver {
	case "file", "memory", "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	switch cfg.SuggestProvider {
	case "gemini", "openai":
	default:
		return nil, fmt.Errorf("unknown SUGGEST_PROVIDER %q", cfg.SuggestProvider)
	}

	return cfg, nil
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

// ParseLevel maps debug|info|warn|error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
