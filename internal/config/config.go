// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Config holds every setting the binaries read from the environment.
type Config struct {
	Addr      string `env:"TASKVAULT_ADDR" envDefault:":5000"`
	Store     string `env:"TASKVAULT_STORE" envDefault:"sqlite"`
	DBPath    string `env:"TASKVAULT_DB_PATH" envDefault:"data/taskvault.db"`
	MongoURI  string `env:"MONGO_URI"`
	MongoDB   string `env:"TASKVAULT_MONGO_DB" envDefault:"taskvault"`
	StaticDir string `env:"TASKVAULT_STATIC_DIR" envDefault:"web/dist"`

	FrontendURL string   `env:"FRONTEND_URL"`
	CORSOrigins []string `env:"TASKVAULT_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`

	InferenceToken string        `env:"HF_TOKEN"`
	InferenceURL   string        `env:"TASKVAULT_INFERENCE_URL" envDefault:"https://router.huggingface.co/v1/"`
	SuggestTimeout time.Duration `env:"TASKVAULT_SUGGEST_TIMEOUT" envDefault:"4s"`

	AuthSecret string `env:"TASKVAULT_AUTH_SECRET"`

	LogLevel  string `env:"TASKVAULT_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"TASKVAULT_LOG_FORMAT" envDefault:"text"`

	OTelEndpoint string `env:"TASKVAULT_OTEL_ENDPOINT"`

	APIURL string `env:"TASKVAULT_API_URL" envDefault:"http://localhost:5000/api"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the given .env files (missing files are ignored, existing
// variables win) and parses the environment into a Config. It does not call
// Validate; only the server needs a usable store.
func Load(dotenv ...string) (Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return fmt.Errorf("sqlite store requires TASKVAULT_DB_PATH")
		}
	case StoreMongo:
		if strings.TrimSpace(c.MongoURI) == "" {
			return fmt.Errorf("mongo store requires MONGO_URI")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.SuggestTimeout <= 0 {
		return fmt.Errorf("suggest timeout must be positive")
	}
	for _, origin := range c.AllowedOrigins() {
		if err := validateOrigin(origin); err != nil {
			return err
		}
	}
	return nil
}

// validateOrigin accepts only absolute http(s) origins; the CORS middleware
// panics on anything else.
func validateOrigin(origin string) error {
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid CORS origin %q: %w", origin, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid CORS origin %q: want http:// or https:// with a host", origin)
	}
	return nil
}

// AllowedOrigins is the CORS allow-list: the configured origins plus the
// frontend URL when set.
func (c Config) AllowedOrigins() []string {
	origins := make([]string, 0, len(c.CORSOrigins)+1)
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if u := strings.TrimRight(strings.TrimSpace(c.FrontendURL), "/"); u != "" {
		origins = append(origins, u)
	}
	return origins
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
