package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Generation source kinds.
const (
	SourceMock   = "mock"
	SourceHTTP   = "http"
	SourceOpenAI = "openai"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"quiz-session"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Generator Generator
	OpenAI    OpenAI
	Redis     Redis
	Postgres  Postgres
	Security  Security
}

// Generator configures the question/feedback source and the retry policy.
type Generator struct {
	Source       string        `env:"GENERATOR_SOURCE" envDefault:"mock"`
	URL          string        `env:"GENERATOR_URL" envDefault:""`
	APIKey       string        `env:"GENERATOR_API_KEY" envDefault:""`
	HTTPTimeout  time.Duration `env:"GENERATOR_HTTP_TIMEOUT" envDefault:"6s"`
	MaxAttempts  int           `env:"GENERATOR_MAX_ATTEMPTS" envDefault:"3"`
	BaseDelay    time.Duration `env:"GENERATOR_BASE_DELAY" envDefault:"1s"`
	MockDelay    time.Duration `env:"GENERATOR_MOCK_DELAY" envDefault:"1500ms"`
	CallDeadline time.Duration `env:"GENERATOR_CALL_DEADLINE" envDefault:"2m"`
}

// OpenAI configures the chat-model source.
type OpenAI struct {
	APIKey  string `env:"OPENAI_API_KEY" envDefault:""`
	Model   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	BaseURL string `env:"OPENAI_BASE_URL" envDefault:""`
}

// Redis holds the snapshot store configuration. Empty Addr keeps snapshots in memory.
type Redis struct {
	Addr        string        `env:"REDIS_ADDR" envDefault:""`
	DB          int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize    int           `env:"REDIS_POOL_SIZE" envDefault:"20"`
	SnapshotTTL time.Duration `env:"SESSION_SNAPSHOT_TTL" envDefault:"2h"`
}

// Postgres captures connection info for the results archive. Empty Host
// disables archiving.
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:""`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER" envDefault:""`
	Password string `env:"PG_PASSWORD" envDefault:""`
	Database string `env:"PG_DATABASE" envDefault:""`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Enabled reports whether the archive is configured.
func (p Postgres) Enabled() bool {
	return p.Host != ""
}

// DSN builds a libpq-style connection string.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Security stores the secret used to sign session tokens.
type Security struct {
	SessionSecret string        `env:"SESSION_TOKEN_SECRET,notEmpty"`
	TokenTTL      time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"12h"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *App) validate() error {
	switch c.Generator.Source {
	case SourceMock:
	case SourceHTTP:
		if c.Generator.URL == "" {
			return fmt.Errorf("GENERATOR_URL is required when GENERATOR_SOURCE=http")
		}
	case SourceOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when GENERATOR_SOURCE=openai")
		}
	default:
		return fmt.Errorf("unknown GENERATOR_SOURCE %q", c.Generator.Source)
	}
	if c.Generator.MaxAttempts < 1 {
		return fmt.Errorf("GENERATOR_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}
