package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_TOKEN_SECRET", "s3cret")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "quiz-session", cfg.Name)
	assert.Equal(t, SourceMock, cfg.Generator.Source)
	assert.Equal(t, 3, cfg.Generator.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Generator.BaseDelay)
	assert.False(t, cfg.Postgres.Enabled())
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("SESSION_TOKEN_SECRET", "")
	_, err := Load(context.Background())
	assert.Error(t, err)
}

func TestLoadHTTPSourceNeedsURL(t *testing.T) {
	t.Setenv("SESSION_TOKEN_SECRET", "s3cret")
	t.Setenv("GENERATOR_SOURCE", "http")
	_, err := Load(context.Background())
	assert.ErrorContains(t, err, "GENERATOR_URL")
}

func TestLoadUnknownSource(t *testing.T) {
	t.Setenv("SESSION_TOKEN_SECRET", "s3cret")
	t.Setenv("GENERATOR_SOURCE", "carrier-pigeon")
	_, err := Load(context.Background())
	assert.ErrorContains(t, err, "unknown GENERATOR_SOURCE")
}

func TestPostgresDSN(t *testing.T) {
	p := Postgres{Host: "db", Port: 5432, User: "quiz", Password: "pw", Database: "quiz", SSLMode: "disable"}
	assert.True(t, p.Enabled())
	assert.Equal(t, "host=db port=5432 user=quiz password=pw dbname=quiz sslmode=disable", p.DSN())
}
