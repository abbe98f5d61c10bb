package app

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-session/internal/config"
	"github.com/gokatarajesh/quiz-session/internal/generation"
	"github.com/gokatarajesh/quiz-session/internal/generation/httpsource"
	"github.com/gokatarajesh/quiz-session/internal/generation/openai"
)

func TestNewSource(t *testing.T) {
	cfg := &config.App{}

	cfg.Generator.Source = config.SourceMock
	src, err := newSource(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &generation.MockSource{}, src)

	cfg.Generator.Source = config.SourceHTTP
	cfg.Generator.URL = "http://generator.local"
	src, err = newSource(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &httpsource.Source{}, src)

	cfg.Generator.Source = config.SourceOpenAI
	cfg.OpenAI.APIKey = "sk-test"
	src, err = newSource(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &openai.Source{}, src)

	cfg.Generator.Source = "smoke-signals"
	_, err = newSource(cfg, zerolog.Nop())
	assert.Error(t, err)
}
