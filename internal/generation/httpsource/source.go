package httpsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-session/internal/generation"
)

const maxReplyBytes = 1 << 20

// Config holds connection details for the generation backend.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Source posts the logical requests to a generation backend as JSON and
// hands the reply body back for validation.
type Source struct {
	httpClient   *http.Client
	config       Config
	logger       zerolog.Logger
	questionsURL string
	feedbackURL  string
}

var _ generation.Source = (*Source)(nil)

func New(cfg Config, logger zerolog.Logger) *Source {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	return &Source{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		config:       cfg,
		logger:       logger.With().Str("component", "http_source").Logger(),
		questionsURL: base + "/questions",
		feedbackURL:  base + "/feedback",
	}
}

func (s *Source) GenerateQuestions(ctx context.Context, req generation.QuestionsRequest) ([]byte, error) {
	return s.post(ctx, s.questionsURL, req)
}

func (s *Source) GenerateFeedback(ctx context.Context, req generation.FeedbackRequest) ([]byte, error) {
	if req.Answers == nil {
		req.Answers = map[string]int{}
	}
	return s.post(ctx, s.feedbackURL, req)
}

func (s *Source) post(ctx context.Context, url string, payload any) ([]byte, error) {
	if s.config.BaseURL == "" {
		return nil, fmt.Errorf("generation endpoint not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.logger.Warn().Int("status", resp.StatusCode).Str("url", url).Msg("generation backend error")
		return nil, fmt.Errorf("generation backend returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("read generation reply: %w", err)
	}
	return data, nil
}
