package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/gokatarajesh/quiz-session/internal/metrics"
	"github.com/gokatarajesh/quiz-session/internal/quiz"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
)

// ExhaustedError is the terminal failure after every attempt was used.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed to generate questions after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Options tunes the retry policy. Zero values select the defaults
// (3 attempts, 1s base delay).
type Options struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Metrics     *metrics.Metrics
}

// Client validates and retries calls to a Source. It keeps no per-call
// state, so concurrent calls never interfere.
type Client struct {
	source      Source
	maxAttempts int
	baseDelay   time.Duration
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

func NewClient(source Source, opts Options, logger zerolog.Logger) *Client {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaultBaseDelay
	}
	return &Client{
		source:      source,
		maxAttempts: opts.MaxAttempts,
		baseDelay:   opts.BaseDelay,
		metrics:     opts.Metrics,
		logger:      logger.With().Str("component", "generation_client").Logger(),
	}
}

// linearBackoff waits attempt*base after each failed attempt.
func linearBackoff(base time.Duration) retry.Backoff {
	attempt := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * base, false
	})
}

// RequestQuestions asks the source for a question set on topic, retrying
// transport and validation failures with linear backoff.
func (c *Client) RequestQuestions(ctx context.Context, topic string) (quiz.QuestionSet, error) {
	req := QuestionsRequest{Topic: topic, Prompt: BuildQuestionsPrompt(topic)}
	backoff := retry.WithMaxRetries(uint64(c.maxAttempts-1), linearBackoff(c.baseDelay))

	var (
		set     quiz.QuestionSet
		attempt int
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		log := c.logger.With().
			Str("topic", topic).
			Int("attempt", attempt).
			Int("max_attempts", c.maxAttempts).
			Logger()
		log.Info().Msg("requesting questions")

		started := time.Now()
		raw, err := c.source.GenerateQuestions(ctx, req)
		c.metrics.ObserveSource("questions", started)
		if err != nil {
			c.metrics.Attempt("transport_error")
			log.Warn().Err(err).Msg("question source failed")
			return retry.RetryableError(err)
		}

		got, err := ValidateQuestions(raw)
		if err != nil {
			c.metrics.Attempt("invalid")
			log.Warn().Err(err).Msg("question reply rejected")
			return retry.RetryableError(err)
		}

		c.metrics.Attempt("ok")
		set = got
		return nil
	})
	if err == nil {
		return set, nil
	}

	c.metrics.Exhausted()
	c.logger.Error().Err(err).Str("topic", topic).Int("attempts", attempt).Msg("question generation exhausted")
	return quiz.QuestionSet{}, &ExhaustedError{Attempts: attempt, Last: err}
}

// RequestFeedback asks the source for feedback text. It never fails: any
// transport or validation problem is replaced by FallbackFeedback.
func (c *Client) RequestFeedback(ctx context.Context, score, total int, answers quiz.Answers) string {
	req := FeedbackRequest{
		Score:   score,
		Total:   total,
		Answers: answers,
		Prompt:  BuildFeedbackPrompt(score, total),
	}

	started := time.Now()
	raw, err := c.source.GenerateFeedback(ctx, req)
	c.metrics.ObserveSource("feedback", started)
	if err != nil {
		c.metrics.Fallback("transport_error")
		c.logger.Warn().Err(err).Int("score", score).Int("total", total).Msg("feedback source failed, using fallback")
		return FallbackFeedback(score, total)
	}

	text, err := ValidateFeedback(raw)
	if err != nil {
		c.metrics.Fallback("invalid")
		c.logger.Warn().Err(err).Int("score", score).Int("total", total).Msg("feedback reply rejected, using fallback")
		return FallbackFeedback(score, total)
	}
	return text
}
