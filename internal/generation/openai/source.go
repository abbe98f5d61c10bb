package openai

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/gokatarajesh/quiz-session/internal/generation"
)

const systemPrompt = "You are an expert quiz assistant. You only reply with a single JSON object."

// Config selects the model and endpoint.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Source asks a chat model for the JSON replies, using the prompts built by
// the generation package.
type Source struct {
	client *goopenai.Client
	model  string
	logger zerolog.Logger
}

var _ generation.Source = (*Source)(nil)

func New(cfg Config, logger zerolog.Logger) *Source {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = goopenai.GPT4oMini
	}
	return &Source{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger.With().Str("component", "openai_source").Str("model", model).Logger(),
	}
}

func (s *Source) GenerateQuestions(ctx context.Context, req generation.QuestionsRequest) ([]byte, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = generation.BuildQuestionsPrompt(req.Topic)
	}
	return s.complete(ctx, prompt)
}

func (s *Source) GenerateFeedback(ctx context.Context, req generation.FeedbackRequest) ([]byte, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = generation.BuildFeedbackPrompt(req.Score, req.Total)
	}
	return s.complete(ctx, prompt)
}

func (s *Source) complete(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := s.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: s.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}
	s.logger.Debug().Int("total_tokens", resp.Usage.TotalTokens).Msg("chat completion done")
	return []byte(resp.Choices[0].Message.Content), nil
}
