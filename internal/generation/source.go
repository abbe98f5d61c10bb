package generation

import (
	"context"
)

// QuestionsRequest is sent to a source when a question set is needed.
type QuestionsRequest struct {
	Topic  string `json:"topic"`
	Prompt string `json:"-"`
}

// FeedbackRequest describes a finished attempt.
type FeedbackRequest struct {
	Score   int            `json:"score"`
	Total   int            `json:"total"`
	Answers map[string]int `json:"answers"`
	Prompt  string         `json:"-"`
}

// Source is the unreliable generation backend. Implementations return the
// raw reply body; all schema validation happens in the Client.
type Source interface {
	GenerateQuestions(ctx context.Context, req QuestionsRequest) ([]byte, error)
	GenerateFeedback(ctx context.Context, req FeedbackRequest) ([]byte, error)
}
