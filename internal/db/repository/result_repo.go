package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gokatarajesh/quiz-session/internal/db/queries"
	"github.com/gokatarajesh/quiz-session/internal/quiz"
)

const maxRecentResults = 100

type resultStore interface {
	InsertResult(ctx context.Context, arg queries.InsertResultParams) error
	ListRecentResults(ctx context.Context, limit int32) ([]queries.QuizResult, error)
}

// ResultRepository archives submitted quiz attempts in Postgres.
type ResultRepository struct {
	store resultStore
}

func NewResultRepository(store resultStore) *ResultRepository {
	return &ResultRepository{store: store}
}

// Attempt is one archived quiz attempt.
type Attempt struct {
	SessionID   string       `json:"session_id"`
	Topic       quiz.Topic   `json:"topic"`
	Score       int          `json:"score"`
	Total       int          `json:"total"`
	Feedback    string       `json:"feedback"`
	Answers     quiz.Answers `json:"answers"`
	CompletedAt time.Time    `json:"completed_at"`
}

// Archive stores a finished attempt.
func (r *ResultRepository) Archive(ctx context.Context, a Attempt) error {
	answers := a.Answers
	if answers == nil {
		answers = quiz.Answers{}
	}
	payload, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	completed := a.CompletedAt
	if completed.IsZero() {
		completed = time.Now().UTC()
	}
	return r.store.InsertResult(ctx, queries.InsertResultParams{
		SessionID:   a.SessionID,
		TopicID:     a.Topic.ID,
		TopicName:   a.Topic.Name,
		Score:       int32(a.Score),
		Total:       int32(a.Total),
		Feedback:    a.Feedback,
		Answers:     payload,
		CompletedAt: completed,
	})
}

// Recent lists the latest attempts, newest first.
func (r *ResultRepository) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 || limit > maxRecentResults {
		limit = maxRecentResults
	}
	rows, err := r.store.ListRecentResults(ctx, int32(limit))
	if err != nil {
		return nil, err
	}
	out := make([]Attempt, 0, len(rows))
	for _, row := range rows {
		var answers quiz.Answers
		if len(row.Answers) > 0 {
			if err := json.Unmarshal(row.Answers, &answers); err != nil {
				return nil, fmt.Errorf("decode answers for result %d: %w", row.ResultID, err)
			}
		}
		out = append(out, Attempt{
			SessionID:   row.SessionID,
			Topic:       quiz.Topic{ID: row.TopicID, Name: row.TopicName},
			Score:       int(row.Score),
			Total:       int(row.Total),
			Feedback:    row.Feedback,
			Answers:     answers,
			CompletedAt: row.CompletedAt,
		})
	}
	return out, nil
}
