package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-session/internal/db/queries"
	"github.com/gokatarajesh/quiz-session/internal/quiz"
)

type mockResultStore struct {
	mock.Mock
}

func (m *mockResultStore) InsertResult(ctx context.Context, arg queries.InsertResultParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *mockResultStore) ListRecentResults(ctx context.Context, limit int32) ([]queries.QuizResult, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]queries.QuizResult), args.Error(1)
}

func TestResultRepository_Archive(t *testing.T) {
	store := new(mockResultStore)
	repo := NewResultRepository(store)
	completed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	store.On("InsertResult", mock.Anything, queries.InsertResultParams{
		SessionID:   "0d6a3c9e-4d0c-4a59-9c52-37e0a3b1f001",
		TopicID:     "science",
		TopicName:   "Science",
		Score:       3,
		Total:       5,
		Feedback:    "Good job! Keep learning!",
		Answers:     []byte(`{"q1":1}`),
		CompletedAt: completed,
	}).Return(nil)

	err := repo.Archive(context.Background(), Attempt{
		SessionID:   "0d6a3c9e-4d0c-4a59-9c52-37e0a3b1f001",
		Topic:       quiz.Topic{ID: "science", Name: "Science"},
		Score:       3,
		Total:       5,
		Feedback:    "Good job! Keep learning!",
		Answers:     quiz.Answers{"q1": 1},
		CompletedAt: completed,
	})
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestResultRepository_ArchiveNilAnswers(t *testing.T) {
	store := new(mockResultStore)
	repo := NewResultRepository(store)

	store.On("InsertResult", mock.Anything, mock.MatchedBy(func(p queries.InsertResultParams) bool {
		return string(p.Answers) == "{}" && !p.CompletedAt.IsZero()
	})).Return(nil)

	assert.NoError(t, repo.Archive(context.Background(), Attempt{SessionID: "s", Total: 5}))
	store.AssertExpectations(t)
}

func TestResultRepository_Recent(t *testing.T) {
	store := new(mockResultStore)
	repo := NewResultRepository(store)

	store.On("ListRecentResults", mock.Anything, int32(100)).Return([]queries.QuizResult{
		{ResultID: 7, SessionID: "s1", TopicID: "tech", TopicName: "Tech Trends", Score: 4, Total: 5, Answers: []byte(`{"q1":2,"q2":0}`)},
	}, nil)

	got, err := repo.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Tech Trends", got[0].Topic.Name)
	assert.Equal(t, quiz.Answers{"q1": 2, "q2": 0}, got[0].Answers)
}

func TestResultRepository_RecentError(t *testing.T) {
	store := new(mockResultStore)
	repo := NewResultRepository(store)
	store.On("ListRecentResults", mock.Anything, int32(10)).Return([]queries.QuizResult(nil), errors.New("db down"))

	_, err := repo.Recent(context.Background(), 10)
	assert.ErrorContains(t, err, "db down")
}
