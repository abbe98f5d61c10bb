package queries

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Queries runs the archive statements against a DBTX.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// QuizResult mirrors a quiz_results row.
type QuizResult struct {
	ResultID    int64     `db:"result_id"`
	SessionID   string    `db:"session_id"`
	TopicID     string    `db:"topic_id"`
	TopicName   string    `db:"topic_name"`
	Score       int32     `db:"score"`
	Total       int32     `db:"total"`
	Feedback    string    `db:"feedback"`
	Answers     []byte    `db:"answers"`
	CompletedAt time.Time `db:"completed_at"`
}

type InsertResultParams struct {
	SessionID   string
	TopicID     string
	TopicName   string
	Score       int32
	Total       int32
	Feedback    string
	Answers     []byte
	CompletedAt time.Time
}

const insertResult = `
INSERT INTO quiz_results (session_id, topic_id, topic_name, score, total, feedback, answers, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (q *Queries) InsertResult(ctx context.Context, arg InsertResultParams) error {
	_, err := q.db.Exec(ctx, insertResult,
		arg.SessionID,
		arg.TopicID,
		arg.TopicName,
		arg.Score,
		arg.Total,
		arg.Feedback,
		arg.Answers,
		arg.CompletedAt,
	)
	return err
}

const listRecentResults = `
SELECT result_id, session_id::text AS session_id, topic_id, topic_name, score, total, feedback, answers, completed_at
FROM quiz_results
ORDER BY completed_at DESC
LIMIT $1`

func (q *Queries) ListRecentResults(ctx context.Context, limit int32) ([]QuizResult, error) {
	rows, err := q.db.Query(ctx, listRecentResults, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[QuizResult])
}
