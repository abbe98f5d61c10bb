package session

import (
	"time"

	"github.com/gokatarajesh/quiz-session/internal/quiz"
)

// Snapshot is a detached, serialisable copy of a session. It is what the
// presentation layer reads and what stores persist.
type Snapshot struct {
	ID        string           `json:"id"`
	State     State            `json:"state"`
	Topic     *quiz.Topic      `json:"topic"`
	Questions quiz.QuestionSet `json:"questions"`
	Answers   quiz.Answers     `json:"answers"`
	Cursor    int              `json:"cursor"`
	LastError *string          `json:"last_error"`
	Feedback  *string          `json:"feedback"`
	Ticket    string           `json:"ticket,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Result derives the score view for a submitted session. It returns nil
// outside the Results state.
func (s Snapshot) Result() *quiz.Result {
	if s.State != StateResults {
		return nil
	}
	res := quiz.Summarize(s.Questions, s.Answers)
	return &res
}

// Snapshot copies the current session data.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.id,
		State:     s.state,
		Questions: cloneSet(s.questions),
		Answers:   s.answers.Clone(),
		Cursor:    s.cursor,
		Ticket:    s.ticket,
		UpdatedAt: s.updatedAt,
	}
	if s.topic != nil {
		t := *s.topic
		snap.Topic = &t
	}
	if s.lastError != nil {
		e := *s.lastError
		snap.LastError = &e
	}
	if s.feedback != nil {
		f := *s.feedback
		snap.Feedback = &f
	}
	return snap
}

// Restore rebuilds a session from a stored snapshot.
func Restore(snap Snapshot) *Session {
	s := New(snap.ID)
	s.state = snap.State
	if snap.Topic != nil {
		t := *snap.Topic
		s.topic = &t
	}
	s.questions = cloneSet(snap.Questions)
	if snap.Answers != nil {
		s.answers = snap.Answers.Clone()
	}
	s.cursor = snap.Cursor
	s.lastError = snap.LastError
	s.feedback = snap.Feedback
	s.ticket = snap.Ticket
	if !snap.UpdatedAt.IsZero() {
		s.updatedAt = snap.UpdatedAt
	}
	return s
}

func cloneSet(set quiz.QuestionSet) quiz.QuestionSet {
	out := quiz.QuestionSet{Topic: set.Topic}
	if set.Questions == nil {
		return out
	}
	out.Questions = make([]quiz.Question, len(set.Questions))
	for i, q := range set.Questions {
		q.Options = append([]string(nil), q.Options...)
		out.Questions[i] = q
	}
	return out
}
