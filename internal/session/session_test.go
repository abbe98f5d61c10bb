package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-session/internal/quiz"
)

var science = quiz.Topic{ID: "science", Name: "Science"}

func validSet() quiz.QuestionSet {
	correct := []int{1, 2, 0, 3, 1}
	qs := make([]quiz.Question, 0, len(correct))
	for i, c := range correct {
		qs = append(qs, quiz.Question{
			ID:           fmt.Sprintf("q%d", i+1),
			Question:     fmt.Sprintf("What is fact number %d?", i+1),
			Options:      []string{"A", "B", "C", "D"},
			CorrectIndex: c,
		})
	}
	return quiz.QuestionSet{Topic: "Science", Questions: qs}
}

func activeSession(t *testing.T) *Session {
	t.Helper()
	s := New("s1")
	require.NoError(t, s.SelectTopic(science))
	_, err := s.StartGeneration()
	require.NoError(t, err)
	require.NoError(t, s.GenerationSucceeded(validSet()))
	return s
}

// stripVolatile drops the timestamp, which differs between otherwise
// identical sessions.
func stripVolatile(snap Snapshot) Snapshot {
	return Snapshot{
		ID:        snap.ID,
		State:     snap.State,
		Topic:     snap.Topic,
		Questions: snap.Questions,
		Answers:   snap.Answers,
		Cursor:    snap.Cursor,
		LastError: snap.LastError,
		Feedback:  snap.Feedback,
		Ticket:    snap.Ticket,
	}
}

func TestNewSessionInitialForm(t *testing.T) {
	snap := New("s1").Snapshot()
	assert.Equal(t, StateTopicSelection, snap.State)
	assert.Nil(t, snap.Topic)
	assert.Empty(t, snap.Questions.Questions)
	assert.Empty(t, snap.Answers)
	assert.Equal(t, 0, snap.Cursor)
	assert.Nil(t, snap.LastError)
	assert.Nil(t, snap.Feedback)
	assert.Nil(t, snap.Result())
}

func TestSelectTopicKeepsState(t *testing.T) {
	s := New("s1")
	require.NoError(t, s.SelectTopic(science))
	require.NoError(t, s.SelectTopic(quiz.Topic{ID: "history", Name: "History"}))

	snap := s.Snapshot()
	assert.Equal(t, StateTopicSelection, snap.State)
	assert.Equal(t, "history", snap.Topic.ID)
}

func TestSelectTopicRejectsEmpty(t *testing.T) {
	s := New("s1")
	assert.ErrorIs(t, s.SelectTopic(quiz.Topic{ID: "x"}), ErrInvalidTopic)
	assert.Nil(t, s.Snapshot().Topic)
}

func TestStartGenerationRequiresTopic(t *testing.T) {
	s := New("s1")
	_, err := s.StartGeneration()
	assert.ErrorIs(t, err, ErrNoTopic)
	assert.Equal(t, StateTopicSelection, s.State())
}

func TestHappyPathScenario(t *testing.T) {
	s := New("s1")
	require.NoError(t, s.SelectTopic(science))
	_, err := s.StartGeneration()
	require.NoError(t, err)
	assert.Equal(t, StateGenerating, s.State())

	require.NoError(t, s.GenerationSucceeded(validSet()))
	snap := s.Snapshot()
	assert.Equal(t, StateQuizActive, snap.State)
	assert.Equal(t, 0, snap.Cursor)
	assert.Empty(t, snap.Answers)

	// three correct (q1,q2,q3), two wrong
	picks := map[string]int{"q1": 1, "q2": 2, "q3": 0, "q4": 0, "q5": 3}
	for id, idx := range picks {
		require.NoError(t, s.SelectAnswer(id, idx))
	}
	require.NoError(t, s.Submit())

	snap = s.Snapshot()
	assert.Equal(t, StateResults, snap.State)
	res := snap.Result()
	require.NotNil(t, res)
	assert.Equal(t, 3, res.Score)
	assert.Equal(t, 5, res.Total)
}

func TestGenerationFailureAndRetry(t *testing.T) {
	s := New("s1")
	require.NoError(t, s.SelectTopic(science))
	_, err := s.StartGeneration()
	require.NoError(t, err)

	require.NoError(t, s.GenerationFailed("failed to generate questions after 3 attempts: boom"))
	snap := s.Snapshot()
	assert.Equal(t, StateError, snap.State)
	require.NotNil(t, snap.LastError)
	assert.Contains(t, *snap.LastError, "3 attempts")
	assert.Equal(t, "science", snap.Topic.ID, "topic survives the error")

	_, err = s.StartGeneration()
	require.NoError(t, err)
	snap = s.Snapshot()
	assert.Equal(t, StateGenerating, snap.State)
	assert.Nil(t, snap.LastError)
}

func TestSecondGenerationClearsAnswers(t *testing.T) {
	s := activeSession(t)
	require.NoError(t, s.SelectAnswer("q1", 1))
	require.NoError(t, s.NextQuestion())
	require.NoError(t, s.Submit())
	s.Reset()

	require.NoError(t, s.SelectTopic(science))
	_, err := s.StartGeneration()
	require.NoError(t, err)
	require.NoError(t, s.GenerationSucceeded(validSet()))

	snap := s.Snapshot()
	assert.Empty(t, snap.Answers)
	assert.Equal(t, 0, snap.Cursor)
}

func TestGenerationSucceededRejectsUnvalidatedSet(t *testing.T) {
	s := New("s1")
	require.NoError(t, s.SelectTopic(science))
	_, err := s.StartGeneration()
	require.NoError(t, err)

	short := validSet()
	short.Questions = short.Questions[:4]
	assert.ErrorIs(t, s.GenerationSucceeded(short), ErrInvalidQuestionSet)
	assert.Equal(t, StateGenerating, s.State())
}

func TestSelectAnswerOverwrites(t *testing.T) {
	s := activeSession(t)
	require.NoError(t, s.SelectAnswer("q1", 0))
	require.NoError(t, s.SelectAnswer("q1", 3))

	snap := s.Snapshot()
	assert.Len(t, snap.Answers, 1)
	assert.Equal(t, 3, snap.Answers["q1"])
	assert.Equal(t, 0, snap.Cursor, "answering does not move the cursor")
}

func TestSelectAnswerCallerErrors(t *testing.T) {
	s := activeSession(t)

	err := s.SelectAnswer("q1", 4)
	assert.ErrorIs(t, err, ErrInvalidOption)
	assert.False(t, errors.Is(err, ErrInvalidTransition))

	assert.ErrorIs(t, s.SelectAnswer("q1", -1), ErrInvalidOption)
	assert.ErrorIs(t, s.SelectAnswer("q9", 0), ErrUnknownQuestion)
	assert.Empty(t, s.Snapshot().Answers)
}

func TestAnswerRecordNeverExceedsSetSize(t *testing.T) {
	s := activeSession(t)
	for round := 0; round < 3; round++ {
		for i := 1; i <= 6; i++ {
			_ = s.SelectAnswer(fmt.Sprintf("q%d", i), round%4)
		}
	}
	assert.Len(t, s.Snapshot().Answers, quiz.QuestionsPerSet)
}

func TestCursorClamping(t *testing.T) {
	s := activeSession(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.PreviousQuestion())
	}
	assert.Equal(t, 0, s.Snapshot().Cursor)

	for i := 0; i < 20; i++ {
		require.NoError(t, s.NextQuestion())
		c := s.Snapshot().Cursor
		assert.GreaterOrEqual(t, c, 0)
		assert.LessOrEqual(t, c, quiz.QuestionsPerSet-1)
	}
	assert.Equal(t, quiz.QuestionsPerSet-1, s.Snapshot().Cursor)

	require.NoError(t, s.PreviousQuestion())
	assert.Equal(t, quiz.QuestionsPerSet-2, s.Snapshot().Cursor)
}

func TestSubmitWithNoAnswersScoresZero(t *testing.T) {
	s := activeSession(t)
	require.NoError(t, s.Submit())
	res := s.Snapshot().Result()
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Score)
}

func TestSetFeedbackOverwrites(t *testing.T) {
	s := activeSession(t)
	require.NoError(t, s.Submit())
	require.NoError(t, s.SetFeedback("first feedback text"))
	require.NoError(t, s.SetFeedback("second feedback text"))
	assert.Equal(t, "second feedback text", *s.Snapshot().Feedback)
}

func TestResetFromResultsEqualsFreshSession(t *testing.T) {
	s := activeSession(t)
	require.NoError(t, s.SelectAnswer("q2", 2))
	require.NoError(t, s.NextQuestion())
	require.NoError(t, s.Submit())
	require.NoError(t, s.SetFeedback("Great job, keep it up!"))

	s.Reset()
	assert.Equal(t, stripVolatile(New("s1").Snapshot()), stripVolatile(s.Snapshot()))
}

func TestResetFromEveryState(t *testing.T) {
	setups := map[State]func(*Session){
		StateTopicSelection: func(*Session) {},
		StateGenerating: func(s *Session) {
			_ = s.SelectTopic(science)
			_, _ = s.StartGeneration()
		},
		StateError: func(s *Session) {
			_ = s.SelectTopic(science)
			_, _ = s.StartGeneration()
			_ = s.GenerationFailed("boom")
		},
	}
	for state, setup := range setups {
		t.Run(string(state), func(t *testing.T) {
			s := New("s1")
			setup(s)
			require.Equal(t, state, s.State())
			s.Reset()
			assert.Equal(t, stripVolatile(New("s1").Snapshot()), stripVolatile(s.Snapshot()))
		})
	}
}

type transition struct {
	name  string
	apply func(*Session) error
}

func allTransitions() []transition {
	return []transition{
		{"selectTopic", func(s *Session) error { return s.SelectTopic(science) }},
		{"startGeneration", func(s *Session) error { _, err := s.StartGeneration(); return err }},
		{"generationSucceeded", func(s *Session) error { return s.GenerationSucceeded(validSet()) }},
		{"generationFailed", func(s *Session) error { return s.GenerationFailed("boom") }},
		{"selectAnswer", func(s *Session) error { return s.SelectAnswer("q1", 0) }},
		{"nextQuestion", func(s *Session) error { return s.NextQuestion() }},
		{"previousQuestion", func(s *Session) error { return s.PreviousQuestion() }},
		{"submit", func(s *Session) error { return s.Submit() }},
		{"setFeedback", func(s *Session) error { return s.SetFeedback("some feedback text") }},
	}
}

var allowed = map[State]map[string]bool{
	StateTopicSelection: {"selectTopic": true, "startGeneration": true},
	StateGenerating:     {"generationSucceeded": true, "generationFailed": true},
	StateQuizActive:     {"selectAnswer": true, "nextQuestion": true, "previousQuestion": true, "submit": true},
	StateResults:        {"setFeedback": true},
	StateError:          {"selectTopic": true, "startGeneration": true},
}

func sessionIn(t *testing.T, state State) *Session {
	t.Helper()
	s := New("s1")
	require.NoError(t, s.SelectTopic(science))
	switch state {
	case StateTopicSelection:
		return s
	case StateGenerating:
		_, err := s.StartGeneration()
		require.NoError(t, err)
	case StateQuizActive:
		s = activeSession(t)
	case StateResults:
		s = activeSession(t)
		require.NoError(t, s.Submit())
	case StateError:
		_, err := s.StartGeneration()
		require.NoError(t, err)
		require.NoError(t, s.GenerationFailed("boom"))
	}
	require.Equal(t, state, s.State())
	return s
}

func TestInvalidTransitionsDoNotMutate(t *testing.T) {
	for state, valid := range allowed {
		for _, tr := range allTransitions() {
			if valid[tr.name] {
				continue
			}
			t.Run(string(state)+"/"+tr.name, func(t *testing.T) {
				s := sessionIn(t, state)
				before := stripVolatile(s.Snapshot())

				err := tr.apply(s)
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.True(t, IsContractViolation(err))

				var terr *TransitionError
				require.ErrorAs(t, err, &terr)
				assert.Equal(t, tr.name, terr.Transition)
				assert.Equal(t, state, terr.State)

				assert.Equal(t, before, stripVolatile(s.Snapshot()))
			})
		}
	}
}

func TestStartGenerationTwiceIsViolation(t *testing.T) {
	s := sessionIn(t, StateGenerating)
	_, err := s.StartGeneration()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompleteGenerationTickets(t *testing.T) {
	s := New("s1")
	require.NoError(t, s.SelectTopic(science))
	stale, err := s.StartGeneration()
	require.NoError(t, err)

	s.Reset()
	require.NoError(t, s.SelectTopic(science))
	current, err := s.StartGeneration()
	require.NoError(t, err)
	require.NotEqual(t, stale, current)

	assert.ErrorIs(t, s.CompleteGeneration(stale, validSet()), ErrStaleGeneration)
	assert.ErrorIs(t, s.FailGeneration(stale, "late"), ErrStaleGeneration)
	assert.Equal(t, StateGenerating, s.State())

	require.NoError(t, s.CompleteGeneration(current, validSet()))
	assert.Equal(t, StateQuizActive, s.State())
	assert.ErrorIs(t, s.CompleteGeneration(current, validSet()), ErrStaleGeneration)
}

func TestAttachFeedbackTickets(t *testing.T) {
	s := New("s1")
	require.NoError(t, s.SelectTopic(science))
	ticket, err := s.StartGeneration()
	require.NoError(t, err)
	require.NoError(t, s.CompleteGeneration(ticket, validSet()))
	assert.Equal(t, ticket, s.Snapshot().Ticket)

	assert.ErrorIs(t, s.AttachFeedback(ticket, "too early for feedback"), ErrStaleGeneration)
	require.NoError(t, s.Submit())
	assert.ErrorIs(t, s.AttachFeedback("other", "wrong attempt feedback"), ErrStaleGeneration)
	require.NoError(t, s.AttachFeedback(ticket, "Well played, nice round!"))
	assert.Equal(t, "Well played, nice round!", *s.Snapshot().Feedback)

	s.Reset()
	assert.ErrorIs(t, s.AttachFeedback(ticket, "late feedback text"), ErrStaleGeneration)
	assert.Nil(t, s.Snapshot().Feedback)
}

func TestRestoreRoundTrip(t *testing.T) {
	s := activeSession(t)
	require.NoError(t, s.SelectAnswer("q3", 0))
	require.NoError(t, s.NextQuestion())

	restored := Restore(s.Snapshot())
	assert.Equal(t, s.Snapshot(), restored.Snapshot())
	require.NoError(t, restored.Submit())
	assert.Equal(t, 1, restored.Snapshot().Result().Score)
}
