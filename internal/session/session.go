package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/quiz-session/internal/quiz"
)

// State is the lifecycle position of a quiz session.
type State string

// Lifecycle states.
const (
	StateTopicSelection State = "TOPIC_SELECTION"
	StateGenerating     State = "GENERATING"
	StateQuizActive     State = "QUIZ_ACTIVE"
	StateResults        State = "RESULTS"
	StateError          State = "ERROR"
)

// Session holds one quiz attempt. All mutation goes through the transition
// methods, each applied atomically under the session lock. A rejected
// transition returns an error and changes nothing.
type Session struct {
	mu sync.Mutex

	id        string
	state     State
	topic     *quiz.Topic
	questions quiz.QuestionSet
	answers   quiz.Answers
	cursor    int
	lastError *string
	feedback  *string
	ticket    string
	updatedAt time.Time
}

// New returns a session in its initial form.
func New(id string) *Session {
	s := &Session{id: id}
	s.clear()
	return s
}

func (s *Session) clear() {
	s.state = StateTopicSelection
	s.topic = nil
	s.questions = quiz.QuestionSet{}
	s.answers = quiz.Answers{}
	s.cursor = 0
	s.lastError = nil
	s.feedback = nil
	s.ticket = ""
	s.updatedAt = time.Now().UTC()
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) require(transition string, allowed ...State) error {
	for _, st := range allowed {
		if s.state == st {
			return nil
		}
	}
	return &TransitionError{Transition: transition, State: s.state}
}

func (s *Session) touch() {
	s.updatedAt = time.Now().UTC()
}

// SelectTopic records the chosen topic. Allowed before a quiz exists, i.e.
// in TopicSelection and Error; the lifecycle state does not change.
func (s *Session) SelectTopic(topic quiz.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("selectTopic", StateTopicSelection, StateError); err != nil {
		return err
	}
	if topic.ID == "" || topic.Name == "" {
		return ErrInvalidTopic
	}
	t := topic
	s.topic = &t
	s.touch()
	return nil
}

// StartGeneration moves the session into Generating and returns a ticket
// identifying this attempt. The ticket stays attached through QuizActive and
// Results, and is dropped on failure or reset.
func (s *Session) StartGeneration() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("startGeneration", StateTopicSelection, StateError); err != nil {
		return "", err
	}
	if s.topic == nil {
		return "", ErrNoTopic
	}
	s.state = StateGenerating
	s.lastError = nil
	s.ticket = uuid.NewString()
	s.touch()
	return s.ticket, nil
}

// GenerationSucceeded installs a validated question set and opens the quiz.
func (s *Session) GenerationSucceeded(set quiz.QuestionSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.succeed(set)
}

// CompleteGeneration is GenerationSucceeded guarded by the ticket returned
// from StartGeneration. Results for abandoned requests yield ErrStaleGeneration.
func (s *Session) CompleteGeneration(ticket string, set quiz.QuestionSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateGenerating || ticket == "" || ticket != s.ticket {
		return ErrStaleGeneration
	}
	return s.succeed(set)
}

func (s *Session) succeed(set quiz.QuestionSet) error {
	if err := s.require("generationSucceeded", StateGenerating); err != nil {
		return err
	}
	if err := set.Check(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuestionSet, err)
	}
	s.state = StateQuizActive
	s.questions = set
	s.answers = quiz.Answers{}
	s.cursor = 0
	s.lastError = nil
	s.touch()
	return nil
}

// GenerationFailed records the failure message and moves to Error.
func (s *Session) GenerationFailed(message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail(message)
}

// FailGeneration is GenerationFailed guarded by a generation ticket.
func (s *Session) FailGeneration(ticket, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateGenerating || ticket == "" || ticket != s.ticket {
		return ErrStaleGeneration
	}
	return s.fail(message)
}

func (s *Session) fail(message string) error {
	if err := s.require("generationFailed", StateGenerating); err != nil {
		return err
	}
	msg := message
	s.state = StateError
	s.lastError = &msg
	s.ticket = ""
	s.touch()
	return nil
}

// SelectAnswer upserts the answer for a question without moving the cursor.
func (s *Session) SelectAnswer(questionID string, optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("selectAnswer", StateQuizActive); err != nil {
		return err
	}
	q, ok := s.questions.Find(questionID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuestion, questionID)
	}
	if !q.ValidOption(optionIndex) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidOption, optionIndex, len(q.Options))
	}
	s.answers[questionID] = optionIndex
	s.touch()
	return nil
}

// NextQuestion advances the cursor, stopping at the last question.
func (s *Session) NextQuestion() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("nextQuestion", StateQuizActive); err != nil {
		return err
	}
	if s.cursor < s.questions.Len()-1 {
		s.cursor++
		s.touch()
	}
	return nil
}

// PreviousQuestion moves the cursor back, stopping at the first question.
func (s *Session) PreviousQuestion() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("previousQuestion", StateQuizActive); err != nil {
		return err
	}
	if s.cursor > 0 {
		s.cursor--
		s.touch()
	}
	return nil
}

// Submit ends the quiz. Unanswered questions simply score as incorrect.
func (s *Session) Submit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("submit", StateQuizActive); err != nil {
		return err
	}
	s.state = StateResults
	s.touch()
	return nil
}

// SetFeedback stores feedback text; later calls overwrite earlier ones.
func (s *Session) SetFeedback(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require("setFeedback", StateResults); err != nil {
		return err
	}
	t := text
	s.feedback = &t
	s.touch()
	return nil
}

// AttachFeedback is SetFeedback guarded by the attempt ticket, so feedback
// computed for an attempt the user already left is discarded.
func (s *Session) AttachFeedback(ticket, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateResults || ticket == "" || ticket != s.ticket {
		return ErrStaleGeneration
	}
	t := text
	s.feedback = &t
	s.touch()
	return nil
}

// Reset returns the session to its initial form. Valid from any state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}
