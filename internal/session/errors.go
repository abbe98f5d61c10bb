package session

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition marks a transition invoked from a state that does
	// not allow it. The session is left untouched.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrNoTopic is returned when generation is requested before a topic is chosen.
	ErrNoTopic = errors.New("no topic selected")
	// ErrInvalidTopic rejects topics without an id or name.
	ErrInvalidTopic = errors.New("invalid topic")
	// ErrUnknownQuestion rejects answers for ids outside the current question set.
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrInvalidOption rejects an option index outside the question's options.
	ErrInvalidOption = errors.New("option index out of range")
	// ErrInvalidQuestionSet rejects sets that were not validated upstream.
	ErrInvalidQuestionSet = errors.New("invalid question set")
	// ErrStaleGeneration is returned when a generation result arrives for a
	// request the session no longer waits on.
	ErrStaleGeneration = errors.New("stale generation result")
)

// TransitionError describes a rejected transition.
type TransitionError struct {
	Transition string
	State      State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Transition, e.State)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// IsContractViolation reports whether err signals caller misuse rather than
// a backend failure.
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrNoTopic) ||
		errors.Is(err, ErrInvalidTopic) ||
		errors.Is(err, ErrUnknownQuestion) ||
		errors.Is(err, ErrInvalidOption) ||
		errors.Is(err, ErrInvalidQuestionSet)
}
