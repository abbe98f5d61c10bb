package quiz

import (
	"errors"
	"fmt"
)

// QuestionsPerSet is the fixed size of every generated question set.
const QuestionsPerSet = 5

// Topic is what the user picks before a quiz is generated.
type Topic struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Question is a single multiple-choice item produced by the generation client.
type Question struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation,omitempty"`
}

// ValidOption reports whether idx addresses one of the question's options.
func (q Question) ValidOption(idx int) bool {
	return idx >= 0 && idx < len(q.Options)
}

// QuestionSet is the validated batch of questions for one topic.
type QuestionSet struct {
	Topic     string     `json:"topic"`
	Questions []Question `json:"questions"`
}

// Len returns the number of questions in the set.
func (s QuestionSet) Len() int {
	return len(s.Questions)
}

// Find looks a question up by id.
func (s QuestionSet) Find(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

var errWrongCount = errors.New("question set has wrong size")

// Check verifies the structural invariants the session relies on: exact
// size, unique ids, at least two options and an in-range correct index.
func (s QuestionSet) Check() error {
	if len(s.Questions) != QuestionsPerSet {
		return fmt.Errorf("%w: expected %d, got %d", errWrongCount, QuestionsPerSet, len(s.Questions))
	}
	seen := make(map[string]struct{}, len(s.Questions))
	for i, q := range s.Questions {
		if q.ID == "" {
			return fmt.Errorf("question %d: empty id", i)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("question %d: duplicate id %q", i, q.ID)
		}
		seen[q.ID] = struct{}{}
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d: need at least 2 options", i)
		}
		if !q.ValidOption(q.CorrectIndex) {
			return fmt.Errorf("question %d: correct index %d out of range", i, q.CorrectIndex)
		}
	}
	return nil
}

// Answers maps question id to the selected option index.
type Answers map[string]int

// Clone returns an independent copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
