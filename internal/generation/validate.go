package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/gokatarajesh/quiz-session/internal/quiz"
)

const (
	statusOK    = "ok"
	statusError = "error"

	minQuestionLen = 10
	minOptions     = 2
	minFeedbackLen = 10
)

// ValidationError is a reply that arrived but broke the response contract.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func decodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, invalid("response is not an object")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, invalid("response is not an object")
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, invalid("unexpected data after response object")
	}
	return obj, nil
}

func sourceError(obj map[string]any) error {
	if msg, ok := obj["message"].(string); ok && msg != "" {
		return invalid("%s", msg)
	}
	return invalid("source returned error status")
}

func asInt(v any) (int, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return int(i), true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// ValidateQuestions checks a questions reply and converts it into a set.
func ValidateQuestions(raw []byte) (quiz.QuestionSet, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return quiz.QuestionSet{}, err
	}

	status, _ := obj["status"].(string)
	if status == statusError {
		return quiz.QuestionSet{}, sourceError(obj)
	}
	if status != statusOK {
		return quiz.QuestionSet{}, invalid("invalid status field")
	}

	topic, ok := obj["topic"].(string)
	if !ok || topic == "" {
		return quiz.QuestionSet{}, invalid("invalid topic field")
	}

	items, ok := obj["questions"].([]any)
	if !ok {
		return quiz.QuestionSet{}, invalid("questions is not an array")
	}
	if len(items) != quiz.QuestionsPerSet {
		return quiz.QuestionSet{}, invalid("expected %d questions, got %d", quiz.QuestionsPerSet, len(items))
	}

	set := quiz.QuestionSet{Topic: topic, Questions: make([]quiz.Question, 0, len(items))}
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		q, err := validateQuestion(i, item)
		if err != nil {
			return quiz.QuestionSet{}, err
		}
		if _, dup := seen[q.ID]; dup {
			return quiz.QuestionSet{}, invalid("question %d: duplicate id %q", i, q.ID)
		}
		seen[q.ID] = struct{}{}
		set.Questions = append(set.Questions, q)
	}
	return set, nil
}

func validateQuestion(i int, item any) (quiz.Question, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return quiz.Question{}, invalid("question %d: not an object", i)
	}

	id, ok := obj["id"].(string)
	if !ok || id == "" {
		return quiz.Question{}, invalid("question %d: invalid id", i)
	}

	text, ok := obj["question"].(string)
	if !ok || utf8.RuneCountInString(text) < minQuestionLen {
		return quiz.Question{}, invalid("question %d: question text too short", i)
	}

	rawOpts, ok := obj["options"].([]any)
	if !ok || len(rawOpts) < minOptions {
		return quiz.Question{}, invalid("question %d: need at least %d options", i, minOptions)
	}
	options := make([]string, 0, len(rawOpts))
	for j, o := range rawOpts {
		s, ok := o.(string)
		if !ok {
			return quiz.Question{}, invalid("question %d: option %d is not a string", i, j)
		}
		options = append(options, s)
	}

	idx, ok := asInt(obj["correctIndex"])
	if !ok || idx < 0 || idx >= len(options) {
		return quiz.Question{}, invalid("question %d: invalid correctIndex", i)
	}

	var explanation string
	if v, present := obj["explanation"]; present {
		s, ok := v.(string)
		if !ok {
			return quiz.Question{}, invalid("question %d: invalid explanation type", i)
		}
		explanation = s
	}

	return quiz.Question{
		ID:           id,
		Question:     text,
		Options:      options,
		CorrectIndex: idx,
		Explanation:  explanation,
	}, nil
}

// ValidateFeedback checks a feedback reply and returns its text.
func ValidateFeedback(raw []byte) (string, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return "", err
	}
	if status, _ := obj["status"].(string); status == statusError {
		return "", sourceError(obj)
	}
	text, ok := obj["feedback"].(string)
	if !ok || utf8.RuneCountInString(text) < minFeedbackLen {
		return "", invalid("invalid feedback field")
	}
	return text, nil
}
