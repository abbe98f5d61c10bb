package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const mockFeedback = "Great job! You demonstrated solid understanding of the topic. " +
	"Keep up the good work and continue learning!"

// MockSource stands in for a real backend: it waits Delay and then returns
// deterministic templated replies.
type MockSource struct {
	Delay time.Duration
}

var _ Source = (*MockSource)(nil)

type mockTemplate struct {
	question    string
	options     []string
	correct     int
	explanation string
}

var mockTemplates = []mockTemplate{
	{"What is a key concept in %s?", []string{"Option A", "Option B", "Option C", "Option D"}, 1,
		"This is the correct answer because it best represents the concept."},
	{"Which statement is true about %s?", []string{"Statement 1", "Statement 2", "Statement 3", "Statement 4"}, 2,
		"This statement accurately describes the principle."},
	{"How does %s relate to modern applications?", []string{"Method A", "Method B", "Method C", "Method D"}, 0,
		"This method is most commonly used in practice."},
	{"What is the main benefit of understanding %s?", []string{"Benefit A", "Benefit B", "Benefit C", "Benefit D"}, 3,
		"This benefit provides the most value."},
	{"Which approach is recommended for %s?", []string{"Approach 1", "Approach 2", "Approach 3", "Approach 4"}, 1,
		"This approach follows best practices."},
}

func (m *MockSource) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(m.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *MockSource) GenerateQuestions(ctx context.Context, req QuestionsRequest) ([]byte, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	topic := req.Topic
	if topic == "" {
		topic = "General Knowledge"
	}

	questions := make([]map[string]any, 0, len(mockTemplates))
	for i, tpl := range mockTemplates {
		questions = append(questions, map[string]any{
			"id":           fmt.Sprintf("q%d", i+1),
			"question":     fmt.Sprintf(tpl.question, topic),
			"options":      tpl.options,
			"correctIndex": tpl.correct,
			"explanation":  tpl.explanation,
		})
	}
	return json.Marshal(map[string]any{
		"status":    statusOK,
		"topic":     topic,
		"questions": questions,
	})
}

func (m *MockSource) GenerateFeedback(ctx context.Context, _ FeedbackRequest) ([]byte, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{
		"status":   statusOK,
		"feedback": mockFeedback,
	})
}
