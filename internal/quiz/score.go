package quiz

// CelebrateRatio is the share of correct answers that earns a celebration on
// the results screen.
const CelebrateRatio = 0.6

// Score counts the questions whose recorded answer equals the correct index.
// Unanswered questions contribute nothing. This is the only place a score is
// derived; callers recompute it instead of storing it.
func Score(set QuestionSet, answers Answers) int {
	score := 0
	for _, q := range set.Questions {
		if picked, ok := answers[q.ID]; ok && picked == q.CorrectIndex {
			score++
		}
	}
	return score
}

// Percentage converts score/total into a 0-100 value; zero total yields 0.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

// ReviewItem is the per-question breakdown shown after submission.
type ReviewItem struct {
	QuestionID   string   `json:"question_id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	Selected     *int     `json:"selected,omitempty"`
	CorrectIndex int      `json:"correct_index"`
	Correct      bool     `json:"correct"`
	Explanation  string   `json:"explanation,omitempty"`
}

// Result summarises a submitted attempt.
type Result struct {
	Score      int          `json:"score"`
	Total      int          `json:"total"`
	Percentage float64      `json:"percentage"`
	Celebrate  bool         `json:"celebrate"`
	Review     []ReviewItem `json:"review"`
}

// Summarize builds the result view from the question set and answers.
func Summarize(set QuestionSet, answers Answers) Result {
	score := Score(set, answers)
	total := set.Len()
	review := make([]ReviewItem, 0, total)
	for _, q := range set.Questions {
		item := ReviewItem{
			QuestionID:   q.ID,
			Question:     q.Question,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
		}
		if picked, ok := answers[q.ID]; ok {
			p := picked
			item.Selected = &p
			item.Correct = picked == q.CorrectIndex
		}
		review = append(review, item)
	}
	return Result{
		Score:      score,
		Total:      total,
		Percentage: Percentage(score, total),
		Celebrate:  total > 0 && float64(score) >= float64(total)*CelebrateRatio,
		Review:     review,
	}
}
