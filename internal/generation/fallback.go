package generation

import (
	"fmt"

	"github.com/gokatarajesh/quiz-session/internal/quiz"
)

// FallbackFeedback synthesizes feedback from the score alone. The result is
// always longer than the minimum feedback length.
func FallbackFeedback(score, total int) string {
	pct := quiz.Percentage(score, total)
	var tail string
	switch {
	case pct >= 80:
		tail = "Excellent work!"
	case pct >= 60:
		tail = "Good job! Keep learning!"
	default:
		tail = "Keep practicing and you'll improve!"
	}
	return fmt.Sprintf("You scored %d out of %d! %s", score, total, tail)
}
