package generation

import (
	"fmt"
	"strings"

	"github.com/gokatarajesh/quiz-session/internal/quiz"
)

// BuildQuestionsPrompt asks for exactly quiz.QuestionsPerSet multiple-choice
// questions and pins the reply to the ok/error JSON envelope.
func BuildQuestionsPrompt(topic string) string {
	var sb strings.Builder

	sb.WriteString("You are an assistant that only answers with JSON following this schema:\n")
	sb.WriteString("{\n")
	sb.WriteString(`  "status":"ok",` + "\n")
	sb.WriteString(`  "topic":"<topic name>",` + "\n")
	sb.WriteString(`  "questions":[` + "\n")
	sb.WriteString(`    {"id":"q1","question":"<question text>","options":["opt1","opt2","opt3","opt4"],"correctIndex":<index 0-based>,"explanation":"<optional short explanation>"}` + "\n")
	sb.WriteString(fmt.Sprintf("    ... total exactly %d objects ...\n", quiz.QuestionsPerSet))
	sb.WriteString("  ]\n")
	sb.WriteString("}\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Return exactly the JSON object and nothing else (no markdown, no commentary).\n")
	sb.WriteString("- Use clear, concise language in questions and explanations.\n")
	sb.WriteString(fmt.Sprintf("- Provide exactly %d questions for the asked topic.\n", quiz.QuestionsPerSet))
	sb.WriteString(`- If unable to generate, return {"status":"error","message":"brief reason"}.` + "\n\n")
	sb.WriteString(fmt.Sprintf("Now: generate %d MCQs for the topic: %q.", quiz.QuestionsPerSet, topic))

	return sb.String()
}

// BuildFeedbackPrompt describes the numeric result and asks for an
// encouraging message.
func BuildFeedbackPrompt(score, total int) string {
	return fmt.Sprintf(
		"Generate encouraging and personalized feedback for a quiz taker who scored %d out of %d (%.1f%%).\n"+
			"Keep the feedback positive, specific, and motivating. "+
			`Return JSON: {"status":"ok","feedback":"your feedback message here"}`,
		score, total, quiz.Percentage(score, total))
}
