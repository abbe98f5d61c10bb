package quiz

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSet() QuestionSet {
	correct := []int{1, 2, 0, 3, 1}
	qs := make([]Question, 0, QuestionsPerSet)
	for i, c := range correct {
		qs = append(qs, Question{
			ID:           fmt.Sprintf("q%d", i+1),
			Question:     fmt.Sprintf("Sample question number %d?", i+1),
			Options:      []string{"A", "B", "C", "D"},
			CorrectIndex: c,
		})
	}
	return QuestionSet{Topic: "Science", Questions: qs}
}

func TestScoreEmptyAnswers(t *testing.T) {
	assert.Equal(t, 0, Score(sampleSet(), Answers{}))
	assert.Equal(t, 0, Score(sampleSet(), nil))
}

func TestScoreAllCorrect(t *testing.T) {
	set := sampleSet()
	answers := Answers{}
	for _, q := range set.Questions {
		answers[q.ID] = q.CorrectIndex
	}
	assert.Equal(t, 5, Score(set, answers))
}

func TestScorePartialSubset(t *testing.T) {
	set := sampleSet()
	answers := Answers{
		"q1": 1, // correct
		"q2": 0, // wrong
		"q4": 3, // correct
	}
	assert.Equal(t, 2, Score(set, answers))
}

func TestScoreIgnoresUnknownIDs(t *testing.T) {
	assert.Equal(t, 0, Score(sampleSet(), Answers{"nope": 1}))
}

func TestSummarize(t *testing.T) {
	set := sampleSet()
	res := Summarize(set, Answers{"q1": 1, "q2": 2, "q3": 0, "q4": 0})

	assert.Equal(t, 3, res.Score)
	assert.Equal(t, 5, res.Total)
	assert.InDelta(t, 60.0, res.Percentage, 0.001)
	assert.True(t, res.Celebrate)
	require.Len(t, res.Review, 5)
	assert.True(t, res.Review[0].Correct)
	assert.False(t, res.Review[3].Correct)
	assert.Nil(t, res.Review[4].Selected)
}

func TestSummarizeBelowCelebration(t *testing.T) {
	res := Summarize(sampleSet(), Answers{"q1": 1})
	assert.False(t, res.Celebrate)
}

func TestPercentageZeroTotal(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(3, 0))
}

func TestQuestionSetCheck(t *testing.T) {
	assert.NoError(t, sampleSet().Check())

	short := sampleSet()
	short.Questions = short.Questions[:4]
	assert.ErrorContains(t, short.Check(), "expected 5")

	dup := sampleSet()
	dup.Questions[1].ID = "q1"
	assert.ErrorContains(t, dup.Check(), "duplicate")

	bad := sampleSet()
	bad.Questions[2].CorrectIndex = 4
	assert.ErrorContains(t, bad.Check(), "out of range")
}

func TestLookupTopic(t *testing.T) {
	topic, ok := LookupTopic("science")
	assert.True(t, ok)
	assert.Equal(t, "Science", topic.Name)

	_, ok = LookupTopic("cooking")
	assert.False(t, ok)
}
