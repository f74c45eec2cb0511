// Package scoring grades submitted quiz attempts. Grading is a pure function of
// the quiz definition and the submitted answers and never fails: unknown or
// missing answers degrade to incorrect.
package scoring

import (
	"math"
	"strings"

	"quiz-assessment-service/internal/domain"
)

// QuestionResult is the graded outcome for one quiz question.
type QuestionResult struct {
	QuestionID    string `json:"questionId"`
	AnswerText    string `json:"answerText"`
	IsCorrect     bool   `json:"isCorrect"`
	PointsAwarded int    `json:"pointsAwarded"`
}

// Result summarizes a graded attempt.
type Result struct {
	PerQuestion []QuestionResult `json:"perQuestion"`
	Score       int              `json:"score"`
	MaxScore    int              `json:"maxScore"`
	Percentage  float64          `json:"percentage"`
}

// Grade scores answers against the quiz, in quiz question order. MaxScore
// counts every question whether or not it was answered.
func Grade(quiz domain.Quiz, answers map[string]string) Result {
	result := Result{PerQuestion: make([]QuestionResult, 0, len(quiz.Questions))}
	for _, question := range quiz.Questions {
		result.MaxScore += question.Points

		submitted, ok := answers[question.ID]
		correct := ok && IsCorrect(question, submitted)
		awarded := 0
		if correct {
			awarded = question.Points
		}
		result.Score += awarded
		result.PerQuestion = append(result.PerQuestion, QuestionResult{
			QuestionID:    question.ID,
			AnswerText:    submitted,
			IsCorrect:     correct,
			PointsAwarded: awarded,
		})
	}
	result.Percentage = Percentage(result.Score, result.MaxScore)
	return result
}

// IsCorrect applies the type-dependent comparison. TEXT answers are compared
// trimmed and case-folded; every other type needs an exact match of the
// option index string.
func IsCorrect(question domain.Question, submitted string) bool {
	if question.Type == domain.QuestionText {
		return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(question.CorrectAnswer))
	}
	return submitted == question.CorrectAnswer
}

// Percentage returns score/maxScore*100 rounded to one decimal, or 0 when the
// quiz is worth nothing.
func Percentage(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	return Round1(float64(score) / float64(maxScore) * 100)
}

// Round1 rounds to one decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}
