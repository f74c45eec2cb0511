package scoring

import (
	"testing"
	"time"

	"quiz-assessment-service/internal/domain"
)

func TestGradePartialCredit(t *testing.T) {
	quiz := domain.Quiz{
		ID: "quiz-1",
		Questions: []domain.Question{
			{ID: "q1", Type: domain.QuestionMultipleChoice, CorrectAnswer: "0", Points: 1},
			{ID: "q2", Type: domain.QuestionMultipleChoice, CorrectAnswer: "2", Points: 2},
		},
	}

	result := Grade(quiz, map[string]string{"q1": "0", "q2": "1"})
	if result.Score != 1 || result.MaxScore != 3 {
		t.Fatalf("expected 1/3, got %d/%d", result.Score, result.MaxScore)
	}
	if result.Percentage != 33.3 {
		t.Fatalf("expected 33.3%%, got %v", result.Percentage)
	}
	if !result.PerQuestion[0].IsCorrect || result.PerQuestion[0].PointsAwarded != 1 {
		t.Fatalf("expected q1 correct, got %+v", result.PerQuestion[0])
	}
	if result.PerQuestion[1].IsCorrect || result.PerQuestion[1].PointsAwarded != 0 {
		t.Fatalf("expected q2 incorrect, got %+v", result.PerQuestion[1])
	}
}

func TestGradeMaxScoreCountsUnanswered(t *testing.T) {
	quiz := domain.Quiz{
		Questions: []domain.Question{
			{ID: "q1", Type: domain.QuestionTrueFalse, CorrectAnswer: "1", Points: 4},
			{ID: "q2", Type: domain.QuestionText, CorrectAnswer: "Paris", Points: 6},
		},
	}

	result := Grade(quiz, map[string]string{"q1": "1"})
	if result.MaxScore != 10 {
		t.Fatalf("expected max score 10, got %d", result.MaxScore)
	}
	if result.Score != 4 || result.Percentage != 40 {
		t.Fatalf("expected 4 points at 40%%, got %d at %v", result.Score, result.Percentage)
	}
	missing := result.PerQuestion[1]
	if missing.IsCorrect || missing.AnswerText != "" || missing.PointsAwarded != 0 {
		t.Fatalf("expected missing answer to be empty and incorrect, got %+v", missing)
	}
}

func TestIsCorrectByType(t *testing.T) {
	cases := []struct {
		name      string
		question  domain.Question
		submitted string
		want      bool
	}{
		{"text ignores case and padding", domain.Question{Type: domain.QuestionText, CorrectAnswer: "Paris"}, " paris ", true},
		{"text mismatch", domain.Question{Type: domain.QuestionText, CorrectAnswer: "Paris"}, "Rome", false},
		{"choice exact", domain.Question{Type: domain.QuestionMultipleChoice, CorrectAnswer: "1"}, "1", true},
		{"choice not trimmed", domain.Question{Type: domain.QuestionMultipleChoice, CorrectAnswer: "1"}, " 1", false},
		{"true false exact", domain.Question{Type: domain.QuestionTrueFalse, CorrectAnswer: "0"}, "0", true},
		{"image exact", domain.Question{Type: domain.QuestionImage, CorrectAnswer: "3"}, "3 ", false},
		{"unknown type falls back to exact", domain.Question{Type: "ESSAY", CorrectAnswer: "a"}, "A", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsCorrect(tc.question, tc.submitted); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestGradeEmptyQuiz(t *testing.T) {
	result := Grade(domain.Quiz{}, map[string]string{"ghost": "1"})
	if result.MaxScore != 0 || result.Score != 0 || result.Percentage != 0 {
		t.Fatalf("expected zero result, got %+v", result)
	}
	if len(result.PerQuestion) != 0 {
		t.Fatalf("answers to unknown questions must be ignored, got %+v", result.PerQuestion)
	}
}

func TestPercentageRounding(t *testing.T) {
	if got := Percentage(2, 3); got != 66.7 {
		t.Fatalf("expected 66.7, got %v", got)
	}
	if got := Percentage(5, 0); got != 0 {
		t.Fatalf("expected 0 for empty quiz, got %v", got)
	}
}

func TestSanitizeTiming(t *testing.T) {
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	completed := started.Add(90 * time.Second)

	if got, flag := SanitizeTiming(80, 3, started, completed); got != 80 || flag != "" {
		t.Fatalf("expected untouched value, got %d %q", got, flag)
	}
	if got, flag := SanitizeTiming(-5, 3, started, completed); got != 90 || flag != TimingNegative {
		t.Fatalf("expected elapsed fallback for negative, got %d %q", got, flag)
	}
	if got, flag := SanitizeTiming(-5, 3, time.Time{}, completed); got != 0 || flag != TimingNegative {
		t.Fatalf("expected clamp to zero without start, got %d %q", got, flag)
	}
	if got, flag := SanitizeTiming(0, 2, started, completed); got != 90 || flag != TimingZeroWithAnswers {
		t.Fatalf("expected elapsed for zero time, got %d %q", got, flag)
	}
	if got, flag := SanitizeTiming(0, 0, started, completed); got != 0 || flag != "" {
		t.Fatalf("zero time with no answers is plausible, got %d %q", got, flag)
	}
	if got, flag := SanitizeTiming(5000, 2, started, completed); got != 90 || flag != TimingExceedsElapsed {
		t.Fatalf("expected clamp to elapsed, got %d %q", got, flag)
	}
}
