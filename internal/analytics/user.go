package analytics

import (
	"sort"
	"time"

	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/scoring"
)

// Question insight flags, shown verbatim on the student dashboard.
const (
	FlagPossibleGuess = "Hızlı doğru cevap — tahmin olabilir"
	FlagStruggling    = "Zorlanıyor"
)

const (
	guessAccuracy     = 0.8
	guessMaxSeconds   = 5.0
	strugglingAccMax  = 0.5
	questionInsightsN = 10
)

// UserReport is one user's personal dashboard payload.
type UserReport struct {
	Summary             UserSummary       `json:"summary"`
	LearningCurve       []CurvePoint      `json:"learningCurve"`
	CategoryPerformance []CategorySuccess `json:"categoryPerformance"`
	QuizPerformance     []QuizPerformance `json:"quizPerformance"`
	QuestionInsights    []QuestionInsight `json:"questionInsights"`
}

type UserSummary struct {
	TotalAttempts     int     `json:"totalAttempts"`
	AveragePercentage float64 `json:"averagePercentage"`
	// Improvement is last minus first attempt percentage, chronologically.
	Improvement float64 `json:"improvement"`
}

type CurvePoint struct {
	CompletedAt time.Time `json:"completedAt"`
	Percentage  float64   `json:"percentage"`
}

type QuizPerformance struct {
	QuizID      string  `json:"quizId"`
	QuizTitle   string  `json:"quizTitle"`
	SuccessRate float64 `json:"successRate"`
	Attempts    int     `json:"attemptCount"`
	Correct     int     `json:"correct"`
	Total       int     `json:"total"`
}

type QuestionInsight struct {
	QuestionID     string     `json:"questionId"`
	Content        string     `json:"content"`
	Attempts       int        `json:"attempts"`
	IncorrectRate  float64    `json:"incorrectRate"`
	AverageTime    float64    `json:"averageTime"`
	LastAnsweredAt *time.Time `json:"lastAnsweredAt"`
	LastResult     bool       `json:"lastResult"`
	Flag           *string    `json:"flag"`
}

// User aggregates a single user's attempts.
func User(attempts []domain.QuizAttempt) UserReport {
	ordered := chronological(attempts)

	report := UserReport{
		Summary:             userSummary(ordered),
		LearningCurve:       make([]CurvePoint, 0, len(ordered)),
		CategoryPerformance: foldCategories(ordered),
		QuizPerformance:     make([]QuizPerformance, 0),
	}

	for _, a := range ordered {
		if a.CompletedAt == nil {
			continue
		}
		report.LearningCurve = append(report.LearningCurve, CurvePoint{
			CompletedAt: *a.CompletedAt,
			Percentage:  a.Percentage,
		})
	}

	for _, acc := range foldQuizzes(ordered) {
		report.QuizPerformance = append(report.QuizPerformance, QuizPerformance{
			QuizID:      acc.id,
			QuizTitle:   acc.title,
			SuccessRate: scoring.Round1(acc.pct.value()),
			Attempts:    acc.pct.n,
			Correct:     acc.correct,
			Total:       acc.total,
		})
	}

	report.QuestionInsights = questionInsights(ordered)
	return report
}

func userSummary(ordered []domain.QuizAttempt) UserSummary {
	summary := UserSummary{TotalAttempts: len(ordered)}
	var pct mean
	for _, a := range ordered {
		pct.add(a.Percentage)
	}
	summary.AveragePercentage = scoring.Round1(pct.value())
	if len(ordered) >= 2 {
		summary.Improvement = scoring.Round1(ordered[len(ordered)-1].Percentage - ordered[0].Percentage)
	}
	return summary
}

func questionInsights(attempts []domain.QuizAttempt) []QuestionInsight {
	accs := foldQuestions(attempts)
	insights := make([]QuestionInsight, 0, len(accs))
	for _, acc := range accs {
		stat := acc.stat()
		insight := QuestionInsight{
			QuestionID:    stat.QuestionID,
			Content:       stat.Content,
			Attempts:      stat.Attempts,
			IncorrectRate: stat.IncorrectRate,
			AverageTime:   stat.AverageTime,
			LastResult:    acc.lastCorrect,
			Flag:          insightFlag(acc),
		}
		if acc.seen && !acc.lastAt.IsZero() {
			at := acc.lastAt
			insight.LastAnsweredAt = &at
		}
		insights = append(insights, insight)
	}
	// foldQuestions already orders by incorrect rate.
	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].IncorrectRate > insights[j].IncorrectRate
	})
	if len(insights) > questionInsightsN {
		insights = insights[:questionInsightsN]
	}
	return insights
}

func insightFlag(acc *questionAcc) *string {
	if acc.total == 0 {
		return nil
	}
	accuracy := float64(acc.total-acc.incorrect) / float64(acc.total)
	var flag string
	switch {
	case accuracy >= guessAccuracy && acc.time.value() <= guessMaxSeconds:
		flag = FlagPossibleGuess
	case accuracy <= strugglingAccMax:
		flag = FlagStruggling
	default:
		return nil
	}
	return &flag
}
