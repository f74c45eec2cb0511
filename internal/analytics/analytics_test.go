package analytics

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"quiz-assessment-service/internal/domain"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type attemptSpec struct {
	user, quiz, category string
	pct                  float64
	timeSpent            int
	offset               time.Duration
	answers              []domain.Answer
}

func build(s attemptSpec) domain.QuizAttempt {
	completed := base.Add(s.offset)
	return domain.QuizAttempt{
		ID:       fmt.Sprintf("%s-%s-%d", s.user, s.quiz, s.offset),
		UserID:   s.user,
		UserName: "name-" + s.user,
		QuizID:   s.quiz,
		Quiz: domain.QuizRef{
			ID:           s.quiz,
			Title:        "title-" + s.quiz,
			CategoryID:   s.category,
			CategoryName: "cat-" + s.category,
		},
		Percentage:  s.pct,
		TimeSpent:   s.timeSpent,
		StartedAt:   completed.Add(-time.Duration(s.timeSpent) * time.Second),
		CompletedAt: &completed,
		Answers:     s.answers,
	}
}

func answer(questionID string, correct bool) domain.Answer {
	return domain.Answer{QuestionID: questionID, QuestionContent: "content-" + questionID, IsCorrect: correct}
}

func TestPlatformEmpty(t *testing.T) {
	overview := Platform(nil, domain.CatalogCounts{})
	if overview.Totals.Attempts != 0 || overview.Totals.AveragePercentage != 0 {
		t.Fatalf("expected zero totals, got %+v", overview.Totals)
	}
	if overview.Highlights.MostChallengingCategory != nil || overview.Highlights.MostChallengingQuiz != nil {
		t.Fatalf("expected no highlights, got %+v", overview.Highlights)
	}

	raw, err := json.Marshal(overview)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for group, fields := range map[string][]string{
		"charts":        {"categorySuccess", "quizSuccess", "performanceTimeline", "hardestQuestions"},
		"smartInsights": {"mostMissedQuestions", "qualityAlerts", "strugglingAssignments"},
	} {
		for _, field := range fields {
			list, ok := decoded[group][field].([]any)
			if !ok || len(list) != 0 {
				t.Fatalf("expected %s.%s to be an empty list, got %#v", group, field, decoded[group][field])
			}
		}
	}
}

func TestPlatformCategoryAndQuizSuccess(t *testing.T) {
	attempts := []domain.QuizAttempt{
		build(attemptSpec{user: "u1", quiz: "q-geo", category: "geo", pct: 40, offset: 2 * time.Hour}),
		build(attemptSpec{user: "u2", quiz: "q-geo", category: "geo", pct: 60, offset: time.Hour}),
		build(attemptSpec{user: "u1", quiz: "q-math", category: "math", pct: 90, offset: 3 * time.Hour}),
		build(attemptSpec{user: "u2", quiz: "q-zero", category: "zero", pct: 0, offset: 4 * time.Hour}),
	}
	overview := Platform(attempts, domain.CatalogCounts{Users: 3, Categories: 4, Quizzes: 3, Questions: 10})

	if overview.Totals.Users != 3 || overview.Totals.Attempts != 4 || overview.Totals.ActiveUsers != 2 {
		t.Fatalf("unexpected totals %+v", overview.Totals)
	}
	if overview.Totals.AveragePercentage != 47.5 {
		t.Fatalf("expected average 47.5, got %v", overview.Totals.AveragePercentage)
	}

	if len(overview.Charts.CategorySuccess) != 3 {
		t.Fatalf("expected 3 categories, got %+v", overview.Charts.CategorySuccess)
	}
	geo := overview.Charts.CategorySuccess[0]
	if geo.CategoryID != "geo" || geo.SuccessRate != 50 || geo.Attempts != 2 {
		t.Fatalf("unexpected geo entry %+v", geo)
	}

	// The 0% category is skipped for the category highlight.
	if c := overview.Highlights.MostChallengingCategory; c == nil || c.CategoryID != "geo" {
		t.Fatalf("expected geo as most challenging category, got %+v", c)
	}
	// Quizzes only require attempts, so the 0% quiz qualifies.
	if q := overview.Highlights.MostChallengingQuiz; q == nil || q.QuizID != "q-zero" {
		t.Fatalf("expected q-zero as most challenging quiz, got %+v", q)
	}

	timeline := overview.Charts.PerformanceTimeline
	if len(timeline) != 4 || timeline[0].Percentage != 60 || timeline[3].QuizTitle != "title-q-zero" {
		t.Fatalf("expected chronological timeline, got %+v", timeline)
	}
}

func TestQualityAlertScenario(t *testing.T) {
	var attempts []domain.QuizAttempt
	for i := 0; i < 10; i++ {
		attempts = append(attempts, build(attemptSpec{
			user: fmt.Sprintf("u%d", i), quiz: "quiz", category: "c", pct: 50, timeSpent: 20,
			offset:  time.Duration(i) * time.Minute,
			answers: []domain.Answer{answer("hard", i >= 7), answer("easy", true)},
		}))
	}
	overview := Platform(attempts, domain.CatalogCounts{})

	alerts := overview.SmartInsights.QualityAlerts
	if len(alerts) != 1 || alerts[0].QuestionID != "hard" {
		t.Fatalf("expected hard question alerted, got %+v", alerts)
	}
	if alerts[0].IncorrectRate != 70 || alerts[0].Attempts != 10 || alerts[0].Incorrect != 7 {
		t.Fatalf("unexpected alert stats %+v", alerts[0])
	}
	// 20 seconds split over two answers.
	if alerts[0].AverageTime != 10 {
		t.Fatalf("expected even-split time 10, got %v", alerts[0].AverageTime)
	}
	if overview.Charts.HardestQuestions[0].QuestionID != "hard" || len(overview.Charts.HardestQuestions) != 2 {
		t.Fatalf("expected hardest list ordered by incorrect rate, got %+v", overview.Charts.HardestQuestions)
	}
}

func TestQualityAlertNeedsFiveAttempts(t *testing.T) {
	var attempts []domain.QuizAttempt
	for i := 0; i < 4; i++ {
		attempts = append(attempts, build(attemptSpec{
			user: "u1", quiz: "quiz", category: "c", pct: 0, offset: time.Duration(i) * time.Minute,
			answers: []domain.Answer{answer("broken", false)},
		}))
	}
	overview := Platform(attempts, domain.CatalogCounts{})
	if len(overview.SmartInsights.QualityAlerts) != 0 {
		t.Fatalf("expected no alerts below 5 attempts, got %+v", overview.SmartInsights.QualityAlerts)
	}
	if len(overview.SmartInsights.MostMissedQuestions) != 1 || overview.SmartInsights.MostMissedQuestions[0].IncorrectRate != 100 {
		t.Fatalf("expected broken question among most missed, got %+v", overview.SmartInsights.MostMissedQuestions)
	}
}

func TestQualityAlertsAndMostMissedAreCapped(t *testing.T) {
	var attempts []domain.QuizAttempt
	for i := 0; i < 5; i++ {
		var answers []domain.Answer
		for q := 0; q < 9; q++ {
			answers = append(answers, answer(fmt.Sprintf("q%d", q), false))
		}
		attempts = append(attempts, build(attemptSpec{
			user: fmt.Sprintf("u%d", i), quiz: "quiz", category: "c", pct: 0, timeSpent: 90,
			offset: time.Duration(i) * time.Minute, answers: answers,
		}))
	}
	overview := Platform(attempts, domain.CatalogCounts{})
	if len(overview.SmartInsights.QualityAlerts) != 6 {
		t.Fatalf("expected 6 alerts, got %d", len(overview.SmartInsights.QualityAlerts))
	}
	if len(overview.SmartInsights.MostMissedQuestions) != 5 {
		t.Fatalf("expected 5 most missed, got %d", len(overview.SmartInsights.MostMissedQuestions))
	}
	if len(overview.Charts.HardestQuestions) != 9 {
		t.Fatalf("expected full hardest list, got %d", len(overview.Charts.HardestQuestions))
	}
}

func TestStrugglingAssignmentsOnePerUser(t *testing.T) {
	attempts := []domain.QuizAttempt{
		build(attemptSpec{user: "u1", quiz: "a", category: "geo", pct: 95, offset: 1}),
		build(attemptSpec{user: "u1", quiz: "b", category: "math", pct: 85, offset: 2}),
		build(attemptSpec{user: "u1", quiz: "b", category: "math", pct: 95, offset: 3}),
		build(attemptSpec{user: "u2", quiz: "a", category: "geo", pct: 30, offset: 4}),
		build(attemptSpec{user: "u2", quiz: "b", category: "math", pct: 10, offset: 5}),
	}
	for i := 3; i < 12; i++ {
		attempts = append(attempts, build(attemptSpec{
			user: fmt.Sprintf("x%02d", i), quiz: "a", category: "geo", pct: float64(50 + i), offset: time.Duration(i) * time.Hour,
		}))
	}

	got := Platform(attempts, domain.CatalogCounts{}).SmartInsights.StrugglingAssignments
	if len(got) != 8 {
		t.Fatalf("expected cap of 8, got %d", len(got))
	}
	seen := map[string]bool{}
	for _, s := range got {
		if seen[s.UserID] {
			t.Fatalf("user %s listed twice", s.UserID)
		}
		seen[s.UserID] = true
	}
	if got[0].UserID != "u2" || got[0].CategoryID != "math" || got[0].SuccessRate != 10 {
		t.Fatalf("expected u2 weakest in math first, got %+v", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i].SuccessRate < got[i-1].SuccessRate {
			t.Fatalf("expected ascending success rate, got %+v", got)
		}
	}

	strong := strugglingAssignments(attempts[:3])
	if len(strong) != 1 || strong[0].CategoryID != "math" || strong[0].SuccessRate != 90 {
		t.Fatalf("expected strong user's relatively weakest category math at 90, got %+v", strong)
	}
}

func TestUserImprovement(t *testing.T) {
	attempts := []domain.QuizAttempt{
		build(attemptSpec{user: "u1", quiz: "b", category: "c", pct: 70, offset: 2 * time.Hour}),
		build(attemptSpec{user: "u1", quiz: "a", category: "c", pct: 40, offset: time.Hour}),
	}
	report := User(attempts)
	if report.Summary.Improvement != 30 {
		t.Fatalf("expected improvement 30, got %v", report.Summary.Improvement)
	}
	if report.Summary.TotalAttempts != 2 || report.Summary.AveragePercentage != 55 {
		t.Fatalf("unexpected summary %+v", report.Summary)
	}
	if report.LearningCurve[0].Percentage != 40 || report.LearningCurve[1].Percentage != 70 {
		t.Fatalf("expected chronological learning curve, got %+v", report.LearningCurve)
	}
}

func TestUserSingleAttemptHasNoImprovement(t *testing.T) {
	report := User([]domain.QuizAttempt{build(attemptSpec{user: "u1", quiz: "a", category: "c", pct: 80})})
	if report.Summary.Improvement != 0 {
		t.Fatalf("expected 0 improvement, got %v", report.Summary.Improvement)
	}
}

func TestUserEmpty(t *testing.T) {
	report := User(nil)
	if report.Summary.TotalAttempts != 0 || report.Summary.AveragePercentage != 0 {
		t.Fatalf("expected zero summary, got %+v", report.Summary)
	}
	if report.LearningCurve == nil || report.CategoryPerformance == nil || report.QuizPerformance == nil || report.QuestionInsights == nil {
		t.Fatalf("expected empty, non-nil lists: %+v", report)
	}
}

func TestUserQuizPerformanceCounts(t *testing.T) {
	attempts := []domain.QuizAttempt{
		build(attemptSpec{user: "u1", quiz: "a", category: "c", pct: 50, offset: 1,
			answers: []domain.Answer{answer("q1", true), answer("q2", false)}}),
		build(attemptSpec{user: "u1", quiz: "a", category: "c", pct: 100, offset: 2,
			answers: []domain.Answer{answer("q1", true), answer("q2", true)}}),
	}
	report := User(attempts)
	if len(report.QuizPerformance) != 1 {
		t.Fatalf("expected one quiz, got %+v", report.QuizPerformance)
	}
	qp := report.QuizPerformance[0]
	if qp.Correct != 3 || qp.Total != 4 || qp.SuccessRate != 75 || qp.Attempts != 2 {
		t.Fatalf("unexpected quiz performance %+v", qp)
	}
}

func TestQuestionInsightFlags(t *testing.T) {
	var attempts []domain.QuizAttempt
	for i := 0; i < 5; i++ {
		attempts = append(attempts, build(attemptSpec{
			user: "u1", quiz: "a", category: "c", pct: 50, timeSpent: 6,
			offset: time.Duration(i) * time.Minute,
			answers: []domain.Answer{
				answer("guess", true),
				answer("hard", i == 4),
				answer("steady", i != 0 && i != 1),
			},
		}))
	}
	report := User(attempts)

	byID := map[string]QuestionInsight{}
	for _, qi := range report.QuestionInsights {
		byID[qi.QuestionID] = qi
	}

	guess := byID["guess"]
	if guess.Flag == nil || *guess.Flag != FlagPossibleGuess || guess.AverageTime != 2 {
		t.Fatalf("expected quick correct flag, got %+v", guess)
	}
	hard := byID["hard"]
	if hard.Flag == nil || *hard.Flag != FlagStruggling || hard.IncorrectRate != 80 {
		t.Fatalf("expected struggling flag, got %+v", hard)
	}
	if !hard.LastResult || hard.LastAnsweredAt == nil || !hard.LastAnsweredAt.Equal(base.Add(4*time.Minute)) {
		t.Fatalf("expected last result from the latest attempt, got %+v", hard)
	}
	steady := byID["steady"]
	if steady.Flag != nil {
		t.Fatalf("expected no flag at 60%% accuracy, got %q", *steady.Flag)
	}
	if report.QuestionInsights[0].QuestionID != "hard" {
		t.Fatalf("expected insights ordered by incorrect rate, got %+v", report.QuestionInsights)
	}
}

func TestQuestionInsightsTopTen(t *testing.T) {
	var answers []domain.Answer
	for q := 0; q < 14; q++ {
		answers = append(answers, answer(fmt.Sprintf("q%02d", q), q%2 == 0))
	}
	report := User([]domain.QuizAttempt{build(attemptSpec{user: "u1", quiz: "a", category: "c", pct: 50, timeSpent: 140, answers: answers})})
	if len(report.QuestionInsights) != 10 {
		t.Fatalf("expected 10 insights, got %d", len(report.QuestionInsights))
	}
}
