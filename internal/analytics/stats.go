// Package analytics derives dashboard diagnostics from attempt history. Every
// function is a pure fold over a snapshot of attempts; sparse or empty input
// yields empty lists and zero values, never an error.
package analytics

import (
	"sort"
	"time"

	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/scoring"
)

// CategorySuccess is the mean attempt percentage for one category.
type CategorySuccess struct {
	CategoryID   string  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	SuccessRate  float64 `json:"successRate"`
	Attempts     int     `json:"attempts"`
}

// QuizSuccess is the mean attempt percentage for one quiz.
type QuizSuccess struct {
	QuizID       string  `json:"quizId"`
	QuizTitle    string  `json:"quizTitle"`
	CategoryName string  `json:"categoryName"`
	SuccessRate  float64 `json:"successRate"`
	Attempts     int     `json:"attemptCount"`
}

// QuestionStat summarizes every recorded answer to one question.
type QuestionStat struct {
	QuestionID    string  `json:"questionId"`
	Content       string  `json:"content"`
	Attempts      int     `json:"attempts"`
	Incorrect     int     `json:"incorrect"`
	IncorrectRate float64 `json:"incorrectRate"`
	AverageTime   float64 `json:"averageTime"` // seconds
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(x float64) {
	m.sum += x
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

type categoryAcc struct {
	id, name string
	pct      mean
}

type quizAcc struct {
	id, title, category string
	pct                 mean
	correct, total      int
}

// questionAcc folds answers for one question. Per-answer time is the even
// split of the attempt duration over the attempt's answers; true per-question
// timing is not recorded.
type questionAcc struct {
	id, content      string
	total, incorrect int
	time             mean
	lastAt           time.Time
	lastCorrect      bool
	seen             bool
}

func (q *questionAcc) add(answer domain.Answer, attempt domain.QuizAttempt) {
	if q.content == "" {
		q.content = answer.QuestionContent
	}
	q.total++
	if !answer.IsCorrect {
		q.incorrect++
	}
	q.time.add(float64(attempt.TimeSpent) / float64(len(attempt.Answers)))

	at, _ := completionTime(attempt)
	if !q.seen || !at.Before(q.lastAt) {
		q.lastAt = at
		q.lastCorrect = answer.IsCorrect
		q.seen = true
	}
}

func (q *questionAcc) incorrectRate() float64 {
	if q.total == 0 {
		return 0
	}
	return float64(q.incorrect) / float64(q.total) * 100
}

func (q *questionAcc) stat() QuestionStat {
	return QuestionStat{
		QuestionID:    q.id,
		Content:       q.content,
		Attempts:      q.total,
		Incorrect:     q.incorrect,
		IncorrectRate: scoring.Round1(q.incorrectRate()),
		AverageTime:   scoring.Round1(q.time.value()),
	}
}

func categoryKey(a domain.QuizAttempt) string {
	if a.Quiz.CategoryID != "" {
		return a.Quiz.CategoryID
	}
	return a.Quiz.CategoryName
}

func quizKey(a domain.QuizAttempt) string {
	if a.QuizID != "" {
		return a.QuizID
	}
	return a.Quiz.ID
}

// completionTime prefers completedAt and falls back to startedAt.
func completionTime(a domain.QuizAttempt) (time.Time, bool) {
	if a.CompletedAt != nil {
		return *a.CompletedAt, true
	}
	return a.StartedAt, false
}

// chronological returns a copy of attempts ordered by completion time.
func chronological(attempts []domain.QuizAttempt) []domain.QuizAttempt {
	out := make([]domain.QuizAttempt, len(attempts))
	copy(out, attempts)
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := completionTime(out[i])
		tj, _ := completionTime(out[j])
		return ti.Before(tj)
	})
	return out
}

func foldCategories(attempts []domain.QuizAttempt) []CategorySuccess {
	accs := make(map[string]*categoryAcc)
	for _, a := range attempts {
		key := categoryKey(a)
		if key == "" {
			continue
		}
		acc, ok := accs[key]
		if !ok {
			acc = &categoryAcc{id: a.Quiz.CategoryID, name: a.Quiz.CategoryName}
			accs[key] = acc
		}
		acc.pct.add(a.Percentage)
	}

	out := make([]CategorySuccess, 0, len(accs))
	for _, acc := range accs {
		out = append(out, CategorySuccess{
			CategoryID:   acc.id,
			CategoryName: acc.name,
			SuccessRate:  scoring.Round1(acc.pct.value()),
			Attempts:     acc.pct.n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CategoryName != out[j].CategoryName {
			return out[i].CategoryName < out[j].CategoryName
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}

func foldQuizzes(attempts []domain.QuizAttempt) []*quizAcc {
	accs := make(map[string]*quizAcc)
	for _, a := range attempts {
		key := quizKey(a)
		acc, ok := accs[key]
		if !ok {
			acc = &quizAcc{id: key, title: a.Quiz.Title, category: a.Quiz.CategoryName}
			accs[key] = acc
		}
		acc.pct.add(a.Percentage)
		for _, answer := range a.Answers {
			acc.total++
			if answer.IsCorrect {
				acc.correct++
			}
		}
	}

	out := make([]*quizAcc, 0, len(accs))
	for _, acc := range accs {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].title != out[j].title {
			return out[i].title < out[j].title
		}
		return out[i].id < out[j].id
	})
	return out
}

func foldQuestions(attempts []domain.QuizAttempt) []*questionAcc {
	accs := make(map[string]*questionAcc)
	for _, a := range attempts {
		for _, answer := range a.Answers {
			acc, ok := accs[answer.QuestionID]
			if !ok {
				acc = &questionAcc{id: answer.QuestionID}
				accs[answer.QuestionID] = acc
			}
			acc.add(answer, a)
		}
	}

	out := make([]*questionAcc, 0, len(accs))
	for _, acc := range accs {
		out = append(out, acc)
	}
	// Highest incorrect rate first.
	sort.Slice(out, func(i, j int) bool {
		ri, rj := out[i].incorrectRate(), out[j].incorrectRate()
		if ri != rj {
			return ri > rj
		}
		if out[i].total != out[j].total {
			return out[i].total > out[j].total
		}
		return out[i].id < out[j].id
	})
	return out
}
