package analytics

import (
	"sort"
	"time"

	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/scoring"
)

const (
	mostMissedLimit     = 5
	qualityAlertMinimum = 5
	qualityAlertRate    = 60.0
	qualityAlertLimit   = 6
	strugglingLimit     = 8
)

// Overview is the platform-wide dashboard payload.
type Overview struct {
	Totals        Totals        `json:"totals"`
	Highlights    Highlights    `json:"highlights"`
	Charts        Charts        `json:"charts"`
	SmartInsights SmartInsights `json:"smartInsights"`
}

// Totals combine catalog counts with attempt-derived counts.
type Totals struct {
	Users             int     `json:"users"`
	Categories        int     `json:"categories"`
	Quizzes           int     `json:"quizzes"`
	Questions         int     `json:"questions"`
	Attempts          int     `json:"attempts"`
	ActiveUsers       int     `json:"activeUsers"`
	AveragePercentage float64 `json:"averagePercentage"`
}

type Highlights struct {
	MostChallengingCategory *CategorySuccess `json:"mostChallengingCategory"`
	MostChallengingQuiz     *QuizSuccess     `json:"mostChallengingQuiz"`
}

type Charts struct {
	CategorySuccess     []CategorySuccess `json:"categorySuccess"`
	QuizSuccess         []QuizSuccess     `json:"quizSuccess"`
	PerformanceTimeline []TimelinePoint   `json:"performanceTimeline"`
	HardestQuestions    []QuestionStat    `json:"hardestQuestions"`
}

type SmartInsights struct {
	MostMissedQuestions   []QuestionStat         `json:"mostMissedQuestions"`
	QualityAlerts         []QuestionStat         `json:"qualityAlerts"`
	StrugglingAssignments []StrugglingAssignment `json:"strugglingAssignments"`
}

// TimelinePoint is one completed attempt on the performance chart.
type TimelinePoint struct {
	Date       time.Time `json:"date"`
	Percentage float64   `json:"percentage"`
	QuizTitle  string    `json:"quizTitle"`
}

// StrugglingAssignment is a user's relatively weakest category. Strong users
// appear too, with whichever category they did least well in.
type StrugglingAssignment struct {
	UserID       string  `json:"userId"`
	UserName     string  `json:"userName"`
	CategoryID   string  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	SuccessRate  float64 `json:"successRate"`
	Attempts     int     `json:"attempts"`
}

// Platform aggregates the full attempt history.
func Platform(attempts []domain.QuizAttempt, counts domain.CatalogCounts) Overview {
	overview := Overview{
		Totals: platformTotals(attempts, counts),
	}

	categories := foldCategories(attempts)
	overview.Charts.CategorySuccess = categories
	overview.Highlights.MostChallengingCategory = mostChallengingCategory(categories)

	quizzes := make([]QuizSuccess, 0)
	for _, acc := range foldQuizzes(attempts) {
		quizzes = append(quizzes, QuizSuccess{
			QuizID:       acc.id,
			QuizTitle:    acc.title,
			CategoryName: acc.category,
			SuccessRate:  scoring.Round1(acc.pct.value()),
			Attempts:     acc.pct.n,
		})
	}
	overview.Charts.QuizSuccess = quizzes
	overview.Highlights.MostChallengingQuiz = mostChallengingQuiz(quizzes)

	overview.Charts.PerformanceTimeline = timeline(attempts)

	questions := foldQuestions(attempts)
	hardest := make([]QuestionStat, 0, len(questions))
	for _, acc := range questions {
		hardest = append(hardest, acc.stat())
	}
	overview.Charts.HardestQuestions = hardest
	overview.SmartInsights.MostMissedQuestions = mostMissed(hardest)
	overview.SmartInsights.QualityAlerts = qualityAlerts(hardest)
	overview.SmartInsights.StrugglingAssignments = strugglingAssignments(attempts)
	return overview
}

func platformTotals(attempts []domain.QuizAttempt, counts domain.CatalogCounts) Totals {
	totals := Totals{
		Users:      counts.Users,
		Categories: counts.Categories,
		Quizzes:    counts.Quizzes,
		Questions:  counts.Questions,
		Attempts:   len(attempts),
	}
	users := make(map[string]struct{})
	var pct mean
	for _, a := range attempts {
		users[a.UserID] = struct{}{}
		pct.add(a.Percentage)
	}
	totals.ActiveUsers = len(users)
	totals.AveragePercentage = scoring.Round1(pct.value())
	return totals
}

// mostChallengingCategory ignores categories sitting at 0%.
func mostChallengingCategory(categories []CategorySuccess) *CategorySuccess {
	var lowest *CategorySuccess
	for i := range categories {
		c := categories[i]
		if c.SuccessRate <= 0 {
			continue
		}
		if lowest == nil || c.SuccessRate < lowest.SuccessRate {
			lowest = &c
		}
	}
	return lowest
}

func mostChallengingQuiz(quizzes []QuizSuccess) *QuizSuccess {
	var lowest *QuizSuccess
	for i := range quizzes {
		q := quizzes[i]
		if q.Attempts == 0 {
			continue
		}
		if lowest == nil || q.SuccessRate < lowest.SuccessRate {
			lowest = &q
		}
	}
	return lowest
}

func timeline(attempts []domain.QuizAttempt) []TimelinePoint {
	points := make([]TimelinePoint, 0, len(attempts))
	for _, a := range attempts {
		if a.CompletedAt == nil {
			continue
		}
		points = append(points, TimelinePoint{
			Date:       *a.CompletedAt,
			Percentage: a.Percentage,
			QuizTitle:  a.Quiz.Title,
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// mostMissed expects stats already ordered by incorrect rate.
func mostMissed(stats []QuestionStat) []QuestionStat {
	out := make([]QuestionStat, 0, mostMissedLimit)
	for _, s := range stats {
		if s.Attempts == 0 {
			continue
		}
		out = append(out, s)
		if len(out) == mostMissedLimit {
			break
		}
	}
	return out
}

// qualityAlerts flags questions that enough people got wrong to suspect the
// question itself. The attempt floor keeps small samples out.
func qualityAlerts(stats []QuestionStat) []QuestionStat {
	out := make([]QuestionStat, 0, qualityAlertLimit)
	for _, s := range stats {
		if s.Attempts < qualityAlertMinimum || s.IncorrectRate < qualityAlertRate {
			continue
		}
		out = append(out, s)
		if len(out) == qualityAlertLimit {
			break
		}
	}
	return out
}

func strugglingAssignments(attempts []domain.QuizAttempt) []StrugglingAssignment {
	type userCat struct{ user, category string }
	accs := make(map[userCat]*categoryAcc)
	names := make(map[string]string)
	for _, a := range attempts {
		key := categoryKey(a)
		if key == "" {
			continue
		}
		if a.UserName != "" {
			names[a.UserID] = a.UserName
		}
		k := userCat{user: a.UserID, category: key}
		acc, ok := accs[k]
		if !ok {
			acc = &categoryAcc{id: a.Quiz.CategoryID, name: a.Quiz.CategoryName}
			accs[k] = acc
		}
		acc.pct.add(a.Percentage)
	}

	type pick struct {
		assignment StrugglingAssignment
		rate       float64
	}
	weakest := make(map[string]pick)
	for k, acc := range accs {
		candidate := pick{
			assignment: StrugglingAssignment{
				UserID:       k.user,
				UserName:     names[k.user],
				CategoryID:   acc.id,
				CategoryName: acc.name,
				SuccessRate:  scoring.Round1(acc.pct.value()),
				Attempts:     acc.pct.n,
			},
			rate: acc.pct.value(),
		}
		current, ok := weakest[k.user]
		if !ok || candidate.rate < current.rate ||
			(candidate.rate == current.rate && candidate.assignment.CategoryName < current.assignment.CategoryName) {
			weakest[k.user] = candidate
		}
	}

	out := make([]StrugglingAssignment, 0, len(weakest))
	for _, p := range weakest {
		out = append(out, p.assignment)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SuccessRate != out[j].SuccessRate {
			return out[i].SuccessRate < out[j].SuccessRate
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > strugglingLimit {
		out = out[:strugglingLimit]
	}
	return out
}
