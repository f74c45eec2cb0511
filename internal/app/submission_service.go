package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/ranking"
	"quiz-assessment-service/internal/scoring"
)

// SubmitRequest is a completed quiz run sent by a client. TimeSpent and
// StartedAt are client telemetry and are sanitized before storage.
type SubmitRequest struct {
	UserID    string            `json:"userId" validate:"required"`
	QuizID    string            `json:"quizId" validate:"required"`
	Answers   map[string]string `json:"answers" validate:"required"`
	TimeSpent int               `json:"timeSpent"`
	StartedAt time.Time         `json:"startedAt"`
}

// SubmitResult is the persisted attempt plus the submitter's rank movement.
type SubmitResult struct {
	QuizAttempt domain.QuizAttempt `json:"quizAttempt"`
	RankData    domain.RankDelta   `json:"rankData"`
}

// SubmissionService grades submissions, stores them and reports rank changes.
type SubmissionService struct {
	quizzes     QuizRepository
	attempts    AttemptStore
	users       UserDirectory
	leaderboard *LeaderboardService
	events      EventPublisher
	logger      *slog.Logger
	validate    *validator.Validate
	now         func() time.Time
}

func NewSubmissionService(quizzes QuizRepository, attempts AttemptStore, users UserDirectory, leaderboard *LeaderboardService, events EventPublisher, logger *slog.Logger) *SubmissionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionService{
		quizzes:     quizzes,
		attempts:    attempts,
		users:       users,
		leaderboard: leaderboard,
		events:      events,
		logger:      logger,
		validate:    newValidator(),
		now:         time.Now,
	}
}

// WithClock swaps the completion clock; used by tests for deterministic timestamps.
func (s *SubmissionService) WithClock(now func() time.Time) *SubmissionService {
	s.now = now
	return s
}

// Submit grades and stores one attempt, then computes the rank delta.
//
// The ordering is read before and after the write without isolation, so
// concurrent submissions from other users can make oldRank and newRank
// inconsistent with each other.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return SubmitResult{}, toValidationError(err)
	}

	user, err := s.users.GetUser(ctx, req.UserID)
	if err != nil {
		return SubmitResult{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, req.QuizID)
	if err != nil {
		return SubmitResult{}, err
	}

	graded := scoring.Grade(quiz, req.Answers)
	attempt := s.buildAttempt(req, user, quiz, graded)

	before, err := s.leaderboard.GlobalOrdering(ctx)
	if err != nil {
		return SubmitResult{}, err
	}
	saved, err := s.attempts.SaveAttempt(ctx, attempt)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("save attempt: %w", err)
	}
	after, err := s.leaderboard.GlobalOrdering(ctx)
	if err != nil {
		return SubmitResult{}, err
	}
	delta := ranking.Delta(user.ID, before, after)

	s.logger.Info("attempt submitted",
		"attempt_id", saved.ID,
		"user_id", user.ID,
		"quiz_id", quiz.ID,
		"score", saved.Score,
		"max_score", saved.MaxScore,
		"improved", delta.Improved)

	s.publish(ctx, domain.NewEvent(domain.EventQuizCompleted, domain.QuizCompleted{
		UserID:     user.ID,
		UserName:   user.Name,
		Score:      saved.Score,
		MaxScore:   saved.MaxScore,
		Percentage: saved.Percentage,
		QuizID:     quiz.ID,
		QuizTitle:  quiz.Title,
	}))
	if delta.Improved {
		changed := domain.RankChanged{
			UserID:   user.ID,
			UserName: user.Name,
			OldRank:  *delta.OldRank,
			NewRank:  *delta.NewRank,
		}
		if delta.PassedUser != nil {
			changed.PassedUserID = &delta.PassedUser.ID
			changed.PassedUserName = &delta.PassedUser.Name
		}
		s.publish(ctx, domain.NewEvent(domain.EventRankChanged, changed))
	}

	return SubmitResult{QuizAttempt: saved, RankData: delta}, nil
}

func (s *SubmissionService) buildAttempt(req SubmitRequest, user domain.User, quiz domain.Quiz, graded scoring.Result) domain.QuizAttempt {
	completedAt := s.now().UTC()

	answered := 0
	for _, q := range quiz.Questions {
		if _, ok := req.Answers[q.ID]; ok {
			answered++
		}
	}
	timeSpent, flag := scoring.SanitizeTiming(req.TimeSpent, answered, req.StartedAt, completedAt)
	if flag != "" {
		s.logger.Warn("implausible attempt timing",
			"user_id", user.ID,
			"quiz_id", quiz.ID,
			"reported", req.TimeSpent,
			"stored", timeSpent,
			"flag", flag)
	}
	startedAt := req.StartedAt.UTC()
	if req.StartedAt.IsZero() {
		startedAt = completedAt.Add(-time.Duration(timeSpent) * time.Second)
	}

	attemptID := uuid.NewString()
	content := make(map[string]string, len(quiz.Questions))
	for _, q := range quiz.Questions {
		content[q.ID] = q.Content
	}
	answers := make([]domain.Answer, 0, len(graded.PerQuestion))
	for _, r := range graded.PerQuestion {
		answers = append(answers, domain.Answer{
			QuizAttemptID:   attemptID,
			QuestionID:      r.QuestionID,
			QuestionContent: content[r.QuestionID],
			UserID:          user.ID,
			Answer:          r.AnswerText,
			IsCorrect:       r.IsCorrect,
			Points:          r.PointsAwarded,
		})
	}

	return domain.QuizAttempt{
		ID:       attemptID,
		UserID:   user.ID,
		UserName: user.Name,
		QuizID:   quiz.ID,
		Quiz: domain.QuizRef{
			ID:           quiz.ID,
			Title:        quiz.Title,
			CategoryID:   quiz.CategoryID,
			CategoryName: quiz.CategoryName,
		},
		Score:       graded.Score,
		MaxScore:    graded.MaxScore,
		Percentage:  graded.Percentage,
		TimeSpent:   timeSpent,
		TimingFlag:  flag,
		StartedAt:   startedAt,
		CompletedAt: &completedAt,
		Answers:     answers,
	}
}

// publish is fire-and-forget: failures are logged and dropped.
func (s *SubmissionService) publish(ctx context.Context, event domain.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event dropped", "type", event.Type, "event_id", event.ID, "error", err)
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		message := "is invalid"
		if fe.Tag() == "required" {
			message = "is required"
		}
		return &domain.ValidationError{Field: fe.Field(), Message: message}
	}
	return &domain.ValidationError{Field: "request", Message: err.Error()}
}
