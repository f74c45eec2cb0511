package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"quiz-assessment-service/internal/analytics"
	"quiz-assessment-service/internal/domain"
)

// AnalyticsService runs the dashboard aggregations on demand against a fresh
// read of attempt history. It never caches results.
type AnalyticsService struct {
	attempts AttemptStore
	catalog  Catalog
	users    UserDirectory
	logger   *slog.Logger
}

func NewAnalyticsService(attempts AttemptStore, catalog Catalog, users UserDirectory, logger *slog.Logger) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{attempts: attempts, catalog: catalog, users: users, logger: logger}
}

// Overview aggregates the whole platform.
func (s *AnalyticsService) Overview(ctx context.Context) (analytics.Overview, error) {
	var (
		attempts []domain.QuizAttempt
		counts   domain.CatalogCounts
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		attempts, err = s.attempts.AllAttempts(gctx)
		if err != nil {
			return fmt.Errorf("load attempts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		counts, err = s.catalog.Counts(gctx)
		if err != nil {
			return fmt.Errorf("load catalog counts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return analytics.Overview{}, err
	}

	s.logger.Debug("computing platform analytics", "attempts", len(attempts))
	return analytics.Platform(attempts, counts), nil
}

// UserReport aggregates one user's history. Unknown users are a not-found
// error; known users without attempts get an empty report.
func (s *AnalyticsService) UserReport(ctx context.Context, userID string) (analytics.UserReport, error) {
	if userID == "" {
		return analytics.UserReport{}, &domain.ValidationError{Field: "userId", Message: "is required"}
	}

	var attempts []domain.QuizAttempt
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.users.GetUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		attempts, err = s.attempts.AttemptsForUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("load user attempts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return analytics.UserReport{}, err
	}

	s.logger.Debug("computing user analytics", "user_id", userID, "attempts", len(attempts))
	return analytics.User(attempts), nil
}
