package app

import (
	"context"

	"quiz-assessment-service/internal/domain"
)

// QuizRepository loads quiz definitions (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// AttemptStore persists graded attempts and serves attempt history with the
// quiz, category, user and question joins filled in.
type AttemptStore interface {
	// SaveAttempt writes the attempt and all of its answers as one unit.
	SaveAttempt(ctx context.Context, attempt domain.QuizAttempt) (domain.QuizAttempt, error)
	AllAttempts(ctx context.Context) ([]domain.QuizAttempt, error)
	AttemptsForUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error)
}

// UserDirectory resolves users owned by the account collaborator.
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (domain.User, error)
}

// Catalog reports reference-data totals.
type Catalog interface {
	Counts(ctx context.Context) (domain.CatalogCounts, error)
}

// EventPublisher hands events to the notification fan-out. Delivery is
// best-effort; a publish error never fails the operation that produced it.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}
