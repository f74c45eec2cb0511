package cli

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/config"
	"quiz-assessment-service/internal/infra/memory"
	"quiz-assessment-service/internal/infra/postgres"
)

// backend is everything the services read from and write to.
type backend interface {
	memory.QuizLoader
	app.AttemptStore
	app.UserDirectory
	app.Catalog
}

// openBackend connects to Postgres when configured, applying migrations
// first, and otherwise returns an in-memory store seeded with sample data.
func openBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (backend, func(), error) {
	if cfg.Postgres.URL == "" {
		logger.Warn("postgres not configured, using in-memory store with sample data")
		store := memory.NewStore()
		memory.SeedSample(store)
		return store, func() {}, nil
	}

	if err := runMigrations(ctx, cfg, logger); err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewStore(pool), pool.Close, nil
}
