package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/config"
	"quiz-assessment-service/internal/infra/memory"
	redisinfra "quiz-assessment-service/internal/infra/redis"
	"quiz-assessment-service/internal/notify"
	"quiz-assessment-service/internal/ranking"
	transport "quiz-assessment-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assessment server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	policy, err := ranking.ParseTieBreak(cfg.Ranking.TieBreak)
	if err != nil {
		return err
	}

	ctx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()

	store, closeStore, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	hub := notify.NewHub(notify.DefaultBuffer, logger)
	defer hub.Close()

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	var publisher app.EventPublisher = hub
	if redisClient != nil {
		redisTTL := config.TTLDuration(cfg.Redis.TTL, quizTTL)
		quizRepo = redisinfra.NewQuizRepository(redisClient, store, redisTTL, logger)
		publisher = redisinfra.NewEventPublisher(redisClient, cfg.Events.Channel)
		relay := redisinfra.NewEventRelay(redisClient, cfg.Events.Channel, hub, logger)
		go func() {
			if err := relay.Run(ctx); err != nil {
				logger.Error("event relay stopped", "error", err)
			}
		}()
	} else {
		quizRepo = memory.NewQuizRepository(store, quizTTL)
	}

	leaderboard := app.NewLeaderboardService(store, policy, cfg.Ranking.NeighborWindow)
	submissions := app.NewSubmissionService(quizRepo, store, store, leaderboard, publisher, logger)
	analytics := app.NewAnalyticsService(store, store, store, logger)

	router := transport.NewRouter(
		transport.NewAPIHandler(submissions, analytics, leaderboard, logger),
		transport.NewEventsHandler(hub, logger),
		logger,
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting assessment service", "port", finalPort, "tie_break", policy)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	// Websocket connections are hijacked and ignored by Shutdown; closing the
	// hub ends their event streams.
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
