package app

import (
	"context"
	"fmt"

	"quiz-assessment-service/internal/ranking"
)

// DefaultNeighborWindow is how many positions around a user's rank are shown.
const DefaultNeighborWindow = 2

// LeaderboardService recomputes the global ordering from attempt history on
// every call; there is no stored rank.
type LeaderboardService struct {
	attempts AttemptStore
	policy   ranking.TieBreak
	window   int
}

func NewLeaderboardService(attempts AttemptStore, policy ranking.TieBreak, window int) *LeaderboardService {
	if policy == "" {
		policy = ranking.DefaultTieBreak
	}
	if window <= 0 {
		window = DefaultNeighborWindow
	}
	return &LeaderboardService{attempts: attempts, policy: policy, window: window}
}

// UserRank is a user's leaderboard position. Ranked is false for users with no
// attempts, who have no rank.
type UserRank struct {
	UserID    string             `json:"userId"`
	Ranked    bool               `json:"ranked"`
	Rank      *int               `json:"rank"`
	Standing  *ranking.Standing  `json:"standing,omitempty"`
	Neighbors []ranking.Standing `json:"neighbors"`
	TieBreak  ranking.TieBreak   `json:"tieBreak"`
}

// GlobalOrdering builds the leaderboard snapshot.
func (s *LeaderboardService) GlobalOrdering(ctx context.Context) (ranking.Ordering, error) {
	attempts, err := s.attempts.AllAttempts(ctx)
	if err != nil {
		return ranking.Ordering{}, fmt.Errorf("load attempts: %w", err)
	}
	return ranking.Build(attempts, s.policy), nil
}

// Top returns the leading standings.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]ranking.Standing, error) {
	ordering, err := s.GlobalOrdering(ctx)
	if err != nil {
		return nil, err
	}
	return ordering.Top(limit), nil
}

// RankOf resolves the user's rank and surrounding standings.
func (s *LeaderboardService) RankOf(ctx context.Context, userID string) (UserRank, error) {
	ordering, err := s.GlobalOrdering(ctx)
	if err != nil {
		return UserRank{}, err
	}
	result := UserRank{UserID: userID, TieBreak: ordering.Policy(), Neighbors: []ranking.Standing{}}
	standing, ok := ordering.StandingOf(userID)
	if !ok {
		return result, nil
	}
	rank := standing.Rank
	result.Ranked = true
	result.Rank = &rank
	result.Standing = &standing
	result.Neighbors = ordering.Neighbors(ordering.PositionOf(userID)+1, s.window)
	return result, nil
}

// Neighbors returns the standings within window entries of a one-based list
// position. A window <= 0 uses the configured default.
func (s *LeaderboardService) Neighbors(ctx context.Context, position, window int) ([]ranking.Standing, error) {
	ordering, err := s.GlobalOrdering(ctx)
	if err != nil {
		return nil, err
	}
	if window <= 0 {
		window = s.window
	}
	return ordering.Neighbors(position, window), nil
}
