// Package ranking derives the global leaderboard from attempt history. Nothing
// here is persisted: every ordering is rebuilt from a snapshot of attempts.
package ranking

import (
	"fmt"
	"sort"

	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/scoring"
)

// TieBreak selects how users with equal total scores are separated.
type TieBreak string

const (
	// TieBreakNone leaves equal totals tied; tied users share a rank.
	TieBreakNone TieBreak = "none"
	// TieBreakAveragePercentage ranks equal totals by average attempt
	// percentage, higher first. Users equal on both share a rank.
	TieBreakAveragePercentage TieBreak = "average_percentage"
)

// DefaultTieBreak is applied when configuration leaves the policy empty.
const DefaultTieBreak = TieBreakAveragePercentage

// ParseTieBreak validates a configured policy name.
func ParseTieBreak(raw string) (TieBreak, error) {
	switch TieBreak(raw) {
	case "":
		return DefaultTieBreak, nil
	case TieBreakNone, TieBreakAveragePercentage:
		return TieBreak(raw), nil
	}
	return "", fmt.Errorf("unknown tie-break policy %q", raw)
}

// Standing is one user's position on the leaderboard.
type Standing struct {
	Rank              int     `json:"rank"`
	UserID            string  `json:"userId"`
	UserName          string  `json:"userName"`
	TotalScore        int     `json:"totalScore"`
	AveragePercentage float64 `json:"averagePercentage"`
	Attempts          int     `json:"attempts"`

	avg float64
}

// Ordering is an immutable leaderboard snapshot.
type Ordering struct {
	policy    TieBreak
	standings []Standing
	index     map[string]int
}

// Build sums attempt scores per user and orders users by total descending,
// applying policy to equal totals. Users without attempts are absent.
func Build(attempts []domain.QuizAttempt, policy TieBreak) Ordering {
	if policy == "" {
		policy = DefaultTieBreak
	}

	byUser := make(map[string]*Standing)
	sums := make(map[string]float64)
	for _, attempt := range attempts {
		standing, ok := byUser[attempt.UserID]
		if !ok {
			standing = &Standing{UserID: attempt.UserID}
			byUser[attempt.UserID] = standing
		}
		if attempt.UserName != "" {
			standing.UserName = attempt.UserName
		}
		standing.TotalScore += attempt.Score
		standing.Attempts++
		sums[attempt.UserID] += attempt.Percentage
	}

	standings := make([]Standing, 0, len(byUser))
	for userID, standing := range byUser {
		standing.avg = sums[userID] / float64(standing.Attempts)
		standing.AveragePercentage = scoring.Round1(standing.avg)
		standings = append(standings, *standing)
	}

	o := Ordering{policy: policy}
	sort.Slice(standings, func(i, j int) bool {
		if o.ahead(standings[i], standings[j]) {
			return true
		}
		if o.ahead(standings[j], standings[i]) {
			return false
		}
		// Fully tied: list by ID so responses are stable. Rank is unaffected.
		return standings[i].UserID < standings[j].UserID
	})

	o.index = make(map[string]int, len(standings))
	for i := range standings {
		if i > 0 && !o.ahead(standings[i-1], standings[i]) {
			standings[i].Rank = standings[i-1].Rank
		} else {
			standings[i].Rank = i + 1
		}
		o.index[standings[i].UserID] = i
	}
	o.standings = standings
	return o
}

// ahead reports whether a is strictly ahead of b under the policy.
func (o Ordering) ahead(a, b Standing) bool {
	if a.TotalScore != b.TotalScore {
		return a.TotalScore > b.TotalScore
	}
	if o.policy == TieBreakAveragePercentage {
		return a.avg > b.avg
	}
	return false
}

// Policy returns the tie-break the snapshot was built with.
func (o Ordering) Policy() TieBreak { return o.policy }

// Len is the number of ranked users.
func (o Ordering) Len() int { return len(o.standings) }

// Standings returns the full ordering.
func (o Ordering) Standings() []Standing {
	out := make([]Standing, len(o.standings))
	copy(out, o.standings)
	return out
}

// Top returns at most limit leading standings; limit <= 0 returns all.
func (o Ordering) Top(limit int) []Standing {
	if limit <= 0 || limit > len(o.standings) {
		limit = len(o.standings)
	}
	out := make([]Standing, limit)
	copy(out, o.standings[:limit])
	return out
}

// StandingOf returns the user's standing, false when the user is unranked.
func (o Ordering) StandingOf(userID string) (Standing, bool) {
	i, ok := o.index[userID]
	if !ok {
		return Standing{}, false
	}
	return o.standings[i], true
}

// PositionOf is the user's zero-based list position, or -1 when unranked.
// Fully tied users share a rank but never a position.
func (o Ordering) PositionOf(userID string) int {
	i, ok := o.index[userID]
	if !ok {
		return -1
	}
	return i
}

// RankOf is 1 + the number of users strictly ahead of userID. The boolean is
// false for users with no attempts, who have no rank.
func (o Ordering) RankOf(userID string) (int, bool) {
	s, ok := o.StandingOf(userID)
	return s.Rank, ok
}

// Neighbors returns the standings within window list entries of position,
// which is one-based. Position equals rank only when nobody is tied above;
// callers holding a user should pass PositionOf(userID)+1.
func (o Ordering) Neighbors(position, window int) []Standing {
	if position < 1 || position > len(o.standings) {
		return nil
	}
	if window < 0 {
		window = 0
	}
	lo := position - 1 - window
	if lo < 0 {
		lo = 0
	}
	hi := position + window
	if hi > len(o.standings) {
		hi = len(o.standings)
	}
	out := make([]Standing, hi-lo)
	copy(out, o.standings[lo:hi])
	return out
}

// Delta compares the submitter's rank before and after a new attempt.
//
// The passed user is the first entry strictly behind the submitter afterwards,
// skipping anyone who now shares the submitter's rank, and only when that
// entry was strictly ahead of the submitter before. It is reported only when
// the rank improved.
func Delta(userID string, before, after Ordering) domain.RankDelta {
	var delta domain.RankDelta
	oldRank, hadRank := before.RankOf(userID)
	newRank, hasRank := after.RankOf(userID)
	if hadRank {
		delta.OldRank = &oldRank
	}
	if hasRank {
		delta.NewRank = &newRank
	}
	delta.Improved = hadRank && hasRank && newRank < oldRank
	if !delta.Improved {
		return delta
	}

	next := after.PositionOf(userID) + 1
	for next < len(after.standings) && after.standings[next].Rank == newRank {
		next++
	}
	if next >= len(after.standings) {
		return delta
	}
	candidate := after.standings[next]
	if rank, ok := before.RankOf(candidate.UserID); ok && rank < oldRank {
		delta.PassedUser = &domain.PassedUser{ID: candidate.UserID, Name: candidate.UserName}
	}
	return delta
}
