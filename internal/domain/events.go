package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a notification shape carried on the fan-out channel.
type EventType string

const (
	EventQuizCompleted  EventType = "quiz_completed"
	EventRankChanged    EventType = "rank_changed"
	EventNewTestCreated EventType = "new_test_created"
)

// Event is the envelope handed to the notification fan-out. Delivery is
// best-effort and at-most-once per connected receiver; nothing is persisted.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// NewEvent stamps a payload with an ID and time.
func NewEvent(typ EventType, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// QuizCompleted is emitted once per successful submission.
type QuizCompleted struct {
	UserID     string  `json:"userId"`
	UserName   string  `json:"userName"`
	Score      int     `json:"score"`
	MaxScore   int     `json:"maxScore"`
	Percentage float64 `json:"percentage"`
	QuizID     string  `json:"quizId"`
	QuizTitle  string  `json:"quizTitle"`
}

// RankChanged is emitted only when a submission improved the user's rank.
type RankChanged struct {
	UserID         string  `json:"userId"`
	UserName       string  `json:"userName"`
	OldRank        int     `json:"oldRank"`
	NewRank        int     `json:"newRank"`
	PassedUserID   *string `json:"passedUserId,omitempty"`
	PassedUserName *string `json:"passedUserName,omitempty"`
}

// NewTestCreated is produced by the quiz authoring collaborator and shares
// the same channel.
type NewTestCreated struct {
	TestID       string `json:"testId"`
	TestTitle    string `json:"testTitle"`
	CategoryName string `json:"categoryName"`
	CreatedBy    string `json:"createdBy"`
}
