package domain

import "time"

// Role is a user's platform role.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleAdmin   Role = "ADMIN"
)

// User is owned by the account collaborator; the service only reads it.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"isActive"`
}

// Category groups questions and quizzes.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// QuestionType decides how a submitted answer is compared.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTrueFalse      QuestionType = "TRUE_FALSE"
	QuestionText           QuestionType = "TEXT"
	QuestionImage          QuestionType = "IMAGE"
)

// Option represents a possible answer for a choice question.
type Option struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Question models a gradable question. CorrectAnswer is the zero-based option
// index rendered as text for choice types and free text for TEXT.
type Question struct {
	ID            string       `json:"id"`
	Content       string       `json:"content"`
	Type          QuestionType `json:"type"`
	Options       []Option     `json:"options"`
	CorrectAnswer string       `json:"correctAnswer"`
	Points        int          `json:"points"`
	CategoryID    string       `json:"categoryId"`
}

// Quiz is an ordered collection of questions. Questions are kept in
// QuizQuestion order.
type Quiz struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	CategoryID   string     `json:"categoryId"`
	CategoryName string     `json:"categoryName"`
	TimeLimit    *int       `json:"timeLimit,omitempty"` // minutes
	Questions    []Question `json:"questions"`
}

// QuizQuestion links a question into a quiz at a position.
type QuizQuestion struct {
	QuizID     string `json:"quizId"`
	QuestionID string `json:"questionId"`
	Order      int    `json:"order"`
}

// QuizRef is the quiz/category join carried on attempt history rows.
type QuizRef struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName"`
}

// QuizAttempt is one graded run of a quiz. It is immutable once saved.
type QuizAttempt struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	UserName    string     `json:"userName,omitempty"`
	QuizID      string     `json:"quizId"`
	Quiz        QuizRef    `json:"quiz"`
	Score       int        `json:"score"`
	MaxScore    int        `json:"maxScore"`
	Percentage  float64    `json:"percentage"`
	TimeSpent   int        `json:"timeSpent"` // seconds, client-reported then sanitized
	TimingFlag  string     `json:"timingFlag,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Answers     []Answer   `json:"answers"`
}

// Answer is one graded question inside an attempt.
type Answer struct {
	QuizAttemptID   string `json:"quizAttemptId"`
	QuestionID      string `json:"questionId"`
	QuestionContent string `json:"questionContent,omitempty"`
	UserID          string `json:"userId"`
	Answer          string `json:"answer"`
	IsCorrect       bool   `json:"isCorrect"`
	Points          int    `json:"points"`
}

// CatalogCounts are reference-data totals reported on the analytics overview.
type CatalogCounts struct {
	Users      int `json:"users"`
	Categories int `json:"categories"`
	Quizzes    int `json:"quizzes"`
	Questions  int `json:"questions"`
}

// PassedUser identifies whoever a submitter overtook.
type PassedUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RankDelta describes how a submission moved the submitter on the leaderboard.
// OldRank is nil when the user had no attempts before the submission.
type RankDelta struct {
	OldRank    *int        `json:"oldRank"`
	NewRank    *int        `json:"newRank"`
	Improved   bool        `json:"improved"`
	PassedUser *PassedUser `json:"passedUser"`
}
