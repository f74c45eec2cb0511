package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-assessment-service/internal/domain"
)

// Store reads reference data and attempt history from Postgres and writes
// graded attempts.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	var timeLimit *int32
	err := s.pool.QueryRow(ctx, `
		SELECT q.id, q.title, q.category_id, c.name, q.time_limit
		FROM quizzes q
		JOIN categories c ON c.id = q.category_id
		WHERE q.id = $1`, quizID).
		Scan(&quiz.ID, &quiz.Title, &quiz.CategoryID, &quiz.CategoryName, &timeLimit)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, domain.NewStoreError("load quiz", err)
	}
	if timeLimit != nil {
		limit := int(*timeLimit)
		quiz.TimeLimit = &limit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT qs.id, qs.content, qs.type, qs.options, qs.correct_answer, qs.points, qs.category_id
		FROM quiz_questions qq
		JOIN questions qs ON qs.id = qq.question_id
		WHERE qq.quiz_id = $1
		ORDER BY qq."order", qs.id`, quizID)
	if err != nil {
		return domain.Quiz{}, domain.NewStoreError("load quiz questions", err)
	}
	defer rows.Close()

	quiz.Questions = make([]domain.Question, 0)
	for rows.Next() {
		var (
			q       domain.Question
			qType   string
			options *string
		)
		if err := rows.Scan(&q.ID, &q.Content, &qType, &options, &q.CorrectAnswer, &q.Points, &q.CategoryID); err != nil {
			return domain.Quiz{}, domain.NewStoreError("scan question", err)
		}
		q.Type = domain.QuestionType(qType)
		if options != nil {
			parsed, err := domain.ParseOptions([]byte(*options))
			if err != nil {
				return domain.Quiz{}, domain.NewStoreError("parse options", fmt.Errorf("question %s: %w", q.ID, err))
			}
			q.Options = parsed
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, domain.NewStoreError("load quiz questions", err)
	}
	return quiz, nil
}

// SaveAttempt inserts the attempt and its answers in one transaction.
func (s *Store) SaveAttempt(ctx context.Context, attempt domain.QuizAttempt) (domain.QuizAttempt, error) {
	err := s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO quiz_attempts
				(id, user_id, quiz_id, score, max_score, percentage, time_spent, timing_flag, started_at, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			attempt.ID, attempt.UserID, attempt.QuizID, attempt.Score, attempt.MaxScore,
			attempt.Percentage, attempt.TimeSpent, attempt.TimingFlag, attempt.StartedAt, attempt.CompletedAt,
		); err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}
		if len(attempt.Answers) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, a := range attempt.Answers {
			batch.Queue(`
				INSERT INTO answers (quiz_attempt_id, question_id, user_id, answer, is_correct, points)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				attempt.ID, a.QuestionID, a.UserID, a.Answer, a.IsCorrect, a.Points)
		}
		results := tx.SendBatch(ctx, batch)
		for range attempt.Answers {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("insert answer: %w", err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return domain.QuizAttempt{}, domain.NewStoreError("save attempt", err)
	}

	saved := attempt
	saved.Answers = make([]domain.Answer, len(attempt.Answers))
	for i, a := range attempt.Answers {
		a.QuizAttemptID = attempt.ID
		saved.Answers[i] = a
	}
	return saved, nil
}

func (s *Store) AllAttempts(ctx context.Context) ([]domain.QuizAttempt, error) {
	return s.attempts(ctx, "")
}

func (s *Store) AttemptsForUser(ctx context.Context, userID string) ([]domain.QuizAttempt, error) {
	return s.attempts(ctx, userID)
}

const attemptColumns = `
	SELECT a.id, a.user_id, u.name, a.quiz_id, q.title, q.category_id, c.name,
	       a.score, a.max_score, a.percentage, a.time_spent, a.timing_flag,
	       a.started_at, a.completed_at
	FROM quiz_attempts a
	JOIN users u ON u.id = a.user_id
	JOIN quizzes q ON q.id = a.quiz_id
	JOIN categories c ON c.id = q.category_id`

const answerColumns = `
	SELECT ans.quiz_attempt_id, ans.question_id, qs.content, ans.user_id,
	       ans.answer, ans.is_correct, ans.points
	FROM answers ans
	JOIN questions qs ON qs.id = ans.question_id`

// attempts loads attempts, optionally for one user, with their answers.
func (s *Store) attempts(ctx context.Context, userID string) ([]domain.QuizAttempt, error) {
	attemptSQL := attemptColumns + ` ORDER BY a.completed_at NULLS LAST, a.id`
	answerSQL := answerColumns + ` ORDER BY ans.quiz_attempt_id, ans.question_id`
	var args []interface{}
	if userID != "" {
		attemptSQL = attemptColumns + ` WHERE a.user_id = $1 ORDER BY a.completed_at NULLS LAST, a.id`
		answerSQL = answerColumns + ` WHERE ans.user_id = $1 ORDER BY ans.quiz_attempt_id, ans.question_id`
		args = append(args, userID)
	}

	rows, err := s.pool.Query(ctx, attemptSQL, args...)
	if err != nil {
		return nil, domain.NewStoreError("load attempts", err)
	}
	out := make([]domain.QuizAttempt, 0)
	index := make(map[string]int)
	for rows.Next() {
		var (
			a           domain.QuizAttempt
			completedAt *time.Time
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.UserName, &a.QuizID, &a.Quiz.Title, &a.Quiz.CategoryID,
			&a.Quiz.CategoryName, &a.Score, &a.MaxScore, &a.Percentage, &a.TimeSpent, &a.TimingFlag,
			&a.StartedAt, &completedAt); err != nil {
			rows.Close()
			return nil, domain.NewStoreError("scan attempt", err)
		}
		a.Quiz.ID = a.QuizID
		a.CompletedAt = completedAt
		a.Answers = make([]domain.Answer, 0)
		index[a.ID] = len(out)
		out = append(out, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, domain.NewStoreError("load attempts", err)
	}

	answerRows, err := s.pool.Query(ctx, answerSQL, args...)
	if err != nil {
		return nil, domain.NewStoreError("load answers", err)
	}
	defer answerRows.Close()
	for answerRows.Next() {
		var ans domain.Answer
		if err := answerRows.Scan(&ans.QuizAttemptID, &ans.QuestionID, &ans.QuestionContent, &ans.UserID,
			&ans.Answer, &ans.IsCorrect, &ans.Points); err != nil {
			return nil, domain.NewStoreError("scan answer", err)
		}
		// Answers written after the attempt query ran have no parent yet.
		i, ok := index[ans.QuizAttemptID]
		if !ok {
			continue
		}
		out[i].Answers = append(out[i].Answers, ans)
	}
	if err := answerRows.Err(); err != nil {
		return nil, domain.NewStoreError("load answers", err)
	}
	return out, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (domain.User, error) {
	var (
		user domain.User
		role string
	)
	err := s.pool.QueryRow(ctx, `SELECT id, email, name, role, is_active FROM users WHERE id = $1`, userID).
		Scan(&user.ID, &user.Email, &user.Name, &role, &user.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, domain.NewStoreError("get user", err)
	}
	user.Role = domain.Role(role)
	return user, nil
}

func (s *Store) Counts(ctx context.Context) (domain.CatalogCounts, error) {
	var counts domain.CatalogCounts
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM categories),
			(SELECT count(*) FROM quizzes),
			(SELECT count(*) FROM questions)`).
		Scan(&counts.Users, &counts.Categories, &counts.Quizzes, &counts.Questions)
	if err != nil {
		return domain.CatalogCounts{}, domain.NewStoreError("count catalog", err)
	}
	return counts, nil
}
