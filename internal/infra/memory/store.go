package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"quiz-assessment-service/internal/domain"
)

// Store is an in-memory implementation of the attempt store, user directory,
// catalog and quiz loader. Reads join reference data at read time, the way the
// SQL store does.
type Store struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	categories map[string]domain.Category
	questions  map[string]domain.Question
	quizzes    map[string]domain.Quiz // Questions unset; see links
	links      map[string][]domain.QuizQuestion
	attempts   []domain.QuizAttempt
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]domain.User),
		categories: make(map[string]domain.Category),
		questions:  make(map[string]domain.Question),
		quizzes:    make(map[string]domain.Quiz),
		links:      make(map[string][]domain.QuizQuestion),
	}
}

func (s *Store) PutUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

func (s *Store) PutCategory(category domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[category.ID] = category
}

func (s *Store) PutQuestion(question domain.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[question.ID] = question
}

// PutQuiz stores a quiz and links its questions in the given order. Questions
// embedded in quiz are stored as well.
func (s *Store) PutQuiz(quiz domain.Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	links := make([]domain.QuizQuestion, 0, len(quiz.Questions))
	for i, q := range quiz.Questions {
		s.questions[q.ID] = q
		links = append(links, domain.QuizQuestion{QuizID: quiz.ID, QuestionID: q.ID, Order: i + 1})
	}
	quiz.Questions = nil
	s.quizzes[quiz.ID] = quiz
	s.links[quiz.ID] = links
}

// LoadQuiz implements QuizLoader.
func (s *Store) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if c, ok := s.categories[quiz.CategoryID]; ok {
		quiz.CategoryName = c.Name
	}
	links := append([]domain.QuizQuestion(nil), s.links[quizID]...)
	sort.SliceStable(links, func(i, j int) bool { return links[i].Order < links[j].Order })

	quiz.Questions = make([]domain.Question, 0, len(links))
	for _, link := range links {
		q, ok := s.questions[link.QuestionID]
		if !ok {
			continue
		}
		q.Options = append([]domain.Option(nil), q.Options...)
		quiz.Questions = append(quiz.Questions, q)
	}
	return quiz, nil
}

// SaveAttempt stores the attempt and its answers under one lock, so readers
// never observe an attempt without its answers.
func (s *Store) SaveAttempt(_ context.Context, attempt domain.QuizAttempt) (domain.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.attempts {
		if existing.ID == attempt.ID {
			return domain.QuizAttempt{}, domain.NewStoreError("save attempt", fmt.Errorf("duplicate attempt id %s", attempt.ID))
		}
	}
	stored := copyAttempt(attempt)
	for i := range stored.Answers {
		stored.Answers[i].QuizAttemptID = stored.ID
	}
	s.attempts = append(s.attempts, stored)
	return s.joinLocked(stored), nil
}

func (s *Store) AllAttempts(_ context.Context) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizAttempt, 0, len(s.attempts))
	for _, a := range s.attempts {
		out = append(out, s.joinLocked(a))
	}
	return out, nil
}

func (s *Store) AttemptsForUser(_ context.Context, userID string) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizAttempt, 0)
	for _, a := range s.attempts {
		if a.UserID == userID {
			out = append(out, s.joinLocked(a))
		}
	}
	return out, nil
}

func (s *Store) GetUser(_ context.Context, userID string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) Counts(_ context.Context) (domain.CatalogCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CatalogCounts{
		Users:      len(s.users),
		Categories: len(s.categories),
		Quizzes:    len(s.quizzes),
		Questions:  len(s.questions),
	}, nil
}

// joinLocked returns a copy of a with current user, quiz, category and
// question data filled in. Missing reference rows keep the stored values.
func (s *Store) joinLocked(a domain.QuizAttempt) domain.QuizAttempt {
	out := copyAttempt(a)
	if u, ok := s.users[a.UserID]; ok {
		out.UserName = u.Name
	}
	if q, ok := s.quizzes[a.QuizID]; ok {
		out.Quiz.ID = q.ID
		out.Quiz.Title = q.Title
		out.Quiz.CategoryID = q.CategoryID
		if c, ok := s.categories[q.CategoryID]; ok {
			out.Quiz.CategoryName = c.Name
		}
	}
	for i := range out.Answers {
		if q, ok := s.questions[out.Answers[i].QuestionID]; ok {
			out.Answers[i].QuestionContent = q.Content
		}
	}
	return out
}

func copyAttempt(a domain.QuizAttempt) domain.QuizAttempt {
	out := a
	out.Answers = append([]domain.Answer(nil), a.Answers...)
	if a.CompletedAt != nil {
		completed := *a.CompletedAt
		out.CompletedAt = &completed
	}
	return out
}
