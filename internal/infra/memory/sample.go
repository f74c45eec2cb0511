package memory

import "quiz-assessment-service/internal/domain"

// SeedSample loads a small demo catalog used when no database is configured.
func SeedSample(s *Store) {
	s.PutUser(domain.User{ID: "user-1", Email: "ayse@example.com", Name: "Ayşe", Role: domain.RoleStudent, IsActive: true})
	s.PutUser(domain.User{ID: "user-2", Email: "mehmet@example.com", Name: "Mehmet", Role: domain.RoleStudent, IsActive: true})
	s.PutUser(domain.User{ID: "admin-1", Email: "admin@example.com", Name: "Admin", Role: domain.RoleAdmin, IsActive: true})

	s.PutCategory(domain.Category{ID: "cat-math", Name: "Matematik", Color: "#3b82f6"})
	s.PutCategory(domain.Category{ID: "cat-geo", Name: "Coğrafya", Color: "#10b981"})

	limit := 10
	s.PutQuiz(domain.Quiz{
		ID:         "quiz-math",
		Title:      "Temel Aritmetik",
		CategoryID: "cat-math",
		TimeLimit:  &limit,
		Questions: []domain.Question{
			{
				ID:            "q-add",
				Content:       "2 + 2 = ?",
				Type:          domain.QuestionMultipleChoice,
				Options:       []domain.Option{{Text: "3"}, {Text: "4"}, {Text: "5"}},
				CorrectAnswer: "1",
				Points:        10,
				CategoryID:    "cat-math",
			},
			{
				ID:            "q-even",
				Content:       "0 çift bir sayıdır.",
				Type:          domain.QuestionTrueFalse,
				Options:       []domain.Option{{Text: "Doğru"}, {Text: "Yanlış"}},
				CorrectAnswer: "0",
				Points:        5,
				CategoryID:    "cat-math",
			},
			{
				ID:            "q-pi",
				Content:       "Pi sayısının ilk iki basamağını yazın.",
				Type:          domain.QuestionText,
				CorrectAnswer: "3.1",
				Points:        15,
				CategoryID:    "cat-math",
			},
		},
	})
	s.PutQuiz(domain.Quiz{
		ID:         "quiz-geo",
		Title:      "Başkentler",
		CategoryID: "cat-geo",
		Questions: []domain.Question{
			{
				ID:            "q-capital",
				Content:       "Türkiye'nin başkenti neresidir?",
				Type:          domain.QuestionText,
				CorrectAnswer: "Ankara",
				Points:        10,
				CategoryID:    "cat-geo",
			},
			{
				ID:            "q-flag",
				Content:       "Bu bayrak hangi ülkeye aittir?",
				Type:          domain.QuestionImage,
				Options:       []domain.Option{{Text: "Japonya", ImageURL: "/img/jp.png"}, {Text: "Kore", ImageURL: "/img/kr.png"}},
				CorrectAnswer: "0",
				Points:        10,
				CategoryID:    "cat-geo",
			},
		},
	})
}
