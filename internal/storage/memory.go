package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/letsssgooo/lessonquiz/internal/quiz"
)

// MemoryStorage реализует Storage в памяти.
type MemoryStorage struct {
	mu       sync.RWMutex
	quizzes  map[string]*quiz.Quiz
	attempts map[string][]quiz.CompletionReport // ключ - quizID
	answers  map[string][]quiz.AnswerReport     // ключ - sessionID
}

// NewMemoryStorage создаёт новый MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		quizzes:  make(map[string]*quiz.Quiz),
		attempts: make(map[string][]quiz.CompletionReport),
		answers:  make(map[string][]quiz.AnswerReport),
	}
}

// SaveQuiz сохраняет квиз.
func (s *MemoryStorage) SaveQuiz(_ context.Context, q *quiz.Quiz) error {
	if q == nil || q.ID == "" {
		return fmt.Errorf("quiz without id can not be saved")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.quizzes[q.ID] = q

	return nil
}

// GetQuiz возвращает квиз по ID.
func (s *MemoryStorage) GetQuiz(_ context.Context, id string) (*quiz.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quizzes[id]
	if !ok {
		return nil, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}

	return q, nil
}

// ListQuizzes возвращает список квизов, отсортированный по названию.
func (s *MemoryStorage) ListQuizzes(_ context.Context) ([]*quiz.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quizzes := make([]*quiz.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		quizzes = append(quizzes, q)
	}

	sort.Slice(quizzes, func(i, j int) bool {
		if quizzes[i].Title != quizzes[j].Title {
			return quizzes[i].Title < quizzes[j].Title
		}

		return quizzes[i].ID < quizzes[j].ID
	})

	return quizzes, nil
}

// DeleteQuiz удаляет квиз вместе с его попытками.
func (s *MemoryStorage) DeleteQuiz(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[id]; !ok {
		return fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}

	delete(s.quizzes, id)
	delete(s.attempts, id)

	for sessionID, answers := range s.answers {
		if len(answers) > 0 && answers[0].QuizID == id {
			delete(s.answers, sessionID)
		}
	}

	return nil
}

// SaveAttempt сохраняет итог попытки.
func (s *MemoryStorage) SaveAttempt(_ context.Context, r quiz.CompletionReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts[r.QuizID] = append(s.attempts[r.QuizID], r)

	return nil
}

// SaveAnswer сохраняет результат проверки вопроса.
func (s *MemoryStorage) SaveAnswer(_ context.Context, r quiz.AnswerReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.answers[r.SessionID] = append(s.answers[r.SessionID], r)

	return nil
}

// ListAttempts возвращает попытки квиза в порядке сохранения.
func (s *MemoryStorage) ListAttempts(_ context.Context, quizID string) ([]quiz.CompletionReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attempts := make([]quiz.CompletionReport, len(s.attempts[quizID]))
	copy(attempts, s.attempts[quizID])

	return attempts, nil
}

// ListAnswers возвращает отчёты по вопросам для сессии.
func (s *MemoryStorage) ListAnswers(_ context.Context, sessionID string) ([]quiz.AnswerReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	answers := make([]quiz.AnswerReport, len(s.answers[sessionID]))
	copy(answers, s.answers[sessionID])

	return answers, nil
}

// AttemptHistory возвращает число попыток ученика и лучший балл.
func (s *MemoryStorage) AttemptHistory(_ context.Context, quizID, learnerID string) (quiz.History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var history quiz.History

	for _, a := range s.attempts[quizID] {
		if a.LearnerID != learnerID {
			continue
		}

		history.PreviousAttempts++

		if history.BestScore == nil || a.Score > *history.BestScore {
			score := a.Score
			history.BestScore = &score
		}
	}

	return history, nil
}
