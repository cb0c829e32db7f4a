package storage

import (
	"context"
	"errors"

	"github.com/letsssgooo/lessonquiz/internal/quiz"
)

// ErrNotFound возвращается, если запись не найдена.
var ErrNotFound = errors.New("not found")

// Storage определяет интерфейс для хранения квизов и результатов попыток.
type Storage interface {
	// SaveQuiz сохраняет квиз.
	SaveQuiz(ctx context.Context, q *quiz.Quiz) error

	// GetQuiz возвращает квиз по ID.
	GetQuiz(ctx context.Context, id string) (*quiz.Quiz, error)

	// ListQuizzes возвращает список квизов.
	ListQuizzes(ctx context.Context) ([]*quiz.Quiz, error)

	// DeleteQuiz удаляет квиз вместе с его попытками и ответами.
	DeleteQuiz(ctx context.Context, id string) error

	// SaveAttempt сохраняет итог попытки.
	SaveAttempt(ctx context.Context, r quiz.CompletionReport) error

	// SaveAnswer сохраняет результат проверки одного вопроса.
	SaveAnswer(ctx context.Context, r quiz.AnswerReport) error

	// ListAnswers возвращает результаты по вопросам для сессии в порядке сохранения.
	ListAnswers(ctx context.Context, sessionID string) ([]quiz.AnswerReport, error)

	// ListAttempts возвращает все попытки квиза.
	ListAttempts(ctx context.Context, quizID string) ([]quiz.CompletionReport, error)

	// AttemptHistory возвращает число прошлых попыток ученика и его лучший балл.
	AttemptHistory(ctx context.Context, quizID, learnerID string) (quiz.History, error)
}
