package storage

import (
	"context"
	"fmt"

	"github.com/letsssgooo/lessonquiz/internal/quiz"
)

// Reporter сохраняет отчёты сессий квиза в Storage.
type Reporter struct {
	st Storage
}

// NewReporter создаёт Reporter поверх хранилища.
func NewReporter(st Storage) *Reporter {
	return &Reporter{st: st}
}

// ReportAnswer сохраняет результат проверки вопроса.
func (r *Reporter) ReportAnswer(ctx context.Context, a quiz.AnswerReport) error {
	if err := r.st.SaveAnswer(ctx, a); err != nil {
		return fmt.Errorf("save answer %s of session %s: %w", a.QuestionID, a.SessionID, err)
	}

	return nil
}

// ReportCompletion сохраняет итог попытки.
func (r *Reporter) ReportCompletion(ctx context.Context, c quiz.CompletionReport) error {
	if err := r.st.SaveAttempt(ctx, c); err != nil {
		return fmt.Errorf("save attempt of session %s: %w", c.SessionID, err)
	}

	return nil
}
