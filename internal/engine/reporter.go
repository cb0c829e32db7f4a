package engine

import (
	"context"
	"errors"

	"github.com/letsssgooo/lessonquiz/internal/quiz"
)

// Reporter принимает отчёты сессии. Вызывается без ожидания результата:
// ошибка только логируется и не влияет на состояние сессии.
type Reporter interface {
	// ReportAnswer вызывается для каждого вопроса при отправке, в порядке вопросов.
	ReportAnswer(ctx context.Context, r quiz.AnswerReport) error

	// ReportCompletion вызывается ровно один раз на отправленную попытку.
	ReportCompletion(ctx context.Context, r quiz.CompletionReport) error
}

// Reporters рассылает отчёты всем получателям по очереди.
// Ошибка одного получателя не мешает остальным.
type Reporters []Reporter

func (rs Reporters) ReportAnswer(ctx context.Context, r quiz.AnswerReport) error {
	var errs []error
	for _, rep := range rs {
		if err := rep.ReportAnswer(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (rs Reporters) ReportCompletion(ctx context.Context, r quiz.CompletionReport) error {
	var errs []error
	for _, rep := range rs {
		if err := rep.ReportCompletion(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

type nopReporter struct{}

func (nopReporter) ReportAnswer(context.Context, quiz.AnswerReport) error         { return nil }
func (nopReporter) ReportCompletion(context.Context, quiz.CompletionReport) error { return nil }
