package quiz

import (
	"errors"
	"fmt"
)

// ErrValidation - ошибка структуры квиза.
var ErrValidation = errors.New("validation error")

// Validate проверяет структуру квиза при загрузке.
// Вопросы с выбором без вариантов допускаются: при проверке они всегда неверны.
func Validate(q *Quiz) error {
	if q.Title == "" {
		return fmt.Errorf("%w: missing field title", ErrValidation)
	}

	if q.Settings.PassingScore != nil {
		if ps := *q.Settings.PassingScore; ps < 0 || ps > 100 {
			return fmt.Errorf("%w: passing_score must be in range 0..100, got %d", ErrValidation, ps)
		}
	}

	if q.Settings.TimeLimitMinutes != nil && *q.Settings.TimeLimitMinutes < 0 {
		return fmt.Errorf("%w: time_limit_minutes must not be negative", ErrValidation)
	}

	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: need at least one question", ErrValidation)
	}

	seen := make(map[string]struct{}, len(q.Questions))

	for i, question := range q.Questions {
		if question.ID == "" {
			return fmt.Errorf("%w: missing field id of %d question", ErrValidation, i)
		}

		if _, ok := seen[question.ID]; ok {
			return fmt.Errorf("%w: duplicate question id %q", ErrValidation, question.ID)
		}
		seen[question.ID] = struct{}{}

		if question.Text == "" {
			return fmt.Errorf("%w: missing field text of %d question", ErrValidation, i)
		}

		if !question.Kind.Known() {
			return fmt.Errorf("%w: unknown kind %q of %d question", ErrValidation, question.Kind, i)
		}

		if question.Points < 0 {
			return fmt.Errorf("%w: points must not be negative in %d question", ErrValidation, i)
		}

		optionIDs := make(map[string]struct{}, len(question.Options))
		for j, opt := range question.Options {
			if opt.ID == "" {
				return fmt.Errorf("%w: missing id of %d option in %d question", ErrValidation, j, i)
			}

			if _, ok := optionIDs[opt.ID]; ok {
				return fmt.Errorf("%w: duplicate option id %q in %d question", ErrValidation, opt.ID, i)
			}
			optionIDs[opt.ID] = struct{}{}
		}
	}

	return nil
}
