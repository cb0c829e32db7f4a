package api

import (
	"fmt"

	"github.com/letsssgooo/lessonquiz/internal/quiz"
)

type answerRequest struct {
	Choice  *string   `json:"choice"`
	Choices *[]string `json:"choices"`
	Text    *string   `json:"text"`
}

func (r answerRequest) answer() (quiz.Answer, error) {
	var (
		answer quiz.Answer
		count  int
	)

	if r.Choice != nil {
		answer = quiz.ChoiceAnswer(*r.Choice)
		count++
	}
	if r.Choices != nil {
		answer = quiz.MultiAnswer(*r.Choices)
		count++
	}
	if r.Text != nil {
		answer = quiz.TextAnswer(*r.Text)
		count++
	}

	if count != 1 {
		return nil, fmt.Errorf("%w: exactly one of choice, choices or text is required", quiz.ErrValidation)
	}

	return answer, nil
}
