package quiz

import (
	"math"
	"strings"
)

// Evaluate проверяет ответ на вопрос.
// Отсутствующий ответ, ответ неподходящей формы и вопрос без верного варианта
// всегда считаются неверными.
func Evaluate(q Question, answer Answer) bool {
	if answer == nil {
		return false
	}

	switch q.Kind {
	case KindSingleChoice, KindTrueFalse:
		choice, ok := answer.(ChoiceAnswer)
		if !ok {
			return false
		}

		correct := q.correctOptions()
		if len(correct) == 0 {
			return false
		}

		return string(choice) == correct[0].ID
	case KindMultiSelect:
		selected, ok := answer.(MultiAnswer)
		if !ok {
			return false
		}

		return sameSet(q.correctOptions(), selected)
	case KindFillBlank:
		text, ok := answer.(TextAnswer)
		if !ok {
			return false
		}

		correct := q.correctOptions()
		if len(correct) == 0 {
			return false
		}

		return strings.EqualFold(strings.TrimSpace(string(text)), strings.TrimSpace(correct[0].Text))
	default:
		return false
	}
}

// sameSet сравнивает множество верных вариантов с выбранными: тот же размер и те же элементы.
func sameSet(correct []Option, selected MultiAnswer) bool {
	if len(correct) == 0 {
		return false
	}

	chosen := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		chosen[id] = struct{}{}
	}

	if len(chosen) != len(correct) {
		return false
	}

	for _, opt := range correct {
		if _, ok := chosen[opt.ID]; !ok {
			return false
		}
	}

	return true
}

// QuestionResult - результат проверки одного вопроса.
type QuestionResult struct {
	QuestionID string
	Answer     string
	IsCorrect  bool
	Points     int
}

// Result - итог проверки всей попытки.
type Result struct {
	Earned      int
	Total       int
	Score       int
	Passed      bool
	PerQuestion []QuestionResult
}

// Grade проверяет все вопросы квиза по порядку и считает итоговый балл.
// Знаменатель всегда равен сумме весов всех вопросов, включая неотвеченные.
func Grade(quiz *Quiz, answers map[string]Answer) Result {
	res := Result{
		PerQuestion: make([]QuestionResult, 0, len(quiz.Questions)),
	}

	for _, q := range quiz.Questions {
		weight := q.Weight()
		res.Total += weight

		answer := answers[q.ID]
		isCorrect := Evaluate(q, answer)

		qr := QuestionResult{
			QuestionID: q.ID,
			IsCorrect:  isCorrect,
		}
		if answer != nil {
			qr.Answer = answer.Serialize()
		}
		if isCorrect {
			qr.Points = weight
			res.Earned += weight
		}

		res.PerQuestion = append(res.PerQuestion, qr)
	}

	res.Score = percentage(res.Earned, res.Total)
	res.Passed = res.Score >= quiz.PassingScore()

	return res
}

func percentage(earned, total int) int {
	if total <= 0 {
		return 0
	}

	return int(math.Round(float64(earned) / float64(total) * 100))
}
