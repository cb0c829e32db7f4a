package quiz

import (
	"cmp"
	"encoding/json"
	"slices"
)

// Kind - тип вопроса, определяет форму ответа и правило проверки.
type Kind string

const (
	KindSingleChoice Kind = "single_choice"
	KindTrueFalse    Kind = "true_false"
	KindMultiSelect  Kind = "multi_select"
	KindFillBlank    Kind = "fill_blank"
)

// Known сообщает, поддерживает ли движок данный тип вопроса.
func (k Kind) Known() bool {
	switch k {
	case KindSingleChoice, KindTrueFalse, KindMultiSelect, KindFillBlank:
		return true
	}

	return false
}

// DefaultPassingScore - проходной балл, если он не задан в настройках.
const DefaultPassingScore = 70

// Quiz представляет квиз урока.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Settings  Settings   `json:"settings"`
	Questions []Question `json:"questions"`
}

// Settings содержит настройки квиза.
type Settings struct {
	PassingScore     *int `json:"passing_score,omitempty"`
	TimeLimitMinutes *int `json:"time_limit_minutes,omitempty"`
}

// Question представляет вопрос квиза.
type Question struct {
	ID          string   `json:"id"`
	Text        string   `json:"text"`
	Kind        Kind     `json:"kind"`
	Options     []Option `json:"options"`
	Points      int      `json:"points"`
	Explanation string   `json:"explanation,omitempty"`
}

// Option представляет вариант ответа.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
	Order     int    `json:"order"`
}

// History - история попыток ученика, только для отображения.
type History struct {
	PreviousAttempts int
	BestScore        *int
}

// PassingScore возвращает проходной балл с учётом значения по умолчанию.
func (q *Quiz) PassingScore() int {
	if q.Settings.PassingScore == nil {
		return DefaultPassingScore
	}

	return *q.Settings.PassingScore
}

// TimeLimitSeconds возвращает ограничение по времени в секундах и признак того, что оно задано.
func (q *Quiz) TimeLimitSeconds() (int, bool) {
	if q.Settings.TimeLimitMinutes == nil || *q.Settings.TimeLimitMinutes <= 0 {
		return 0, false
	}

	return *q.Settings.TimeLimitMinutes * 60, true
}

// Question возвращает вопрос по ID.
func (q *Quiz) Question(id string) (Question, bool) {
	idx := slices.IndexFunc(q.Questions, func(question Question) bool {
		return question.ID == id
	})
	if idx < 0 {
		return Question{}, false
	}

	return q.Questions[idx], true
}

// DefaultPoints - баллы вопроса, если поле points не задано.
const DefaultPoints = 1

// UnmarshalJSON подставляет DefaultPoints, если points отсутствует.
// Явный ноль сохраняется: такой вопрос не влияет на балл.
func (q *Question) UnmarshalJSON(data []byte) error {
	type plain Question

	p := plain{Points: DefaultPoints}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*q = Question(p)

	return nil
}

// Weight возвращает вес вопроса в знаменателе итогового балла.
func (q *Question) Weight() int {
	return max(q.Points, 0)
}

// correctOptions возвращает варианты, отмеченные как верные.
func (q *Question) correctOptions() []Option {
	correct := make([]Option, 0, 1)
	for _, opt := range q.Options {
		if opt.IsCorrect {
			correct = append(correct, opt)
		}
	}

	return correct
}

// SortedOptions возвращает варианты в порядке отображения.
func (q *Question) SortedOptions() []Option {
	sorted := slices.Clone(q.Options)
	slices.SortStableFunc(sorted, func(a, b Option) int {
		return cmp.Compare(a.Order, b.Order)
	})

	return sorted
}
