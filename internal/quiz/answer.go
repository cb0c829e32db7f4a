package quiz

import (
	"encoding/json"
	"slices"
)

// Answer - записанный ответ ученика. Форма зависит от типа вопроса.
type Answer interface {
	// Serialize возвращает ответ в виде строки для поштучной телеметрии.
	Serialize() string

	isAnswer()
}

// ChoiceAnswer - идентификатор одного варианта (single_choice, true_false).
type ChoiceAnswer string

// MultiAnswer - набор идентификаторов вариантов (multi_select).
type MultiAnswer []string

// TextAnswer - свободный текст (fill_blank).
type TextAnswer string

func (a ChoiceAnswer) Serialize() string { return string(a) }

// Serialize кодирует выбранные варианты JSON-массивом в порядке выбора.
func (a MultiAnswer) Serialize() string {
	if a == nil {
		return "[]"
	}

	data, err := json.Marshal([]string(a))
	if err != nil {
		return "[]"
	}

	return string(data)
}

func (a TextAnswer) Serialize() string { return string(a) }

func (ChoiceAnswer) isAnswer() {}
func (MultiAnswer) isAnswer()  {}
func (TextAnswer) isAnswer()   {}

// cloneAnswer копирует ответ, чтобы состояние не делило срезы с вызывающим кодом.
func cloneAnswer(a Answer) Answer {
	if m, ok := a.(MultiAnswer); ok {
		return MultiAnswer(slices.Clone([]string(m)))
	}

	return a
}
