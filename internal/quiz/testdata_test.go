package quiz

func intPtr(v int) *int {
	return &v
}

// scenarioQuiz: три вопроса по одному баллу, проходной балл 70.
func scenarioQuiz() *Quiz {
	return &Quiz{
		ID:       "quiz-1",
		Title:    "Scenario",
		Settings: Settings{PassingScore: intPtr(70)},
		Questions: []Question{
			{
				ID:     "q1",
				Text:   "2+2?",
				Kind:   KindSingleChoice,
				Points: 1,
				Options: []Option{
					{ID: "a", Text: "3"},
					{ID: "b", Text: "4", IsCorrect: true},
				},
			},
			{
				ID:     "q2",
				Text:   "Even numbers",
				Kind:   KindMultiSelect,
				Points: 1,
				Options: []Option{
					{ID: "x", Text: "2", IsCorrect: true},
					{ID: "y", Text: "3"},
					{ID: "z", Text: "4", IsCorrect: true},
				},
			},
			{
				ID:     "q3",
				Text:   "Capital of France",
				Kind:   KindFillBlank,
				Points: 1,
				Options: []Option{
					{ID: "p", Text: "Paris", IsCorrect: true},
				},
			},
		},
	}
}

// run последовательно применяет переходы и собирает все эффекты.
func run(q *Quiz, s State, steps ...func(*Quiz, State) (State, []Effect)) (State, []Effect) {
	var all []Effect
	for _, step := range steps {
		var effects []Effect
		s, effects = step(q, s)
		all = append(all, effects...)
	}

	return s, all
}

func answer(questionID string, a Answer) func(*Quiz, State) (State, []Effect) {
	return func(q *Quiz, s State) (State, []Effect) {
		return ApplyAnswer(q, s, questionID, a)
	}
}

func completions(effects []Effect) []ReportCompletion {
	var out []ReportCompletion
	for _, e := range effects {
		if c, ok := e.(ReportCompletion); ok {
			out = append(out, c)
		}
	}

	return out
}

func reportedAnswers(effects []Effect) []ReportAnswer {
	var out []ReportAnswer
	for _, e := range effects {
		if a, ok := e.(ReportAnswer); ok {
			out = append(out, a)
		}
	}

	return out
}
