package engine

import (
	"github.com/letsssgooo/lessonquiz/internal/quiz"
)

// View - представление сессии для хоста: метаданные квиза и состояние попытки.
type View struct {
	SessionID string      `json:"session_id"`
	QuizID    string      `json:"quiz_id"`
	LearnerID string      `json:"learner_id"`
	Title     string      `json:"title"`
	Status    quiz.Status `json:"status"`

	QuestionCount    int  `json:"question_count"`
	PassingScore     int  `json:"passing_score"`
	TimeLimitMinutes *int `json:"time_limit_minutes,omitempty"`
	PreviousAttempts int  `json:"previous_attempts"`
	BestScore        *int `json:"best_score,omitempty"`

	Attempt          int               `json:"attempt"`
	CurrentIndex     int               `json:"current_index"`
	CurrentQuestion  *QuestionView     `json:"current_question,omitempty"`
	AnsweredCount    int               `json:"answered_count"`
	Answers          map[string]string `json:"answers"`
	TimerEnabled     bool              `json:"timer_enabled"`
	RemainingSeconds int               `json:"remaining_seconds"`

	Score         int                   `json:"score"`
	Passed        bool                  `json:"passed"`
	AutoSubmitted bool                  `json:"auto_submitted"`
	CanRetry      bool                  `json:"can_retry"`
	Results       []quiz.QuestionResult `json:"results,omitempty"`
}

// QuestionView - вопрос в том виде, в каком его видит ученик.
// Верные варианты и пояснение раскрываются только после отправки.
type QuestionView struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	Kind        quiz.Kind    `json:"kind"`
	Points      int          `json:"points"`
	Options     []OptionView `json:"options,omitempty"`
	Explanation string       `json:"explanation,omitempty"`
}

// OptionView - вариант ответа для отображения.
type OptionView struct {
	ID        string `json:"id"`
	Text      string `json:"text,omitempty"`
	IsCorrect *bool  `json:"is_correct,omitempty"`
}

func newView(s *Session, st quiz.State) View {
	q := s.quiz

	v := View{
		SessionID:        s.ID,
		QuizID:           q.ID,
		LearnerID:        s.LearnerID,
		Title:            q.Title,
		Status:           st.Status,
		QuestionCount:    len(q.Questions),
		PassingScore:     q.PassingScore(),
		TimeLimitMinutes: q.Settings.TimeLimitMinutes,
		PreviousAttempts: s.history.PreviousAttempts,
		BestScore:        s.history.BestScore,
		Attempt:          st.Attempt,
		CurrentIndex:     st.CurrentIndex,
		AnsweredCount:    st.AnsweredCount(q),
		Answers:          make(map[string]string, len(st.Answers)),
		TimerEnabled:     st.TimerEnabled,
		RemainingSeconds: st.RemainingSeconds,
		Score:            st.Score,
		Passed:           st.Passed,
		AutoSubmitted:    st.AutoSubmitted,
		CanRetry:         st.CanRetry(),
		Results:          st.Results,
	}

	for id, a := range st.Answers {
		v.Answers[id] = a.Serialize()
	}

	if st.Status != quiz.StatusNotStarted {
		if question, ok := st.CurrentQuestion(q); ok {
			v.CurrentQuestion = newQuestionView(question, st)
		}
	}

	return v
}

func newQuestionView(q quiz.Question, st quiz.State) *QuestionView {
	submitted := st.Status == quiz.StatusSubmitted

	qv := &QuestionView{
		ID:     q.ID,
		Text:   q.Text,
		Kind:   q.Kind,
		Points: q.Weight(),
	}

	if submitted && st.Revealed[q.ID] {
		qv.Explanation = q.Explanation
	}

	// у вопроса со вписыванием слова текст варианта и есть ответ
	if q.Kind == quiz.KindFillBlank && !submitted {
		return qv
	}

	for _, opt := range q.SortedOptions() {
		ov := OptionView{ID: opt.ID, Text: opt.Text}

		if submitted {
			correct := opt.IsCorrect
			ov.IsCorrect = &correct
		}

		qv.Options = append(qv.Options, ov)
	}

	return qv
}
