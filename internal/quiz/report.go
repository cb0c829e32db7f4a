package quiz

import "time"

// AttemptRef идентифицирует попытку, к которой относится отчёт.
type AttemptRef struct {
	SessionID string `json:"session_id"`
	QuizID    string `json:"quiz_id"`
	LearnerID string `json:"learner_id"`
	Number    int    `json:"attempt"`
}

// CompletionReport - итог попытки для внешнего хранилища.
type CompletionReport struct {
	AttemptRef
	Score         int       `json:"score"`
	Passed        bool      `json:"passed"`
	AutoSubmitted bool      `json:"auto_submitted"`
	FinishedAt    time.Time `json:"finished_at"`
}

// AnswerReport - результат проверки одного вопроса для телеметрии.
type AnswerReport struct {
	AttemptRef
	QuestionID string    `json:"question_id"`
	Answer     string    `json:"answer"`
	IsCorrect  bool      `json:"is_correct"`
	ReportedAt time.Time `json:"reported_at"`
}
