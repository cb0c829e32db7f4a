package models

import (
	"time"
)

// Модели для таблиц базы данных. Хранилище заполняет их из отчётов сессий
// и превращает обратно в доменные типы квиза.

// QuizModel определяет модель для таблицы квизов. Body - квиз целиком в JSON.
type QuizModel struct {
	ID        string
	Title     string
	Body      []byte
	CreatedAt time.Time
}

// AttemptModel определяет модель для таблицы с итогами попыток.
type AttemptModel struct {
	ID            int64
	SessionID     string
	QuizID        string
	LearnerID     string
	Attempt       int
	Score         int
	Passed        bool
	AutoSubmitted bool
	FinishedAt    time.Time
}

// AnswerModel определяет модель для таблицы с результатами по вопросам.
type AnswerModel struct {
	ID         int64
	SessionID  string
	QuizID     string
	LearnerID  string
	Attempt    int
	QuestionID string
	Answer     string
	IsCorrect  bool
	ReportedAt time.Time
}
