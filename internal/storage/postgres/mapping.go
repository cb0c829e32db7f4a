package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/letsssgooo/lessonquiz/internal/domain/models"
	"github.com/letsssgooo/lessonquiz/internal/quiz"
)

func quizFromModel(m models.QuizModel) (*quiz.Quiz, error) {
	q := &quiz.Quiz{}
	if err := json.Unmarshal(m.Body, q); err != nil {
		return nil, fmt.Errorf("unmarshal quiz %s: %w", m.ID, err)
	}

	q.ID = m.ID

	return q, nil
}

func attemptToModel(r quiz.CompletionReport) models.AttemptModel {
	return models.AttemptModel{
		SessionID:     r.SessionID,
		QuizID:        r.QuizID,
		LearnerID:     r.LearnerID,
		Attempt:       r.Number,
		Score:         r.Score,
		Passed:        r.Passed,
		AutoSubmitted: r.AutoSubmitted,
		FinishedAt:    r.FinishedAt,
	}
}

func attemptFromModel(m models.AttemptModel) quiz.CompletionReport {
	return quiz.CompletionReport{
		AttemptRef: quiz.AttemptRef{
			SessionID: m.SessionID,
			QuizID:    m.QuizID,
			LearnerID: m.LearnerID,
			Number:    m.Attempt,
		},
		Score:         m.Score,
		Passed:        m.Passed,
		AutoSubmitted: m.AutoSubmitted,
		FinishedAt:    m.FinishedAt,
	}
}

func answerToModel(r quiz.AnswerReport) models.AnswerModel {
	return models.AnswerModel{
		SessionID:  r.SessionID,
		QuizID:     r.QuizID,
		LearnerID:  r.LearnerID,
		Attempt:    r.Number,
		QuestionID: r.QuestionID,
		Answer:     r.Answer,
		IsCorrect:  r.IsCorrect,
		ReportedAt: r.ReportedAt,
	}
}

func answerFromModel(m models.AnswerModel) quiz.AnswerReport {
	return quiz.AnswerReport{
		AttemptRef: quiz.AttemptRef{
			SessionID: m.SessionID,
			QuizID:    m.QuizID,
			LearnerID: m.LearnerID,
			Number:    m.Attempt,
		},
		QuestionID: m.QuestionID,
		Answer:     m.Answer,
		IsCorrect:  m.IsCorrect,
		ReportedAt: m.ReportedAt,
	}
}
