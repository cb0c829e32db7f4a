package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/letsssgooo/lessonquiz/internal/domain/models"
	"github.com/letsssgooo/lessonquiz/internal/quiz"
	"github.com/letsssgooo/lessonquiz/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS quizzes (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	body       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS quiz_attempts (
	id             BIGSERIAL PRIMARY KEY,
	session_id     TEXT NOT NULL,
	quiz_id        TEXT NOT NULL REFERENCES quizzes (id) ON DELETE CASCADE,
	learner_id     TEXT NOT NULL,
	attempt        INTEGER NOT NULL,
	score          INTEGER NOT NULL,
	passed         BOOLEAN NOT NULL,
	auto_submitted BOOLEAN NOT NULL DEFAULT false,
	finished_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS quiz_attempts_learner_idx ON quiz_attempts (quiz_id, learner_id);

CREATE TABLE IF NOT EXISTS quiz_answers (
	id          BIGSERIAL PRIMARY KEY,
	session_id  TEXT NOT NULL,
	quiz_id     TEXT NOT NULL REFERENCES quizzes (id) ON DELETE CASCADE,
	learner_id  TEXT NOT NULL,
	attempt     INTEGER NOT NULL,
	question_id TEXT NOT NULL,
	answer      TEXT NOT NULL,
	is_correct  BOOLEAN NOT NULL,
	reported_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS quiz_answers_session_idx ON quiz_answers (session_id);
`

// Storage реализует storage.Storage поверх PostgreSQL.
type Storage struct {
	pool *pgxpool.Pool
}

var _ storage.Storage = (*Storage)(nil)

// NewStorage подключается к базе по dsn.
func NewStorage(ctx context.Context, dsn string) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &Storage{pool: pool}, nil
}

// Migrate создаёт таблицы, если их ещё нет.
func (s *Storage) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close закрывает пул соединений.
func (s *Storage) Close() {
	s.pool.Close()
}

func (s *Storage) SaveQuiz(ctx context.Context, q *quiz.Quiz) error {
	body, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quiz %s: %w", q.ID, err)
	}

	query := `
	INSERT INTO quizzes (id, title, body) VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, body = EXCLUDED.body
	`

	_, err = s.pool.Exec(ctx, query, q.ID, q.Title, body)

	return err
}

func (s *Storage) GetQuiz(ctx context.Context, id string) (*quiz.Quiz, error) {
	query := `
	SELECT id, title, body, created_at FROM quizzes WHERE id = $1
	`

	var m models.QuizModel

	err := s.pool.QueryRow(ctx, query, id).Scan(&m.ID, &m.Title, &m.Body, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("quiz %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return quizFromModel(m)
}

func (s *Storage) ListQuizzes(ctx context.Context) ([]*quiz.Quiz, error) {
	query := `
	SELECT id, title, body, created_at FROM quizzes ORDER BY title, id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []*quiz.Quiz

	for rows.Next() {
		var m models.QuizModel
		if err = rows.Scan(&m.ID, &m.Title, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}

		q, err := quizFromModel(m)
		if err != nil {
			return nil, err
		}

		quizzes = append(quizzes, q)
	}

	return quizzes, rows.Err()
}

func (s *Storage) DeleteQuiz(ctx context.Context, id string) error {
	query := `
	DELETE FROM quizzes WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("quiz %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

func (s *Storage) SaveAttempt(ctx context.Context, r quiz.CompletionReport) error {
	m := attemptToModel(r)

	query := `
	INSERT INTO quiz_attempts (session_id, quiz_id, learner_id, attempt, score, passed, auto_submitted, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		m.SessionID, m.QuizID, m.LearnerID, m.Attempt, m.Score, m.Passed, m.AutoSubmitted, m.FinishedAt,
	)

	return err
}

func (s *Storage) SaveAnswer(ctx context.Context, r quiz.AnswerReport) error {
	m := answerToModel(r)

	query := `
	INSERT INTO quiz_answers (session_id, quiz_id, learner_id, attempt, question_id, answer, is_correct, reported_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		m.SessionID, m.QuizID, m.LearnerID, m.Attempt, m.QuestionID, m.Answer, m.IsCorrect, m.ReportedAt,
	)

	return err
}

func (s *Storage) ListAnswers(ctx context.Context, sessionID string) ([]quiz.AnswerReport, error) {
	query := `
	SELECT id, session_id, quiz_id, learner_id, attempt, question_id, answer, is_correct, reported_at
	FROM quiz_answers WHERE session_id = $1 ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []quiz.AnswerReport

	for rows.Next() {
		var m models.AnswerModel

		err = rows.Scan(
			&m.ID, &m.SessionID, &m.QuizID, &m.LearnerID, &m.Attempt,
			&m.QuestionID, &m.Answer, &m.IsCorrect, &m.ReportedAt,
		)
		if err != nil {
			return nil, err
		}

		answers = append(answers, answerFromModel(m))
	}

	return answers, rows.Err()
}

func (s *Storage) ListAttempts(ctx context.Context, quizID string) ([]quiz.CompletionReport, error) {
	query := `
	SELECT id, session_id, quiz_id, learner_id, attempt, score, passed, auto_submitted, finished_at
	FROM quiz_attempts WHERE quiz_id = $1 ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []quiz.CompletionReport

	for rows.Next() {
		var m models.AttemptModel

		err = rows.Scan(
			&m.ID, &m.SessionID, &m.QuizID, &m.LearnerID, &m.Attempt,
			&m.Score, &m.Passed, &m.AutoSubmitted, &m.FinishedAt,
		)
		if err != nil {
			return nil, err
		}

		attempts = append(attempts, attemptFromModel(m))
	}

	return attempts, rows.Err()
}

func (s *Storage) AttemptHistory(ctx context.Context, quizID, learnerID string) (quiz.History, error) {
	query := `
	SELECT count(*), max(score) FROM quiz_attempts WHERE quiz_id = $1 AND learner_id = $2
	`

	var (
		history quiz.History
		best    *int32
	)

	err := s.pool.QueryRow(ctx, query, quizID, learnerID).Scan(&history.PreviousAttempts, &best)
	if err != nil {
		return quiz.History{}, err
	}

	if best != nil {
		score := int(*best)
		history.BestScore = &score
	}

	return history, nil
}
