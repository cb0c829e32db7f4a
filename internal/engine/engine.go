package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/letsssgooo/lessonquiz/internal/countdown"
	"github.com/letsssgooo/lessonquiz/internal/quiz"
	"github.com/letsssgooo/lessonquiz/internal/storage"
)

var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
)

// Engine хранит загруженные квизы и активные сессии.
type Engine struct {
	store     storage.Storage
	reporter  Reporter
	newTicker countdown.TickerFactory
	log       *slog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	quizzes  map[string]*quiz.Quiz // ключ - quizID
	sessions map[string]*Session   // ключ - sessionID
}

// Option настраивает Engine.
type Option func(e *Engine)

// WithReporter задаёт получателя отчётов сессий.
func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		e.reporter = r
	}
}

// WithTickerFactory подменяет источник тиков таймера.
func WithTickerFactory(f countdown.TickerFactory) Option {
	return func(e *Engine) {
		e.newTicker = f
	}
}

// WithLogger задаёт логгер.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithClock подменяет текущее время в отчётах.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine создаёт новый Engine поверх хранилища.
func NewEngine(store storage.Storage, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		reporter:  nopReporter{},
		newTicker: countdown.NewRealTicker,
		log:       slog.Default(),
		now:       time.Now,
		quizzes:   make(map[string]*quiz.Quiz),
		sessions:  make(map[string]*Session),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// LoadQuiz парсит JSON, проверяет квиз и сохраняет его.
// Если ID не задан, он генерируется.
func (e *Engine) LoadQuiz(ctx context.Context, data []byte) (*quiz.Quiz, error) {
	q := &quiz.Quiz{}
	if err := json.Unmarshal(data, q); err != nil {
		return nil, fmt.Errorf("%w: can not parse quiz: %w", quiz.ErrValidation, err)
	}

	if err := quiz.Validate(q); err != nil {
		return nil, fmt.Errorf("can not load quiz: %w", err)
	}

	if q.ID == "" {
		q.ID = uuid.NewString()
	}

	if err := e.store.SaveQuiz(ctx, q); err != nil {
		return nil, fmt.Errorf("can not save quiz %s: %w", q.ID, err)
	}

	e.mu.Lock()
	e.quizzes[q.ID] = q
	e.mu.Unlock()

	e.log.Info("quiz loaded", slog.String("quiz_id", q.ID), slog.Int("questions", len(q.Questions)))

	return q, nil
}

// GetQuiz возвращает квиз из кэша или из хранилища.
func (e *Engine) GetQuiz(ctx context.Context, quizID string) (*quiz.Quiz, error) {
	e.mu.RLock()
	q, ok := e.quizzes[quizID]
	e.mu.RUnlock()

	if ok {
		return q, nil
	}

	q, err := e.store.GetQuiz(ctx, quizID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrQuizNotFound, quizID)
	}
	if err != nil {
		return nil, fmt.Errorf("can not get quiz %s: %w", quizID, err)
	}

	e.mu.Lock()
	e.quizzes[quizID] = q
	e.mu.Unlock()

	return q, nil
}

// DeleteQuiz удаляет квиз из хранилища и кэша и закрывает его открытые сессии.
func (e *Engine) DeleteQuiz(ctx context.Context, quizID string) error {
	err := e.store.DeleteQuiz(ctx, quizID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrQuizNotFound, quizID)
	}
	if err != nil {
		return fmt.Errorf("can not delete quiz %s: %w", quizID, err)
	}

	e.mu.Lock()
	delete(e.quizzes, quizID)

	var sessions []*Session
	for id, s := range e.sessions {
		if s.quiz.ID == quizID {
			sessions = append(sessions, s)
			delete(e.sessions, id)
		}
	}
	e.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}

	e.log.Info("quiz deleted", slog.String("quiz_id", quizID), slog.Int("closed_sessions", len(sessions)))

	return nil
}

// OpenSession создаёт сессию ученика для квиза.
// История попыток читается из хранилища и нужна только для отображения.
func (e *Engine) OpenSession(ctx context.Context, quizID, learnerID string) (*Session, error) {
	if learnerID == "" {
		return nil, fmt.Errorf("%w: missing learner id", quiz.ErrValidation)
	}

	q, err := e.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	history, err := e.store.AttemptHistory(ctx, quizID, learnerID)
	if err != nil {
		return nil, fmt.Errorf("can not get attempt history: %w", err)
	}

	s := newSession(uuid.NewString(), learnerID, q, history, e.reporter, e.newTicker, e.log, e.now)

	e.mu.Lock()
	e.sessions[s.ID] = s
	e.mu.Unlock()

	s.log.Debug("session opened", slog.String("learner_id", learnerID))

	return s, nil
}

// GetSession возвращает сессию по ID.
func (e *Engine) GetSession(sessionID string) (*Session, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, ok := e.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	return s, nil
}

// CloseSession закрывает сессию и убирает её из движка.
func (e *Engine) CloseSession(sessionID string) error {
	e.mu.Lock()
	s, ok := e.sessions[sessionID]
	delete(e.sessions, sessionID)
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	s.Close()

	return nil
}

// SessionCount возвращает количество активных сессий.
func (e *Engine) SessionCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.sessions)
}

// Shutdown закрывает все сессии и ждёт доставки отчётов.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	sessions := make([]*Session, 0, len(e.sessions))
	for id, s := range e.sessions {
		sessions = append(sessions, s)
		delete(e.sessions, id)
	}
	e.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		for _, s := range sessions {
			s.Wait()
		}
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
