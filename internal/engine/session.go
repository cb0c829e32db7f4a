package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/letsssgooo/lessonquiz/internal/countdown"
	"github.com/letsssgooo/lessonquiz/internal/quiz"
)

// Таймаут доставки отчётов одной отправки.
const timeoutReport = 10 * time.Second

// Session - одна сессия прохождения квиза учеником.
// Все переходы выполняются под мьютексом, поэтому тик таймера и ручная
// отправка взаимно исключают друг друга.
type Session struct {
	ID        string
	LearnerID string

	quiz     *quiz.Quiz
	history  quiz.History
	reporter Reporter
	log      *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	state      quiz.State
	generation uint64
	countdown  *countdown.Countdown
	closed     bool

	pending sync.WaitGroup
}

func newSession(
	id, learnerID string,
	q *quiz.Quiz,
	history quiz.History,
	reporter Reporter,
	newTicker countdown.TickerFactory,
	log *slog.Logger,
	now func() time.Time,
) *Session {
	s := &Session{
		ID:        id,
		LearnerID: learnerID,
		quiz:      q,
		history:   history,
		reporter:  reporter,
		log:       log.With(slog.String("session_id", id), slog.String("quiz_id", q.ID)),
		now:       now,
		state:     quiz.NewState(),
	}
	s.countdown = countdown.New(newTicker, s.tick)

	return s
}

// Quiz возвращает квиз сессии.
func (s *Session) Quiz() *quiz.Quiz {
	return s.quiz
}

// Start начинает попытку. После неудачной попытки начинает новую с чистыми ответами.
func (s *Session) Start() (View, error) {
	return s.apply(quiz.ApplyStart)
}

// Answer записывает ответ на вопрос questionID.
func (s *Session) Answer(questionID string, answer quiz.Answer) (View, error) {
	return s.apply(func(q *quiz.Quiz, st quiz.State) (quiz.State, []quiz.Effect) {
		return quiz.ApplyAnswer(q, st, questionID, answer)
	})
}

// Next переходит к следующему вопросу.
func (s *Session) Next() (View, error) {
	return s.apply(quiz.ApplyNext)
}

// Previous переходит к предыдущему вопросу.
func (s *Session) Previous() (View, error) {
	return s.apply(quiz.ApplyPrevious)
}

// GoTo переходит к вопросу с индексом idx.
func (s *Session) GoTo(idx int) (View, error) {
	return s.apply(func(q *quiz.Quiz, st quiz.State) (quiz.State, []quiz.Effect) {
		return quiz.ApplyGoTo(q, st, idx)
	})
}

// Reveal переключает показ пояснения к вопросу при разборе попытки.
func (s *Session) Reveal(questionID string) (View, error) {
	return s.apply(func(q *quiz.Quiz, st quiz.State) (quiz.State, []quiz.Effect) {
		return quiz.ApplyReveal(q, st, questionID)
	})
}

// Submit отправляет попытку. Повторная отправка ничего не делает.
func (s *Session) Submit() (View, error) {
	return s.apply(quiz.ApplySubmit)
}

// View возвращает текущее представление сессии.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return newView(s, s.state)
}

// State возвращает текущее состояние сессии.
func (s *Session) State() quiz.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Close закрывает сессию: останавливает таймер и сбрасывает состояние.
// Уже отправленные отчёты продолжают доставляться.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	next, effects := quiz.ApplyReset(s.quiz, s.state)
	s.state = next
	s.runTimerEffectsLocked(effects)
	s.closed = true

	s.log.Debug("session closed")
}

// Wait ждёт доставки всех отчётов, отправленных сессией.
func (s *Session) Wait() {
	s.pending.Wait()
}

// tick вызывается таймером. Тики отменённого поколения отбрасываются.
func (s *Session) tick(generation uint64) {
	s.mu.Lock()

	if s.closed || generation != s.generation {
		s.mu.Unlock()
		return
	}

	reports, ref := s.transitionLocked(quiz.ApplyTick)
	s.mu.Unlock()

	s.dispatch(reports, ref)
}

func (s *Session) apply(transition func(*quiz.Quiz, quiz.State) (quiz.State, []quiz.Effect)) (View, error) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return View{}, ErrSessionClosed
	}

	reports, ref := s.transitionLocked(transition)
	view := newView(s, s.state)
	s.mu.Unlock()

	s.dispatch(reports, ref)

	return view, nil
}

// transitionLocked применяет переход, сразу выполняет эффекты таймера
// и возвращает эффекты-отчёты для асинхронной доставки.
// Доставка учитывается в pending под мьютексом: Wait, вызванный после
// перехода, всегда её дождётся.
func (s *Session) transitionLocked(
	transition func(*quiz.Quiz, quiz.State) (quiz.State, []quiz.Effect),
) ([]quiz.Effect, quiz.AttemptRef) {
	next, effects := transition(s.quiz, s.state)
	s.state = next

	reports := s.runTimerEffectsLocked(effects)
	if len(reports) > 0 {
		s.pending.Add(1)
	}

	ref := quiz.AttemptRef{
		SessionID: s.ID,
		QuizID:    s.quiz.ID,
		LearnerID: s.LearnerID,
		Number:    s.history.PreviousAttempts + s.state.Attempt,
	}

	return reports, ref
}

func (s *Session) runTimerEffectsLocked(effects []quiz.Effect) []quiz.Effect {
	var reports []quiz.Effect

	for _, effect := range effects {
		switch e := effect.(type) {
		case quiz.StartCountdown:
			s.generation++
			s.countdown.Start(s.generation)
			s.log.Debug("countdown started", slog.Int("seconds", e.Seconds))
		case quiz.StopCountdown:
			s.generation++
			s.countdown.Cancel()
		default:
			reports = append(reports, effect)
		}
	}

	return reports
}

// dispatch доставляет отчёты в отдельной горутине, не дожидаясь результата.
// pending уже увеличен в transitionLocked.
func (s *Session) dispatch(reports []quiz.Effect, ref quiz.AttemptRef) {
	if len(reports) == 0 {
		return
	}

	now := s.now()

	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), timeoutReport)
		defer cancel()

		for _, effect := range reports {
			switch e := effect.(type) {
			case quiz.ReportAnswer:
				err := s.reporter.ReportAnswer(ctx, quiz.AnswerReport{
					AttemptRef: ref,
					QuestionID: e.QuestionID,
					Answer:     e.Answer,
					IsCorrect:  e.IsCorrect,
					ReportedAt: now,
				})
				if err != nil {
					s.log.Error("failed to report answer", slog.String("question_id", e.QuestionID), slog.Any("err", err))
				}
			case quiz.ReportCompletion:
				err := s.reporter.ReportCompletion(ctx, quiz.CompletionReport{
					AttemptRef:    ref,
					Score:         e.Score,
					Passed:        e.Passed,
					AutoSubmitted: e.AutoSubmitted,
					FinishedAt:    now,
				})
				if err != nil {
					s.log.Error("failed to report completion", slog.Any("err", err))
					continue
				}

				s.log.Info("attempt completed",
					slog.Int("score", e.Score),
					slog.Bool("passed", e.Passed),
					slog.Bool("auto_submitted", e.AutoSubmitted),
				)
			}
		}
	}()
}
