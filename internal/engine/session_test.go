package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/lessonquiz/internal/countdown"
	"github.com/letsssgooo/lessonquiz/internal/quiz"
	"github.com/letsssgooo/lessonquiz/internal/storage"
)

const quizJSON = `{
	"id": "lesson-1",
	"title": "Lesson 1 quiz",
	"settings": {"passing_score": 70},
	"questions": [
		{
			"id": "q1",
			"text": "2+2?",
			"kind": "single_choice",
			"points": 1,
			"options": [
				{"id": "a", "text": "3", "order": 1},
				{"id": "b", "text": "4", "is_correct": true, "order": 2}
			],
			"explanation": "Basic arithmetic"
		},
		{
			"id": "q2",
			"text": "Even numbers",
			"kind": "multi_select",
			"points": 1,
			"options": [
				{"id": "x", "text": "2", "is_correct": true},
				{"id": "y", "text": "3"},
				{"id": "z", "text": "4", "is_correct": true}
			]
		},
		{
			"id": "q3",
			"text": "Capital of France",
			"kind": "fill_blank",
			"points": 1,
			"options": [{"id": "p", "text": "Paris", "is_correct": true}]
		}
	]
}`

const timedQuizJSON = `{
	"id": "timed",
	"title": "Timed quiz",
	"settings": {"time_limit_minutes": 1},
	"questions": [
		{"id": "q1", "text": "Sky is blue", "kind": "true_false",
		 "options": [{"id": "t", "text": "True", "is_correct": true}, {"id": "f", "text": "False"}]},
		{"id": "q2", "text": "Grass is red", "kind": "true_false",
		 "options": [{"id": "t", "text": "True"}, {"id": "f", "text": "False", "is_correct": true}]}
	]
}`

// recordingReporter запоминает все отчёты.
type recordingReporter struct {
	mu          sync.Mutex
	answers     []quiz.AnswerReport
	completions []quiz.CompletionReport
	err         error
}

func (r *recordingReporter) ReportAnswer(_ context.Context, a quiz.AnswerReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.answers = append(r.answers, a)

	return r.err
}

func (r *recordingReporter) ReportCompletion(_ context.Context, c quiz.CompletionReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.completions = append(r.completions, c)

	return r.err
}

func (r *recordingReporter) snapshot() ([]quiz.AnswerReport, []quiz.CompletionReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]quiz.AnswerReport(nil), r.answers...), append([]quiz.CompletionReport(nil), r.completions...)
}

type fixture struct {
	engine   *Engine
	store    *storage.MemoryStorage
	reporter *recordingReporter
	clock    *countdown.ManualClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    storage.NewMemoryStorage(),
		reporter: &recordingReporter{},
		clock:    countdown.NewManualClock(),
	}

	f.engine = NewEngine(f.store,
		WithReporter(f.reporter),
		WithTickerFactory(f.clock.NewTicker),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	return f
}

func (f *fixture) open(t *testing.T, data string) *Session {
	t.Helper()

	ctx := context.Background()

	q, err := f.engine.LoadQuiz(ctx, []byte(data))
	require.NoError(t, err)

	s, err := f.engine.OpenSession(ctx, q.ID, "learner-1")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = f.engine.CloseSession(s.ID)
	})

	return s
}

func TestSession_Scenario(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, quizJSON)

	view, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, quiz.StatusInProgress, view.Status)
	require.NotNil(t, view.CurrentQuestion)
	assert.Equal(t, "q1", view.CurrentQuestion.ID)

	_, err = s.Answer("q1", quiz.ChoiceAnswer("b"))
	require.NoError(t, err)
	_, err = s.Next()
	require.NoError(t, err)
	_, err = s.Answer("q2", quiz.MultiAnswer{"x"})
	require.NoError(t, err)

	view, err = s.Submit()
	require.NoError(t, err)
	assert.Equal(t, quiz.StatusSubmitted, view.Status)
	assert.Equal(t, 33, view.Score)
	assert.False(t, view.Passed)
	assert.True(t, view.CanRetry)

	s.Wait()

	answers, completions := f.reporter.snapshot()
	require.Len(t, completions, 1)
	assert.Equal(t, 33, completions[0].Score)
	assert.False(t, completions[0].Passed)
	assert.Equal(t, "learner-1", completions[0].LearnerID)
	assert.Equal(t, "lesson-1", completions[0].QuizID)
	assert.Equal(t, 1, completions[0].Number)

	require.Len(t, answers, 3)
	assert.Equal(t, "q1", answers[0].QuestionID)
	assert.True(t, answers[0].IsCorrect)
	assert.Equal(t, "q2", answers[1].QuestionID)
	assert.Equal(t, `["x"]`, answers[1].Answer)
	assert.False(t, answers[1].IsCorrect)
	assert.Equal(t, "q3", answers[2].QuestionID)
	assert.False(t, answers[2].IsCorrect)
}

func TestSession_ConcurrentSubmitReportsOnce(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, quizJSON)

	_, err := s.Start()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Submit()
		}()
	}
	wg.Wait()
	s.Wait()

	answers, completions := f.reporter.snapshot()
	assert.Len(t, completions, 1)
	assert.Len(t, answers, 3)
}

func TestSession_TimerAutoSubmit(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, timedQuizJSON)

	view, err := s.Start()
	require.NoError(t, err)
	assert.True(t, view.TimerEnabled)
	assert.Equal(t, 60, view.RemainingSeconds)

	_, err = s.Answer("q1", quiz.ChoiceAnswer("t"))
	require.NoError(t, err)

	for i := 0; i < 60; i++ {
		require.True(t, f.clock.Tick(), "tick %d", i+1)
	}

	require.Eventually(t, func() bool {
		return s.View().Status == quiz.StatusSubmitted
	}, time.Second, time.Millisecond)

	view = s.View()
	assert.True(t, view.AutoSubmitted)
	assert.Equal(t, 0, view.RemainingSeconds)
	assert.Equal(t, 50, view.Score)

	require.Eventually(t, func() bool { return !f.clock.Active() }, time.Second, time.Millisecond)

	// Ручная отправка после автоотправки ничего не делает.
	_, err = s.Submit()
	require.NoError(t, err)

	s.Wait()

	_, completions := f.reporter.snapshot()
	require.Len(t, completions, 1)
	assert.True(t, completions[0].AutoSubmitted)
}

func TestSession_LastTickRacesSubmit(t *testing.T) {
	for round := 0; round < 20; round++ {
		f := newFixture(t)
		s := f.open(t, timedQuizJSON)

		_, err := s.Start()
		require.NoError(t, err)

		for i := 0; i < 59; i++ {
			require.True(t, f.clock.Tick(), "tick %d", i+1)
		}
		require.Eventually(t, func() bool { return s.View().RemainingSeconds == 1 }, time.Second, time.Millisecond)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			f.clock.Tick()
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Submit()
		}()
		wg.Wait()

		// Wait после отправки обязан дождаться итогового отчёта,
		// кто бы из двух ни отправил попытку.
		s.Wait()

		_, completions := f.reporter.snapshot()
		require.Len(t, completions, 1, "round %d", round)
		assert.Equal(t, quiz.StatusSubmitted, s.View().Status)
	}
}

func TestSession_ManualSubmitStopsCountdown(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, timedQuizJSON)

	_, err := s.Start()
	require.NoError(t, err)
	require.True(t, f.clock.Tick())

	require.Eventually(t, func() bool { return s.View().RemainingSeconds == 59 }, time.Second, time.Millisecond)

	_, err = s.Submit()
	require.NoError(t, err)

	require.Eventually(t, func() bool { return !f.clock.Active() }, time.Second, time.Millisecond)
	assert.False(t, f.clock.Tick())

	s.Wait()

	_, completions := f.reporter.snapshot()
	require.Len(t, completions, 1)
	assert.False(t, completions[0].AutoSubmitted)
}

func TestSession_StaleTickIsDropped(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, timedQuizJSON)

	_, err := s.Start()
	require.NoError(t, err)

	s.mu.Lock()
	firstGeneration := s.generation
	s.mu.Unlock()

	_, err = s.Submit()
	require.NoError(t, err)

	view, err := s.Start()
	require.NoError(t, err)
	require.Equal(t, 60, view.RemainingSeconds)

	// Запоздавший тик первой попытки не должен трогать новую.
	s.tick(firstGeneration)
	assert.Equal(t, 60, s.View().RemainingSeconds)
	assert.Equal(t, quiz.StatusInProgress, s.View().Status)
}

func TestSession_NoRetryAfterPass(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, timedQuizJSON)

	_, err := s.Start()
	require.NoError(t, err)
	_, err = s.Answer("q1", quiz.ChoiceAnswer("t"))
	require.NoError(t, err)
	_, err = s.Answer("q2", quiz.ChoiceAnswer("f"))
	require.NoError(t, err)

	view, err := s.Submit()
	require.NoError(t, err)
	require.True(t, view.Passed)
	assert.False(t, view.CanRetry)

	view, err = s.Start()
	require.NoError(t, err)
	assert.Equal(t, quiz.StatusSubmitted, view.Status)
	assert.Equal(t, 100, view.Score)
	assert.Equal(t, 1, view.Attempt)

	s.Wait()

	_, completions := f.reporter.snapshot()
	assert.Len(t, completions, 1)
}

func TestSession_RetryResetsState(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, timedQuizJSON)

	_, err := s.Start()
	require.NoError(t, err)
	_, err = s.Answer("q1", quiz.ChoiceAnswer("f"))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.True(t, f.clock.Tick())
	}
	require.Eventually(t, func() bool { return s.View().RemainingSeconds == 55 }, time.Second, time.Millisecond)

	view, err := s.Submit()
	require.NoError(t, err)
	require.False(t, view.Passed)

	view, err = s.Start()
	require.NoError(t, err)
	assert.Equal(t, quiz.StatusInProgress, view.Status)
	assert.Empty(t, view.Answers)
	assert.Equal(t, 0, view.Score)
	assert.Equal(t, 60, view.RemainingSeconds)
	assert.Equal(t, 2, view.Attempt)

	require.True(t, f.clock.Tick())
	require.Eventually(t, func() bool { return s.View().RemainingSeconds == 59 }, time.Second, time.Millisecond)

	_, err = s.Submit()
	require.NoError(t, err)
	s.Wait()

	_, completions := f.reporter.snapshot()
	require.Len(t, completions, 2)
	assert.Equal(t, 1, completions[0].Number)
	assert.Equal(t, 2, completions[1].Number)
}

func TestSession_ReporterFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	f.reporter.err = errors.New("database is down")
	s := f.open(t, quizJSON)

	_, err := s.Start()
	require.NoError(t, err)

	view, err := s.Submit()
	require.NoError(t, err)
	s.Wait()

	assert.Equal(t, quiz.StatusSubmitted, view.Status)
	assert.Equal(t, quiz.StatusSubmitted, s.View().Status)

	answers, completions := f.reporter.snapshot()
	assert.Len(t, answers, 3, "every answer is still attempted")
	assert.Len(t, completions, 1)
}

func TestSession_Close(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, timedQuizJSON)

	_, err := s.Start()
	require.NoError(t, err)
	require.True(t, f.clock.Active())

	require.NoError(t, f.engine.CloseSession(s.ID))
	require.Eventually(t, func() bool { return !f.clock.Active() }, time.Second, time.Millisecond)

	_, err = s.Submit()
	assert.ErrorIs(t, err, ErrSessionClosed)

	_, err = f.engine.GetSession(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, f.engine.CloseSession(s.ID), ErrSessionNotFound)

	_, completions := f.reporter.snapshot()
	assert.Empty(t, completions)
}

func TestSession_ViewHidesAnswersUntilSubmitted(t *testing.T) {
	f := newFixture(t)
	s := f.open(t, quizJSON)

	view := s.View()
	assert.Equal(t, quiz.StatusNotStarted, view.Status)
	assert.Nil(t, view.CurrentQuestion)
	assert.Equal(t, 3, view.QuestionCount)
	assert.Equal(t, 70, view.PassingScore)

	view, err := s.Start()
	require.NoError(t, err)
	require.NotNil(t, view.CurrentQuestion)

	for _, opt := range view.CurrentQuestion.Options {
		assert.Nil(t, opt.IsCorrect)
	}
	assert.Empty(t, view.CurrentQuestion.Explanation)

	view, err = s.GoTo(2)
	require.NoError(t, err)
	assert.Empty(t, view.CurrentQuestion.Options, "fill blank answer is hidden")

	_, err = s.Submit()
	require.NoError(t, err)

	view, err = s.GoTo(0)
	require.NoError(t, err)
	assert.Empty(t, view.CurrentQuestion.Explanation)

	view, err = s.Reveal("q1")
	require.NoError(t, err)
	assert.Equal(t, "Basic arithmetic", view.CurrentQuestion.Explanation)
	require.Len(t, view.CurrentQuestion.Options, 2)
	require.NotNil(t, view.CurrentQuestion.Options[1].IsCorrect)
	assert.True(t, *view.CurrentQuestion.Options[1].IsCorrect)
}
