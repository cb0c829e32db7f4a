package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/lessonquiz/internal/domain/models"
	"github.com/letsssgooo/lessonquiz/internal/quiz"
	"github.com/letsssgooo/lessonquiz/internal/storage"
)

func TestAttemptMapping(t *testing.T) {
	finished := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	report := quiz.CompletionReport{
		AttemptRef:    quiz.AttemptRef{SessionID: "s", QuizID: "q", LearnerID: "l", Number: 3},
		Score:         80,
		Passed:        true,
		AutoSubmitted: true,
		FinishedAt:    finished,
	}

	m := attemptToModel(report)
	assert.Equal(t, 3, m.Attempt)
	assert.Equal(t, report, attemptFromModel(m))
}

func TestAnswerMapping(t *testing.T) {
	report := quiz.AnswerReport{
		AttemptRef: quiz.AttemptRef{SessionID: "s", QuizID: "q", LearnerID: "l", Number: 1},
		QuestionID: "q1",
		Answer:     `["a","b"]`,
		IsCorrect:  true,
		ReportedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	m := answerToModel(report)
	assert.Equal(t, "q1", m.QuestionID)
	assert.Equal(t, `["a","b"]`, m.Answer)
	assert.Equal(t, 1, m.Attempt)
	assert.Equal(t, report, answerFromModel(m))
}

func TestQuizFromModel(t *testing.T) {
	q, err := quizFromModel(models.QuizModel{
		ID:   "db-id",
		Body: []byte(`{"id": "other", "title": "T", "settings": {"passing_score": 80}, "questions": []}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "db-id", q.ID)
	assert.Equal(t, 80, q.PassingScore())

	_, err = quizFromModel(models.QuizModel{ID: "broken", Body: []byte(`{`)})
	assert.Error(t, err)
}

// TestStorage_Postgres запускается только при заданном TEST_DATABASE_DSN.
func TestStorage_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	ctx := context.Background()

	st, err := NewStorage(ctx, dsn)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Migrate(ctx))

	quizID := uuid.NewString()
	q := &quiz.Quiz{
		ID:    quizID,
		Title: "Postgres quiz",
		Questions: []quiz.Question{
			{ID: "q1", Text: "?", Kind: quiz.KindTrueFalse, Options: []quiz.Option{{ID: "t", IsCorrect: true}}},
		},
	}
	require.NoError(t, st.SaveQuiz(ctx, q))
	defer func() { _ = st.DeleteQuiz(ctx, quizID) }()

	got, err := st.GetQuiz(ctx, quizID)
	require.NoError(t, err)
	assert.Equal(t, "Postgres quiz", got.Title)
	require.Len(t, got.Questions, 1)

	history, err := st.AttemptHistory(ctx, quizID, "learner")
	require.NoError(t, err)
	assert.Equal(t, 0, history.PreviousAttempts)
	assert.Nil(t, history.BestScore)

	for i, score := range []int{30, 90} {
		require.NoError(t, st.SaveAttempt(ctx, quiz.CompletionReport{
			AttemptRef: quiz.AttemptRef{SessionID: "s", QuizID: quizID, LearnerID: "learner", Number: i + 1},
			Score:      score,
			FinishedAt: time.Now(),
		}))
	}

	history, err = st.AttemptHistory(ctx, quizID, "learner")
	require.NoError(t, err)
	assert.Equal(t, 2, history.PreviousAttempts)
	require.NotNil(t, history.BestScore)
	assert.Equal(t, 90, *history.BestScore)

	attempts, err := st.ListAttempts(ctx, quizID)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)

	sessionID := uuid.NewString()
	for _, questionID := range []string{"q1", "q2"} {
		require.NoError(t, st.SaveAnswer(ctx, quiz.AnswerReport{
			AttemptRef: quiz.AttemptRef{SessionID: sessionID, QuizID: quizID, LearnerID: "learner", Number: 1},
			QuestionID: questionID,
			ReportedAt: time.Now(),
		}))
	}

	answers, err := st.ListAnswers(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "q1", answers[0].QuestionID)

	_, err = st.GetQuiz(ctx, uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, st.DeleteQuiz(ctx, quizID))

	answers, err = st.ListAnswers(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, answers)
	assert.ErrorIs(t, st.DeleteQuiz(ctx, quizID), storage.ErrNotFound)
}
