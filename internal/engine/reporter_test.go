package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/letsssgooo/lessonquiz/internal/quiz"
)

func TestReporters_FanOut(t *testing.T) {
	failing := &recordingReporter{err: errors.New("boom")}
	ok := &recordingReporter{}

	rs := Reporters{failing, ok}

	err := rs.ReportAnswer(context.Background(), quiz.AnswerReport{QuestionID: "q1"})
	assert.Error(t, err)

	err = rs.ReportCompletion(context.Background(), quiz.CompletionReport{Score: 10})
	assert.Error(t, err)

	answers, completions := ok.snapshot()
	assert.Len(t, answers, 1)
	assert.Len(t, completions, 1)

	assert.NoError(t, Reporters{ok}.ReportCompletion(context.Background(), quiz.CompletionReport{}))
	assert.NoError(t, Reporters(nil).ReportAnswer(context.Background(), quiz.AnswerReport{}))
}
