package metrics

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/letsssgooo/lessonquiz/internal/quiz"
)

const namespace = "lessonquiz"

// Metrics - метрики Prometheus по сессиям квизов.
type Metrics struct {
	AttemptsTotal    *prometheus.CounterVec
	AnswersTotal     *prometheus.CounterVec
	AttemptScore     *prometheus.HistogramVec
	AutoSubmitsTotal *prometheus.CounterVec
}

// NewMetrics регистрирует метрики квизов в reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "quiz",
				Name:      "attempts_total",
				Help:      "Total number of submitted quiz attempts",
			},
			[]string{"quiz_id", "passed"},
		),
		AnswersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "quiz",
				Name:      "answers_total",
				Help:      "Total number of graded questions",
			},
			[]string{"quiz_id", "question_id", "correct"},
		),
		AttemptScore: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "quiz",
				Name:      "attempt_score",
				Help:      "Score of submitted attempts in percent",
				Buckets:   prometheus.LinearBuckets(10, 10, 10),
			},
			[]string{"quiz_id"},
		),
		AutoSubmitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "quiz",
				Name:      "auto_submits_total",
				Help:      "Attempts submitted because the time limit was reached",
			},
			[]string{"quiz_id"},
		),
	}
}

// ReportAnswer учитывает проверенный вопрос.
func (m *Metrics) ReportAnswer(_ context.Context, r quiz.AnswerReport) error {
	m.AnswersTotal.WithLabelValues(r.QuizID, r.QuestionID, strconv.FormatBool(r.IsCorrect)).Inc()
	return nil
}

// ReportCompletion учитывает итог попытки.
func (m *Metrics) ReportCompletion(_ context.Context, r quiz.CompletionReport) error {
	m.AttemptsTotal.WithLabelValues(r.QuizID, strconv.FormatBool(r.Passed)).Inc()
	m.AttemptScore.WithLabelValues(r.QuizID).Observe(float64(r.Score))

	if r.AutoSubmitted {
		m.AutoSubmitsTotal.WithLabelValues(r.QuizID).Inc()
	}

	return nil
}
