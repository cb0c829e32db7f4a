package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"github.com/letsssgooo/lessonquiz/internal/quiz"
)

// Типы событий, они же ключи маршрутизации в topic exchange.
const (
	EventAnswerGraded     = "quiz.answer.graded"
	EventAttemptCompleted = "quiz.attempt.completed"
)

// Event - конверт события.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// channel - часть *amqp.Channel, нужная издателю.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher публикует отчёты сессий в RabbitMQ.
type Publisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
	now      func() time.Time
}

// NewPublisher подключается к брокеру и объявляет topic exchange.
func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &Publisher{conn: conn, channel: ch, exchange: exchange, now: time.Now}, nil
}

// ReportAnswer публикует результат проверки вопроса.
func (p *Publisher) ReportAnswer(ctx context.Context, r quiz.AnswerReport) error {
	return p.publish(ctx, EventAnswerGraded, r)
}

// ReportCompletion публикует итог попытки.
func (p *Publisher) ReportCompletion(ctx context.Context, r quiz.CompletionReport) error {
	return p.publish(ctx, EventAttemptCompleted, r)
}

func (p *Publisher) publish(ctx context.Context, eventType string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(Event{
		Type:       eventType,
		OccurredAt: p.now(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	err = p.channel.Publish(
		p.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	return nil
}

// Close закрывает канал и соединение.
func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
