// Package queue publishes lottery events to RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const DefaultQueue = "lottery.executed"

// Publisher sends JSON messages to one durable queue on the default exchange.
// Each publish opens its own connection; lotteries run once a month.
type Publisher struct {
	URL   string
	Queue string
}

func NewPublisher(url, queue string) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Publisher{URL: url, Queue: queue}
}

// Message builds the persistent AMQP message for v.
func Message(v interface{}) (amqp.Publishing, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}

func (p *Publisher) PublishJSON(ctx context.Context, v interface{}) error {
	msg, err := Message(v)
	if err != nil {
		return err
	}
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	log.Debug().Str("queue", p.Queue).Int("bytes", len(msg.Body)).Msg("event published")
	return nil
}

// Ping dials the broker and closes the connection.
func (p *Publisher) Ping() error {
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(3 * time.Second)})
	if err != nil {
		return err
	}
	return conn.Close()
}
