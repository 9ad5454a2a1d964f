package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// AMQPQueue publishes to and consumes from durable RabbitMQ queues named
// after the topic.
type AMQPQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	// amqp.Channel is not safe for concurrent publishes.
	pubMu sync.Mutex

	Logger zerolog.Logger
}

func NewAMQPQueue(url string, logger zerolog.Logger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	return &AMQPQueue{conn: conn, ch: ch, Logger: logger}, nil
}

func (q *AMQPQueue) declare(topic string) (amqp.Queue, error) {
	return q.ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
}

func (q *AMQPQueue) Publish(ctx context.Context, topic string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.pubMu.Lock()
	defer q.pubMu.Unlock()

	dq, err := q.declare(topic)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}

	return q.ch.Publish("", dq.Name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Subscribe consumes topic with manual acks. A failed delivery is requeued
// once; if it fails again after redelivery it is dropped.
func (q *AMQPQueue) Subscribe(topic string, handler func(body []byte) error) error {
	q.pubMu.Lock()
	dq, err := q.declare(topic)
	q.pubMu.Unlock()
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}

	msgs, err := q.ch.Consume(
		dq.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	go func() {
		for d := range msgs {
			if err := handler(d.Body); err != nil {
				requeue := !d.Redelivered
				q.Logger.Warn().Err(err).Str("topic", topic).Bool("requeue", requeue).
					Msg("message handling failed")
				if nackErr := d.Nack(false, requeue); nackErr != nil {
					q.Logger.Error().Err(nackErr).Msg("nack failed")
				}
				continue
			}
			if ackErr := d.Ack(false); ackErr != nil {
				q.Logger.Error().Err(ackErr).Msg("ack failed")
			}
		}
		q.Logger.Info().Str("topic", topic).Msg("consumer stopped")
	}()

	return nil
}

// NotifyClose reports when the broker connection goes away.
func (q *AMQPQueue) NotifyClose() <-chan *amqp.Error {
	return q.conn.NotifyClose(make(chan *amqp.Error, 1))
}

func (q *AMQPQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}

var (
	_ Queue = (*AMQPQueue)(nil)
	_ Queue = (*InMemoryQueue)(nil)
)
