package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Queue moves JSON messages between publishers and topic subscribers.
type Queue interface {
	Publish(ctx context.Context, topic string, body []byte) error
	Subscribe(topic string, handler func(body []byte) error) error
}

// InMemoryQueue fans each message out to the topic's subscribers on their
// own goroutine and retries failed deliveries with a growing pause.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(body []byte) error
	wg       sync.WaitGroup

	MaxRetries int
	Backoff    func(attempt int) time.Duration
	Logger     zerolog.Logger
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue(logger zerolog.Logger) *InMemoryQueue {
	return &InMemoryQueue{
		handlers:   make(map[string][]func(body []byte) error),
		MaxRetries: 3,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt*500) * time.Millisecond
		},
		Logger: logger,
	}
}

// job wraps a message with retry info
type job struct {
	topic      string
	body       []byte
	retryCount int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(ctx context.Context, topic string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	handlers := append([]func(body []byte) error(nil), q.handlers[topic]...)
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		q.wg.Add(1)
		go func(h func(body []byte) error) {
			defer q.wg.Done()
			q.process(h, job{topic: topic, body: body})
		}(handler)
	}
	return nil
}

// process delivers one job, retrying up to MaxRetries times.
func (q *InMemoryQueue) process(handler func(body []byte) error, j job) {
	for {
		err := handler(j.body)
		if err == nil {
			return
		}

		j.retryCount++
		if j.retryCount > q.MaxRetries {
			q.Logger.Error().Err(err).Str("topic", j.topic).Int("attempts", j.retryCount).
				Msg("job permanently failed")
			return
		}

		q.Logger.Warn().Err(err).Str("topic", j.topic).Int("attempt", j.retryCount).
			Int("max_retries", q.MaxRetries).Msg("job failed, retrying")

		if q.Backoff != nil {
			time.Sleep(q.Backoff(j.retryCount))
		}
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(body []byte) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Wait blocks until every delivery started so far has finished.
func (q *InMemoryQueue) Wait() {
	q.wg.Wait()
}
