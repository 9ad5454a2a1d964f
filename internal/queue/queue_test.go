package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/unclebandit/kickstarter-backend/internal/queue"
)

func newQueue() *queue.InMemoryQueue {
	q := queue.NewInMemoryQueue(zerolog.Nop())
	q.Backoff = func(int) time.Duration { return 0 }
	return q
}

func TestPublishWithoutSubscribers(t *testing.T) {
	q := newQueue()
	if err := q.Publish(context.Background(), "nobody", []byte("{}")); err == nil {
		t.Fatal("expected error when nobody listens")
	}
}

func TestPublishFansOut(t *testing.T) {
	q := newQueue()

	var mu sync.Mutex
	got := map[string]string{}
	for _, name := range []string{"a", "b"} {
		name := name
		q.Subscribe("topic", func(body []byte) error {
			mu.Lock()
			defer mu.Unlock()
			got[name] = string(body)
			return nil
		})
	}

	if err := q.Publish(context.Background(), "topic", []byte("hello")); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	q.Wait()

	if got["a"] != "hello" || got["b"] != "hello" {
		t.Errorf("expected both subscribers to get the message, got %v", got)
	}
}

func TestRetriesThenGivesUp(t *testing.T) {
	q := newQueue()
	q.MaxRetries = 2

	var calls int32
	q.Subscribe("topic", func([]byte) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("mock failure")
	})

	q.Publish(context.Background(), "topic", []byte("x"))
	q.Wait()

	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("expected 1 attempt + 2 retries, got %d", n)
	}
}

func TestRetryRecovers(t *testing.T) {
	q := newQueue()

	var calls int32
	q.Subscribe("topic", func([]byte) error {
		if atomic.AddInt32(&calls, 1) < 2 {
			return errors.New("flaky")
		}
		return nil
	})

	q.Publish(context.Background(), "topic", []byte("x"))
	q.Wait()

	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("expected success on second attempt, got %d calls", n)
	}
}

func TestEventRoundTripThroughQueue(t *testing.T) {
	q := newQueue()

	var got queue.Event
	q.Subscribe(queue.CampaignEventsTopic, func(body []byte) error {
		ev, err := queue.DecodeEvent(body)
		got = ev
		return err
	})

	ev := queue.NewEvent(queue.CampaignCreated, 12, 5)
	if err := queue.PublishEvent(context.Background(), q, ev); err != nil {
		t.Fatalf("PublishEvent: %v", err)
	}
	q.Wait()

	if got.ID != ev.ID || got.Type != queue.CampaignCreated || got.CampaignID != 12 || got.UserID != 5 {
		t.Errorf("unexpected event %+v", got)
	}
}
