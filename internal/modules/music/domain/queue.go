package domain

import (
	"context"
	"sync"
	"time"
)

// Queue is an unbounded FIFO of pending track requests for one guild.
// Enqueue is safe to call from any goroutine; Dequeue is intended for the
// guild's single orchestrator goroutine.
type Queue struct {
	mu    sync.Mutex
	items []TrackRequest
	wake  chan struct{}
}

// NewQueue creates a new empty Queue.
func NewQueue() *Queue {
	return &Queue{
		wake: make(chan struct{}, 1),
	}
}

// Enqueue appends a request to the tail. It never blocks and never fails.
func (q *Queue) Enqueue(req TrackRequest) {
	q.mu.Lock()
	q.items = append(q.items, req)
	q.mu.Unlock()

	// Coalesced wake-up: the consumer re-checks the slice on every signal,
	// so one pending signal is enough for any number of appends.
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Dequeue removes and returns the head of the queue. It blocks until an item
// is available, the timeout elapses (ErrQueueTimeout) or ctx is canceled.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (TrackRequest, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			req := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return req, nil
		}
		q.mu.Unlock()

		select {
		case <-q.wake:
		case <-timer.C:
			return TrackRequest{}, ErrQueueTimeout
		case <-ctx.Done():
			return TrackRequest{}, ctx.Err()
		}
	}
}

// Len returns the number of pending requests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Tracks returns a snapshot of the pending requests in FIFO order.
func (q *Queue) Tracks() []TrackRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	result := make([]TrackRequest, len(q.items))
	copy(result, q.items)
	return result
}
