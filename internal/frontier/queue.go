package frontier

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed is returned by queue operations after Close. A worker that
// sees it treats the queue as structurally gone and terminates.
var ErrQueueClosed = errors.New("queue closed")

// Queue is a FIFO shared by concurrent producers and consumers. Capacity 0
// means unbounded and Enqueue never blocks; with a capacity set, Enqueue
// blocks while the queue is full. Dequeue blocks until an item is available,
// the context is cancelled, or the queue is closed and drained.
type Queue[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	items    []T
	capacity int
	closed   bool
}

// NewQueue creates a queue. capacity <= 0 means unbounded.
func NewQueue[T any](capacity int) *Queue[T] {
	q := &Queue[T]{capacity: capacity}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends an item. On a bounded queue it blocks until space frees
// up, the context is cancelled, or the queue is closed.
func (q *Queue[T]) Enqueue(ctx context.Context, item T) error {
	defer q.wakeOnCancel(ctx)()

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.capacity > 0 && len(q.items) >= q.capacity && !q.closed {
		if err := ctx.Err(); err != nil {
			return err
		}
		q.notFull.Wait()
	}
	if q.closed {
		return ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	q.items = append(q.items, item)
	q.notEmpty.Signal()
	return nil
}

// Dequeue removes and returns the oldest item. Remaining items are still
// delivered after Close; only an empty closed queue returns ErrQueueClosed.
func (q *Queue[T]) Dequeue(ctx context.Context) (T, error) {
	var zero T

	defer q.wakeOnCancel(ctx)()

	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		q.notEmpty.Wait()
	}
	if len(q.items) == 0 {
		return zero, ErrQueueClosed
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	item := q.items[0]
	q.items = q.items[1:]
	q.notFull.Signal()
	return item, nil
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close wakes every blocked producer and consumer. Idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// wakeOnCancel broadcasts to both condition variables when ctx is cancelled
// so blocked Wait loops re-check their exit conditions. The returned stop
// function releases the watcher.
func (q *Queue[T]) wakeOnCancel(ctx context.Context) func() bool {
	return context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.notEmpty.Broadcast()
		q.notFull.Broadcast()
		q.mu.Unlock()
	})
}
