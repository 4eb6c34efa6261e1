package frontier_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/openengine/openengine/internal/frontier"
)

func TestQueue_FIFOOrder(t *testing.T) {
	ctx := context.Background()
	q := frontier.NewQueue[string](0)

	inputs := []string{"a", "b", "c", "d"}
	for _, in := range inputs {
		if err := q.Enqueue(ctx, in); err != nil {
			t.Fatalf("Enqueue(%q) unexpected error: %v", in, err)
		}
	}

	if got := q.Len(); got != len(inputs) {
		t.Fatalf("Len() = %d, want %d", got, len(inputs))
	}

	for _, want := range inputs {
		got, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue() unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("Dequeue() = %q, want %q", got, want)
		}
	}
}

func TestQueue_DequeueBlocksUntilEnqueue(t *testing.T) {
	ctx := context.Background()
	q := frontier.NewQueue[int](0)

	done := make(chan int, 1)
	go func() {
		v, err := q.Dequeue(ctx)
		if err != nil {
			return
		}
		done <- v
	}()

	select {
	case <-done:
		t.Fatal("Dequeue returned before anything was enqueued")
	case <-time.After(50 * time.Millisecond):
	}

	if err := q.Enqueue(ctx, 42); err != nil {
		t.Fatalf("Enqueue() unexpected error: %v", err)
	}

	select {
	case v := <-done:
		if v != 42 {
			t.Errorf("Dequeue() = %d, want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not wake after Enqueue")
	}
}

func TestQueue_DequeueWakesOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := frontier.NewQueue[int](0)

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Dequeue(ctx)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Dequeue() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not wake on context cancellation")
	}
}

func TestQueue_CloseDrainsThenErrors(t *testing.T) {
	ctx := context.Background()
	q := frontier.NewQueue[string](0)

	if err := q.Enqueue(ctx, "left-over"); err != nil {
		t.Fatalf("Enqueue() unexpected error: %v", err)
	}
	q.Close()

	got, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue() after Close should drain, got error: %v", err)
	}
	if got != "left-over" {
		t.Errorf("Dequeue() = %q, want %q", got, "left-over")
	}

	if _, err = q.Dequeue(ctx); !errors.Is(err, frontier.ErrQueueClosed) {
		t.Errorf("Dequeue() on drained closed queue = %v, want ErrQueueClosed", err)
	}

	if err = q.Enqueue(ctx, "x"); !errors.Is(err, frontier.ErrQueueClosed) {
		t.Errorf("Enqueue() on closed queue = %v, want ErrQueueClosed", err)
	}
}

func TestQueue_CloseWakesBlockedDequeue(t *testing.T) {
	ctx := context.Background()
	q := frontier.NewQueue[int](0)

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Dequeue(ctx)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, frontier.ErrQueueClosed) {
			t.Errorf("Dequeue() error = %v, want ErrQueueClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not wake on Close")
	}
}

func TestQueue_BoundedEnqueueBlocksUntilDequeue(t *testing.T) {
	ctx := context.Background()
	q := frontier.NewQueue[int](1)

	if err := q.Enqueue(ctx, 1); err != nil {
		t.Fatalf("Enqueue() unexpected error: %v", err)
	}

	enqueued := make(chan error, 1)
	go func() {
		enqueued <- q.Enqueue(ctx, 2)
	}()

	select {
	case <-enqueued:
		t.Fatal("Enqueue returned while the bounded queue was full")
	case <-time.After(50 * time.Millisecond):
	}

	if _, err := q.Dequeue(ctx); err != nil {
		t.Fatalf("Dequeue() unexpected error: %v", err)
	}

	select {
	case err := <-enqueued:
		if err != nil {
			t.Errorf("Enqueue() after space freed = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Enqueue did not wake after Dequeue freed space")
	}
}

func TestQueue_ConcurrentProducersConsumers(t *testing.T) {
	const (
		producers = 4
		perWorker = 50
	)

	ctx := context.Background()
	q := frontier.NewQueue[int](0)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_ = q.Enqueue(ctx, base*perWorker+i)
			}
		}(p)
	}

	seen := make(map[int]bool)
	var mu sync.Mutex
	var cg sync.WaitGroup
	for c := 0; c < 2; c++ {
		cg.Add(1)
		go func() {
			defer cg.Done()
			for {
				v, err := q.Dequeue(ctx)
				if err != nil {
					return
				}
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	for q.Len() > 0 {
		time.Sleep(5 * time.Millisecond)
	}
	q.Close()
	cg.Wait()

	if len(seen) != producers*perWorker {
		t.Errorf("consumed %d distinct items, want %d", len(seen), producers*perWorker)
	}
}
