package queue

import (
	"context"
	"sync"
	"testing"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	r := NewRequest(ReasonManual)
	if !q.Enqueue(ctx, r) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.ID != r.ID || got.Reason != ReasonManual {
		t.Errorf("expected %v, got %v", r, got)
	}
	if got.Queued.IsZero() {
		t.Error("expected queued time to be stamped")
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Coalesce(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	if !q.Enqueue(ctx, NewRequest(ReasonSchedule)) {
		t.Fatal("expected first enqueue to succeed")
	}
	if q.Enqueue(ctx, NewRequest(ReasonManual)) {
		t.Error("expected second request to be coalesced")
	}

	got := <-q.Dequeue(ctx)
	if got.Reason != ReasonSchedule {
		t.Errorf("expected the pending request to be kept, got %q", got.Reason)
	}
	if !q.Enqueue(ctx, NewRequest(ReasonManual)) {
		t.Error("expected enqueue to succeed once drained")
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(3))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !q.Enqueue(ctx, NewRequest(ReasonManual)) {
			t.Fatalf("expected enqueue %d to succeed", i)
		}
	}
	if q.Enqueue(ctx, NewRequest(ReasonManual)) {
		t.Error("expected enqueue to fail when full")
	}

	// Invalid capacity keeps the default.
	if d := NewInMemoryQueue(WithCapacity(0)); d.capacity != defaultQueueCapacity {
		t.Errorf("expected default capacity, got %d", d.capacity)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	if q.IsClosed() {
		t.Error("expected queue to be open")
	}
	if err := q.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected second close to be a no-op, got %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if q.Enqueue(ctx, NewRequest(ReasonManual)) {
		t.Error("expected enqueue on closed queue to fail")
	}
	if _, ok := <-q.Dequeue(ctx); ok {
		t.Error("expected dequeue channel to be closed")
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A free slot still wins over a cancelled context only by chance, so
	// fill the slot first.
	q.requests <- NewRequest(ReasonStartup)
	if q.Enqueue(ctx, NewRequest(ReasonManual)) {
		t.Error("expected enqueue to fail")
	}
}

func TestInMemoryQueue_ConcurrentEnqueue(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if q.Enqueue(ctx, NewRequest(ReasonManual)) {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if accepted != 4 {
		t.Errorf("expected exactly 4 accepted requests, got %d", accepted)
	}
	if l := q.Len(ctx); l != 4 {
		t.Errorf("expected length 4, got %d", l)
	}
}
