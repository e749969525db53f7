// Package worker runs snapshot reloads requested through the reload queue.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/stemmap/internal/adapters/mq/queue"
	"github.com/okian/stemmap/pkg/logger"
	"github.com/okian/stemmap/pkg/metrics"
)

// Reloader rebuilds and publishes the snapshot.
type Reloader interface {
	Reload(ctx context.Context, reason string) error
}

// Queue defines how the worker receives requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Request
}

// Worker consumes reload requests.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the reload in progress, if any.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker serializes reloads: one runs at a time, in request order.
type InMemoryWorker struct {
	queue    Queue
	reloader Reloader
	name     string
	interval time.Duration

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, reloader Reloader, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		reloader: reloader,
		name:     "reload-worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get()
	}
	w.logger = w.logger.Named(w.name)

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	requests := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case <-tick:
			w.process(ctx, queue.NewRequest(queue.ReasonSchedule))
		case req, ok := <-requests:
			if !ok {
				return
			}
			metrics.RecordReloadQueueLatency(float64(time.Since(req.Queued).Milliseconds()))
			w.process(ctx, req)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, req queue.Request) {
	start := time.Now()
	err := w.reloader.Reload(ctx, req.Reason)
	if err != nil {
		metrics.RecordErrorByComponent("reload_worker", "reload_failed")
		metrics.RecordErrorLatency("reload_worker", "reload_failed", float64(time.Since(start).Milliseconds()))
		w.logger.Error(ctx, "reload failed",
			logger.String("request_id", req.ID.String()),
			logger.String("reason", req.Reason),
			logger.Error(err),
		)
		return
	}
	w.logger.Debug(ctx, "reload done",
		logger.String("request_id", req.ID.String()),
		logger.String("reason", req.Reason),
		logger.Duration("took", time.Since(start)),
	)
}
