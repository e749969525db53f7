// Package worker runs snapshot reloads requested through the reload queue.
package worker

import (
	"time"

	"github.com/okian/stemmap/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithRefreshInterval makes the worker reload on its own every d.
// Zero or negative disables the periodic refresh.
func WithRefreshInterval(d time.Duration) Option {
	return func(w *InMemoryWorker) {
		if d > 0 {
			w.interval = d
		}
	}
}
