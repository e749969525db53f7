package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrDataUnavailable means no snapshot has ever been loaded.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrNoShapes means the map layer is not configured.
	ErrNoShapes = errors.New("no region shapes loaded")
	// ErrNoEventSource means Start was called without an event source.
	ErrNoEventSource = errors.New("no event source configured")
	// ErrNotStarted means Reload was called before Start set up the store.
	ErrNotStarted = errors.New("service not started")
)
