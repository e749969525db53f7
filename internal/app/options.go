package service

import (
	"time"

	"github.com/okian/stemmap/internal/adapters/repository"
	"github.com/okian/stemmap/internal/adapters/source"
	"github.com/okian/stemmap/internal/domain/colorscale"
	"github.com/okian/stemmap/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEventSource sets where events are loaded from.
func WithEventSource(src source.EventSource) Option {
	return func(s *Service) {
		s.events = src
	}
}

// WithShapeSource sets where region shapes are loaded from. Without one the
// map layer is disabled and no region inference happens.
func WithShapeSource(src source.ShapeSource) Option {
	return func(s *Service) {
		s.shapes = src
	}
}

// WithStore replaces the default in-memory snapshot store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithColorScale sets the map palette.
func WithColorScale(scale colorscale.Scale) Option {
	return func(s *Service) {
		if scale != nil {
			s.scale = scale
		}
	}
}

// WithFetchTimeout bounds one reload's fetches.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithMaxListItems caps the list in a view; 0 means unlimited.
func WithMaxListItems(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxListItems = n
		}
	}
}

// WithRefreshInterval reloads the snapshot periodically; 0 disables.
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.refreshInterval = d
		}
	}
}
