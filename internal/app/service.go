// Package service loads the event snapshot and renders dashboard views from
// it for the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/stemmap/internal/adapters/mq/queue"
	"github.com/okian/stemmap/internal/adapters/mq/worker"
	"github.com/okian/stemmap/internal/adapters/repository"
	"github.com/okian/stemmap/internal/adapters/source"
	"github.com/okian/stemmap/internal/domain/colorscale"
	"github.com/okian/stemmap/internal/domain/dashboard"
	"github.com/okian/stemmap/internal/domain/filter"
	"github.com/okian/stemmap/internal/domain/geo"
	"github.com/okian/stemmap/internal/domain/model"
	"github.com/okian/stemmap/internal/domain/normalize"
	"github.com/okian/stemmap/pkg/logger"
	"github.com/okian/stemmap/pkg/metrics"
)

const (
	defaultFetchTimeout   = 10 * time.Second
	defaultMaxListItems   = 500
	workerShutdownTimeout = 5 * time.Second
	workerShutdownGrace   = time.Second
)

// Service implements the API dependencies for the dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	events   source.EventSource
	shapes   source.ShapeSource
	store    repository.Store
	ownStore *repository.SnapshotStore
	reloads  *queue.InMemoryQueue
	worker   *worker.InMemoryWorker
	scale    colorscale.Scale

	// Configuration
	fetchTimeout    time.Duration
	maxListItems    int
	refreshInterval time.Duration

	// State
	started      bool
	cancelWorker context.CancelFunc
	reloadMu     sync.Mutex

	// Last reload failure, cleared by a successful reload.
	errMu     sync.RWMutex
	lastErr   error
	lastErrAt time.Time

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		scale:        colorscale.Continuous{},
		fetchTimeout: defaultFetchTimeout,
		maxListItems: defaultMaxListItems,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the first snapshot and starts the reload worker. A failed first
// load is not fatal: the service then answers with ErrDataUnavailable until a
// later reload succeeds.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.events == nil {
		return ErrNoEventSource
	}

	s.logger.Info(ctx, "starting dashboard service...")

	if s.store == nil {
		s.ownStore = repository.NewSnapshotStore(ctx)
		s.store = s.ownStore
	}
	s.reloads = queue.NewInMemoryQueue()

	if err := s.Reload(ctx, queue.ReasonStartup); err != nil {
		s.logger.Warn(ctx, "initial load failed, serving without data", logger.Error(err))
	}

	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelWorker = cancel
	s.worker = worker.NewInMemoryWorker(s.reloads, s,
		worker.WithLogger(s.logger),
		worker.WithRefreshInterval(s.refreshInterval),
	)
	go s.worker.Run(workerCtx)

	s.started = true
	s.logger.Info(ctx, "dashboard service started",
		logger.String("source", s.events.Name()),
		logger.Bool("shapes", s.shapes != nil),
		logger.Duration("refresh_interval", s.refreshInterval),
	)

	return nil
}

// Stop gracefully shuts down the service. It waits for a reload in progress
// to return; the store stays in place so a reload that outlives the wait
// still finds it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping dashboard service...")

	wait := max(workerShutdownTimeout, s.fetchTimeout+workerShutdownGrace)
	shutdownCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	if err := s.worker.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "reload worker did not stop in time", logger.Error(err))
	}
	s.cancelWorker()
	select {
	case <-s.worker.Done():
	case <-time.After(workerShutdownGrace):
		s.logger.Warn(ctx, "reload still running after cancel")
	}
	_ = s.reloads.Close()

	if s.ownStore != nil {
		_ = s.ownStore.Close()
		s.ownStore = nil
	}

	s.started = false
	s.logger.Info(ctx, "dashboard service stopped")
}

// Reload fetches events and shapes concurrently, infers missing regions from
// coordinates and publishes the result as the new snapshot. On failure the
// previous snapshot, if any, stays current.
func (s *Service) Reload(ctx context.Context, reason string) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	// Set once by Start and never cleared.
	store := s.store
	if store == nil {
		return ErrNotStarted
	}

	start := time.Now()
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	var (
		events []model.Event
		shapes *geo.Collection
	)
	g, gctx := errgroup.WithContext(fetchCtx)
	g.Go(func() error {
		var err error
		events, err = s.events.Events(gctx)
		return err
	})
	if s.shapes != nil {
		g.Go(func() error {
			var err error
			shapes, err = s.shapes.Shapes(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return s.reloadFailed(ctx, store, reason, err)
	}

	inferred := inferRegions(events, shapes)
	unmatched := unmatchedRegions(events, shapes)
	if len(unmatched) > 0 {
		s.logger.Warn(ctx, "regions without a map shape", logger.Strings("regions", unmatched))
	}
	snap := &repository.Snapshot{
		Source:    s.events.Name(),
		Events:    events,
		Shapes:    shapes,
		Inferred:  inferred,
		Unmatched: unmatched,
	}
	if err := store.Publish(ctx, snap); err != nil {
		return s.reloadFailed(ctx, store, reason, err)
	}

	s.errMu.Lock()
	s.lastErr = nil
	s.errMu.Unlock()

	took := time.Since(start)
	metrics.RecordRegionsInferred(inferred)
	metrics.RecordReload(float64(took.Milliseconds()))
	metrics.UpdateDataUnavailable(false)
	s.logger.Info(ctx, "snapshot published",
		logger.String("snapshot", snap.ID.String()),
		logger.String("reason", reason),
		logger.Int("events", len(events)),
		logger.Int("regions_inferred", inferred),
		logger.Duration("took", took),
	)
	return nil
}

func (s *Service) reloadFailed(ctx context.Context, store repository.Store, reason string, err error) error {
	kind := failureKind(err)
	metrics.RecordReloadError(kind)
	metrics.RecordErrorByComponent("service", kind)

	s.errMu.Lock()
	s.lastErr = err
	s.lastErrAt = time.Now()
	s.errMu.Unlock()

	_, curErr := store.Current(ctx)
	unavailable := errors.Is(curErr, repository.ErrNoSnapshot)
	metrics.UpdateDataUnavailable(unavailable)

	s.logger.Error(ctx, "reload failed",
		logger.String("reason", reason),
		logger.String("kind", kind),
		logger.Bool("keeping_previous", !unavailable),
		logger.Error(err),
	)
	return fmt.Errorf("reload (%s): %w", reason, err)
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, source.ErrMalformedPayload):
		return "malformed"
	case errors.Is(err, source.ErrFetch):
		return "fetch"
	default:
		return "publish"
	}
}

// inferRegions fills the region of located events that have none from the
// shape containing them. Returns how many events were filled.
func inferRegions(events []model.Event, shapes *geo.Collection) int {
	if shapes == nil {
		return 0
	}
	n := 0
	for i := range events {
		e := &events[i]
		if e.Region != "" || !e.HasLocation() {
			continue
		}
		if shape, ok := shapes.Locate(*e.Latitude, *e.Longitude); ok {
			e.Region = shape.Name
			n++
		}
	}
	return n
}

// unmatchedRegions returns the sorted region keys present in events that no
// shape carries. Those events count in the KPIs but never color the map.
func unmatchedRegions(events []model.Event, shapes *geo.Collection) []string {
	if shapes == nil {
		return nil
	}
	known := make(map[string]struct{})
	for _, k := range shapes.Keys() {
		known[k] = struct{}{}
	}
	seen := make(map[string]struct{})
	var out []string
	for i := range events {
		key := model.RegionKey(events[i].Region)
		if key == "" {
			continue
		}
		if _, ok := known[key]; ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	slices.Sort(out)
	return out
}

// RequestReload queues an asynchronous reload. It reports false when a reload
// was already pending; that pending reload covers this request too.
func (s *Service) RequestReload(ctx context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return false
	}
	return s.reloads.Enqueue(ctx, queue.NewRequest(queue.ReasonManual))
}

// snapshot returns the current snapshot or ErrDataUnavailable.
func (s *Service) snapshot(ctx context.Context) (*repository.Snapshot, error) {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	s.errMu.RLock()
	lastErr := s.lastErr
	s.errMu.RUnlock()

	if store == nil {
		return nil, ErrDataUnavailable
	}
	snap, err := store.Current(ctx)
	if err != nil {
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, lastErr)
		}
		return nil, ErrDataUnavailable
	}
	return snap, nil
}

// Render builds the dashboard view for sel.
func (s *Service) Render(ctx context.Context, sel model.Selection) (dashboard.View, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return dashboard.View{}, err
	}

	start := time.Now()
	view := dashboard.Build(snap.Events, snap.Shapes, sel, s.scale, dashboard.Options{MaxListItems: s.maxListItems})
	metrics.RecordRender("view", float64(time.Since(start).Milliseconds()), view.Summary.Total)
	return view, nil
}

// RegionDetail returns the popup figures of one region under sel.
func (s *Service) RegionDetail(ctx context.Context, name string, sel model.Selection) (dashboard.Popup, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return dashboard.Popup{}, err
	}

	start := time.Now()
	popup := dashboard.RegionDetail(snap.Events, name, sel)
	metrics.RecordRender("popup", float64(time.Since(start).Milliseconds()), popup.Encounters)
	return popup, nil
}

// Options returns the selector values of the current snapshot.
func (s *Service) Options(ctx context.Context) (model.FilterOptions, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return model.FilterOptions{}, err
	}
	return snap.Options, nil
}

// Filtered returns the events matching sel, in snapshot order.
func (s *Service) Filtered(ctx context.Context, sel model.Selection) ([]model.Event, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(snap.Events, sel), nil
}

// Shapes returns the region shapes of the current snapshot.
func (s *Service) Shapes(ctx context.Context) (*geo.Collection, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Shapes == nil {
		return nil, ErrNoShapes
	}
	return snap.Shapes, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"fetchTimeout":    s.fetchTimeout.String(),
		"maxListItems":    s.maxListItems,
		"refreshInterval": s.refreshInterval.String(),
		"dataAvailable":   false,
		"schemaVersion":   normalize.SchemaVersion,
	}
	if s.events != nil {
		stats["source"] = s.events.Name()
	}
	s.errMu.RLock()
	if s.lastErr != nil {
		stats["lastError"] = s.lastErr.Error()
		stats["lastErrorAt"] = s.lastErrAt.UTC().Format(time.RFC3339)
	}
	s.errMu.RUnlock()

	if s.started {
		stats["pendingReloads"] = s.reloads.Len(ctx)
		if snap, err := s.store.Current(ctx); err == nil {
			stats["dataAvailable"] = true
			stats["snapshot"] = snap.ID.String()
			stats["loadedAt"] = snap.LoadedAt.UTC().Format(time.RFC3339)
			stats["events"] = len(snap.Events)
			stats["regionsInferred"] = snap.Inferred
			if len(snap.Unmatched) > 0 {
				stats["unmatchedRegions"] = snap.Unmatched
			}
			if snap.Shapes != nil {
				stats["shapes"] = len(snap.Shapes.Shapes)
			}
		}
	}

	return stats
}
