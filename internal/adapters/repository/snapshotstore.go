package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/stemmap/internal/domain/aggregate"
	"github.com/okian/stemmap/pkg/metrics"
)

// SnapshotStore is an in-memory Store. Readers load the current snapshot
// through an atomic pointer and never block a concurrent Publish.
type SnapshotStore struct {
	current atomic.Pointer[Snapshot]

	metricsUpdateInterval time.Duration
	now                   func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewSnapshotStore constructs an empty store and starts its metrics updater.
func NewSnapshotStore(ctx context.Context, opts ...Option) *SnapshotStore {
	s := &SnapshotStore{
		metricsUpdateInterval: 5 * time.Second,
		now:                   time.Now,
		stopChan:              make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.startMetricsUpdater(ctx)
	return s
}

// Publish stamps snap with an ID and load time when missing, precomputes its
// filter options and makes it current.
func (s *SnapshotStore) Publish(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		metrics.RecordErrorByComponent("repository", "nil_snapshot")
		return ErrNilSnapshot
	}
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	if snap.LoadedAt.IsZero() {
		snap.LoadedAt = s.now()
	}
	snap.Options = aggregate.Options(snap.Events)

	s.current.Store(snap)
	s.updateMetrics()
	return nil
}

// Current returns the published snapshot.
func (s *SnapshotStore) Current(ctx context.Context) (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Count returns the number of events in the current snapshot.
func (s *SnapshotStore) Count(ctx context.Context) int {
	snap := s.current.Load()
	if snap == nil {
		return 0
	}
	return len(snap.Events)
}

// Close stops the background metrics updater.
func (s *SnapshotStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// startMetricsUpdater starts a background goroutine that refreshes dataset gauges.
func (s *SnapshotStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

// updateMetrics updates all dataset-related metrics.
func (s *SnapshotStore) updateMetrics() {
	snap := s.current.Load()
	if snap == nil {
		metrics.UpdateDataset(0, 0, 0)
		return
	}
	shapes := 0
	if snap.Shapes != nil {
		shapes = len(snap.Shapes.Shapes)
	}
	metrics.UpdateDataset(len(snap.Events), len(snap.Options.Regions), shapes)
	metrics.UpdateDataUnavailable(false)
}
