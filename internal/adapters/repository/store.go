// Package repository holds the published dataset snapshot.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/stemmap/internal/domain/geo"
	"github.com/okian/stemmap/internal/domain/model"
)

// Snapshot is one immutable load of the event dataset and map shapes.
// Nothing may modify a snapshot once it has been published.
type Snapshot struct {
	ID       uuid.UUID
	LoadedAt time.Time
	Source   string
	Events   []model.Event
	Shapes   *geo.Collection
	Options  model.FilterOptions
	// Inferred counts events whose region came from their coordinates.
	Inferred int
	// Unmatched lists region keys in the events that no shape carries.
	Unmatched []string
}

// Store provides access to the current snapshot.
type Store interface {
	// Publish replaces the current snapshot wholesale.
	Publish(ctx context.Context, snap *Snapshot) error

	// Current returns the published snapshot.
	// Returns ErrNoSnapshot before the first successful Publish.
	Current(ctx context.Context) (*Snapshot, error)

	// Count returns the number of events in the current snapshot.
	Count(ctx context.Context) int
}
