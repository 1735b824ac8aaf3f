// Package store defines storage interfaces for the client's local
// persistence: the watchlist key-value store and the market snapshot
// history.
package store

import (
	"context"
	"time"

	"polyterm/internal/domain"
)

// WatchlistStore persists the set of starred event identifiers. Load must
// tolerate an absent or corrupt persisted value by returning an empty set
// rather than an error; losing a watchlist is acceptable, crashing the
// client over one is not.
type WatchlistStore interface {
	// Load returns the persisted event IDs, or an empty slice if nothing
	// usable is stored.
	Load(ctx context.Context) ([]string, error)

	// Save persists the full ID set, replacing the previous value.
	Save(ctx context.Context, ids []string) error
}

// SnapshotStore persists point-in-time market observations for local
// history.
type SnapshotStore interface {
	// WriteSnapshots appends a batch of snapshots, deduplicating against
	// rows already stored for the same capture time.
	WriteSnapshots(ctx context.Context, snaps []domain.Snapshot) error

	// ReadSnapshots returns all snapshots captured on the given day.
	ReadSnapshots(ctx context.Context, day time.Time) ([]domain.Snapshot, error)

	// ListDates returns the capture dates (YYYY-MM-DD) that have snapshot
	// data, sorted ascending.
	ListDates(ctx context.Context) ([]string, error)
}
