// Package watchlist maintains the user's starred-event ID set and keeps it
// persisted through a store.WatchlistStore.
package watchlist

import (
	"context"
	"sort"

	"polyterm/internal/domain"
	"polyterm/internal/store"
)

// Manager owns the watchlist membership set. Membership changes take effect
// in memory immediately and are persisted synchronously after every toggle;
// a persistence failure never rolls back the in-memory change (last write
// wins, losing a star is not worth an error state).
type Manager struct {
	store store.WatchlistStore
	ids   map[string]bool
}

// NewManager creates a Manager and loads the persisted watchlist. An absent
// or corrupt persisted value degrades to an empty set; only real I/O
// failures surface as an error, and even then the Manager is usable.
func NewManager(ctx context.Context, s store.WatchlistStore) (*Manager, error) {
	m := &Manager{store: s, ids: make(map[string]bool)}

	ids, err := s.Load(ctx)
	if err != nil {
		return m, err
	}
	for _, id := range ids {
		m.ids[id] = true
	}
	return m, nil
}

// Toggle flips membership for the given event ID and persists the new set.
// It returns the new membership state. Toggling twice restores the original
// state.
func (m *Manager) Toggle(ctx context.Context, eventID string) (bool, error) {
	if m.ids[eventID] {
		delete(m.ids, eventID)
	} else {
		m.ids[eventID] = true
	}
	return m.ids[eventID], m.persist(ctx)
}

// IsWatched reports whether the event ID is on the watchlist.
func (m *Manager) IsWatched(eventID string) bool {
	return m.ids[eventID]
}

// Len returns the number of watched event IDs, including stale ones that
// are not in the current fetch results.
func (m *Manager) Len() int {
	return len(m.ids)
}

// Visible filters the given events down to watched ones, preserving the
// events' own order (not watchlist insertion order). IDs referencing events
// outside the list are simply not represented.
func (m *Manager) Visible(events []domain.Event) []domain.Event {
	var visible []domain.Event
	for _, ev := range events {
		if m.ids[ev.ID] {
			visible = append(visible, ev)
		}
	}
	return visible
}

// persist saves the current ID set. IDs are sorted so the stored value is
// deterministic; ordering is irrelevant to consumers.
func (m *Manager) persist(ctx context.Context) error {
	ids := make([]string, 0, len(m.ids))
	for id := range m.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return m.store.Save(ctx, ids)
}
