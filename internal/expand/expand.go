// Package expand tracks which events are showing their full market list
// rather than the truncated preview.
package expand

import "polyterm/internal/domain"

// MarketPreviewLimit is how many markets an event shows when collapsed.
const MarketPreviewLimit = 3

// Set holds per-event expansion state. It is scoped to the running session:
// nothing is persisted, and entries for events no longer in the fetch
// results are harmless.
type Set struct {
	expanded map[string]bool
}

// NewSet creates an empty expansion set.
func NewSet() *Set {
	return &Set{expanded: make(map[string]bool)}
}

// Toggle flips the expansion state for the given event ID and returns the
// new state.
func (s *Set) Toggle(eventID string) bool {
	if s.expanded[eventID] {
		delete(s.expanded, eventID)
	} else {
		s.expanded[eventID] = true
	}
	return s.expanded[eventID]
}

// IsExpanded reports whether the event is showing all of its markets.
func (s *Set) IsExpanded(eventID string) bool {
	return s.expanded[eventID]
}

// VisibleMarkets returns the markets to display for an event: all of them
// when expanded, otherwise at most MarketPreviewLimit.
func (s *Set) VisibleMarkets(ev domain.Event) []domain.Market {
	if s.expanded[ev.ID] || len(ev.Markets) <= MarketPreviewLimit {
		return ev.Markets
	}
	return ev.Markets[:MarketPreviewLimit]
}

// HiddenCount returns how many markets are hidden by the preview truncation
// for this event (zero when expanded).
func (s *Set) HiddenCount(ev domain.Event) int {
	return len(ev.Markets) - len(s.VisibleMarkets(ev))
}
