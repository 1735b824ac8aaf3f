package watchlist

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"polyterm/internal/domain"
)

// memStore is an in-memory WatchlistStore for tests.
type memStore struct {
	ids     []string
	loadErr error
	saves   int
}

func (s *memStore) Load(context.Context) ([]string, error) { return s.ids, s.loadErr }
func (s *memStore) Save(_ context.Context, ids []string) error {
	s.ids = ids
	s.saves++
	return nil
}

func TestToggleInvolution(t *testing.T) {
	ctx := context.Background()
	ms := &memStore{}
	m, err := NewManager(ctx, ms)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if m.IsWatched("e1") {
		t.Fatal("e1 watched before any toggle")
	}

	on, err := m.Toggle(ctx, "e1")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !on || !m.IsWatched("e1") {
		t.Error("first toggle should add e1")
	}
	if !reflect.DeepEqual(ms.ids, []string{"e1"}) {
		t.Errorf("persisted after add = %v, want [e1]", ms.ids)
	}

	off, err := m.Toggle(ctx, "e1")
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if off || m.IsWatched("e1") {
		t.Error("second toggle should remove e1")
	}
	if len(ms.ids) != 0 {
		t.Errorf("persisted after remove = %v, want empty", ms.ids)
	}
	if ms.saves != 2 {
		t.Errorf("saves = %d, want 2 (one per toggle)", ms.saves)
	}
}

func TestVisiblePreservesEventOrder(t *testing.T) {
	ctx := context.Background()
	m, err := NewManager(ctx, &memStore{})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	// Watch in reverse order relative to the event list.
	m.Toggle(ctx, "e3")
	m.Toggle(ctx, "e1")

	events := []domain.Event{{ID: "e1"}, {ID: "e2"}, {ID: "e3"}}
	visible := m.Visible(events)

	if len(visible) != 2 {
		t.Fatalf("len(visible) = %d, want 2", len(visible))
	}
	if visible[0].ID != "e1" || visible[1].ID != "e3" {
		t.Errorf("visible order = [%s, %s], want [e1, e3]", visible[0].ID, visible[1].ID)
	}
}

func TestVisibleToleratesStaleIDs(t *testing.T) {
	ctx := context.Background()
	m, err := NewManager(ctx, &memStore{ids: []string{"gone", "e2"}})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	visible := m.Visible([]domain.Event{{ID: "e1"}, {ID: "e2"}})
	if len(visible) != 1 || visible[0].ID != "e2" {
		t.Errorf("visible = %+v, want just e2", visible)
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2 (stale IDs retained)", m.Len())
	}
}

func TestNewManagerLoadFailureStillUsable(t *testing.T) {
	ctx := context.Background()
	m, err := NewManager(ctx, &memStore{loadErr: errors.New("disk gone")})
	if err == nil {
		t.Error("expected load error to be reported")
	}
	if m == nil {
		t.Fatal("Manager must be usable despite load failure")
	}

	on, err := m.Toggle(ctx, "e1")
	if err != nil {
		t.Fatalf("Toggle after load failure: %v", err)
	}
	if !on {
		t.Error("toggle should work from an empty set")
	}
}
