package palette

import (
	"fmt"
	"strings"
	"testing"

	"polyterm/internal/domain"
)

func TestToggleClearsQueryOnOpen(t *testing.T) {
	c := New()
	if c.IsOpen() {
		t.Fatal("new palette should be closed")
	}

	c.Toggle()
	if !c.IsOpen() {
		t.Error("toggle should open")
	}
	c.SetQuery("abc")
	c.Toggle()
	if c.IsOpen() {
		t.Error("toggle should close")
	}
	c.Toggle()
	if c.Query() != "" {
		t.Errorf("query = %q after reopen, want empty", c.Query())
	}
}

func TestFilterCaseInsensitiveSubstring(t *testing.T) {
	events := []domain.Event{
		{ID: "e1", Title: "Will Bitcoin hit $100k?"},
		{ID: "e2", Title: "US election winner"},
		{ID: "e3", Title: "bitcoin ETF approved?"},
	}

	c := New()
	c.Open()
	c.SetQuery("BITCOIN")

	got := c.Filter(events)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Original list order, not match quality, decides ordering.
	if got[0].ID != "e1" || got[1].ID != "e3" {
		t.Errorf("order = [%s, %s], want [e1, e3]", got[0].ID, got[1].ID)
	}
	for _, ev := range got {
		if !strings.Contains(strings.ToLower(ev.Title), "bitcoin") {
			t.Errorf("non-matching result: %q", ev.Title)
		}
	}
}

func TestFilterCap(t *testing.T) {
	var events []domain.Event
	for i := 0; i < 30; i++ {
		events = append(events, domain.Event{
			ID:    fmt.Sprintf("e%d", i),
			Title: fmt.Sprintf("Market move %d", i),
		})
	}

	c := New()
	c.SetQuery("market")
	got := c.Filter(events)
	if len(got) != MaxResults {
		t.Errorf("len = %d, want %d", len(got), MaxResults)
	}
	if got[0].ID != "e0" {
		t.Errorf("first result = %s, want e0", got[0].ID)
	}
}

func TestFilterEmptyInputs(t *testing.T) {
	c := New()

	if got := c.Filter(nil); len(got) != 0 {
		t.Errorf("Filter(nil) = %v, want empty", got)
	}

	// Empty query matches everything (up to the cap).
	events := []domain.Event{{ID: "e1", Title: "a"}, {ID: "e2", Title: "b"}}
	if got := c.Filter(events); len(got) != 2 {
		t.Errorf("empty query matched %d, want 2", len(got))
	}
}
