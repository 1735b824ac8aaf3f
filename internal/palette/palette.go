// Package palette implements the command-palette controller: a quick
// substring search over the currently loaded events.
package palette

import (
	"strings"

	"polyterm/internal/domain"
)

// MaxResults caps how many matches the palette shows.
const MaxResults = 12

// Controller owns the palette's visibility and query state. It operates on
// whatever events snapshot the caller holds — including an empty one — and
// is independent of any in-flight fetch.
type Controller struct {
	open  bool
	query string
}

// New creates a closed palette with an empty query.
func New() *Controller {
	return &Controller{}
}

// Open shows the palette and clears any stale query from the last use.
func (c *Controller) Open() {
	c.open = true
	c.query = ""
}

// Close hides the palette.
func (c *Controller) Close() {
	c.open = false
}

// Toggle flips visibility, clearing the query on open.
func (c *Controller) Toggle() {
	if c.open {
		c.Close()
	} else {
		c.Open()
	}
}

// IsOpen reports whether the palette is visible.
func (c *Controller) IsOpen() bool {
	return c.open
}

// SetQuery updates the filter text.
func (c *Controller) SetQuery(q string) {
	c.query = q
}

// Query returns the current filter text.
func (c *Controller) Query() string {
	return c.query
}

// Filter returns at most MaxResults events whose titles contain the current
// query as a case-insensitive substring, preserving the input order. An
// empty query matches everything.
func (c *Controller) Filter(events []domain.Event) []domain.Event {
	q := strings.ToLower(c.query)

	var matches []domain.Event
	for _, ev := range events {
		if q != "" && !strings.Contains(strings.ToLower(ev.Title), q) {
			continue
		}
		matches = append(matches, ev)
		if len(matches) == MaxResults {
			break
		}
	}
	return matches
}
