// Package query implements the query controller: it owns the search and
// category filter state, the loading flag, and the authoritative event,
// trending, and category collections for the current fetch cycle.
package query

import (
	"context"
	"log/slog"
	"sync"

	"polyterm/internal/domain"
)

// Fetcher is the slice of the API client the controller needs. *api.Client
// satisfies it.
type Fetcher interface {
	FetchEvents(ctx context.Context, search, category string) ([]domain.Event, error)
	FetchTrending(ctx context.Context) ([]domain.TrendingEvent, error)
	FetchCategories(ctx context.Context) ([]string, error)
}

// Spec is the filter snapshot a fetch cycle runs with. It is captured when
// the cycle starts so a filter edit during the cycle cannot tear the
// request.
type Spec struct {
	Search   string
	Category string
}

// Result carries the three collections of one fetch cycle. Each slot
// succeeds or fails independently; Apply only replaces the collections
// whose slot succeeded.
type Result struct {
	Events        []domain.Event
	EventsErr     error
	Trending      []domain.TrendingEvent
	TrendingErr   error
	Categories    []string
	CategoriesErr error
}

// Controller holds the filter and collection state. It is single-writer:
// all methods are called from the UI update loop, while Fetch runs on
// whatever goroutine executes the async command and touches no controller
// state.
type Controller struct {
	logger *slog.Logger

	search   string
	category string
	loading  bool

	events     []domain.Event
	trending   []domain.TrendingEvent
	categories []string
}

// NewController creates a Controller with empty filters and collections.
func NewController(logger *slog.Logger) *Controller {
	return &Controller{logger: logger}
}

// SetSearch updates the search text and reports whether it changed; the
// caller schedules a refetch on change.
func (c *Controller) SetSearch(text string) bool {
	if c.search == text {
		return false
	}
	c.search = text
	return true
}

// SetCategory updates the category filter and reports whether it changed.
func (c *Controller) SetCategory(category string) bool {
	if c.category == category {
		return false
	}
	c.category = category
	return true
}

// Search returns the current search text.
func (c *Controller) Search() string { return c.search }

// Category returns the current category filter.
func (c *Controller) Category() string { return c.category }

// Loading reports whether a fetch cycle is in flight.
func (c *Controller) Loading() bool { return c.loading }

// Events returns the current event collection.
func (c *Controller) Events() []domain.Event { return c.events }

// Trending returns the current trending collection.
func (c *Controller) Trending() []domain.TrendingEvent { return c.trending }

// Categories returns the current category names.
func (c *Controller) Categories() []string { return c.categories }

// BeginFetch marks the controller loading and returns the filter snapshot
// for the cycle. Calling it while a cycle is outstanding is allowed; cycles
// are not cancelable and their results apply in completion order.
func (c *Controller) BeginFetch() Spec {
	c.loading = true
	return Spec{Search: c.search, Category: c.category}
}

// Fetch runs one fetch cycle: the three requests are issued concurrently
// and their outcomes collected into a single Result. It never returns an
// error; per-request failures travel in their Result slot.
func Fetch(ctx context.Context, f Fetcher, spec Spec) Result {
	var res Result
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		res.Events, res.EventsErr = f.FetchEvents(ctx, spec.Search, spec.Category)
	}()
	go func() {
		defer wg.Done()
		res.Trending, res.TrendingErr = f.FetchTrending(ctx)
	}()
	go func() {
		defer wg.Done()
		res.Categories, res.CategoriesErr = f.FetchCategories(ctx)
	}()

	wg.Wait()
	return res
}

// Apply reconciles a completed fetch cycle. The loading flag clears on
// every path. Each collection is replaced only when its request succeeded,
// so a fully successful cycle replaces all three together and a failed slot
// leaves its previous data untouched. Failures are logged and never
// surfaced as a UI error state.
func (c *Controller) Apply(res Result) {
	c.loading = false

	if res.EventsErr != nil {
		c.logger.Warn("fetching events", "error", res.EventsErr)
	} else {
		c.events = res.Events
	}

	if res.TrendingErr != nil {
		c.logger.Warn("fetching trending", "error", res.TrendingErr)
	} else {
		c.trending = res.Trending
	}

	if res.CategoriesErr != nil {
		c.logger.Warn("fetching categories", "error", res.CategoriesErr)
	} else {
		c.categories = res.Categories
	}
}

// EventByID returns the event with the given ID from the current
// collection.
func (c *Controller) EventByID(id string) (domain.Event, bool) {
	for _, ev := range c.events {
		if ev.ID == id {
			return ev, true
		}
	}
	return domain.Event{}, false
}
