package client

import (
	"sync"

	"github.com/Sherifrax/speakup-sub001/internal/listquery"
)

// ControllerConfig instantiates the list controller for one record type.
type ControllerConfig[F any] struct {
	// Defaults returns a filter struct with every filter unset
	// (tri-state sentinels at -1, empty search text).
	Defaults func() F
	// SetSearch writes the free-text search into the filter struct.
	SetSearch func(*F, string)
	// DefaultSortBy is the column an untouched list sorts on.
	DefaultSortBy string
	// DefaultSortOrder is asc unless the feature sorts newest-first.
	DefaultSortOrder string
	// PageSize is fixed for the session; never user-adjustable.
	PageSize int
}

// Controller owns the current list query. Any filter or search change
// resets to page 1; sorting keeps the page (clamped); the derived request
// is always internally consistent, so there is no way to hold a stale page
// against new filters.
type Controller[F any] struct {
	mu  sync.Mutex
	cfg ControllerConfig[F]

	filters    F
	page       int
	sortBy     string
	sortOrder  string
	totalPages int
}

// NewController creates a controller with default filters, page 1, and the
// feature's default sort.
func NewController[F any](cfg ControllerConfig[F]) *Controller[F] {
	if cfg.PageSize < 1 {
		cfg.PageSize = 10
	}
	if cfg.DefaultSortOrder == "" {
		cfg.DefaultSortOrder = listquery.SortAsc
	}
	return &Controller[F]{
		cfg:       cfg,
		filters:   cfg.Defaults(),
		page:      1,
		sortBy:    cfg.DefaultSortBy,
		sortOrder: cfg.DefaultSortOrder,
	}
}

// SetSearchText updates the free-text search and resets to page 1.
func (c *Controller[F]) SetSearchText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.SetSearch(&c.filters, text)
	c.page = 1
}

// SetFilter mutates the filter struct and resets to page 1.
func (c *Controller[F]) SetFilter(mutate func(*F)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mutate(&c.filters)
	c.page = 1
}

// ResetFilters restores the default filters and page 1, keeping the sort.
// Idempotent: resetting an already-default controller changes nothing.
func (c *Controller[F]) ResetFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = c.cfg.Defaults()
	c.page = 1
}

// SetSort sorts by the given column. Repeated calls on the same column
// toggle the direction; a new column starts ascending. The page is kept
// but clamped against the last known page count, so re-sorting can never
// leave the list beyond its final page.
func (c *Controller[F]) SetSort(column string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if column == c.sortBy {
		if c.sortOrder == listquery.SortAsc {
			c.sortOrder = listquery.SortDesc
		} else {
			c.sortOrder = listquery.SortAsc
		}
	} else {
		c.sortBy = column
		c.sortOrder = listquery.SortAsc
	}
	if c.totalPages > 0 {
		c.page = listquery.ClampPage(c.page, c.totalPages)
	}
}

// SetPage moves to the given page, clamped to [1, totalPages] once a result
// has established the page count.
func (c *Controller[F]) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if page < 1 {
		page = 1
	}
	if c.totalPages > 0 {
		page = listquery.ClampPage(page, c.totalPages)
	}
	c.page = page
}

// Page returns the current 1-based page.
func (c *Controller[F]) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// TotalPages returns the page count from the last applied result, or 0
// before the first fetch.
func (c *Controller[F]) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages
}

// Sort returns the current sort column and direction.
func (c *Controller[F]) Sort() (column, order string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortBy, c.sortOrder
}

// Filters returns a copy of the current filter struct.
func (c *Controller[F]) Filters() F {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// Query derives the wire request for the current state.
func (c *Controller[F]) Query() listquery.Request[F] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return listquery.Request[F]{
		Search: c.filters,
		Pagination: listquery.Pagination{
			Page:      c.page,
			Size:      c.cfg.PageSize,
			SortBy:    c.sortBy,
			SortOrder: c.sortOrder,
		},
	}
}

// applyTotal records the authoritative row count from a fetch and clamps
// the page against it.
func (c *Controller[F]) applyTotal(totalRows int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalPages = listquery.TotalPages(totalRows, c.cfg.PageSize)
	c.page = listquery.ClampPage(c.page, c.totalPages)
}
