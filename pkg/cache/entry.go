package cache

import (
	"slices"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/catalog"
)

// PageEntry represents one cached catalog page.
type PageEntry struct {
	// Results are the page's entries in remote order.
	Results []catalog.Entry `json:"results"`

	// Count is the remote total observed when this page was fetched.
	// A cache hit derives the page count from it rather than re-validating.
	Count int `json:"count"`

	// CachedAt is when we cached this page.
	CachedAt time.Time `json:"cached_at"`
}

// TotalPages returns the number of pages implied by the stored count.
func (e *PageEntry) TotalPages(limit int) int {
	return catalog.TotalPages(e.Count, limit)
}

// Age returns how long ago the page was cached.
func (e *PageEntry) Age() time.Duration {
	if e.CachedAt.IsZero() {
		return 0
	}
	return time.Since(e.CachedAt)
}

// clone returns a deep copy so callers cannot mutate stored results.
func (e *PageEntry) clone() *PageEntry {
	return &PageEntry{
		Results:  slices.Clone(e.Results),
		Count:    e.Count,
		CachedAt: e.CachedAt,
	}
}
