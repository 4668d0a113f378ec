// Package pagestate coordinates catalog page loads, the session page cache
// and live search over the loaded page.
//
// A Controller owns the current page, the total page count, the search term
// and the entries of the page on display. Loads go through the cache first;
// misses are fetched from the remote catalog and inserted. Each load carries a
// generation token and only the latest load may change what is displayed, so a
// slow response for an abandoned page can never overwrite a newer selection.
package pagestate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/pokedex-client/pkg/cache"
	"github.com/Sternrassler/pokedex-client/pkg/catalog"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
)

var (
	// ErrInvalidPage is returned by LoadPage for page numbers below 1.
	ErrInvalidPage = errors.New("page must be >= 1")

	// ErrPageOutOfRange is returned by LoadPage for pages past the last page
	// of the catalog. Nothing is cached or displayed.
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrLoadFailed wraps transport failures. State is left untouched.
	ErrLoadFailed = errors.New("page load failed")

	// ErrSuperseded is returned when a newer load was issued while this one
	// was in flight. The page is cached but not displayed.
	ErrSuperseded = errors.New("page load superseded by a newer request")
)

// Source tells where a loaded page came from.
type Source string

const (
	SourceCache  Source = "cache"
	SourceRemote Source = "remote"
)

// LoadResult describes one successful page load.
type LoadResult struct {
	Page       int
	Entries    []catalog.Entry
	TotalPages int
	Source     Source
	Generation uint64
}

// State is a point-in-time view of the controller for renderers.
type State struct {
	CurrentPage int
	TotalPages  int
	SearchTerm  string

	// Loaded is false until the first page load succeeds.
	Loaded bool

	// Loading is true while the latest requested page is in flight.
	Loading     bool
	PendingPage int

	HasPrevious bool
	HasNext     bool
}

// Config holds controller settings.
type Config struct {
	// Limit is the number of entries per page.
	Limit int

	// MaxButtons is the default pagination window size.
	MaxButtons int
}

// DefaultConfig returns the catalog defaults (20 per page, 3 buttons).
func DefaultConfig() Config {
	return Config{
		Limit:      catalog.DefaultLimit,
		MaxButtons: catalog.DefaultMaxButtons,
	}
}

// Controller is the page state controller. Safe for concurrent use; the lock
// is never held across a fetch.
type Controller struct {
	fetcher catalog.PageFetcher
	store   cache.Store
	config  Config
	logger  zerolog.Logger

	mu          sync.Mutex
	currentPage int
	totalPages  int
	entries     []catalog.Entry
	loaded      bool
	term        string
	generation  uint64
	pendingPage int
}

// New creates a controller over a page fetcher and a page store.
func New(fetcher catalog.PageFetcher, store cache.Store, cfg Config) (*Controller, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("page fetcher is required")
	}
	if store == nil {
		return nil, fmt.Errorf("page store is required")
	}
	if cfg.Limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0 (got %d)", cfg.Limit)
	}
	if cfg.MaxButtons <= 0 {
		return nil, fmt.Errorf("max buttons must be > 0 (got %d)", cfg.MaxButtons)
	}

	return &Controller{
		fetcher:     fetcher,
		store:       store,
		config:      cfg,
		logger:      logging.NewLogger("pagestate"),
		currentPage: 1,
	}, nil
}

// LoadPage shows the given page, from cache when possible.
//
// On a transport failure the error wraps ErrLoadFailed and neither the
// displayed state nor the cache changes. A page past the last page of the
// catalog fails with ErrPageOutOfRange, also without side effects. If another
// load was started while this one was in flight the result is cached, not
// displayed, and the error is ErrSuperseded.
func (c *Controller) LoadPage(ctx context.Context, page int) (*LoadResult, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidPage, page)
	}

	key := cache.NewPageKey(page, c.config.Limit)

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.pendingPage = page
	c.mu.Unlock()

	logger := logging.WithPage(c.logger, page, key.Offset, key.Limit).With().
		Uint64("generation", gen).
		Logger()

	source := SourceCache
	entry, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn().Err(err).Msg("Page cache read failed, fetching from PokeAPI")
		}

		entry, err = c.fetch(ctx, key)
		if err != nil {
			pageLoadsTotal.WithLabelValues("error").Inc()
			logger.Error().Err(err).Msg("Page load failed")
			c.clearPending(gen)
			return nil, fmt.Errorf("%w: page %d: %w", ErrLoadFailed, page, err)
		}
		source = SourceRemote
	}

	total := entry.TotalPages(c.config.Limit)
	if total > 0 && page > total {
		pageLoadsTotal.WithLabelValues("out_of_range").Inc()
		logger.Debug().Int("total_pages", total).Msg("Requested page past the last page")
		c.clearPending(gen)
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, total)
	}

	if source == SourceRemote {
		if err := c.store.Add(ctx, key, entry); err != nil && !errors.Is(err, cache.ErrEntryExists) {
			logger.Warn().Err(err).Msg("Failed to cache page")
		}
	}

	result := &LoadResult{
		Page:       page,
		Entries:    entry.Results,
		TotalPages: total,
		Source:     source,
		Generation: gen,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		pageLoadsTotal.WithLabelValues("superseded").Inc()
		logger.Debug().
			Uint64("latest_generation", c.generation).
			Msg("Discarding superseded page load")
		return result, ErrSuperseded
	}

	c.currentPage = page
	c.totalPages = result.TotalPages
	c.entries = slices.Clone(result.Entries)
	c.loaded = true
	c.pendingPage = 0

	pageLoadsTotal.WithLabelValues(string(source)).Inc()
	logger.Debug().
		Bool("cache_hit", source == SourceCache).
		Int("total_pages", result.TotalPages).
		Int("entries", len(result.Entries)).
		Msg("Page loaded")

	return result, nil
}

func (c *Controller) fetch(ctx context.Context, key cache.PageKey) (*cache.PageEntry, error) {
	page, err := c.fetcher.FetchPage(ctx, key.Offset, key.Limit)
	if err != nil {
		return nil, err
	}

	return &cache.PageEntry{
		Results:  page.Results,
		Count:    page.Count,
		CachedAt: time.Now(),
	}, nil
}

func (c *Controller) clearPending(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.generation {
		c.pendingPage = 0
	}
}

// SetPage loads newPage if it lies within [1, TotalPages]. Out-of-range
// requests are ignored and return (nil, nil).
func (c *Controller) SetPage(ctx context.Context, newPage int) (*LoadResult, error) {
	c.mu.Lock()
	total := c.totalPages
	c.mu.Unlock()

	if newPage < 1 || newPage > total {
		c.logger.Debug().
			Int("page", newPage).
			Int("total_pages", total).
			Msg("Ignoring out-of-range page change")
		return nil, nil
	}

	return c.LoadPage(ctx, newPage)
}

// Next moves one page forward. Ignored on the last page.
func (c *Controller) Next(ctx context.Context) (*LoadResult, error) {
	return c.SetPage(ctx, c.CurrentPage()+1)
}

// Previous moves one page back. Ignored on the first page.
func (c *Controller) Previous(ctx context.Context) (*LoadResult, error) {
	return c.SetPage(ctx, c.CurrentPage()-1)
}

// SetSearchTerm updates the filter applied to the current page. No fetch.
func (c *Controller) SetSearchTerm(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.term = term
}

// VisibleEntries returns the current page's entries whose name contains the
// search term, ignoring case, in remote order.
func (c *Controller) VisibleEntries() []catalog.Entry {
	c.mu.Lock()
	entries := c.entries
	term := c.term
	c.mu.Unlock()

	return Filter(entries, term)
}

// PaginationWindow returns up to maxButtons page numbers centered on the
// current page. A non-positive maxButtons uses the configured default.
func (c *Controller) PaginationWindow(maxButtons int) []int {
	if maxButtons <= 0 {
		maxButtons = c.config.MaxButtons
	}

	c.mu.Lock()
	current, total := c.currentPage, c.totalPages
	c.mu.Unlock()

	return Window(current, total, maxButtons)
}

// CurrentPage returns the page on display.
func (c *Controller) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentPage
}

// TotalPages returns the last known page count (0 before the first load).
func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages
}

// Limit returns the configured page size.
func (c *Controller) Limit() int {
	return c.config.Limit
}

// Snapshot returns the controller state for rendering.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		CurrentPage: c.currentPage,
		TotalPages:  c.totalPages,
		SearchTerm:  c.term,
		Loaded:      c.loaded,
		Loading:     c.pendingPage != 0,
		PendingPage: c.pendingPage,
		HasPrevious: c.currentPage > 1,
		HasNext:     c.currentPage < c.totalPages,
	}
}
