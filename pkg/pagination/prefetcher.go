package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/pokedex-client/pkg/cache"
	"github.com/Sternrassler/pokedex-client/pkg/catalog"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
)

var prefetchPagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pokedex_prefetch_pages_total",
	Help: "Pages handled by the prefetcher by result (fetched, skipped, failed)",
}, []string{"result"})

// Config holds prefetcher configuration.
type Config struct {
	// MaxConcurrency is the maximum number of parallel page fetches.
	MaxConcurrency int

	// Timeout per page fetch.
	Timeout time.Duration

	// Limit is the page size; it must match the controllers reading the store.
	Limit int
}

// DefaultConfig returns a configuration gentle enough for the public PokeAPI.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
		Limit:          catalog.DefaultLimit,
	}
}

// PageResult is the outcome of warming one page.
type PageResult struct {
	Page    int
	Skipped bool
	Err     error
}

// Summary reports what a Warm call did.
type Summary struct {
	TotalPages int
	Requested  int
	Fetched    int
	Skipped    int
	Failed     int
	Duration   time.Duration
}

// Prefetcher fills a page store ahead of demand.
type Prefetcher struct {
	fetcher catalog.PageFetcher
	store   cache.Store
	config  Config
	logger  zerolog.Logger
}

// NewPrefetcher creates a new prefetcher. Non-positive config values fall
// back to the defaults.
func NewPrefetcher(fetcher catalog.PageFetcher, store cache.Store, config Config) *Prefetcher {
	defaults := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.Limit <= 0 {
		config.Limit = defaults.Limit
	}

	return &Prefetcher{
		fetcher: fetcher,
		store:   store,
		config:  config,
		logger:  logging.NewLogger("prefetcher"),
	}
}

// Warm makes sure the first pages are cached. pages <= 0 means every page.
// Individual page failures do not stop the run; they are counted and the
// first one is returned wrapped once all workers are done.
func (p *Prefetcher) Warm(ctx context.Context, pages int) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	first := p.warmPage(ctx, 1)
	if first.Err != nil {
		return nil, fmt.Errorf("failed to warm first page: %w", first.Err)
	}
	p.count(summary, first)

	entry, err := p.store.Get(ctx, cache.NewPageKey(1, p.config.Limit))
	if err != nil {
		return nil, fmt.Errorf("read first page: %w", err)
	}

	summary.TotalPages = entry.TotalPages(p.config.Limit)
	summary.Requested = summary.TotalPages
	if pages > 0 && pages < summary.TotalPages {
		summary.Requested = pages
	}

	p.logger.Info().
		Int("total_pages", summary.TotalPages).
		Int("requested", summary.Requested).
		Int("workers", p.config.MaxConcurrency).
		Msg("Starting page prefetch")

	if summary.Requested > 1 {
		pageQueue := make(chan int, summary.Requested-1)
		for page := 2; page <= summary.Requested; page++ {
			pageQueue <- page
		}
		close(pageQueue)

		results := make(chan PageResult, summary.Requested-1)

		var wg sync.WaitGroup
		for i := 0; i < p.config.MaxConcurrency; i++ {
			wg.Add(1)
			go p.worker(ctx, pageQueue, results, &wg, i)
		}

		go func() {
			wg.Wait()
			close(results)
		}()

		var firstErr error
		for result := range results {
			p.count(summary, result)
			if result.Err != nil && firstErr == nil {
				firstErr = result.Err
			}
		}

		if err := ctx.Err(); err != nil && firstErr == nil {
			firstErr = err
		}

		if firstErr != nil {
			summary.Duration = time.Since(start)
			p.logger.Warn().
				Err(firstErr).
				Int("failed", summary.Failed).
				Int("requested", summary.Requested).
				Msg("Prefetch incomplete")
			return summary, fmt.Errorf("prefetch incomplete (%d/%d pages failed): %w",
				summary.Failed, summary.Requested, firstErr)
		}
	}

	summary.Duration = time.Since(start)
	p.logger.Info().
		Int("fetched", summary.Fetched).
		Int("skipped", summary.Skipped).
		Dur("duration", summary.Duration).
		Msg("Prefetch complete")

	return summary, nil
}

func (p *Prefetcher) count(summary *Summary, result PageResult) {
	switch {
	case result.Err != nil:
		summary.Failed++
		prefetchPagesTotal.WithLabelValues("failed").Inc()
	case result.Skipped:
		summary.Skipped++
		prefetchPagesTotal.WithLabelValues("skipped").Inc()
	default:
		summary.Fetched++
		prefetchPagesTotal.WithLabelValues("fetched").Inc()
	}
}

// worker processes pages from the queue.
func (p *Prefetcher) worker(ctx context.Context, pageQueue <-chan int, results chan<- PageResult, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	pagesProcessed := 0

	for page := range pageQueue {
		select {
		case <-ctx.Done():
			p.logger.Debug().
				Int("worker_id", workerID).
				Int("pages_processed", pagesProcessed).
				Msg("Worker stopping (context cancelled)")
			return
		default:
		}

		results <- p.warmPage(ctx, page)
		pagesProcessed++
	}

	if pagesProcessed > 0 {
		p.logger.Debug().
			Int("worker_id", workerID).
			Int("pages_processed", pagesProcessed).
			Msg("Worker completed")
	}
}

// warmPage fetches and stores one page unless it is already cached.
func (p *Prefetcher) warmPage(ctx context.Context, page int) PageResult {
	key := cache.NewPageKey(page, p.config.Limit)
	logger := logging.WithPage(p.logger, page, key.Offset, key.Limit)

	if _, err := p.store.Get(ctx, key); err == nil {
		return PageResult{Page: page, Skipped: true}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn().Err(err).Msg("Cache read failed during prefetch")
	}

	pageCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	fetched, err := p.fetcher.FetchPage(pageCtx, key.Offset, key.Limit)
	if err != nil {
		logger.Warn().Err(err).Msg("Page fetch failed")
		return PageResult{Page: page, Err: err}
	}

	err = p.store.Add(ctx, key, &cache.PageEntry{
		Results:  fetched.Results,
		Count:    fetched.Count,
		CachedAt: time.Now(),
	})
	switch {
	case errors.Is(err, cache.ErrEntryExists):
		return PageResult{Page: page, Skipped: true}
	case err != nil:
		return PageResult{Page: page, Err: fmt.Errorf("store page %d: %w", page, err)}
	}

	return PageResult{Page: page}
}
