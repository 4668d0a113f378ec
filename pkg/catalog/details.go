package catalog

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/pokedex-client/pkg/logging"
)

// DefaultDetailConcurrency bounds parallel detail requests for one page.
const DefaultDetailConcurrency = 5

// DetailResult pairs an entry with its fetched detail or the error that
// prevented fetching it.
type DetailResult struct {
	Entry  Entry
	Detail *Detail
	Err    error
}

// FetchDetails resolves the details of every entry, at most concurrency at a
// time. Items are independent: a failed item is logged and reported in its
// DetailResult, the others still complete. Results keep the input order.
func FetchDetails(ctx context.Context, fetcher DetailFetcher, entries []Entry, concurrency int) []DetailResult {
	if concurrency <= 0 {
		concurrency = DefaultDetailConcurrency
	}

	logger := logging.NewLogger("catalog")
	results := make([]DetailResult, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, entry := range entries {
		g.Go(func() error {
			detail, err := fetcher.FetchDetail(gctx, entry.URL)
			if err != nil {
				logger.Warn().
					Err(err).
					Str("name", entry.Name).
					Str("url", entry.URL).
					Msg("Detail fetch failed")
			}
			results[i] = DetailResult{Entry: entry, Detail: detail, Err: err}
			return nil
		})
	}

	// Workers never return errors; per-item failures live in results.
	_ = g.Wait()

	return results
}
