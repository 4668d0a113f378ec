// Package pagination warms the page store with catalog pages before they are
// requested.
//
// The catalog reports its total entry count on every page, so the first page
// determines how many pages exist. The remaining pages are distributed across
// a small worker pool; pages already present in the store are skipped, and
// because the store is insert-only a page warmed here is exactly the page a
// later load would have fetched.
//
// Example usage:
//
//	prefetcher := pagination.NewPrefetcher(pokeapiClient, store, pagination.DefaultConfig())
//	summary, err := prefetcher.Warm(ctx, 5)
//
// The prefetcher:
//   - Loads or fetches page 1 to learn the total page count
//   - Spawns a worker pool (default 4 workers)
//   - Skips pages that are already cached
//   - Keeps going past individual page failures and reports them in the summary
package pagination
