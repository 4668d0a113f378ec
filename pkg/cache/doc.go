// Package cache provides the session page cache for the PokeAPI catalog.
//
// A cache maps a PageKey (offset, limit) to the page's entries plus the
// remote total count observed when the page was fetched. Stores are
// insert-only: an entry, once added, is never replaced or evicted for the
// lifetime of the session. The catalog is small (about 56 pages of 20), so
// unbounded growth is accepted.
//
// # Basic Usage
//
//	store := cache.NewMemoryStore()
//
//	key := cache.NewPageKey(2, 20) // offset=20, limit=20
//
//	entry, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from PokeAPI, then
//		_ = store.Add(ctx, key, &cache.PageEntry{Results: page.Results, Count: page.Count})
//	}
//
// # Redis Backend
//
// RedisStore keeps the same contract on a shared Redis instance. Keys are
// namespaced by a per-session ULID and removed on Close, so a Redis-backed
// cache never outlives the process that created it:
//
//	store := cache.NewRedisStore(redisClient)
//	defer store.Close()
//
// # Metrics
//
//   - pokedex_cache_hits_total{layer} - Cache hits by store layer
//   - pokedex_cache_misses_total{layer} - Cache misses by store layer
//   - pokedex_cache_entries{layer} - Pages held by the store
//   - pokedex_cache_errors_total{operation} - Backend errors
package cache
