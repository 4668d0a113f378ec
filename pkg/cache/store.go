package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrEntryExists indicates an Add for a key that is already cached.
	// Stores are insert-only; the existing entry is kept.
	ErrEntryExists = errors.New("cache entry already exists")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is an insert-only page cache.
type Store interface {
	// Get returns the cached page or ErrCacheMiss.
	Get(ctx context.Context, key PageKey) (*PageEntry, error)

	// Add inserts a page. Returns ErrEntryExists if the key is already cached.
	Add(ctx context.Context, key PageKey, entry *PageEntry) error

	// Len returns the number of cached pages.
	Len(ctx context.Context) (int, error)
}

// MemoryStore is a process-local Store.
// Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[PageKey]*PageEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[PageKey]*PageEntry),
	}
}

// Get retrieves a copy of the cached page.
func (s *MemoryStore) Get(_ context.Context, key PageKey) (*PageEntry, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		CacheMisses.WithLabelValues("memory").Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("memory").Inc()
	return entry.clone(), nil
}

// Add stores a copy of entry under key unless the key is already present.
func (s *MemoryStore) Add(_ context.Context, key PageKey, entry *PageEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	stored := entry.clone()
	if stored.CachedAt.IsZero() {
		stored.CachedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; exists {
		return ErrEntryExists
	}
	s.entries[key] = stored
	CacheEntries.WithLabelValues("memory").Inc()

	return nil
}

// Len returns the number of cached pages.
func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}
