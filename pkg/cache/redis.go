package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// redisScanCount is the SCAN batch size used when counting or clearing keys.
const redisScanCount = 100

// RedisStore is a Store backed by Redis.
// Keys live under pokedex:<session>: and are deleted on Close.
type RedisStore struct {
	redis   *redis.Client
	session string
}

// NewRedisStore creates a store in a fresh session namespace.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis:   redisClient,
		session: ulid.Make().String(),
	}
}

// Session returns the session id namespacing this store's keys.
func (s *RedisStore) Session() string {
	return s.session
}

func (s *RedisStore) redisKey(key PageKey) string {
	return s.prefix() + key.String()
}

func (s *RedisStore) prefix() string {
	return "pokedex:" + s.session + ":"
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist.
func (s *RedisStore) Get(ctx context.Context, key PageKey) (*PageEntry, error) {
	data, err := s.redis.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.WithLabelValues("redis").Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry PageEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	CacheHits.WithLabelValues("redis").Inc()
	return &entry, nil
}

// Add stores the entry with SETNX and no expiry.
func (s *RedisStore) Add(ctx context.Context, key PageKey, entry *PageEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	stored := entry.clone()
	if stored.CachedAt.IsZero() {
		stored.CachedAt = time.Now()
	}

	data, err := json.Marshal(stored)
	if err != nil {
		CacheErrors.WithLabelValues("add").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	added, err := s.redis.SetNX(ctx, s.redisKey(key), data, 0).Result()
	if err != nil {
		CacheErrors.WithLabelValues("add").Inc()
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !added {
		return ErrEntryExists
	}

	CacheEntries.WithLabelValues("redis").Inc()
	return nil
}

// Len counts the session's keys.
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	n := 0
	err := s.scan(ctx, func(keys []string) error {
		n += len(keys)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Close removes every key of the session. The Redis client itself is owned
// by the caller and stays open.
func (s *RedisStore) Close() error {
	ctx := context.Background()
	removed := 0
	err := s.scan(ctx, func(keys []string) error {
		if err := s.redis.Del(ctx, keys...).Err(); err != nil {
			CacheErrors.WithLabelValues("delete").Inc()
			return fmt.Errorf("redis del: %w", err)
		}
		removed += len(keys)
		return nil
	})
	CacheEntries.WithLabelValues("redis").Sub(float64(removed))
	return err
}

func (s *RedisStore) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, s.prefix()+"*", redisScanCount).Result()
		if err != nil {
			CacheErrors.WithLabelValues("scan").Inc()
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
