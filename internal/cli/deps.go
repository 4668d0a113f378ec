package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/pokedex-client/internal/config"
	"github.com/Sternrassler/pokedex-client/pkg/cache"
	"github.com/Sternrassler/pokedex-client/pkg/client"
)

const redisPingTimeout = 5 * time.Second

func newClient(cfg config.Config) (*client.Client, error) {
	c, err := client.New(cfg.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("create PokeAPI client: %w", err)
	}
	return c, nil
}

// newStore opens the configured page store. The returned close function
// releases it; for Redis that also drops this session's pages.
func newStore(ctx context.Context, cfg config.Config) (cache.Store, func() error, error) {
	switch cfg.CacheBackend {
	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		redisClient := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			redisClient.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
		}

		store := cache.NewRedisStore(redisClient)
		logger.Info().
			Str("backend", config.BackendRedis).
			Str("addr", opts.Addr).
			Str("session", store.Session()).
			Msg("Page cache ready")

		return store, func() error {
			storeErr := store.Close()
			if err := redisClient.Close(); err != nil {
				return err
			}
			return storeErr
		}, nil

	case config.BackendMemory, "":
		logger.Debug().Str("backend", config.BackendMemory).Msg("Page cache ready")
		return cache.NewMemoryStore(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
