// Package config loads pokedex settings from the environment and an optional
// YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Sternrassler/pokedex-client/pkg/client"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/Sternrassler/pokedex-client/pkg/pagestate"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the full application configuration.
type Config struct {
	BaseURL     string        `yaml:"base-url" env:"POKEAPI_BASE_URL" env-default:"https://pokeapi.co/api/v2" env-description:"PokeAPI v2 root URL"`
	UserAgent   string        `yaml:"user-agent" env:"POKEDEX_USER_AGENT" env-default:"pokedex-client/dev" env-description:"User-Agent sent to PokeAPI"`
	HTTPTimeout time.Duration `yaml:"http-timeout" env:"POKEDEX_HTTP_TIMEOUT" env-default:"15s" env-description:"Timeout for a single PokeAPI request"`

	PageLimit         int `yaml:"page-limit" env:"POKEDEX_PAGE_LIMIT" env-default:"20" env-description:"Entries per page"`
	MaxButtons        int `yaml:"max-buttons" env:"POKEDEX_MAX_BUTTONS" env-default:"3" env-description:"Page numbers shown in the pagination window"`
	DetailConcurrency int `yaml:"detail-concurrency" env:"POKEDEX_DETAIL_CONCURRENCY" env-default:"5" env-description:"Parallel detail fetches"`

	CacheBackend string `yaml:"cache-backend" env:"POKEDEX_CACHE_BACKEND" env-default:"memory" env-description:"Page cache backend: memory or redis"`
	RedisURL     string `yaml:"redis-url" env:"REDIS_URL" env-default:"redis://localhost:6379/0" env-description:"Redis connection URL for the redis backend"`

	Port     string `yaml:"port" env:"PORT" env-default:"3000" env-description:"HTTP port for pokedex serve"`
	Prefetch int    `yaml:"prefetch" env:"POKEDEX_PREFETCH" env-default:"0" env-description:"Pages to warm at server start (0 disables, -1 all)"`

	LogLevel  string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info" env-description:"Log level: debug, info, warn, error"`
	LogPretty bool   `yaml:"log-pretty" env:"LOG_PRETTY" env-default:"false" env-description:"Human-readable console logs"`
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse configuration from environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFile reads a YAML file and then applies environment overrides.
func LoadFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("read configuration %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("POKEAPI_BASE_URL must be an absolute http(s) URL (got %q)", c.BaseURL))
	}
	if c.UserAgent == "" {
		errs = append(errs, errors.New("POKEDEX_USER_AGENT is required"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("POKEDEX_HTTP_TIMEOUT must be > 0 (got %s)", c.HTTPTimeout))
	}
	if c.PageLimit <= 0 {
		errs = append(errs, fmt.Errorf("POKEDEX_PAGE_LIMIT must be > 0 (got %d)", c.PageLimit))
	}
	if c.MaxButtons <= 0 {
		errs = append(errs, fmt.Errorf("POKEDEX_MAX_BUTTONS must be > 0 (got %d)", c.MaxButtons))
	}
	if c.DetailConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("POKEDEX_DETAIL_CONCURRENCY must be > 0 (got %d)", c.DetailConcurrency))
	}

	switch c.CacheBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("POKEDEX_CACHE_BACKEND must be %q or %q (got %q)", BackendMemory, BackendRedis, c.CacheBackend))
	}

	if c.Prefetch < -1 {
		errs = append(errs, fmt.Errorf("POKEDEX_PREFETCH must be >= -1 (got %d)", c.Prefetch))
	}

	return errors.Join(errs...)
}

// ClientConfig returns the PokeAPI client settings.
func (c Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL:   c.BaseURL,
		UserAgent: c.UserAgent,
		Timeout:   c.HTTPTimeout,
	}
}

// PageStateConfig returns the page controller settings.
func (c Config) PageStateConfig() pagestate.Config {
	return pagestate.Config{
		Limit:      c.PageLimit,
		MaxButtons: c.MaxButtons,
	}
}

// LoggingConfig returns the logger settings writing to out.
func (c Config) LoggingConfig(out io.Writer) logging.Config {
	return logging.Config{
		Level:  logging.LogLevel(c.LogLevel),
		Pretty: c.LogPretty,
		Output: out,
	}
}

// Describe lists every environment variable with its default.
func Describe() (string, error) {
	header := "Environment variables:"
	return cleanenv.GetDescription(&Config{}, &header)
}
