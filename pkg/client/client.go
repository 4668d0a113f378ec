// Package client provides the PokeAPI HTTP transport: catalog page fetches,
// per-item detail fetches, error classification and request metrics.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Sternrassler/pokedex-client/pkg/catalog"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
)

// DefaultBaseURL is the public PokeAPI v2 root.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Prometheus metrics for PokeAPI client operations.
var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeapi_requests_total",
		Help: "Total PokeAPI requests by endpoint and status",
	}, []string{"endpoint", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokeapi_request_duration_seconds",
		Help:    "PokeAPI request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	apiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeapi_errors_total",
		Help: "Total PokeAPI errors by class",
	}, []string{"class"})
)

// Client is the PokeAPI client.
// It implements catalog.PageFetcher and catalog.DetailFetcher.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	logger     zerolog.Logger

	// details collapses concurrent fetches of the same detail URL.
	details singleflight.Group
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root, e.g. "https://pokeapi.co/api/v2".
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout bounds a single HTTP request.
	Timeout time.Duration
}

// DefaultConfig returns a configuration for the public PokeAPI.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   15 * time.Second,
	}
}

// New creates a new PokeAPI client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: base,
		config:  cfg,
		logger:  logging.NewLogger("pokeapi-client"),
	}, nil
}

// Do performs an HTTP request, records metrics and classifies failures.
// Any network error or status >= 400 is returned as an *APIError; on success
// the caller owns the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	endpoint := endpointLabel(req.URL.Path)

	startTime := time.Now()
	defer func() {
		apiRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("Executing PokeAPI request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errClass := c.classifyError(nil, err)
		apiErrorsTotal.WithLabelValues(string(errClass)).Inc()
		apiRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, &APIError{
			ErrorClass: errClass,
			Message:    req.Method + " " + req.URL.Path,
			Err:        err,
		}
	}

	apiRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		errClass := c.classifyError(resp, nil)
		apiErrorsTotal.WithLabelValues(string(errClass)).Inc()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("PokeAPI request error")

		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	return resp, nil
}

// classifyError categorizes an error for observability and handling.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		c.logger.Debug().Str("class", string(ErrorClassNetwork)).Msg("Error classified")
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		c.logger.Debug().Str("class", string(ErrorClassClient)).Msg("Error classified")
		return ErrorClassClient
	case resp.StatusCode >= 500:
		c.logger.Debug().Str("class", string(ErrorClassServer)).Msg("Error classified")
		return ErrorClassServer
	default:
		return ""
	}
}

// Get performs a GET request to an endpoint below the base URL.
func (c *Client) Get(ctx context.Context, endpoint string) (*http.Response, error) {
	return c.getURL(ctx, c.baseURL.String()+"/"+strings.TrimLeft(endpoint, "/"))
}

func (c *Client) getURL(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// FetchPage fetches one page of the Pokémon catalog.
func (c *Client) FetchPage(ctx context.Context, offset, limit int) (*catalog.Page, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("invalid page request offset=%d limit=%d", offset, limit)
	}

	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	resp, err := c.Get(ctx, "/pokemon?"+query.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var page catalog.Page
	if err := decodeJSON(resp, &page); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("offset", offset).
		Int("limit", limit).
		Int("count", page.Count).
		Int("results", len(page.Results)).
		Msg("Fetched catalog page")

	return &page, nil
}

// detailDocument is the slice of the PokeAPI detail schema we decode.
type detailDocument struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
}

// FetchDetail fetches the detail document an entry URL points at.
// Concurrent calls for the same URL share one request; cancelling one caller
// does not fail the others.
func (c *Client) FetchDetail(ctx context.Context, rawURL string) (*catalog.Detail, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	// The shared request must outlive any single caller; each caller still
	// stops waiting when its own ctx is done.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.details.DoChan(rawURL, func() (interface{}, error) {
		resp, err := c.getURL(flightCtx, rawURL)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var doc detailDocument
		if err := decodeJSON(resp, &doc); err != nil {
			return nil, err
		}

		return &catalog.Detail{
			ID:        doc.ID,
			Name:      doc.Name,
			SpriteURL: doc.Sprites.FrontDefault,
		}, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	v, shared := res.Val, res.Shared

	if shared {
		c.logger.Debug().Str("url", rawURL).Msg("Detail fetch shared with in-flight request")
	}

	// Copy so callers sharing a flight do not alias each other.
	detail := *v.(*catalog.Detail)
	return &detail, nil
}

func decodeJSON(resp *http.Response, v any) error {
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(v); err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "decode response body",
			Err:        err,
		}
	}
	return nil
}

// endpointLabel collapses per-item paths so metric cardinality stays bounded:
// /api/v2/pokemon/25/ -> /pokemon/{id}, /api/v2/pokemon -> /pokemon.
func endpointLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if seg != "pokemon" {
			continue
		}
		if i+1 < len(segments) && segments[i+1] != "" {
			return "/pokemon/{id}"
		}
		return "/pokemon"
	}
	return "other"
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}
