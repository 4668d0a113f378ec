package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/pokedex-client/internal/testutil"
	"github.com/Sternrassler/pokedex-client/pkg/catalog"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	cfg := DefaultConfig("pokedex-test/1.0.0")
	cfg.BaseURL = baseURL
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			config:      DefaultConfig("TestApp/1.0.0"),
			expectError: false,
		},
		{
			name: "empty base url",
			config: Config{
				UserAgent: "TestApp/1.0.0",
				Timeout:   time.Second,
			},
			expectError: true,
			errorMsg:    "base url is required",
		},
		{
			name: "non-http base url",
			config: Config{
				BaseURL:   "ftp://pokeapi.co/api/v2",
				UserAgent: "TestApp/1.0.0",
				Timeout:   time.Second,
			},
			expectError: true,
			errorMsg:    `base url must be http or https (got "ftp://pokeapi.co/api/v2")`,
		},
		{
			name: "empty user agent",
			config: Config{
				BaseURL: DefaultBaseURL,
				Timeout: time.Second,
			},
			expectError: true,
			errorMsg:    "user-agent is required",
		},
		{
			name: "zero timeout",
			config: Config{
				BaseURL:   DefaultBaseURL,
				UserAgent: "TestApp/1.0.0",
			},
			expectError: true,
			errorMsg:    "timeout must be > 0 (got 0s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
					return
				}
				if client == nil {
					t.Error("Client is nil")
				}
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("TestApp/1.0.0")

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.UserAgent != "TestApp/1.0.0" {
		t.Errorf("UserAgent = %q, want %q", cfg.UserAgent, "TestApp/1.0.0")
	}
	if cfg.Timeout <= 0 {
		t.Errorf("Timeout = %s, should be > 0", cfg.Timeout)
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := newTestClient(t, "https://pokeapi.co/api/v2/")
	if c.BaseURL() != "https://pokeapi.co/api/v2" {
		t.Errorf("BaseURL() = %q", c.BaseURL())
	}
}

func TestClassifyError(t *testing.T) {
	client := &Client{logger: zerolog.Nop()}

	tests := []struct {
		name       string
		statusCode int
		err        error
		expected   ErrorClass
	}{
		{name: "network error", err: context.DeadlineExceeded, expected: ErrorClassNetwork},
		{name: "client error 404", statusCode: 404, expected: ErrorClassClient},
		{name: "client error 429", statusCode: 429, expected: ErrorClassClient},
		{name: "server error 500", statusCode: 500, expected: ErrorClassServer},
		{name: "server error 503", statusCode: 503, expected: ErrorClassServer},
		{name: "success 200", statusCode: 200, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			if tt.statusCode > 0 {
				resp = &http.Response{StatusCode: tt.statusCode}
			}

			if got := client.classifyError(resp, tt.err); got != tt.expected {
				t.Errorf("classifyError() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestEndpointLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/api/v2/pokemon", want: "/pokemon"},
		{path: "/api/v2/pokemon/", want: "/pokemon"},
		{path: "/api/v2/pokemon/25/", want: "/pokemon/{id}"},
		{path: "/api/v2/pokemon/pikachu", want: "/pokemon/{id}"},
		{path: "/api/v2/berry", want: "other"},
	}

	for _, tt := range tests {
		if got := endpointLabel(tt.path); got != tt.want {
			t.Errorf("endpointLabel(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFetchPage(t *testing.T) {
	mock := testutil.NewMockPokeAPI(45)
	defer mock.Close()
	c := newTestClient(t, mock.URL())

	page, err := c.FetchPage(context.Background(), 40, 20)
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}

	if page.Count != 45 {
		t.Errorf("Count = %d, want 45", page.Count)
	}
	if len(page.Results) != 5 {
		t.Fatalf("len(Results) = %d, want 5", len(page.Results))
	}
	if page.Results[0].Name != "pokemon-0041" {
		t.Errorf("Results[0].Name = %q, want pokemon-0041", page.Results[0].Name)
	}
	if page.Results[0].URL != mock.EntryURL("pokemon-0041") {
		t.Errorf("Results[0].URL = %q", page.Results[0].URL)
	}
	if got := mock.GetPageRequestCount(40, 20); got != 1 {
		t.Errorf("page requests = %d, want 1", got)
	}
}

func TestFetchPage_InvalidArguments(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")

	if _, err := c.FetchPage(context.Background(), -1, 20); err == nil {
		t.Error("expected error for negative offset")
	}
	if _, err := c.FetchPage(context.Background(), 0, 0); err == nil {
		t.Error("expected error for zero limit")
	}
}

func TestFetchPage_ServerError(t *testing.T) {
	mock := testutil.NewMockPokeAPI(10)
	defer mock.Close()
	mock.SetFailure(http.StatusServiceUnavailable)
	c := newTestClient(t, mock.URL())

	_, err := c.FetchPage(context.Background(), 0, 20)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", apiErr.StatusCode)
	}
	if apiErr.ErrorClass != ErrorClassServer {
		t.Errorf("ErrorClass = %q, want server", apiErr.ErrorClass)
	}
}

func TestFetchPage_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := newTestClient(t, url)
	_, err := c.FetchPage(context.Background(), 0, 20)

	if ClassOf(err) != ErrorClassNetwork {
		t.Errorf("ClassOf(err) = %q, want network (err = %v)", ClassOf(err), err)
	}
}

func TestFetchPage_DecodeError(t *testing.T) {
	mock := testutil.NewMockPokeAPI(1)
	defer mock.Close()
	mock.SetHandler("/api/v2/pokemon", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<html>not json</html>`))
	})
	c := newTestClient(t, mock.URL())

	_, err := c.FetchPage(context.Background(), 0, 20)
	if ClassOf(err) != ErrorClassDecode {
		t.Errorf("ClassOf(err) = %q, want decode", ClassOf(err))
	}
}

func TestDo_UserAgentSet(t *testing.T) {
	mock := testutil.NewMockPokeAPI(3)
	defer mock.Close()
	c := newTestClient(t, mock.URL())

	if _, err := c.FetchPage(context.Background(), 0, 20); err != nil {
		t.Fatalf("FetchPage() failed: %v", err)
	}

	if got := mock.LastRequestHeader.Get("User-Agent"); got != "pokedex-test/1.0.0" {
		t.Errorf("User-Agent = %q, want %q", got, "pokedex-test/1.0.0")
	}
	if got := mock.LastRequestHeader.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q, want application/json", got)
	}
}

func TestFetchDetail(t *testing.T) {
	mock := testutil.NewMockPokeAPIWithNames([]string{"bulbasaur", "ivysaur"})
	defer mock.Close()
	c := newTestClient(t, mock.URL())

	detail, err := c.FetchDetail(context.Background(), mock.EntryURL("ivysaur"))
	if err != nil {
		t.Fatalf("FetchDetail() error = %v", err)
	}

	if detail.ID != 2 || detail.Name != "ivysaur" {
		t.Errorf("detail = %+v, want id 2 ivysaur", detail)
	}
	if detail.SpriteURL != "https://sprites.example/2.png" {
		t.Errorf("SpriteURL = %q", detail.SpriteURL)
	}
}

func TestFetchDetail_NotFound(t *testing.T) {
	mock := testutil.NewMockPokeAPIWithNames([]string{"bulbasaur"})
	defer mock.Close()
	c := newTestClient(t, mock.URL())

	_, err := c.FetchDetail(context.Background(), mock.EntryURL("missingno"))
	if ClassOf(err) != ErrorClassClient {
		t.Errorf("ClassOf(err) = %q, want client", ClassOf(err))
	}
}

func TestFetchDetail_InvalidURL(t *testing.T) {
	c := newTestClient(t, DefaultBaseURL)

	for _, raw := range []string{"", "not a url", "file:///etc/passwd", "/pokemon/1/"} {
		if _, err := c.FetchDetail(context.Background(), raw); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("FetchDetail(%q) error = %v, want ErrInvalidURL", raw, err)
		}
	}
}

func TestFetchDetail_ConcurrentCallsShareRequest(t *testing.T) {
	mock := testutil.NewMockPokeAPIWithNames([]string{"pikachu"})
	defer mock.Close()

	release := make(chan struct{})
	mock.SetHandler("/api/v2/pokemon/pikachu/", func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": 25, "name": "pikachu", "sprites": {"front_default": "p.png"}}`))
	})
	c := newTestClient(t, mock.URL())

	var wg sync.WaitGroup
	details := make([]string, 5)
	for i := range details {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := c.FetchDetail(context.Background(), mock.EntryURL("pikachu"))
			if err == nil {
				details[i] = d.Name
			}
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, name := range details {
		if name != "pikachu" {
			t.Errorf("details[%d] = %q, want pikachu", i, name)
		}
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("server requests = %d, want 1", got)
	}
}

func TestFetchDetail_CancelledCallerDoesNotFailSharedRequest(t *testing.T) {
	mock := testutil.NewMockPokeAPIWithNames([]string{"eevee"})
	defer mock.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	mock.SetHandler("/api/v2/pokemon/eevee/", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": 133, "name": "eevee", "sprites": {"front_default": "e.png"}}`))
	})
	c := newTestClient(t, mock.URL())

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.FetchDetail(ctx, mock.EntryURL("eevee"))
		firstErr <- err
	}()
	<-started

	type outcome struct {
		detail *catalog.Detail
		err    error
	}
	second := make(chan outcome, 1)
	go func() {
		d, err := c.FetchDetail(context.Background(), mock.EntryURL("eevee"))
		second <- outcome{d, err}
	}()

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller error = %v, want context.Canceled", err)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	got := <-second
	if got.err != nil {
		t.Fatalf("second caller error = %v", got.err)
	}
	if got.detail.Name != "eevee" {
		t.Errorf("second caller detail = %+v, want eevee", got.detail)
	}
	if n := mock.GetRequestCount(); n != 1 {
		t.Errorf("server requests = %d, want 1", n)
	}
}
