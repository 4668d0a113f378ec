// Package testutil provides testing utilities for the pokedex client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// apiPrefix mirrors the public PokeAPI path layout.
const apiPrefix = "/api/v2"

// MockPokeAPI is a configurable mock PokeAPI server for testing.
// It serves a synthetic catalog at /api/v2/pokemon and detail documents at
// /api/v2/pokemon/{name}/.
type MockPokeAPI struct {
	server *httptest.Server
	mu     sync.RWMutex

	names       []string
	count       int // reported total; defaults to len(names)
	failStatus  int
	delays      map[int]time.Duration // by offset
	handlers    map[string]http.HandlerFunc
	pageCounts  map[string]int
	detailCount int

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockPokeAPI creates a mock server whose catalog holds n generated
// names ("pokemon-0001" ...).
func NewMockPokeAPI(n int) *MockPokeAPI {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("pokemon-%04d", i+1)
	}
	return NewMockPokeAPIWithNames(names)
}

// NewMockPokeAPIWithNames creates a mock server serving exactly names.
func NewMockPokeAPIWithNames(names []string) *MockPokeAPI {
	mock := &MockPokeAPI{
		names:      names,
		count:      len(names),
		delays:     make(map[int]time.Duration),
		handlers:   make(map[string]http.HandlerFunc),
		pageCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		handler, exists := mock.handlers[r.URL.Path]
		failStatus := mock.failStatus
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		if failStatus != 0 {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(failStatus)
			w.Write([]byte(`{"error": "injected failure"}`))
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the API root of the mock server (with the /api/v2 prefix).
func (m *MockPokeAPI) URL() string {
	return m.server.URL + apiPrefix
}

// Close shuts down the mock server.
func (m *MockPokeAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockPokeAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.detailCount = 0
	m.pageCounts = make(map[string]int)
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockPokeAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetFailure makes every request answer with status. Zero clears it.
func (m *MockPokeAPI) SetFailure(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failStatus = status
}

// SetCount overrides the reported total count (simulates a drifting dataset).
func (m *MockPokeAPI) SetCount(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count = count
}

// SetDelay delays list responses for the page starting at offset.
func (m *MockPokeAPI) SetDelay(offset int, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[offset] = d
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockPokeAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetPageRequestCount returns how often the page (offset, limit) was requested.
func (m *MockPokeAPI) GetPageRequestCount(offset, limit int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pageCounts[pageKey(offset, limit)]
}

// GetDetailRequestCount returns the number of detail requests served.
func (m *MockPokeAPI) GetDetailRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.detailCount
}

// EntryURL returns the detail URL the mock advertises for name.
func (m *MockPokeAPI) EntryURL(name string) string {
	return m.URL() + "/pokemon/" + name + "/"
}

func pageKey(offset, limit int) string {
	return fmt.Sprintf("%d-%d", offset, limit)
}

// defaultHandler routes list and detail requests.
func (m *MockPokeAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	path := strings.TrimPrefix(r.URL.Path, apiPrefix)
	switch {
	case path == "/pokemon" || path == "/pokemon/":
		m.listHandler(w, r)
	case strings.HasPrefix(path, "/pokemon/"):
		m.detailHandler(w, strings.Trim(strings.TrimPrefix(path, "/pokemon/"), "/"))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Not found."}`))
	}
}

func (m *MockPokeAPI) listHandler(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	m.mu.Lock()
	m.pageCounts[pageKey(offset, limit)]++
	delay := m.delays[offset]
	count := m.count
	names := m.names
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	type result struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	results := []result{}
	for i := offset; i < offset+limit && i < len(names); i++ {
		if i < 0 {
			continue
		}
		results = append(results, result{Name: names[i], URL: m.EntryURL(names[i])})
	}

	body := map[string]any{
		"count":    count,
		"next":     nil,
		"previous": nil,
		"results":  results,
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(body)
}

func (m *MockPokeAPI) detailHandler(w http.ResponseWriter, name string) {
	m.mu.Lock()
	m.detailCount++
	names := m.names
	m.mu.Unlock()

	for i, n := range names {
		if n != name {
			continue
		}
		id := i + 1
		body := map[string]any{
			"id":   id,
			"name": name,
			"sprites": map[string]any{
				"front_default": fmt.Sprintf("https://sprites.example/%d.png", id),
			},
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(body)
		return
	}

	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"detail": "Not found."}`))
}
