package web_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/pokedex-client/internal/testutil"
	"github.com/Sternrassler/pokedex-client/internal/web"
	"github.com/Sternrassler/pokedex-client/pkg/cache"
	"github.com/Sternrassler/pokedex-client/pkg/catalog"
	"github.com/Sternrassler/pokedex-client/pkg/client"
	"github.com/Sternrassler/pokedex-client/pkg/pagestate"
)

func bootstrapApp(t *testing.T, mock *testutil.MockPokeAPI) (*fiber.App, cache.Store) {
	t.Helper()

	cfg := client.DefaultConfig("pokedex-test/1.0.0")
	cfg.BaseURL = mock.URL()
	c, err := client.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	store := cache.NewMemoryStore()
	app := web.New(c, c, store, web.Config{
		PageState:     pagestate.DefaultConfig(),
		DetailBaseURL: mock.URL(),
		Version:       "test",
	})
	return app, store
}

func get(t *testing.T, app *fiber.App, url string) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, url, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestGET_StatusCodes(t *testing.T) {
	mock := testutil.NewMockPokeAPI(45)
	defer mock.Close()
	app, _ := bootstrapApp(t, mock)

	var cases = []struct {
		name           string
		url            string
		expectedStatus int
	}{
		{"Health check", "/health", http.StatusOK},
		{"First page by default", "/api/pokemon", http.StatusOK},
		{"Last page", "/api/pokemon?page=3", http.StatusOK},
		{"Page beyond the last one", "/api/pokemon?page=4", http.StatusNotFound},
		{"Zero page", "/api/pokemon?page=0", http.StatusBadRequest},
		{"Non-numeric page", "/api/pokemon?page=two", http.StatusBadRequest},
		{"Metrics", "/metrics", http.StatusOK},
		{"Unknown route", "/api/berries", http.StatusNotFound},
	}

	for _, tcase := range cases {
		t.Run(tcase.name, func(t *testing.T) {
			resp, body := get(t, app, tcase.url)
			assert.Equal(t, tcase.expectedStatus, resp.StatusCode, string(body))
		})
	}
}

func TestListPokemon(t *testing.T) {
	mock := testutil.NewMockPokeAPI(45)
	defer mock.Close()
	app, _ := bootstrapApp(t, mock)

	resp, body := get(t, app, "/api/pokemon?page=2")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var page web.PageResponse
	require.NoError(t, json.Unmarshal(body, &page))

	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Results, 20)
	assert.Equal(t, "pokemon-0021", page.Results[0].Name)
	assert.Equal(t, []int{1, 2, 3}, page.Pagination)
	assert.True(t, page.HasPrevious)
	assert.True(t, page.HasNext)
	assert.Equal(t, "remote", page.Source)
}

func TestListPokemon_LastPage(t *testing.T) {
	mock := testutil.NewMockPokeAPI(45)
	defer mock.Close()
	app, _ := bootstrapApp(t, mock)

	_, body := get(t, app, "/api/pokemon?page=3")

	var page web.PageResponse
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Len(t, page.Results, 5)
	assert.False(t, page.HasNext)
}

func TestListPokemon_Search(t *testing.T) {
	mock := testutil.NewMockPokeAPIWithNames([]string{"bulbasaur", "charmander", "charmeleon", "squirtle", "Charizard"})
	defer mock.Close()
	app, _ := bootstrapApp(t, mock)

	_, body := get(t, app, "/api/pokemon?search=char")

	var page web.PageResponse
	require.NoError(t, json.Unmarshal(body, &page))

	names := make([]string, len(page.Results))
	for i, e := range page.Results {
		names[i] = e.Name
	}
	assert.Equal(t, []string{"charmander", "charmeleon", "Charizard"}, names)
	assert.Equal(t, "char", page.Search)
}

func TestListPokemon_SharedCache(t *testing.T) {
	mock := testutil.NewMockPokeAPI(45)
	defer mock.Close()
	app, store := bootstrapApp(t, mock)

	for i := 0; i < 3; i++ {
		resp, _ := get(t, app, "/api/pokemon?page=2")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	assert.Equal(t, 1, mock.GetPageRequestCount(0, 20))
	assert.Equal(t, 1, mock.GetPageRequestCount(20, 20))

	_, body := get(t, app, "/health")
	var health web.HealthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 2, health.CachedPages)

	n, err := store.Len(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestListPokemon_UpstreamFailure(t *testing.T) {
	mock := testutil.NewMockPokeAPI(45)
	defer mock.Close()
	mock.SetFailure(http.StatusInternalServerError)
	app, store := bootstrapApp(t, mock)

	resp, body := get(t, app, "/api/pokemon")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(body), "page load failed")

	n, _ := store.Len(t.Context())
	assert.Equal(t, 0, n)
}

func TestPokemonDetail(t *testing.T) {
	mock := testutil.NewMockPokeAPIWithNames([]string{"bulbasaur", "ivysaur"})
	defer mock.Close()
	app, _ := bootstrapApp(t, mock)

	resp, body := get(t, app, "/api/pokemon/ivysaur")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var detail catalog.Detail
	require.NoError(t, json.Unmarshal(body, &detail))
	assert.Equal(t, 2, detail.ID)
	assert.Equal(t, "ivysaur", detail.Name)
	assert.Equal(t, "https://sprites.example/2.png", detail.SpriteURL)

	resp, _ = get(t, app, "/api/pokemon/missingno")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	mock := testutil.NewMockPokeAPI(5)
	defer mock.Close()
	app, _ := bootstrapApp(t, mock)

	get(t, app, "/api/pokemon")
	_, body := get(t, app, "/metrics")

	assert.Contains(t, string(body), "pokeapi_requests_total")
	assert.Contains(t, string(body), "pokedex_page_loads_total")
}
