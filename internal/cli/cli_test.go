package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/pokedex-client/internal/cli"
	"github.com/Sternrassler/pokedex-client/internal/testutil"
)

type listResult struct {
	Page       int   `json:"page" yaml:"page"`
	TotalPages int   `json:"total_pages" yaml:"total_pages"`
	Pagination []int `json:"pagination" yaml:"pagination"`
	Results    []struct {
		Name      string `json:"name" yaml:"name"`
		URL       string `json:"url" yaml:"url"`
		ID        int    `json:"id" yaml:"id"`
		SpriteURL string `json:"sprite_url" yaml:"sprite_url"`
	} `json:"results" yaml:"results"`
}

// setupEnv points the CLI at a mock PokeAPI and keeps test output quiet.
func setupEnv(t *testing.T, mock *testutil.MockPokeAPI) {
	t.Helper()
	t.Setenv("POKEAPI_BASE_URL", mock.URL())
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("POKEDEX_CACHE_BACKEND", "memory")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestList_Table(t *testing.T) {
	mock := testutil.NewMockPokeAPI(45)
	defer mock.Close()
	setupEnv(t, mock)

	out, err := execute(t, "list", "--page", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "pokemon-0021")
	assert.Contains(t, out, "pokemon-0040")
	assert.NotContains(t, out, "pokemon-0041")
	assert.Contains(t, out, "Page 2 of 3")
	assert.Contains(t, out, "pages: 1 [2] 3")
}

func TestList_JSON(t *testing.T) {
	mock := testutil.NewMockPokeAPI(45)
	defer mock.Close()
	setupEnv(t, mock)

	out, err := execute(t, "list", "--page", "3", "--output", "json")
	require.NoError(t, err)

	var result listResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 3, result.Page)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, []int{1, 2, 3}, result.Pagination)
	require.Len(t, result.Results, 5)
	assert.Equal(t, "pokemon-0041", result.Results[0].Name)
	assert.Equal(t, mock.EntryURL("pokemon-0041"), result.Results[0].URL)
}

func TestList_YAML(t *testing.T) {
	mock := testutil.NewMockPokeAPI(45)
	defer mock.Close()
	setupEnv(t, mock)

	out, err := execute(t, "list", "-o", "yaml")
	require.NoError(t, err)

	var result listResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1, result.Page)
	assert.Len(t, result.Results, 20)
}

func TestList_SearchAndDetails(t *testing.T) {
	mock := testutil.NewMockPokeAPIWithNames([]string{"bulbasaur", "charmander", "squirtle", "charmeleon"})
	defer mock.Close()
	setupEnv(t, mock)

	out, err := execute(t, "list", "--search", "CHAR", "--details", "--output", "json")
	require.NoError(t, err)

	var result listResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Results, 2)
	assert.Equal(t, "charmander", result.Results[0].Name)
	assert.Equal(t, 2, result.Results[0].ID)
	assert.Equal(t, "charmeleon", result.Results[1].Name)
	assert.Equal(t, 4, result.Results[1].ID)
	assert.Equal(t, "https://sprites.example/4.png", result.Results[1].SpriteURL)
	assert.Equal(t, 2, mock.GetDetailRequestCount())
}

func TestList_SearchNoMatches(t *testing.T) {
	mock := testutil.NewMockPokeAPIWithNames([]string{"bulbasaur"})
	defer mock.Close()
	setupEnv(t, mock)

	out, err := execute(t, "list", "--search", "mew")
	require.NoError(t, err)
	assert.Contains(t, out, `No Pokémon on page 1 match "mew"`)
}

func TestList_Errors(t *testing.T) {
	mock := testutil.NewMockPokeAPI(45)
	defer mock.Close()
	setupEnv(t, mock)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "page beyond last", args: []string{"list", "--page", "4"}, wantErr: "out of range (1-3)"},
		{name: "zero page", args: []string{"list", "--page", "0"}, wantErr: "page must be >= 1"},
		{name: "unknown format", args: []string{"list", "--output", "xml"}, wantErr: "unsupported output format"},
		{name: "positional args", args: []string{"list", "pikachu"}, wantErr: "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestList_UpstreamFailure(t *testing.T) {
	mock := testutil.NewMockPokeAPI(45)
	defer mock.Close()
	mock.SetFailure(503)
	setupEnv(t, mock)

	_, err := execute(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page load failed")
}

func TestInvalidConfiguration(t *testing.T) {
	mock := testutil.NewMockPokeAPI(1)
	defer mock.Close()
	setupEnv(t, mock)
	t.Setenv("POKEDEX_CACHE_BACKEND", "disk")

	_, err := execute(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POKEDEX_CACHE_BACKEND")
}

func TestRedisBackendUnavailable(t *testing.T) {
	mock := testutil.NewMockPokeAPI(1)
	defer mock.Close()
	setupEnv(t, mock)
	t.Setenv("POKEDEX_CACHE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://127.0.0.1:1/0")

	_, err := execute(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestConfigFile(t *testing.T) {
	mock := testutil.NewMockPokeAPI(45)
	defer mock.Close()
	setupEnv(t, mock)

	path := filepath.Join(t.TempDir(), "pokedex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page-limit: 10\n"), 0o600))

	out, err := execute(t, "--config", path, "list", "--output", "json")
	require.NoError(t, err)

	var result listResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 5, result.TotalPages)
	assert.Len(t, result.Results, 10)
}

func TestLogFile(t *testing.T) {
	mock := testutil.NewMockPokeAPI(3)
	defer mock.Close()
	setupEnv(t, mock)

	path := filepath.Join(t.TempDir(), "pokedex.log")
	_, err := execute(t, "--debug", "--log-file", path, "list")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "command started")
	assert.Contains(t, string(data), `"component":"pagestate"`)
}

func TestBrowse_RequiresTerminal(t *testing.T) {
	mock := testutil.NewMockPokeAPI(1)
	defer mock.Close()
	setupEnv(t, mock)

	_, err := execute(t, "browse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestEnv(t *testing.T) {
	out, err := execute(t, "env")
	require.NoError(t, err)

	for _, name := range []string{"POKEAPI_BASE_URL", "POKEDEX_PAGE_LIMIT", "POKEDEX_CACHE_BACKEND", "REDIS_URL", "PORT"} {
		assert.Contains(t, out, name)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test")
}

func TestServeCmdFlags(t *testing.T) {
	cmd := cli.NewRootCmd("test")
	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	port := serve.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "string", port.Value.Type())
	assert.Contains(t, serve.Long, "/api/pokemon")
}
