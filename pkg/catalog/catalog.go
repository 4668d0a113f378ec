// Package catalog defines the PokeAPI catalog types and the collaborator
// interfaces used by the page state controller.
//
// The catalog endpoint is a paginated list of named references:
//
//	GET /api/v2/pokemon?offset=20&limit=20
//	{"count": 1118, "next": "...", "previous": "...", "results": [{"name": "...", "url": "..."}]}
//
// Each reference URL resolves to a detail document, fetched lazily per item.
package catalog

import (
	"context"
	"math"
)

const (
	// DefaultLimit is the number of entries requested per page.
	DefaultLimit = 20

	// DefaultMaxButtons is the number of page numbers shown in the pagination window.
	DefaultMaxButtons = 3
)

// Entry is a reference to one catalog item.
type Entry struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Page is one fetched slice of the remote catalog.
type Page struct {
	// Count is the authoritative total number of items in the remote catalog.
	Count int `json:"count"`

	// Next and Previous are the API's own navigation links (may be empty).
	Next     string `json:"next"`
	Previous string `json:"previous"`

	// Results holds the entries in remote order.
	Results []Entry `json:"results"`
}

// Detail is the subset of an item's detail document we render.
type Detail struct {
	ID        int    `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	SpriteURL string `json:"sprite_url" yaml:"sprite_url"`
}

// PageFetcher fetches one page of the catalog.
type PageFetcher interface {
	FetchPage(ctx context.Context, offset, limit int) (*Page, error)
}

// DetailFetcher resolves an entry URL into its detail document.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, url string) (*Detail, error)
}

// Offset returns the offset of a 1-based page for the given limit.
func Offset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}

// TotalPages returns ceil(count / limit). Returns 0 for an empty catalog or a
// non-positive limit.
func TotalPages(count, limit int) int {
	if count <= 0 || limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(count) / float64(limit)))
}
