package cache

import (
	"fmt"

	"github.com/Sternrassler/pokedex-client/pkg/catalog"
)

// keyPrefix namespaces page keys by API and resource.
const keyPrefix = "pokeapi:pokemon"

// PageKey identifies one fetched page of the catalog.
type PageKey struct {
	Offset int
	Limit  int
}

// NewPageKey returns the key of a 1-based page at the given limit.
func NewPageKey(page, limit int) PageKey {
	return PageKey{
		Offset: catalog.Offset(page, limit),
		Limit:  limit,
	}
}

// String generates a deterministic cache key string.
// Format: pokeapi:pokemon:offset=20:limit=20
func (k PageKey) String() string {
	return fmt.Sprintf("%s:offset=%d:limit=%d", keyPrefix, k.Offset, k.Limit)
}

// Page returns the 1-based page number the key addresses.
// Returns 0 for a key with a non-positive limit.
func (k PageKey) Page() int {
	if k.Limit <= 0 {
		return 0
	}
	return k.Offset/k.Limit + 1
}
