package pagestate

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/Sternrassler/pokedex-client/pkg/catalog"
)

// Window computes the contiguous run of page numbers to offer as navigation.
// It holds min(maxButtons, total) pages, centered on current where possible
// and slid left when clamped at the last page.
func Window(current, total, maxButtons int) []int {
	if total <= 0 || maxButtons <= 0 {
		return nil
	}

	start := max(1, current-maxButtons/2)
	end := min(total, start+maxButtons-1)

	if end-start+1 < maxButtons {
		start = max(1, end-maxButtons+1)
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Filter returns the entries whose name contains term under Unicode case
// folding. Order is preserved; an empty term returns all entries.
func Filter(entries []catalog.Entry, term string) []catalog.Entry {
	if term == "" {
		out := make([]catalog.Entry, len(entries))
		copy(out, entries)
		return out
	}

	// A Caser is stateful; one per call.
	fold := cases.Fold()
	needle := fold.String(term)

	out := make([]catalog.Entry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(fold.String(e.Name), needle) {
			out = append(out, e)
		}
	}
	return out
}
