package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/Sternrassler/pokedex-client/pkg/catalog"
	"github.com/Sternrassler/pokedex-client/pkg/pagestate"
)

// chromeLines is the number of rows used by everything except the list.
const chromeLines = 8

// View renders the current screen.
func (m Model) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateDetail:
		return m.renderDetail()
	default:
		return m.renderList()
	}
}

func (m Model) renderList() string {
	state := m.controller.Snapshot()
	var b strings.Builder

	b.WriteString(titleStyle.Render("Pokédex"))
	if state.Loaded {
		b.WriteString(labelStyle.Render(fmt.Sprintf("  page %d of %d", state.CurrentPage, state.TotalPages)))
	}
	b.WriteString("\n\n")

	if m.searching || m.textInput.Value() != "" {
		b.WriteString(m.textInput.View())
		b.WriteString("\n\n")
	}

	entries := m.controller.VisibleEntries()
	switch {
	case !state.Loaded && state.Loading:
		b.WriteString(mutedStyle.Render("Loading…"))
		b.WriteString("\n")
	case len(entries) == 0 && state.Loaded:
		b.WriteString(mutedStyle.Render(fmt.Sprintf("No Pokémon on this page match %q", state.SearchTerm)))
		b.WriteString("\n")
	default:
		b.WriteString(m.renderEntries(entries))
	}

	b.WriteString("\n")
	b.WriteString(RenderPagination(m.controller.PaginationWindow(m.maxButtons), state))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(truncate("Error: "+m.err.Error(), m.width)))
		b.WriteString("\n")
	case state.Loading && state.Loaded:
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Loading page %d…", state.PendingPage)))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.helpText()))
	return b.String()
}

func (m Model) renderEntries(entries []catalog.Entry) string {
	visible := max(1, m.height-chromeLines)
	from := 0
	if m.cursor >= visible {
		from = m.cursor - visible + 1
	}
	to := min(len(entries), from+visible)

	var b strings.Builder
	for i := from; i < to; i++ {
		name := truncate(entries[i].Name, m.width-4)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + name))
		} else {
			b.WriteString(entryStyle.Render("  " + name))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderPagination draws the previous/next controls around the page window,
// highlighting the current page.
func RenderPagination(window []int, state pagestate.State) string {
	if len(window) == 0 {
		return ""
	}

	parts := make([]string, 0, len(window)+2)
	if state.HasPrevious {
		parts = append(parts, pageStyle.Render("‹ prev"))
	} else {
		parts = append(parts, disabledStyle.Render("‹ prev"))
	}

	for _, p := range window {
		label := strconv.Itoa(p)
		if p == state.CurrentPage {
			parts = append(parts, activePageStyle.Render(label))
		} else {
			parts = append(parts, pageStyle.Render(label))
		}
	}

	if state.HasNext {
		parts = append(parts, pageStyle.Render("next ›"))
	} else {
		parts = append(parts, disabledStyle.Render("next ›"))
	}

	return strings.Join(parts, " ")
}

func (m Model) renderDetail() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.selected.Name))
	b.WriteString("\n\n")

	switch {
	case m.detailLoading:
		b.WriteString(mutedStyle.Render("Loading details…"))
	case m.detailErr != nil:
		b.WriteString(errorStyle.Render(truncate("Error: "+m.detailErr.Error(), m.width-6)))
	case m.detail != nil:
		b.WriteString(labelStyle.Render("ID      "))
		b.WriteString(entryStyle.Render(fmt.Sprintf("#%d", m.detail.ID)))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Sprite  "))
		b.WriteString(entryStyle.Render(truncate(m.detail.SpriteURL, m.width-14)))
	default:
		b.WriteString(labelStyle.Render("URL  "))
		b.WriteString(entryStyle.Render(truncate(m.selected.URL, m.width-11)))
	}

	return detailBoxStyle.Render(b.String()) + "\n" + helpStyle.Render("esc back • q quit")
}

func (m Model) helpText() string {
	if m.searching {
		return "type to filter • enter/esc done"
	}
	return "←/h prev • →/l next • 1-9 page • ↑/↓ move • enter details • / search • q quit"
}

// truncate shortens s to fit width terminal cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
