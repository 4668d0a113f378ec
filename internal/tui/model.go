// Package tui implements the interactive Pokédex browser on top of a page
// state controller.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/pokedex-client/pkg/catalog"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/Sternrassler/pokedex-client/pkg/pagestate"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// ViewState is the screen the browser shows.
type ViewState int

const (
	ViewStateList ViewState = iota
	ViewStateDetail
	ViewStateQuitting
)

// PageLoadedMsg carries the outcome of a page change.
type PageLoadedMsg struct {
	Page   int
	Result *pagestate.LoadResult
	Err    error
}

// DetailLoadedMsg carries a fetched detail document.
type DetailLoadedMsg struct {
	URL    string
	Detail *catalog.Detail
	Err    error
}

// Model is the Bubble Tea model for the browser.
//
// The controller is the source of truth for paging and search; the model
// only tracks cursor, focus and the detail pane.
type Model struct {
	ctx        context.Context
	controller *pagestate.Controller
	details    catalog.DetailFetcher
	maxButtons int
	logger     zerolog.Logger

	state     ViewState
	textInput textinput.Model
	searching bool
	cursor    int

	selected      catalog.Entry
	detail        *catalog.Detail
	detailErr     error
	detailLoading bool

	width  int
	height int

	err error
}

// New creates a browser model. details may be nil, in which case the detail
// pane only shows the entry itself.
func New(ctx context.Context, controller *pagestate.Controller, details catalog.DetailFetcher, maxButtons int) Model {
	return Model{
		ctx:        ctx,
		controller: controller,
		details:    details,
		maxButtons: maxButtons,
		logger:     logging.NewLogger("tui"),
		state:      ViewStateList,
		textInput:  newSearchInput(),
		width:      defaultWidth,
		height:     defaultHeight,
	}
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "search this page"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	return ti
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return m.loadPage(1)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case PageLoadedMsg:
		return m.handlePageLoaded(msg), nil
	case DetailLoadedMsg:
		return m.handleDetailLoaded(msg), nil
	}

	if m.searching {
		return m.handleSearchInput(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch m.state {
	case ViewStateList:
		return m.handleListKeypress(keyMsg)
	case ViewStateDetail:
		return m.handleDetailKeypress(keyMsg)
	default:
		return m, nil
	}
}

func (m Model) handlePageLoaded(msg PageLoadedMsg) Model {
	switch {
	case msg.Result == nil && msg.Err == nil:
		// Out-of-range page change; nothing happened.
	case errors.Is(msg.Err, pagestate.ErrSuperseded):
		m.logger.Debug().Int("page", msg.Page).Msg("Ignoring superseded page")
	case msg.Err != nil:
		m.err = msg.Err
	default:
		m.err = nil
		m.cursor = 0
	}
	return m
}

func (m Model) handleDetailLoaded(msg DetailLoadedMsg) Model {
	// The user may have moved on to another entry.
	if msg.URL != m.selected.URL {
		return m
	}
	m.detailLoading = false
	m.detail = msg.Detail
	m.detailErr = msg.Err
	return m
}

func (m Model) handleSearchInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyCtrlC:
			m.state = ViewStateQuitting
			return m, tea.Quit
		case keyEnter, keyEsc:
			m.searching = false
			m.textInput.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	m.controller.SetSearchTerm(m.textInput.Value())
	m.clampCursor()
	return m, cmd
}

func (m Model) handleListKeypress(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := keyMsg.String(); key {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keySlash:
		m.searching = true
		m.textInput.Focus()
		return m, textinput.Blink
	case keyEsc:
		if m.textInput.Value() != "" {
			m.textInput.SetValue("")
			m.controller.SetSearchTerm("")
			m.clampCursor()
		}
		return m, nil
	case keyLeft, keyH:
		return m, m.previousPage()
	case keyRight, keyL:
		return m, m.nextPage()
	case keyFirst:
		return m, m.setPage(1)
	case keyLast:
		return m, m.setPage(m.controller.TotalPages())
	case keyUp, keyK:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case keyDown, keyJ:
		if m.cursor < len(m.controller.VisibleEntries())-1 {
			m.cursor++
		}
		return m, nil
	case keyEnter:
		return m.openDetail()
	default:
		// Digits pick a button from the pagination window.
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			window := m.controller.PaginationWindow(m.maxButtons)
			if i := int(key[0] - '1'); i < len(window) {
				return m, m.setPage(window[i])
			}
		}
		return m, nil
	}
}

func (m Model) handleDetailKeypress(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keyMsg.String() {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyEsc, keyBackspace, keyEnter:
		m.state = ViewStateList
		m.detail = nil
		m.detailErr = nil
		m.detailLoading = false
		m.selected = catalog.Entry{}
		return m, nil
	}
	return m, nil
}

func (m Model) openDetail() (tea.Model, tea.Cmd) {
	entries := m.controller.VisibleEntries()
	if m.cursor < 0 || m.cursor >= len(entries) {
		return m, nil
	}

	m.state = ViewStateDetail
	m.selected = entries[m.cursor]
	m.detail = nil
	m.detailErr = nil

	if m.details == nil {
		return m, nil
	}
	m.detailLoading = true
	return m, m.fetchDetail(m.selected.URL)
}

func (m *Model) clampCursor() {
	n := len(m.controller.VisibleEntries())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) loadPage(page int) tea.Cmd {
	ctx, controller := m.ctx, m.controller
	return func() tea.Msg {
		result, err := controller.LoadPage(ctx, page)
		return PageLoadedMsg{Page: page, Result: result, Err: err}
	}
}

func (m Model) setPage(page int) tea.Cmd {
	ctx, controller := m.ctx, m.controller
	return func() tea.Msg {
		result, err := controller.SetPage(ctx, page)
		return PageLoadedMsg{Page: page, Result: result, Err: err}
	}
}

func (m Model) nextPage() tea.Cmd {
	return m.setPage(m.controller.CurrentPage() + 1)
}

func (m Model) previousPage() tea.Cmd {
	return m.setPage(m.controller.CurrentPage() - 1)
}

func (m Model) fetchDetail(url string) tea.Cmd {
	ctx, details := m.ctx, m.details
	return func() tea.Msg {
		detail, err := details.FetchDetail(ctx, url)
		return DetailLoadedMsg{URL: url, Detail: detail, Err: err}
	}
}

// State returns the current screen.
func (m Model) State() ViewState {
	return m.state
}

// Cursor returns the highlighted row on the current page.
func (m Model) Cursor() int {
	return m.cursor
}

// Err returns the last page load error, cleared by the next successful load.
func (m Model) Err() error {
	return m.err
}
