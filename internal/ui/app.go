package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/docdesk/internal/api"
	"github.com/five82/docdesk/internal/notify"
	"github.com/five82/docdesk/internal/prefs"
	"github.com/five82/docdesk/internal/router"
	"github.com/five82/docdesk/internal/state"
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Backend    Backend
	Notices    *notify.Center
	Store      *state.Store
	Routes     *router.Table
	BaseURL    string
	PageSize   int
	Tick       time.Duration
	ThemeName  string
	SearchMode string
	PrefsPath  string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	backend   Backend
	notices   *notify.Center
	store     *state.Store
	routes    *router.Table
	baseURL   string
	prefsPath string
	pageSize  int
	tick      time.Duration

	theme    Theme
	keys     keyMap
	width    int
	height   int
	ready    bool
	showHelp bool

	route   router.Route
	history []string

	notice   notify.Record
	noticeCh <-chan notify.Record

	snapshot state.Snapshot
	loading  int
	status   string

	search searchState
	detail detailState
}

// New creates a new Bubble Tea model. The returned cancel func releases the
// notification subscription.
func New(opts Options) (Model, func()) {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	routes := opts.Routes
	if routes == nil {
		routes = router.New()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	mode := opts.SearchMode
	if mode == "" {
		mode = prefs.ModeList
	}

	m := Model{
		ctx:       ctx,
		backend:   opts.Backend,
		notices:   opts.Notices,
		store:     opts.Store,
		routes:    routes,
		baseURL:   opts.BaseURL,
		prefsPath: opts.PrefsPath,
		pageSize:  pageSize,
		tick:      tick,
		theme:     GetTheme(opts.ThemeName),
		keys:      DefaultKeyMap(),
		route:     routes.MustResolve(router.SearchPattern),
		search:    newSearchState(mode),
	}

	if opts.Backend != nil {
		m.loading = 1 // initial load issued by Init
	}

	cancel := func() {}
	if opts.Notices != nil {
		m.notice = opts.Notices.Current()
		m.noticeCh, cancel = opts.Notices.Subscribe()
	}
	return m, cancel
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.tick),
		waitForNotice(m.noticeCh),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.backend != nil {
		cmds = append(cmds, initialLoadCmd(m.ctx, m.backend, m.pageSize))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		var cmds []tea.Cmd
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		cmds = append(cmds, tickCmd(m.tick))
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case noticeMsg:
		m.notice = notify.Record(msg)
		return m, waitForNotice(m.noticeCh)

	case batchMsg:
		m.done()
		for _, inner := range msg {
			m = m.apply(inner)
		}
		return m, nil

	case tagsMsg, resultsMsg, detailMsg, failedMsg:
		m.done()
		return m.apply(msg), nil
	}

	if m.search.focus == focusInput {
		var cmd tea.Cmd
		m.search.input, cmd = m.search.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// apply folds a data message into the model.
func (m Model) apply(msg tea.Msg) Model {
	switch msg := msg.(type) {
	case tagsMsg:
		m.search.setTags(msg)
	case resultsMsg:
		m.search.setResults(msg)
	case detailMsg:
		if m.route.Name == router.Detail && m.route.Param("id") == msg.ID {
			doc := msg.Document
			m.detail.doc = &doc
			m.detail.render(m.theme, m.contentWidth())
		}
	case failedMsg:
		// API failures surface through the banner; anything else is a
		// payload we could not read.
		var apiErr *api.Error
		if errors.As(msg.Err, &apiErr) {
			m.status = ""
		} else {
			m.status = msg.Op + ": " + msg.Err.Error()
		}
		if msg.Op == "detail" && m.route.Name == router.Detail && m.route.Param("id") == msg.ID {
			m.detail.failed = true
		}
	}
	return m
}

func (m *Model) done() {
	if m.loading > 0 {
		m.loading--
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if banner := m.renderBanner(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}
	switch m.route.Name {
	case router.Detail:
		b.WriteString(m.renderDetail())
	default:
		b.WriteString(m.renderSearch())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// handleKey processes keyboard input. While the keyword input has focus
// only ctrl+c, esc and enter escape it.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	typing := m.route.Name == router.Search && m.search.focus == focusInput
	if !typing {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.CycleTheme):
			m.theme = GetTheme(NextTheme(m.theme.Name))
			m.savePrefs()
			if m.detail.doc != nil {
				m.detail.render(m.theme, m.contentWidth())
			}
			return m, nil
		}
	}

	switch m.route.Name {
	case router.Detail:
		return m.handleDetailKey(msg)
	default:
		return m.handleSearchKey(msg)
	}
}

// navigate resolves path and switches views, remembering where we came from.
func (m Model) navigate(path string) (Model, tea.Cmd) {
	route, ok := m.routes.Resolve(path)
	if !ok {
		m.status = "no view for " + path
		return m, nil
	}
	m.history = append(m.history, m.route.Path)
	m.route = route
	return m.enter()
}

// back returns to the previous view, or the search view when there is none.
func (m Model) back() (Model, tea.Cmd) {
	path := router.SearchPattern
	if n := len(m.history); n > 0 {
		path = m.history[n-1]
		m.history = m.history[:n-1]
	}
	route, ok := m.routes.Resolve(path)
	if !ok {
		route = m.routes.MustResolve(router.SearchPattern)
	}
	m.route = route
	return m.enter()
}

// enter runs the side effects of arriving at the current route.
func (m Model) enter() (Model, tea.Cmd) {
	if m.route.Name != router.Detail {
		return m, nil
	}
	m.detail = newDetailState(m.contentWidth(), m.contentHeight())
	if m.backend == nil {
		return m, nil
	}
	m.loading++
	return m, detailCmd(m.ctx, m.backend, m.route.Param("id"))
}

func (m *Model) resize() {
	m.search.input.Width = max(10, m.width-20)
	m.detail.resize(m.contentWidth(), m.contentHeight())
	if m.detail.doc != nil {
		m.detail.render(m.theme, m.contentWidth())
	}
}

func (m Model) contentWidth() int {
	return max(20, m.width-4)
}

// contentHeight is what remains after header, footer and pane borders.
func (m Model) contentHeight() int {
	h := m.height - 4
	if m.notice.Visible {
		h--
	}
	return max(3, h)
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, SearchMode: m.search.mode})
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled.
func Run(opts Options) error {
	m, cancel := New(opts)
	defer cancel()

	popts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		popts = append(popts, tea.WithContext(opts.Context))
	}
	_, err := tea.NewProgram(m, popts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
