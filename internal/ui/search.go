package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/docdesk/internal/api"
	"github.com/five82/docdesk/internal/prefs"
	"github.com/five82/docdesk/internal/router"
)

type searchFocus int

const (
	focusResults searchFocus = iota
	focusInput
	focusTags
)

type searchState struct {
	input textinput.Model
	focus searchFocus
	mode  string

	tags      []api.Tag
	tagCursor int
	selected  map[string]bool

	results []api.Document
	total   int
	cursor  int
	last    query // query whose results are shown
	seq     int   // sequence of the newest query issued
}

func newSearchState(mode string) searchState {
	ti := textinput.New()
	ti.Placeholder = "keyword"
	ti.Prompt = "› "
	ti.CharLimit = 200
	return searchState{
		input:    ti,
		focus:    focusResults,
		mode:     mode,
		selected: make(map[string]bool),
	}
}

func (s *searchState) setTags(tags []api.Tag) {
	s.tags = tags
	if s.tagCursor >= len(tags) {
		s.tagCursor = 0
	}
}

func (s *searchState) setResults(msg resultsMsg) {
	// Only the newest query may replace what is shown. The initial load
	// carries seq 0 and loses to any search issued before it lands.
	if msg.Query.seq != s.seq {
		return
	}
	s.results = msg.Page.Items
	s.total = msg.Page.Total
	s.last = msg.Query
	s.cursor = 0
}

// selectedTags returns the toggled tags in list order.
func (s searchState) selectedTags() []string {
	var out []string
	for _, t := range s.tags {
		if s.selected[t.Name] {
			out = append(out, t.Name)
		}
	}
	return out
}

func (s searchState) pages() int {
	size := s.last.PageSize
	if size <= 0 || s.total <= 0 {
		return 1
	}
	return (s.total + size - 1) / size
}

// submit issues a search for page in the current mode.
func (m Model) submit(page int) (Model, tea.Cmd) {
	if page < 1 {
		page = 1
	}
	m.search.seq++
	q := query{
		Mode:     m.search.mode,
		Keyword:  strings.TrimSpace(m.search.input.Value()),
		Page:     page,
		PageSize: m.pageSize,
		seq:      m.search.seq,
	}
	if q.Mode == prefs.ModeList {
		q.Tags = m.search.selectedTags()
	}
	m.status = ""
	if m.backend == nil {
		return m, nil
	}
	m.loading++
	return m, searchCmd(m.ctx, m.backend, q)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.search
	switch s.focus {
	case focusInput:
		switch msg.String() {
		case "enter":
			s.input.Blur()
			s.focus = focusResults
			return m.submit(1)
		case "esc":
			s.input.Blur()
			s.focus = focusResults
			return m, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return m, cmd

	case focusTags:
		switch {
		case key.Matches(msg, m.keys.Up):
			if s.tagCursor > 0 {
				s.tagCursor--
			}
		case key.Matches(msg, m.keys.Down):
			if s.tagCursor < len(s.tags)-1 {
				s.tagCursor++
			}
		case key.Matches(msg, m.keys.ToggleTag):
			if s.tagCursor < len(s.tags) {
				name := s.tags[s.tagCursor].Name
				s.selected[name] = !s.selected[name]
			}
		case key.Matches(msg, m.keys.Submit):
			s.focus = focusResults
			return m.submit(1)
		case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.FocusTags):
			s.focus = focusResults
		case key.Matches(msg, m.keys.FocusInput):
			s.focus = focusResults
			return m.focusInput()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.FocusInput):
		return m.focusInput()
	case key.Matches(msg, m.keys.FocusTags):
		if len(s.tags) > 0 {
			s.focus = focusTags
		}
	case key.Matches(msg, m.keys.CycleMode):
		s.mode = prefs.NextMode(s.mode)
		m.savePrefs()
	case key.Matches(msg, m.keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if s.cursor < len(s.results)-1 {
			s.cursor++
		}
	case key.Matches(msg, m.keys.Top):
		s.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		s.cursor = max(0, len(s.results)-1)
	case key.Matches(msg, m.keys.NextPage):
		if s.last.Page < s.pages() {
			return m.resubmit(s.last.Page + 1)
		}
	case key.Matches(msg, m.keys.PrevPage):
		if s.last.Page > 1 {
			return m.resubmit(s.last.Page - 1)
		}
	case key.Matches(msg, m.keys.Submit):
		if s.cursor < len(s.results) {
			id := strconv.FormatInt(s.results[s.cursor].ID, 10)
			return m.navigate(router.DetailPath(id))
		}
	}
	return m, nil
}

// resubmit repeats the shown query with another page.
func (m Model) resubmit(page int) (Model, tea.Cmd) {
	m.search.seq++
	q := m.search.last
	q.Page = page
	q.seq = m.search.seq
	if m.backend == nil {
		return m, nil
	}
	m.loading++
	return m, searchCmd(m.ctx, m.backend, q)
}

func (m Model) focusInput() (Model, tea.Cmd) {
	m.search.focus = focusInput
	return m, m.search.input.Focus()
}

func (m Model) renderSearch() string {
	styles := m.theme.Styles()
	s := m.search

	modeLine := styles.MutedText.Render("mode ") + styles.AccentText.Render(s.mode)
	if s.mode != prefs.ModeList && len(s.selectedTags()) > 0 {
		modeLine += styles.FaintText.Render("  (tags apply to list mode only)")
	}
	top := s.input.View() + "   " + modeLine

	tagsWidth := 0
	var tagsPane string
	if len(s.tags) > 0 {
		tagsWidth = min(24, max(12, m.width/5))
		tagsPane = styles.PaneStyle(s.focus == focusTags).
			Width(tagsWidth).
			Height(m.contentHeight() - 1).
			Render(m.renderTags(tagsWidth))
	}
	resultsWidth := max(20, m.width-tagsWidth-6)
	resultsPane := styles.PaneStyle(s.focus == focusResults).
		Width(resultsWidth).
		Height(m.contentHeight() - 1).
		Render(m.renderResults(resultsWidth))

	body := resultsPane
	if tagsPane != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, tagsPane, resultsPane)
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, body)
}

func (m Model) renderTags(width int) string {
	styles := m.theme.Styles()
	s := m.search
	lines := []string{styles.Text.Bold(true).Render("Tags")}
	for i, t := range s.tags {
		mark := "[ ] "
		if s.selected[t.Name] {
			mark = "[x] "
		}
		line := padRight(truncate(mark+t.Name, width-2), width-2)
		if s.focus == focusTags && i == s.tagCursor {
			line = styles.Selected.Render(line)
		} else if s.selected[t.Name] {
			line = styles.AccentText.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderResults(width int) string {
	styles := m.theme.Styles()
	s := m.search
	if len(s.results) == 0 {
		if m.loading > 0 {
			return styles.MutedText.Render("Searching…")
		}
		return styles.FaintText.Render("No documents")
	}

	now := time.Now()
	lines := []string{styles.MutedText.Render(fmt.Sprintf("%s · page %d of %d",
		plural(s.total, "result"), max(1, s.last.Page), s.pages()))}
	for i, doc := range s.results {
		when := relativeTime(doc.ParsedUpdatedAt(), now)
		title := truncate(singleLine(doc.Title), width-16)
		line := padRight(title, width-16) + " " + padRight(when, 14)
		if i == s.cursor && s.focus == focusResults {
			line = styles.Selected.Render(line)
		} else {
			line = styles.Text.Render(line)
		}
		lines = append(lines, line)
	}

	if s.cursor < len(s.results) {
		lines = append(lines, "", m.renderExcerpt(s.results[s.cursor], width))
	}
	return strings.Join(lines, "\n")
}

// renderExcerpt shows the first highlight of a result, or its description.
func (m Model) renderExcerpt(doc api.Document, width int) string {
	styles := m.theme.Styles()
	var b strings.Builder
	if tags := doc.Tags(); len(tags) > 0 {
		b.WriteString(styles.AccentText.Render(truncate("# "+strings.Join(tags, "  # "), width)))
		b.WriteString("\n")
	}
	if len(doc.Highlights) == 0 {
		text := doc.Description
		if text == "" {
			text = doc.Content
		}
		b.WriteString(styles.FaintText.Width(width).Render(truncate(singleLine(text), width*2)))
		return b.String()
	}
	for _, sp := range highlightSpans(singleLine(doc.Highlights[0])) {
		if sp.Marked {
			b.WriteString(styles.HighlightText.Render(sp.Text))
		} else {
			b.WriteString(styles.MutedText.Render(sp.Text))
		}
	}
	return lipgloss.NewStyle().Width(width).Render(b.String())
}
