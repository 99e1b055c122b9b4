package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/docdesk/internal/api"
)

type detailState struct {
	viewport viewport.Model
	doc      *api.Document
	failed   bool
}

func newDetailState(width, height int) detailState {
	return detailState{viewport: viewport.New(width, height)}
}

func (d *detailState) resize(width, height int) {
	d.viewport.Width = width
	d.viewport.Height = height
}

// render lays the document out for the viewport.
func (d *detailState) render(theme Theme, width int) {
	if d.doc == nil {
		return
	}
	d.viewport.SetContent(documentBody(*d.doc, theme, width, time.Now()))
	d.viewport.GotoTop()
}

func documentBody(doc api.Document, theme Theme, width int, now time.Time) string {
	styles := theme.Styles()
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(wrap.Render(doc.Title)))
	b.WriteString("\n")

	var meta []string
	if tags := doc.Tags(); len(tags) > 0 {
		meta = append(meta, styles.AccentText.Render("# "+strings.Join(tags, "  # ")))
	}
	if t := doc.ParsedCreatedAt(); !t.IsZero() {
		meta = append(meta, styles.MutedText.Render("created "+t.Format("2006-01-02")+" ("+relativeTime(t, now)+")"))
	}
	if t := doc.ParsedUpdatedAt(); !t.IsZero() {
		meta = append(meta, styles.MutedText.Render("updated "+relativeTime(t, now)))
	}
	if doc.FilePath != "" {
		file := doc.FilePath
		if doc.FileType != "" {
			file += " [" + doc.FileType + "]"
		}
		meta = append(meta, styles.FaintText.Render(truncate(file, width)))
	}
	if len(meta) > 0 {
		b.WriteString(strings.Join(meta, "\n"))
		b.WriteString("\n")
	}

	if doc.Description != "" {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Width(width).Render(doc.Description))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", min(width, 60))))
	b.WriteString("\n\n")
	if strings.TrimSpace(doc.Content) == "" {
		b.WriteString(styles.FaintText.Render("(no content)"))
	} else {
		b.WriteString(styles.Text.Width(width).Render(doc.Content))
	}
	return b.String()
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.back()
	case key.Matches(msg, m.keys.Top):
		m.detail.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.detail.viewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.detail.viewport, cmd = m.detail.viewport.Update(msg)
	return m, cmd
}

func (m Model) renderDetail() string {
	styles := m.theme.Styles()
	pane := styles.PaneStyle(true).Width(m.contentWidth())

	switch {
	case m.detail.doc != nil:
		return pane.Render(m.detail.viewport.View())
	case m.detail.failed:
		return pane.Render(styles.FaintText.Render("Document unavailable. Press esc to go back."))
	default:
		return pane.Render(styles.MutedText.Render("Loading document " + m.route.Param("id") + "…"))
	}
}
