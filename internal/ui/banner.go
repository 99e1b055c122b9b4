package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/docdesk/internal/notify"
)

type noticeMsg notify.Record

// waitForNotice blocks on the subscription and delivers the next record.
// Update re-arms it after every delivery.
func waitForNotice(ch <-chan notify.Record) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		rec, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(rec)
	}
}

// renderBanner draws the error record on one line, or nothing when hidden.
func (m Model) renderBanner() string {
	if !m.notice.Visible || m.notice.Message == "" {
		return ""
	}
	styles := m.theme.Styles()
	text := truncate("⚠ "+m.notice.Message, m.width-2)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Left, styles.Banner.Render(text))
}
