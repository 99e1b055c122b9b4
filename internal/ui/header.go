package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/docdesk/internal/router"
)

// renderHeader renders the top bar: logo, current view, endpoint and session.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	sep := styles.FaintText.Render("  │  ")

	view := "Search"
	if m.route.Name == router.Detail {
		view = "Detail " + m.route.Param("id")
	}

	parts := []string{
		styles.Logo.Render("docdesk"),
		styles.Text.Bold(true).Render(view),
		styles.MutedText.Render(truncate(m.baseURL, 40)),
		m.sessionLabel(time.Now()),
	}
	if m.loading > 0 {
		parts = append(parts, styles.WarningText.Render("loading…"))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

func (m Model) sessionLabel(now time.Time) string {
	styles := m.theme.Styles()
	snap := m.snapshot
	switch {
	case !snap.HasSession:
		return styles.FaintText.Render("signed out")
	case snap.Session.Expired(now):
		return styles.DangerText.Render("session expired")
	case snap.Session.Opaque || snap.Session.Subject == "":
		return styles.SuccessText.Render("signed in")
	}
	label := styles.SuccessText.Render(snap.Session.Subject)
	if !snap.Session.ExpiresAt.IsZero() {
		label += styles.MutedText.Render(" · expires " + relativeTime(snap.Session.ExpiresAt, now))
	}
	return label
}

// renderFooter lists the short help bindings.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, styles.AccentText.Render(h.Key)+" "+h.Desc)
	}
	if m.status != "" {
		parts = append(parts, styles.WarningText.Render(m.status))
	}
	return lipgloss.NewStyle().Width(m.width).Render(styles.Footer.Render(strings.Join(parts, "  ")))
}
