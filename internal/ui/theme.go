package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the palette for the UI.
type Theme struct {
	Name string

	Background string
	Surface    string
	SurfaceAlt string

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text      string
	Muted     string
	Faint     string
	Accent    string
	Success   string
	Warning   string
	Danger    string
	Highlight string // search hit markers in excerpts
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:          lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		MutedText:     lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		FaintText:     lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint)),
		AccentText:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
		SuccessText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
		WarningText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		DangerText:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),
		HighlightText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Highlight)).Bold(true),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		Banner: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Danger)).
			Foreground(lipgloss.Color(t.Background)).
			Bold(true).
			Padding(0, 1),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),

		FocusedPane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.BorderFocus)).
			Padding(0, 1),
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text          lipgloss.Style
	MutedText     lipgloss.Style
	FaintText     lipgloss.Style
	AccentText    lipgloss.Style
	SuccessText   lipgloss.Style
	WarningText   lipgloss.Style
	DangerText    lipgloss.Style
	HighlightText lipgloss.Style

	Header      lipgloss.Style
	Footer      lipgloss.Style
	Logo        lipgloss.Style
	Selected    lipgloss.Style
	Banner      lipgloss.Style
	Pane        lipgloss.Style
	FocusedPane lipgloss.Style
}

// PaneStyle picks the bordered style for a pane depending on focus.
func (s Styles) PaneStyle(focused bool) lipgloss.Style {
	if focused {
		return s.FocusedPane
	}
	return s.Pane
}

var themes = map[string]Theme{
	"Ink":   inkTheme(),
	"Paper": paperTheme(),
}

var themeOrder = []string{"Ink", "Paper"}

// GetTheme returns a theme by name, falling back to Ink.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return inkTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func inkTheme() Theme {
	// Tailwind slate/sky
	return Theme{
		Name: "Ink",

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		SurfaceAlt: "#1e293b", // slate-800

		SelectionBg:   "#0284c7", // sky-600
		SelectionText: "#f8fafc", // slate-50

		Border:      "#334155", // slate-700
		BorderFocus: "#38bdf8", // sky-400

		Text:      "#f1f5f9", // slate-100
		Muted:     "#94a3b8", // slate-400
		Faint:     "#64748b", // slate-500
		Accent:    "#38bdf8", // sky-400
		Success:   "#22c55e", // green-500
		Warning:   "#f59e0b", // amber-500
		Danger:    "#ef4444", // red-500
		Highlight: "#facc15", // yellow-400
	}
}

func paperTheme() Theme {
	// Tailwind stone/indigo on a light background
	return Theme{
		Name: "Paper",

		Background: "#fafaf9", // stone-50
		Surface:    "#e7e5e4", // stone-200
		SurfaceAlt: "#d6d3d1", // stone-300

		SelectionBg:   "#4f46e5", // indigo-600
		SelectionText: "#ffffff",

		Border:      "#a8a29e", // stone-400
		BorderFocus: "#4f46e5", // indigo-600

		Text:      "#1c1917", // stone-900
		Muted:     "#57534e", // stone-600
		Faint:     "#78716c", // stone-500
		Accent:    "#4338ca", // indigo-700
		Success:   "#15803d", // green-700
		Warning:   "#b45309", // amber-700
		Danger:    "#b91c1c", // red-700
		Highlight: "#c2410c", // orange-700
	}
}
