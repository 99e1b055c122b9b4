// Package prefs persists docdesk's UI preferences in
// ~/.config/docdesk/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Search modes offered by the search view.
const (
	ModeList    = "list"
	ModeRelated = "related"
	ModeDefault = "default"
)

// Modes lists the search modes in cycling order.
var Modes = []string{ModeList, ModeRelated, ModeDefault}

// Prefs holds user preferences.
type Prefs struct {
	Theme      string `toml:"theme"`
	SearchMode string `toml:"search_mode"`
}

const (
	defaultPrefsPath = "~/.config/docdesk/prefs.toml"
	defaultTheme     = "Ink"
	defaultMode      = ModeList
)

// Defaults returns the preferences used when nothing is stored.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme, SearchMode: defaultMode}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from path. Preferences are cosmetic, so a missing or
// unreadable file yields defaults rather than an error.
func Load(path string) Prefs {
	p := Defaults()
	resolved, err := resolvePath(path)
	if err != nil {
		return p
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return p
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return Defaults()
	}
	return normalize(p)
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	data, err := toml.Marshal(normalize(p))
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// NextMode returns the mode after current, wrapping around.
func NextMode(current string) string {
	for i, m := range Modes {
		if m == current {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return Modes[0]
}

func normalize(p Prefs) Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.SearchMode = strings.ToLower(strings.TrimSpace(p.SearchMode))
	switch p.SearchMode {
	case ModeList, ModeRelated, ModeDefault:
	default:
		p.SearchMode = defaultMode
	}
	return p
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	trimmed := strings.TrimSpace(path)
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
