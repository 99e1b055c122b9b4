// Package credentials persists the bearer token docdesk attaches to API
// requests. The token file plays the role browser local storage plays for the
// web front-end: written on login, read on every request.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultPath = "~/.config/docdesk/credentials.toml"

// DefaultPath returns the default credentials file path.
func DefaultPath() string {
	return defaultPath
}

type file struct {
	Token   string    `toml:"token"`
	SavedAt time.Time `toml:"saved_at"`
}

// Store reads and writes the token file at a fixed path.
type Store struct {
	path string
}

// NewStore resolves path (empty uses DefaultPath) and returns a Store for it.
func NewStore(path string) (*Store, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve credentials path: %w", err)
	}
	return &Store{path: resolved}, nil
}

// Path returns the resolved file location.
func (s *Store) Path() string {
	return s.path
}

// Token returns the stored token or "" when none is saved. A missing or
// unreadable file counts as logged out.
func (s *Store) Token() string {
	if s == nil {
		return ""
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	var f file
	if err := toml.Unmarshal(raw, &f); err != nil {
		return ""
	}
	return strings.TrimSpace(f.Token)
}

// Save writes token, creating parent directories. The file is private to the
// current user.
func (s *Store) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is empty")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	bytes, err := toml.Marshal(file{Token: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(s.path, bytes, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Clear removes the token file. Clearing when logged out is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// Static is a fixed token, used when DOCDESK_TOKEN is set.
type Static string

// Token implements the api token source.
func (s Static) Token() string {
	return strings.TrimSpace(string(s))
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
