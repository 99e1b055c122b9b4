package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything docdesk needs to reach the document service.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	PageSize        int
	CredentialsPath string
	Token           string // from DOCDESK_TOKEN only; overrides the credentials file
	LogPath         string
	LogLevel        string
}

const (
	defaultConfigPath      = "~/.config/docdesk/config.toml"
	defaultBaseURL         = "http://127.0.0.1:7000/xapi"
	defaultTimeout         = 10 * time.Second
	defaultPageSize        = 10
	defaultCredentialsPath = "~/.config/docdesk/credentials.toml"
	defaultLogPath         = "~/.local/share/docdesk/docdesk.log"
	defaultLogLevel        = "info"
)

// overrides are read from DOCDESK_* environment variables. Empty values leave
// the file or default value alone.
type overrides struct {
	BaseURL         string        `env:"BASE_URL"`
	Timeout         time.Duration `env:"TIMEOUT"`
	PageSize        int           `env:"PAGE_SIZE"`
	CredentialsPath string        `env:"CREDENTIALS"`
	Token           string        `env:"TOKEN"`
	LogPath         string        `env:"LOG_FILE"`
	LogLevel        string        `env:"LOG_LEVEL"`
}

// Load reads the config file at path (empty uses the default location),
// falls back to defaults when it is missing, then applies the environment.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		BaseURL:         defaultBaseURL,
		Timeout:         defaultTimeout,
		PageSize:        defaultPageSize,
		CredentialsPath: defaultCredentialsPath,
		LogPath:         defaultLogPath,
		LogLevel:        defaultLogLevel,
	}

	if err := loadFile(resolved, &cfg); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	cfg.CredentialsPath = mustExpand(cfg.CredentialsPath)
	cfg.LogPath = mustExpand(cfg.LogPath)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL         string `toml:"base_url"`
		TimeoutMS       int    `toml:"timeout_ms"`
		PageSize        int    `toml:"page_size"`
		CredentialsPath string `toml:"credentials_path"`
		LogFile         string `toml:"log_file"`
		LogLevel        string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if raw.TimeoutMS > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutMS) * time.Millisecond
	}
	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}
	if v := strings.TrimSpace(raw.CredentialsPath); v != "" {
		cfg.CredentialsPath = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogPath = v
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var o overrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: "DOCDESK_"}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if v := strings.TrimSpace(o.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	if o.PageSize > 0 {
		cfg.PageSize = o.PageSize
	}
	if v := strings.TrimSpace(o.CredentialsPath); v != "" {
		cfg.CredentialsPath = v
	}
	cfg.Token = strings.TrimSpace(o.Token)
	if v := strings.TrimSpace(o.LogPath); v != "" {
		cfg.LogPath = v
	}
	if v := strings.TrimSpace(o.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
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
