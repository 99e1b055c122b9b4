package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/five82/docdesk/internal/api"
	"github.com/five82/docdesk/internal/config"
	"github.com/five82/docdesk/internal/credentials"
	"github.com/five82/docdesk/internal/logging"
	"github.com/five82/docdesk/internal/notify"
	"github.com/five82/docdesk/internal/prefs"
	"github.com/five82/docdesk/internal/router"
	"github.com/five82/docdesk/internal/state"
	"github.com/five82/docdesk/internal/ui"
)

// Options configure the docdesk application.
type Options struct {
	ConfigPath string
	PrefsPath  string    // empty uses default ~/.config/docdesk/prefs.toml
	LogWriter  io.Writer // nil writes to the configured log file
	Color      bool      // colourize LogWriter output
}

// Services is everything a front end (TUI or CLI) needs to talk to the
// document service.
type Services struct {
	Config      config.Config
	Logger      *slog.Logger
	Credentials *credentials.Store
	Tokens      api.TokenSource
	Notices     *notify.Center
	Client      *api.Client
	Endpoints   *api.Endpoints
	Routes      *router.Table
	Session     *state.Store

	closers []io.Closer
}

// Close releases the log file.
func (s *Services) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}

// Build loads configuration and wires the client stack.
func Build(opts Options) (*Services, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	svc := &Services{Config: cfg}

	w := opts.LogWriter
	if w == nil {
		f, err := logging.Open(cfg.LogPath)
		if err != nil {
			return nil, err
		}
		svc.closers = append(svc.closers, f)
		w = f
	}
	svc.Logger = logging.New(w, cfg.LogLevel, opts.Color && opts.LogWriter != nil)

	store, err := credentials.NewStore(cfg.CredentialsPath)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.Credentials = store
	svc.Tokens = store
	if cfg.Token != "" {
		svc.Tokens = credentials.Static(cfg.Token)
	}

	svc.Notices = notify.New()
	client, err := api.NewClient(cfg.BaseURL,
		api.WithTokenSource(svc.Tokens),
		api.WithNotifier(svc.Notices),
		api.WithLogger(svc.Logger),
		api.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}
	svc.Client = client
	svc.Endpoints = api.NewEndpoints(client)
	svc.Routes = router.New()
	svc.Session = &state.Store{}
	return svc, nil
}

// Run boots the docdesk TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	svc, err := Build(opts)
	if err != nil {
		return err
	}
	defer svc.Close()

	userPrefs := prefs.Load(opts.PrefsPath)
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	svc.Logger.Info("starting tui", "base_url", svc.Config.BaseURL, "credentials", svc.Credentials.Path())

	StartSessionWatcher(ctx, svc.Session, svc.Tokens, svc.Logger, defaultWatchInterval)

	return ui.Run(ui.Options{
		Context:    ctx,
		Backend:    svc.Endpoints,
		Notices:    svc.Notices,
		Store:      svc.Session,
		Routes:     svc.Routes,
		BaseURL:    svc.Client.BaseURL(),
		PageSize:   svc.Config.PageSize,
		Tick:       time.Second,
		ThemeName:  userPrefs.Theme,
		SearchMode: userPrefs.SearchMode,
		PrefsPath:  prefsPath,
	})
}
