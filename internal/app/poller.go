package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/docdesk/internal/api"
	"github.com/five82/docdesk/internal/credentials"
	"github.com/five82/docdesk/internal/state"
)

const defaultWatchInterval = 5 * time.Second

// StartSessionWatcher launches a background goroutine that re-reads the token
// at a fixed cadence and records what it claims. It returns immediately. The
// token file can change underneath a running TUI when `docdesk login` runs in
// another terminal.
func StartSessionWatcher(ctx context.Context, store *state.Store, tokens api.TokenSource, logger *slog.Logger, interval time.Duration) {
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			refresh(store, tokens, logger)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func refresh(store *state.Store, tokens api.TokenSource, logger *slog.Logger) {
	token := tokens.Token()
	if token == "" {
		store.Update(nil, nil)
		return
	}
	session, err := credentials.Inspect(token)
	if err != nil {
		logger.Debug("token inspection failed", "error", err)
		// Unreadable tokens are still sent; treat them as opaque.
		session = credentials.Session{Opaque: true}
	}
	store.Update(&session, nil)
}
