// Package app is docdesk's composition root.
//
// Build wires the stack shared by every front end:
//
//	config.Load()          file + DOCDESK_* env
//	logging.Open/New()     slog to the log file (or a caller-supplied writer)
//	credentials.NewStore() token file; DOCDESK_TOKEN swaps in a static token
//	notify.New()           shared error record
//	api.NewClient()        base URL, timeout, token source, notifier, logger
//	api.NewEndpoints()     façade used by the views and CLI commands
//
// Run adds the TUI pieces on top: preferences, the session watcher and
// ui.Run, which blocks until the user quits or the context is cancelled.
//
// The session watcher re-reads the token every few seconds so a login from
// another terminal shows up in the running TUI's header. It never contacts
// the server; whether a token is accepted is only learned from real calls.
package app
