// Package logtail reads the end of docdesk's log file.
//
// Read scans the file once and keeps the last N matching lines in a ring
// buffer, so memory stays O(N) however large the log grows. Lines written by
// slog's text handler carry a level=LEVEL attribute which Filter.MinLevel
// compares against; lines without one (stack traces, panics) always pass.
//
//	lines, err := logtail.Read(cfg.LogPath, 50, logtail.Filter{MinLevel: slog.LevelWarn})
package logtail
