package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Filter selects log lines. The zero Filter matches everything.
type Filter struct {
	MinLevel slog.Level // lines below this level are dropped; unlevelled lines always pass
	Contains string     // case-insensitive substring, empty matches all
}

func (f Filter) match(line string) bool {
	if lvl, ok := LevelOf(line); ok && lvl < f.MinLevel {
		return false
	}
	if f.Contains == "" {
		return true
	}
	return strings.Contains(strings.ToLower(line), strings.ToLower(f.Contains))
}

// Read returns at most maxLines matching lines from the end of the file at
// path, oldest first. A missing file yields no lines.
func Read(path string, maxLines int, filter Filter) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, next := 0, 0
	for scanner.Scan() {
		line := scanner.Text()
		if !filter.match(line) {
			continue
		}
		ring[next] = line
		next = (next + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	start := 0
	if count == maxLines {
		start = next
	}
	for i := range count {
		lines[i] = ring[(start+i)%maxLines]
	}
	return lines, nil
}

// LevelOf extracts the level of a slog text line ("level=WARN").
func LevelOf(line string) (slog.Level, bool) {
	idx := strings.Index(line, "level=")
	if idx < 0 {
		return 0, false
	}
	rest := line[idx+len("level="):]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(rest)); err != nil {
		return 0, false
	}
	return lvl, true
}
