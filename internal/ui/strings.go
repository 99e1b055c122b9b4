package ui

import (
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// truncate shortens value to fit limit terminal cells. Wide (CJK) runes
// count as two cells.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	return runewidth.Truncate(value, limit, "…")
}

// padRight pads s with spaces to width cells.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// singleLine collapses runs of whitespace, newlines included.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// relativeTime renders t as "3 days ago", or "-" for the zero time.
func relativeTime(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

var emTag = regexp.MustCompile(`(?i)</?(em|mark|b|strong)>`)

// highlightSpans splits a search highlight fragment into plain and marked
// parts. Elasticsearch wraps hits in <em> by default; other simple tags are
// treated the same.
func highlightSpans(fragment string) []span {
	var spans []span
	marked := false
	rest := fragment
	for {
		loc := emTag.FindStringIndex(rest)
		if loc == nil {
			if rest != "" {
				spans = append(spans, span{Text: rest, Marked: marked})
			}
			return spans
		}
		if loc[0] > 0 {
			spans = append(spans, span{Text: rest[:loc[0]], Marked: marked})
		}
		marked = !strings.HasPrefix(rest[loc[0]:], "</")
		rest = rest[loc[1]:]
	}
}

type span struct {
	Text   string
	Marked bool
}

// plural returns "1 result" or "3 results".
func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}
