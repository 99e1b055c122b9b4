package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/tidwall/pretty"

	"github.com/five82/docdesk/internal/api"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(noColor bool, color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(w io.Writer, noColor bool, format string, args ...any) {
	fmt.Fprintln(w, colorize(noColor, colorGreen, "✓ "+fmt.Sprintf(format, args...)))
}

func printError(w io.Writer, noColor bool, format string, args ...any) {
	fmt.Fprintln(w, colorize(noColor, colorRed, "✗ "+fmt.Sprintf(format, args...)))
}

func printWarning(w io.Writer, noColor bool, format string, args ...any) {
	fmt.Fprintln(w, colorize(noColor, colorYellow, "⚠ "+fmt.Sprintf(format, args...)))
}

// printJSON writes a response body indented, or as-is when it is not JSON.
func printJSON(w io.Writer, body []byte) error {
	_, err := w.Write(pretty.Pretty(body))
	return err
}

// printDocuments renders a result page as an aligned table.
func printDocuments(w io.Writer, noColor bool, page api.DocumentPage, pageNum, pageSize int, now time.Time) {
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No documents.")
		return
	}

	idWidth := len("ID")
	for _, doc := range page.Items {
		idWidth = max(idWidth, len(strconv.FormatInt(doc.ID, 10)))
	}
	const titleWidth = 48

	header := runewidth.FillRight("ID", idWidth) + "  " + runewidth.FillRight("TITLE", titleWidth) + "  UPDATED        TAGS"
	fmt.Fprintln(w, colorize(noColor, colorBold, header))
	for _, doc := range page.Items {
		title := runewidth.Truncate(strings.Join(strings.Fields(doc.Title), " "), titleWidth, "…")
		updated := "-"
		if t := doc.ParsedUpdatedAt(); !t.IsZero() {
			updated = humanize.RelTime(t, now, "ago", "from now")
		}
		fmt.Fprintf(w, "%s  %s  %s %s\n",
			runewidth.FillRight(strconv.FormatInt(doc.ID, 10), idWidth),
			runewidth.FillRight(title, titleWidth),
			runewidth.FillRight(updated, 14),
			colorize(noColor, colorCyan, strings.Join(doc.Tags(), ",")),
		)
	}

	pages := 1
	if pageSize > 0 && page.Total > 0 {
		pages = (page.Total + pageSize - 1) / pageSize
	}
	fmt.Fprintf(w, "\n%s results · page %d of %d\n", humanize.Comma(int64(page.Total)), pageNum, pages)
}

// printDocument renders one document for reading in a terminal.
func printDocument(w io.Writer, noColor bool, doc api.Document, now time.Time) {
	fmt.Fprintln(w, colorize(noColor, colorBold, doc.Title))
	if tags := doc.Tags(); len(tags) > 0 {
		fmt.Fprintln(w, colorize(noColor, colorCyan, "# "+strings.Join(tags, "  # ")))
	}
	if t := doc.ParsedCreatedAt(); !t.IsZero() {
		fmt.Fprintf(w, "created %s (%s)\n", t.Format("2006-01-02"), humanize.RelTime(t, now, "ago", "from now"))
	}
	if doc.FilePath != "" {
		fmt.Fprintf(w, "file    %s\n", doc.FilePath)
	}
	if doc.Description != "" {
		fmt.Fprintf(w, "\n%s\n", doc.Description)
	}
	fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(doc.Content))
}

func printTags(w io.Writer, tags []api.Tag) {
	for _, t := range tags {
		if t.ID != 0 {
			fmt.Fprintf(w, "%-6d %s\n", t.ID, t.Name)
			continue
		}
		fmt.Fprintln(w, t.Name)
	}
}
