package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/five82/docdesk/internal/api"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
	Auth   string
}

type testServer struct {
	mu       sync.Mutex
	server   *httptest.Server
	requests []recordedRequest
}

const listBody = `{"total": 12, "items": [
	{"id": 42, "title": "合同管理办法", "tag_string": "法规,合同", "updated_at": "2026-01-02T10:00:00"},
	{"id": 7, "title": "水资源公报"}
]}`

func newTestServer(t *testing.T, status map[string]int) *testServer {
	t.Helper()
	ts := &testServer{}

	reply := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			ts.mu.Lock()
			ts.requests = append(ts.requests, recordedRequest{
				Method: r.Method,
				Path:   r.URL.Path,
				Query:  r.URL.Query(),
				Body:   string(raw),
				Auth:   r.Header.Get("Authorization"),
			})
			ts.mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			if code, ok := status[r.Method+" "+r.URL.Path]; ok {
				w.WriteHeader(code)
				_, _ = w.Write([]byte(`{"detail":"nope"}`))
				return
			}
			_, _ = w.Write([]byte(body))
		}
	}

	r := chi.NewRouter()
	r.Route("/xapi/api", func(r chi.Router) {
		r.Get("/documentapi/taglist", reply(`["法规","合同"]`))
		r.Get("/tagapi/tags/", reply(`{"data":[{"id":3,"name":"规划"}],"total":1}`))
		r.Get("/documentapi/list", reply(listBody))
		r.Get("/documentapi/documents/{id}", reply(`{"id":42,"title":"合同管理办法","content":"第一条 总则","file_path":"/static/documents/a.pdf"}`))
		r.Post("/documentapi/es_search_related", reply(`{"total":{"value":1},"results":[{"_source":{"document_id":9,"document":{"title":"防洪预案"}}}]}`))
		r.Get("/documentapi/default_search", reply(listBody))
		r.Post("/auth/token", reply(`{"access_token":"fresh-token","token_type":"bearer"}`))
	})
	ts.server = httptest.NewServer(r)
	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) last(t *testing.T) recordedRequest {
	t.Helper()
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if len(ts.requests) == 0 {
		t.Fatalf("no requests recorded")
	}
	return ts.requests[len(ts.requests)-1]
}

// setup isolates HOME and points docdesk at ts.
func setup(t *testing.T, ts *testServer) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NO_COLOR", "1")
	t.Setenv("DOCDESK_TOKEN", "")
	t.Setenv("DOCDESK_LOG_FILE", "")
	t.Setenv("DOCDESK_CREDENTIALS", "")
	t.Setenv("DOCDESK_PAGE_SIZE", "")
	if ts != nil {
		t.Setenv("DOCDESK_BASE_URL", ts.server.URL+"/xapi")
	}
	return home
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := newCLI(&stdout, &stderr)
	c.now = func() time.Time { return time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC) }
	root := newRootCmd(c)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSearchCommand_List(t *testing.T) {
	ts := newTestServer(t, nil)
	setup(t, ts)

	out, _, err := execute(t, "search", "合同", "--tags", "法规, 合同", "--from", "2025-01-01", "--page", "2", "--page-size", "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := ts.last(t)
	if r.Method != "GET" || r.Path != "/xapi/api/documentapi/list" {
		t.Fatalf("request = %s %s, want GET list", r.Method, r.Path)
	}
	want := map[string]string{"keyword": "合同", "taglist": "法规,合同", "startDate": "2025-01-01", "page": "2", "pageSize": "5"}
	for k, v := range want {
		if got := r.Query.Get(k); got != v {
			t.Errorf("query %s = %q, want %q", k, got, v)
		}
	}
	if r.Query.Has("endDate") {
		t.Errorf("endDate sent although unset")
	}

	if !strings.Contains(out, "合同管理办法") || !strings.Contains(out, "3 days ago") {
		t.Errorf("output missing row: %q", out)
	}
	if !strings.Contains(out, "12 results · page 2 of 3") {
		t.Errorf("output missing pagination: %q", out)
	}
}

func TestSearchCommand_RelatedBody(t *testing.T) {
	ts := newTestServer(t, nil)
	setup(t, ts)

	out, _, err := execute(t, "search", "防洪", "--mode", "related")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := ts.last(t)
	if r.Method != "POST" || r.Path != "/xapi/api/documentapi/es_search_related" {
		t.Fatalf("request = %s %s, want POST related", r.Method, r.Path)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["query"] != "防洪" || body["page_number"] != float64(1) || body["page_size"] != float64(10) {
		t.Errorf("body = %v, want query/page 1/size 10", body)
	}
	if in, _ := body["search_in"].([]any); len(in) != 3 {
		t.Errorf("search_in = %v, want 3 fields", body["search_in"])
	}
	if !strings.Contains(out, "防洪预案") {
		t.Errorf("output = %q, want related hit", out)
	}
}

func TestSearchCommand_DefaultJSON(t *testing.T) {
	ts := newTestServer(t, nil)
	setup(t, ts)

	out, _, err := execute(t, "search", "--mode", "default", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := ts.last(t)
	if r.Path != "/xapi/api/documentapi/default_search" || r.Query.Get("query") != "" || r.Query.Get("page_number") != "1" {
		t.Fatalf("request = %#v, want default search page 1", r)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("--json output is not JSON: %v\n%s", err, out)
	}
}

func TestSearchCommand_BadMode(t *testing.T) {
	setup(t, nil)
	_, _, err := execute(t, "search", "--mode", "fuzzy")
	if err == nil || !strings.Contains(err.Error(), "unknown --mode") {
		t.Fatalf("error = %v, want unknown mode", err)
	}
}

func TestRootRejectsVerboseForTUI(t *testing.T) {
	setup(t, nil)
	_, _, err := execute(t, "-v")
	if err == nil || !strings.Contains(err.Error(), "--verbose only applies to subcommands") {
		t.Fatalf("error = %v, want --verbose rejected for the TUI", err)
	}
}

func TestDetailCommand(t *testing.T) {
	ts := newTestServer(t, nil)
	setup(t, ts)

	out, _, err := execute(t, "detail", "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r := ts.last(t); r.Path != "/xapi/api/documentapi/documents/42" || r.Body != "" {
		t.Fatalf("request = %#v, want GET documents/42 without body", r)
	}
	if !strings.Contains(out, "第一条 总则") || !strings.Contains(out, "/static/documents/a.pdf") {
		t.Errorf("output = %q, want content and file", out)
	}
}

func TestTagsCommand(t *testing.T) {
	ts := newTestServer(t, nil)
	setup(t, ts)

	out, _, err := execute(t, "tags")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.last(t).Path != "/xapi/api/documentapi/taglist" || out != "法规\n合同\n" {
		t.Fatalf("tags output = %q", out)
	}

	out, _, err = execute(t, "tags", "--alt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.last(t).Path != "/xapi/api/tagapi/tags/" || !strings.Contains(out, "规划") {
		t.Fatalf("tags --alt output = %q", out)
	}
}

func TestLoginStoresTokenForLaterRequests(t *testing.T) {
	ts := newTestServer(t, nil)
	home := setup(t, ts)

	_, stderr, err := execute(t, "login", "-u", "alice", "-p", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := ts.last(t)
	form, _ := url.ParseQuery(r.Body)
	if r.Path != "/xapi/api/auth/token" || form.Get("username") != "alice" || form.Get("password") != "s3cret" {
		t.Fatalf("login request = %#v", r)
	}
	if r.Auth != "" {
		t.Errorf("login sent Authorization %q before a token existed", r.Auth)
	}
	if !strings.Contains(stderr, "Signed in as alice") {
		t.Errorf("stderr = %q", stderr)
	}

	data, err := os.ReadFile(filepath.Join(home, ".config", "docdesk", "credentials.toml"))
	if err != nil || !strings.Contains(string(data), "fresh-token") {
		t.Fatalf("credentials file = %q, %v", data, err)
	}

	if _, _, err := execute(t, "tags"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ts.last(t).Auth; got != "Bearer fresh-token" {
		t.Fatalf("Authorization = %q, want Bearer fresh-token", got)
	}

	if _, _, err := execute(t, "logout"); err != nil {
		t.Fatalf("logout error: %v", err)
	}
	if _, _, err := execute(t, "tags"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ts.last(t).Auth; got != "" {
		t.Fatalf("Authorization after logout = %q, want none", got)
	}
}

func TestLoginRequiresFlags(t *testing.T) {
	setup(t, nil)
	_, _, err := execute(t, "login", "-u", "alice")
	if err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("error = %v, want it to mention required", err)
	}
}

func TestCommandsReportRecordMessage(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   string
		kind   error
	}{
		{"server error", http.StatusInternalServerError, api.MessageServerError, api.ErrServerError},
		{"expired", http.StatusUnauthorized, api.MessageAuthExpired, api.ErrAuthExpired},
		{"rejected", http.StatusBadRequest, "nope", api.ErrRequestRejected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t, map[string]int{"GET /xapi/api/documentapi/documents/1": tc.status})
			setup(t, ts)

			_, _, err := execute(t, "detail", "1")
			var reported *reportedError
			if !errors.As(err, &reported) {
				t.Fatalf("error = %v (%T), want reportedError", err, err)
			}
			if reported.message != tc.want {
				t.Fatalf("message = %q, want %q", reported.message, tc.want)
			}
			if !errors.Is(err, tc.kind) {
				t.Fatalf("errors.Is(%v, %v) = false", err, tc.kind)
			}
		})
	}
}

func TestCommandsReportNetworkError(t *testing.T) {
	setup(t, nil)
	t.Setenv("DOCDESK_BASE_URL", "http://127.0.0.1:1/xapi")
	t.Setenv("DOCDESK_TIMEOUT", "2s")

	_, _, err := execute(t, "tags")
	var reported *reportedError
	if !errors.As(err, &reported) || reported.message != api.MessageNetworkError {
		t.Fatalf("error = %v, want network message", err)
	}
}

func TestLogsCommand(t *testing.T) {
	home := setup(t, nil)
	logPath := filepath.Join(home, "docdesk.log")
	t.Setenv("DOCDESK_LOG_FILE", logPath)
	lines := []string{
		`level=DEBUG msg="request sent"`,
		`level=WARN msg="api call failed" kind=network`,
		`level=INFO msg="login succeeded"`,
	}
	if err := os.WriteFile(logPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out, _, err := execute(t, "logs", "-n", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != lines[1]+"\n"+lines[2]+"\n" {
		t.Fatalf("logs -n 2 = %q", out)
	}

	out, _, err = execute(t, "logs", "--level", "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != lines[1]+"\n" {
		t.Fatalf("logs --level warn = %q", out)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("splitList = %#v, want [a b]", got)
	}
	if splitList("") != nil {
		t.Fatalf("splitList(\"\") should be nil")
	}
}

func TestColorize(t *testing.T) {
	if got := colorize(true, colorRed, "x"); got != "x" {
		t.Errorf("colorize with noColor should not contain ANSI codes, got %q", got)
	}
	if got := colorize(false, colorRed, "x"); !strings.Contains(got, "\033[") {
		t.Errorf("colorize without noColor should contain ANSI codes, got %q", got)
	}
}
