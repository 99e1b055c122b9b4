package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type recordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Query    url.Values
	Body     string
	Param    string
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	server   *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}

	record := func(w http.ResponseWriter, r *http.Request, body string) {
		raw, _ := io.ReadAll(r.Body)
		fb.mu.Lock()
		fb.requests = append(fb.requests, recordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Query:    r.URL.Query(),
			Body:     string(raw),
			Param:    chi.URLParam(r, "id"),
		})
		fb.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}

	r := chi.NewRouter()
	r.Route("/xapi/api", func(r chi.Router) {
		r.Get("/documentapi/taglist", func(w http.ResponseWriter, r *http.Request) {
			record(w, r, `["政策","规划"]`)
		})
		r.Get("/tagapi/tags/", func(w http.ResponseWriter, r *http.Request) {
			record(w, r, `{"data":[{"id":1,"name":"政策"}],"total":1}`)
		})
		r.Get("/documentapi/list", func(w http.ResponseWriter, r *http.Request) {
			record(w, r, `{"total":1,"items":[{"id":7,"title":"水资源公报"}]}`)
		})
		r.Get("/documentapi/documents/{id}", func(w http.ResponseWriter, r *http.Request) {
			record(w, r, `{"id":42,"title":"detail"}`)
		})
		r.Post("/documentapi/es_search_related", func(w http.ResponseWriter, r *http.Request) {
			record(w, r, `{"total":{"value":0},"results":[]}`)
		})
		r.Get("/documentapi/default_search", func(w http.ResponseWriter, r *http.Request) {
			record(w, r, `{"total":0,"results":[]}`)
		})
		r.Post("/auth/token", func(w http.ResponseWriter, r *http.Request) {
			record(w, r, `{"access_token":"tok","token_type":"bearer"}`)
		})
	})

	fb.server = httptest.NewServer(r)
	t.Cleanup(fb.server.Close)
	return fb
}

func (fb *fakeBackend) endpoints(t *testing.T) *Endpoints {
	t.Helper()
	c, err := NewClient(fb.server.URL + "/xapi")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return NewEndpoints(c)
}

func (fb *fakeBackend) last(t *testing.T) recordedRequest {
	t.Helper()
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if len(fb.requests) == 0 {
		t.Fatalf("backend received no requests")
	}
	return fb.requests[len(fb.requests)-1]
}

func (fb *fakeBackend) count() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.requests)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestEndpoints_SearchDocListSerializesTags(t *testing.T) {
	fb := newFakeBackend(t)
	e := fb.endpoints(t)
	ctx := testContext(t)

	_, err := e.SearchDocList(ctx, SearchParams{
		Keyword:   "水资源",
		Tags:      []string{"a", "b"},
		StartDate: "2024-01-01",
		EndDate:   "2024-12-31",
		Page:      2,
		PageSize:  20,
	})
	if err != nil {
		t.Fatalf("SearchDocList returned error: %v", err)
	}
	req := fb.last(t)
	if req.Method != http.MethodGet || req.Path != "/xapi"+PathDocumentList {
		t.Fatalf("request = %s %s, want GET %s", req.Method, req.Path, PathDocumentList)
	}
	if !containsParam(req.RawQuery, "taglist=a,b") {
		t.Fatalf("raw query = %q, want literal taglist=a,b", req.RawQuery)
	}
	want := map[string]string{
		"keyword":   "水资源",
		"taglist":   "a,b",
		"startDate": "2024-01-01",
		"endDate":   "2024-12-31",
		"page":      "2",
		"pageSize":  "20",
	}
	for k, v := range want {
		if got := req.Query.Get(k); got != v {
			t.Fatalf("query %s = %q, want %q", k, got, v)
		}
	}

	_, err = e.SearchDocList(ctx, SearchParams{Tags: []string{}, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("SearchDocList returned error: %v", err)
	}
	req = fb.last(t)
	if vals, ok := req.Query["taglist"]; !ok || len(vals) != 1 || vals[0] != "" {
		t.Fatalf("taglist = %v (present=%v), want single empty value", vals, ok)
	}
	if _, ok := req.Query["startDate"]; ok {
		t.Fatalf("startDate sent although unset: %v", req.Query)
	}
	if req.Query.Get("page") != "1" || req.Query.Get("pageSize") != "10" {
		t.Fatalf("pagination = %v, want page=1 pageSize=10", req.Query)
	}
}

func TestEndpoints_GetPdfDetail(t *testing.T) {
	fb := newFakeBackend(t)
	e := fb.endpoints(t)

	resp, err := e.GetPdfDetail(testContext(t), "42")
	if err != nil {
		t.Fatalf("GetPdfDetail returned error: %v", err)
	}
	req := fb.last(t)
	if req.Method != http.MethodGet || req.Path != "/xapi/api/documentapi/documents/42" || req.Param != "42" {
		t.Fatalf("request = %s %s (id=%q), want GET .../documents/42", req.Method, req.Path, req.Param)
	}
	if req.Body != "" || req.RawQuery != "" {
		t.Fatalf("request body %q query %q, want both empty", req.Body, req.RawQuery)
	}
	if string(resp.Body) != `{"id":42,"title":"detail"}` {
		t.Fatalf("body = %q, want raw backend payload", resp.Body)
	}
}

func TestEndpoints_SearchRelatedPostsBody(t *testing.T) {
	fb := newFakeBackend(t)
	e := fb.endpoints(t)

	_, err := e.SearchRelated(testContext(t), RelatedQuery{Query: "黄河", PageSize: 10, PageNumber: 3})
	if err != nil {
		t.Fatalf("SearchRelated returned error: %v", err)
	}
	req := fb.last(t)
	if req.Method != http.MethodPost || req.Path != "/xapi"+PathRelatedSearch {
		t.Fatalf("request = %s %s, want POST %s", req.Method, req.Path, PathRelatedSearch)
	}
	if req.RawQuery != "" {
		t.Fatalf("raw query = %q, want none", req.RawQuery)
	}

	var body struct {
		Query      string   `json:"query"`
		PageSize   int      `json:"page_size"`
		PageNumber int      `json:"page_number"`
		SearchIn   []string `json:"search_in"`
	}
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		t.Fatalf("body %q is not json: %v", req.Body, err)
	}
	if body.Query != "黄河" || body.PageSize != 10 || body.PageNumber != 3 {
		t.Fatalf("body = %#v, want query/page fields", body)
	}
	if !reflect.DeepEqual(body.SearchIn, RelatedSearchFields) {
		t.Fatalf("search_in = %v, want %v", body.SearchIn, RelatedSearchFields)
	}
}

func TestEndpoints_DefaultSearchAndTags(t *testing.T) {
	fb := newFakeBackend(t)
	e := fb.endpoints(t)
	ctx := testContext(t)

	if _, err := e.DefaultSearch(ctx, "榆林", 1, 15); err != nil {
		t.Fatalf("DefaultSearch returned error: %v", err)
	}
	req := fb.last(t)
	if req.Path != "/xapi"+PathDefaultSearch ||
		req.Query.Get("query") != "榆林" ||
		req.Query.Get("page_number") != "1" ||
		req.Query.Get("page_size") != "15" {
		t.Fatalf("default search request = %#v", req)
	}

	resp, err := e.GetNewsTags(ctx)
	if err != nil {
		t.Fatalf("GetNewsTags returned error: %v", err)
	}
	if fb.last(t).Path != "/xapi"+PathNewsTags {
		t.Fatalf("path = %q, want %q", fb.last(t).Path, PathNewsTags)
	}
	tags, err := DecodeTags(resp)
	if err != nil || len(tags) != 2 || tags[0].Name != "政策" {
		t.Fatalf("DecodeTags = %#v, %v; want two names", tags, err)
	}

	resp, err = e.GetTags(ctx)
	if err != nil {
		t.Fatalf("GetTags returned error: %v", err)
	}
	if fb.last(t).Path != "/xapi"+PathTags {
		t.Fatalf("path = %q, want %q", fb.last(t).Path, PathTags)
	}
	tags, err = DecodeTags(resp)
	if err != nil || len(tags) != 1 || tags[0].ID != 1 {
		t.Fatalf("DecodeTags = %#v, %v; want one tag with id 1", tags, err)
	}
}

func TestEndpoints_LoginPostsForm(t *testing.T) {
	fb := newFakeBackend(t)
	e := fb.endpoints(t)

	resp, err := e.Login(testContext(t), "alice", "p@ss")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	form, err := url.ParseQuery(fb.last(t).Body)
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if form.Get("username") != "alice" || form.Get("password") != "p@ss" || form.Get("grant_type") != "password" {
		t.Fatalf("form = %v, want username/password/grant_type", form)
	}
	tok, err := DecodeAccessToken(resp)
	if err != nil || tok.AccessToken != "tok" {
		t.Fatalf("DecodeAccessToken = %#v, %v", tok, err)
	}
}

func TestEndpoints_OneCallPerMethod(t *testing.T) {
	fb := newFakeBackend(t)
	e := fb.endpoints(t)
	ctx := testContext(t)

	calls := []func() error{
		func() error { _, err := e.GetNewsTags(ctx); return err },
		func() error { _, err := e.GetTags(ctx); return err },
		func() error { _, err := e.SearchDocList(ctx, SearchParams{}); return err },
		func() error { _, err := e.GetPdfDetail(ctx, "1"); return err },
		func() error { _, err := e.SearchRelated(ctx, RelatedQuery{}); return err },
		func() error { _, err := e.DefaultSearch(ctx, "", 1, 10); return err },
	}
	for i, call := range calls {
		if err := call(); err != nil {
			t.Fatalf("call %d returned error: %v", i, err)
		}
		if got := fb.count(); got != i+1 {
			t.Fatalf("after call %d backend saw %d requests, want %d", i, got, i+1)
		}
	}
}

func containsParam(rawQuery, pair string) bool {
	for _, part := range strings.Split(rawQuery, "&") {
		if part == pair {
			return true
		}
	}
	return false
}
