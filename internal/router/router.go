// Package router resolves docdesk's view paths. The table mirrors the web
// front-end's routes so links and history entries stay interchangeable.
package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Name identifies a view.
type Name string

const (
	Search Name = "search"
	Detail Name = "detail"
)

// Route patterns.
const (
	SearchPattern = "/"
	DetailPattern = "/detail/{id}"
)

// Route is a resolved path.
type Route struct {
	Name    Name
	Path    string
	Pattern string
	Params  map[string]string
}

// Param returns the named path parameter or "".
func (r Route) Param(key string) string {
	return r.Params[key]
}

// Table matches paths against the registered routes.
type Table struct {
	mux   *chi.Mux
	names map[string]Name
}

// New returns the docdesk route table.
func New() *Table {
	t := &Table{mux: chi.NewRouter(), names: make(map[string]Name)}
	t.add(SearchPattern, Search)
	t.add(DetailPattern, Detail)
	return t
}

func (t *Table) add(pattern string, name Name) {
	// Handlers are never invoked; the mux is only used for matching.
	t.mux.Get(pattern, http.NotFound)
	t.names[pattern] = name
}

// Resolve matches path. Unknown paths report false.
func (t *Table) Resolve(path string) (Route, bool) {
	if path == "" {
		path = "/"
	}
	rctx := chi.NewRouteContext()
	if !t.mux.Match(rctx, http.MethodGet, path) {
		return Route{}, false
	}
	pattern := rctx.RoutePattern()
	name, ok := t.names[pattern]
	if !ok {
		return Route{}, false
	}
	route := Route{Name: name, Path: path, Pattern: pattern}
	if n := len(rctx.URLParams.Keys); n > 0 {
		route.Params = make(map[string]string, n)
		for i, key := range rctx.URLParams.Keys {
			route.Params[key] = rctx.URLParams.Values[i]
		}
	}
	return route, true
}

// DetailPath builds the detail view path for a document id.
func DetailPath(id string) string {
	return strings.Replace(DetailPattern, "{id}", id, 1)
}

// MustResolve is Resolve for paths built by this package.
func (t *Table) MustResolve(path string) Route {
	route, ok := t.Resolve(path)
	if !ok {
		panic(fmt.Sprintf("router: no route for %q", path))
	}
	return route
}
