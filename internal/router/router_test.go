package router

import "testing"

func TestResolve(t *testing.T) {
	table := New()

	cases := []struct {
		path string
		ok   bool
		name Name
		id   string
	}{
		{"/", true, Search, ""},
		{"", true, Search, ""},
		{"/detail/42", true, Detail, "42"},
		{"/detail/abc-1", true, Detail, "abc-1"},
		{"/detail/", false, "", ""},
		{"/detail/42/extra", false, "", ""},
		{"/nope", false, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			route, ok := table.Resolve(tc.path)
			if ok != tc.ok {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tc.path, ok, tc.ok)
			}
			if !ok {
				return
			}
			if route.Name != tc.name {
				t.Fatalf("Resolve(%q).Name = %q, want %q", tc.path, route.Name, tc.name)
			}
			if got := route.Param("id"); got != tc.id {
				t.Fatalf("Resolve(%q) id = %q, want %q", tc.path, got, tc.id)
			}
		})
	}
}

func TestDetailPathRoundTrip(t *testing.T) {
	table := New()
	path := DetailPath("7")
	if path != "/detail/7" {
		t.Fatalf("DetailPath = %q, want /detail/7", path)
	}
	route := table.MustResolve(path)
	if route.Name != Detail || route.Param("id") != "7" || route.Pattern != DetailPattern {
		t.Fatalf("route = %#v, want detail id 7", route)
	}
}

func TestMustResolvePanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("MustResolve did not panic")
		}
	}()
	New().MustResolve("/missing")
}
