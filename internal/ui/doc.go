// Package ui is docdesk's Bubble Tea terminal interface.
//
// Two views hang off the router table: the search view at "/" and the
// document view at "/detail/{id}". Opening a result pushes the current path on
// a history stack; esc pops it, so the search view comes back with its
// keyword, tags and page intact.
//
// The model never talks HTTP itself. Commands call the Backend (the api
// façade) and turn results into messages; failures arrive twice: as a
// failedMsg that ends the loading state, and as a notify.Record on the banner
// subscription carrying the user-facing text. Only the newest search may
// replace the result list, so slow responses to abandoned queries are
// dropped.
//
// Files:
//
//   - app.go: Model, Update loop, navigation
//   - backend.go: Backend interface, commands, initial errgroup load
//   - search.go, detail.go: the two views
//   - banner.go, header.go, help.go: chrome
//   - theme.go, strings.go: styling and CJK-aware text helpers
package ui
