// Package state holds the session snapshot shared between the session
// watcher and the UI.
//
// The watcher re-reads the credential token on an interval, inspects it and
// calls Update; the UI reads Snapshot on its own tick to render the header.
// A sync.RWMutex guards the snapshot so reads never block on each other.
//
//	watcher:  token → credentials.Inspect → store.Update
//	ui:       tick  → store.Snapshot     → header
//
// Update semantics:
//
//	store.Update(&session, nil)  // token held, session replaced
//	store.Update(nil, nil)       // no token, signed out
//	store.Update(nil, err)       // inspection failed, previous session kept
//
// The zero Store is ready to use.
package state
