// Package notify holds the application-wide error notification state.
//
// # Overview
//
// Every failed API call produces one short user-facing message. The Center
// keeps exactly one of them live at a time: a new message overwrites the old
// one and restarts the clear delay (five seconds by default).
//
// # Generations
//
// Each SetError and Reset increments a generation counter. The clear scheduled
// by SetError captures the generation it was scheduled under and does nothing
// if the counter has moved on. This keeps a stale timer from wiping a newer
// message when errors arrive faster than the clear delay:
//
//	t=0s   SetError("A")   gen=1, clear(1) at t=5s
//	t=3s   SetError("B")   gen=2, clear(2) at t=8s
//	t=5s   clear(1)        ignored, "B" stays visible
//	t=8s   clear(2)        record cleared
//
// # Observing
//
// Presentation code either reads Current or calls Subscribe and receives each
// change on a channel. The UI turns the channel into Bubble Tea messages so
// the banner updates without polling.
//
// A Center is injected where it is needed (the API client as its Notifier,
// the UI as its source) rather than living in a package-level variable.
package notify
