package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/docdesk/internal/credentials"
)

// Snapshot is the latest session information available to the UI.
type Snapshot struct {
	Session     credentials.Session
	HasSession  bool
	LastChecked time.Time
	LastError   error
	Changes     int // number of times the session identity changed
}

// SignedIn reports whether a token is held that has not visibly expired.
func (s Snapshot) SignedIn(now time.Time) bool {
	return s.HasSession && !s.Session.Expired(now)
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records the result of a session check. A nil session with a nil
// error means no token is held. On error the previous session is kept and
// the error recorded.
func (s *Store) Update(session *credentials.Session, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastChecked = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		return
	}
	s.snapshot.LastError = nil

	if session == nil {
		if s.snapshot.HasSession {
			s.snapshot.Changes++
		}
		s.snapshot.Session = credentials.Session{}
		s.snapshot.HasSession = false
		return
	}
	if !s.snapshot.HasSession || s.snapshot.Session != *session {
		s.snapshot.Changes++
	}
	s.snapshot.Session = *session
	s.snapshot.HasSession = true
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
