package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/plandy-app/flandy/internal/plandy"
)

// Session holds the authenticated identity for this run. The bearer token
// itself lives on the client; the copy here exists so the UI can persist it
// and show who is logged in.
type Session struct {
	Token string
	User  *plandy.User
}

// Authenticated reports whether a session is present.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Snapshot represents the latest backend data available to the UI.
type Snapshot struct {
	Tasks               []plandy.Task
	Today               []plandy.ScheduleBlock
	Scores              []plandy.WorkLifeScore
	Healthy             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the backend has been unreachable for multiple
// polls in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates between the background poller and
// the UI. Zero value is ready to use.
type Store struct {
	mu       sync.RWMutex
	session  Session
	snapshot Snapshot
}

// SetSession installs the authenticated session after login or register.
func (s *Store) SetSession(token string, user *plandy.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{Token: token, User: cloneUser(user)}
}

// ClearSession drops the session, typically after logout or a 401. The data
// snapshot is cleared with it: it belonged to the old identity.
func (s *Store) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{}
	s.snapshot = Snapshot{}
}

// Session returns a copy of the current session.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Session{Token: s.session.Token, User: cloneUser(s.session.User)}
}

// Update replaces the stored snapshot. When err is non-nil the previous
// data is kept but the error is recorded for visibility.
func (s *Store) Update(tasks []plandy.Task, today []plandy.ScheduleBlock, scores []plandy.WorkLifeScore, healthy bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.Healthy = healthy
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Tasks = cloneSlice(tasks)
	s.snapshot.Today = cloneSlice(today)
	s.snapshot.Scores = cloneSlice(scores)
	s.snapshot.Healthy = healthy
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Tasks = cloneSlice(s.snapshot.Tasks)
	snap.Today = cloneSlice(s.snapshot.Today)
	snap.Scores = cloneSlice(s.snapshot.Scores)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneSlice[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}

func cloneUser(u *plandy.User) *plandy.User {
	if u == nil {
		return nil
	}
	dup := *u
	return &dup
}
