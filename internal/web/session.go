package web

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"rangecal/internal/calendar"
	appLog "rangecal/internal/log"
)

var errSessionNotFound = errors.New("session not found")

// Session is one browser's calendar. The engine is single-threaded, so every
// call goes through Do.
type Session struct {
	ID string

	mu       sync.Mutex
	engine   *calendar.Engine
	pending  []calendar.Event
	lastSeen time.Time
}

// Do runs fn against the engine and returns the events it emitted.
func (s *Session) Do(fn func(e *calendar.Engine)) []calendar.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	s.pending = s.pending[:0]
	fn(s.engine)
	out := make([]calendar.Event, len(s.pending))
	copy(out, s.pending)
	return out
}

// Store maps session ids to sessions.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  func() *calendar.Engine
}

// NewStore returns an empty store creating engines with factory.
func NewStore(factory func() *calendar.Engine) *Store {
	return &Store{sessions: make(map[string]*Session), factory: factory}
}

// Create starts a new session with a fresh engine.
func (st *Store) Create() *Session {
	s := &Session{ID: uuid.New().String(), engine: st.factory(), lastSeen: time.Now()}
	s.engine.Subscribe(func(ev calendar.Event) {
		s.pending = append(s.pending, ev)
		appLog.Debug("calendar event", "session", s.ID, "event", ev.Name(), "detail", ev.Describe())
	})

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
	return s
}

// Get looks up id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, errSessionNotFound
	}
	return s, nil
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
func (st *Store) GetOrCreate(id string) *Session {
	if id != "" {
		if s, err := st.Get(id); err == nil {
			return s
		}
	}
	return st.Create()
}

// Delete removes id and reports whether it existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Each runs fn on every session under that session's lock.
func (st *Store) Each(fn func(e *calendar.Engine)) {
	st.mu.Lock()
	all := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		all = append(all, s)
	}
	st.mu.Unlock()

	for _, s := range all {
		s.mu.Lock()
		fn(s.engine)
		s.mu.Unlock()
	}
}

// Sweep drops sessions idle for longer than maxIdle and returns how many
// were removed.
func (st *Store) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}
