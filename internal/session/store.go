package session

import (
	"sync"
	"time"
)

// Store is an in-memory session store keyed by session ID. Sessions are
// process-local; a restart logs everyone out, which matches how the
// WordPress token works anyway.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	maxAge   time.Duration
}

// NewStore creates a store that considers sessions idle for longer than
// maxAge stale.
func NewStore(maxAge time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		maxAge:   maxAge,
	}
}

// Get returns the session for id, if present.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, creating a fresh one when the ID
// is unknown or empty.
func (st *Store) GetOrCreate(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	if id != "" {
		if s, ok := st.sessions[id]; ok {
			return s
		}
	}
	s := New()
	st.sessions[s.ID] = s
	return s
}

// Delete removes a session outright.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// PruneStale drops sessions idle beyond the store's max age and returns how
// many were removed.
func (st *Store) PruneStale() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	cutoff := time.Now().UTC().Add(-st.maxAge)
	pruned := 0
	for id, s := range st.sessions {
		if s.idleBefore(cutoff) {
			delete(st.sessions, id)
			pruned++
		}
	}
	return pruned
}
