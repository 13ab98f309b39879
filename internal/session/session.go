package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/entremotivator/Syncup/internal/domain"
)

// State is a point-in-time copy of a session's fields. The identity and
// entitlement are copies: mutating a snapshot never reaches the session or
// the mirror store.
type State struct {
	ID            string
	Authenticated bool
	Identity      domain.Identity
	Entitlement   domain.Entitlement
	WPToken       string
	AuthStrategy  string
	CreatedAt     time.Time
	LastSeen      time.Time
}

// Session holds the per-user authentication state. Concurrent requests can
// carry the same session ID, so every field access goes through the mutex;
// readers take a Snapshot instead of holding the lock.
type Session struct {
	ID string

	mu            sync.Mutex
	authenticated bool
	identity      domain.Identity
	entitlement   domain.Entitlement
	wpToken       string
	authStrategy  string
	createdAt     time.Time
	lastSeen      time.Time
	initialized   bool
}

// New creates an initialized, unauthenticated session.
func New() *Session {
	s := &Session{ID: uuid.NewString()}
	s.Initialize()
	return s
}

// Initialize sets the defaults exactly once. Calling it on a live session is
// a no-op, so re-entering the login flow cannot wipe an authenticated state.
func (s *Session) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return
	}
	now := time.Now().UTC()
	s.authenticated = false
	s.identity = domain.Identity{}
	s.entitlement = domain.Entitlement{Tier: domain.TierNone}
	s.wpToken = ""
	s.authStrategy = ""
	s.createdAt = now
	s.lastSeen = now
	s.initialized = true
}

// Authenticate populates the session after a successful login.
func (s *Session) Authenticate(identity domain.Identity, entitlement domain.Entitlement, wpToken, strategy string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = true
	s.identity = identity
	s.entitlement = entitlement
	s.wpToken = wpToken
	s.authStrategy = strategy
	s.lastSeen = time.Now().UTC()
}

// Teardown clears the authenticated state unconditionally. It never fails
// and is safe to call on a session that was never authenticated.
func (s *Session) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	s.identity = domain.Identity{}
	s.entitlement = domain.Entitlement{Tier: domain.TierNone}
	s.wpToken = ""
	s.authStrategy = ""
	s.lastSeen = time.Now().UTC()
}

// Touch advances the idle clock.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now().UTC()
}

// Snapshot returns a consistent copy of the session's state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		ID:            s.ID,
		Authenticated: s.authenticated,
		Identity:      s.identity,
		Entitlement:   s.entitlement,
		WPToken:       s.wpToken,
		AuthStrategy:  s.authStrategy,
		CreatedAt:     s.createdAt,
		LastSeen:      s.lastSeen,
	}
}

// idleBefore reports whether the session was last seen before cutoff.
func (s *Session) idleBefore(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff)
}
