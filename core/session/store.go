package session

import (
	"sync"

	"github.com/Joud158/PolyLab/core/user"
)

// Session is an immutable snapshot of the store, safe to hand to the guard.
// Ready flips true once the initial bootstrap finished, whether or not it
// produced an identity; routes must not redirect before then.
type Session struct {
	Identity *user.Identity
	Ready    bool
}

func (s Session) Authenticated() bool { return s.Identity != nil }

// Store owns the current authenticated identity for the lifetime of the
// application. It is created at app start, populated by a one-time bootstrap,
// and torn down at logout.
type Store struct {
	mu       sync.RWMutex
	identity *user.Identity
	ready    bool
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess := Session{Ready: s.ready}
	if s.identity != nil {
		id := *s.identity
		sess.Identity = &id
	}
	return sess
}

func (s *Store) set(id user.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = &id
}

func (s *Store) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
}

func (s *Store) markReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
}
