package mcp

import (
	"sync"
	"time"

	"github.com/google/uuid"

	cgerrors "github.com/standardbeagle/classgrep/internal/errors"
	"github.com/standardbeagle/classgrep/internal/search"
)

// sessionEntry is one paged search. mu serializes calls on the session.
type sessionEntry struct {
	mu       sync.Mutex
	id       string
	pattern  string
	session  *search.Session
	lastUsed time.Time
}

// sessionStore keeps live search sessions keyed by uuid. Idle sessions
// expire after ttl; at capacity the least recently used session is dropped.
type sessionStore struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
	ttl     time.Duration
	max     int
	now     func() time.Time
}

func newSessionStore(ttl time.Duration, max int) *sessionStore {
	return &sessionStore{
		entries: make(map[string]*sessionEntry),
		ttl:     ttl,
		max:     max,
		now:     time.Now,
	}
}

// add stores a session under a fresh id
func (s *sessionStore) add(pattern string, session *search.Session) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	for s.max > 0 && len(s.entries) >= s.max {
		s.evictOldestLocked()
	}

	e := &sessionEntry{
		id:       uuid.NewString(),
		pattern:  pattern,
		session:  session,
		lastUsed: s.now(),
	}
	s.entries[e.id] = e
	return e
}

// get returns a live session and marks it used
func (s *sessionStore) get(id string) (*sessionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	e, ok := s.entries[id]
	if !ok {
		return nil, cgerrors.ErrUnknownSession
	}
	e.lastUsed = s.now()
	return e, nil
}

func (s *sessionStore) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	return ok
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *sessionStore) pruneLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, e := range s.entries {
		if e.lastUsed.Before(cutoff) {
			delete(s.entries, id)
		}
	}
}

func (s *sessionStore) evictOldestLocked() {
	var oldest *sessionEntry
	for _, e := range s.entries {
		if oldest == nil || e.lastUsed.Before(oldest.lastUsed) {
			oldest = e
		}
	}
	if oldest != nil {
		delete(s.entries, oldest.id)
	}
}
