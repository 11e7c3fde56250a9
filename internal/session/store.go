// Package session keeps one game session per browser, in memory only.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"busyisland/internal/game"
)

// Entry is one browser's game plus the bits of UI state that outlive a
// single request.
type Entry struct {
	Session   *game.Session
	Flash     string // shown once on the next render
	Selection string // last line/category picked
	Period    string // last period picked

	mu       sync.Mutex
	lastSeen time.Time
}

// TakeFlash returns the pending flash message and clears it.
func (e *Entry) TakeFlash() string {
	f := e.Flash
	e.Flash = ""
	return f
}

// Store maps session ids to entries and drops entries idle for longer
// than the TTL.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	ttl     time.Duration
	factory func() *game.Session
	now     func() time.Time
}

// NewStore creates a store. factory builds the game session for a new id.
func NewStore(ttl time.Duration, factory func() *game.Session) *Store {
	return &Store{
		entries: make(map[string]*Entry),
		ttl:     ttl,
		factory: factory,
		now:     time.Now,
	}
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like one NewID produced.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// With runs fn with the entry for id, creating it if needed. Calls for the
// same id are serialised so one action is applied at a time.
func (s *Store) With(id string, fn func(e *Entry)) {
	e := s.get(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = s.now()
	fn(e)
}

func (s *Store) get(id string) *Entry {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		return e
	}
	e = &Entry{Session: s.factory(), lastSeen: s.now()}
	s.entries[id] = e
	return e
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Run evicts idle entries every interval. Blocks until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-ctx.Done():
			return
		}
	}
}

func (s *Store) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	for id, e := range s.entries {
		e.mu.Lock()
		idle := e.lastSeen.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(s.entries, id)
		}
	}
}
