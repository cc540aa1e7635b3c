package cart

import (
	"sync"
	"time"
)

// Store keeps one cart per checkout session in memory.
type Store struct {
	mu      sync.RWMutex
	carts   map[string]*Cart
	touched map[string]time.Time

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		carts:   make(map[string]*Cart),
		touched: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Get returns the session's cart, creating an empty one on first use.
// Every access refreshes the session's idle clock.
func (s *Store) Get(sessionID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touched[sessionID] = s.now()
	if existing, ok := s.carts[sessionID]; ok {
		return existing
	}
	created := New()
	s.carts[sessionID] = created
	return created
}

// Remove drops the session's cart entirely.
func (s *Store) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	delete(s.touched, sessionID)
}

// PruneIdle drops every cart that has not been accessed within maxIdle and
// reports how many were removed. Sessions this stale have expired in Redis,
// so their carts are unreachable anyway.
func (s *Store) PruneIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for sessionID, last := range s.touched {
		if last.Before(cutoff) {
			delete(s.carts, sessionID)
			delete(s.touched, sessionID)
			removed++
		}
	}
	return removed
}

// Len reports how many session carts are currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}
