package client

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// KeyLastPrediction is the session key the results view reads.
const KeyLastPrediction = "last_prediction"

type sessionEntry struct {
	value     json.RawMessage
	expiresAt time.Time
}

// Store holds short-lived values handed between views, such as the last
// comprehensive prediction. Entries expire after the TTL.
type Store struct {
	mu      sync.Mutex
	entries map[string]sessionEntry
	clock   clockwork.Clock
	ttl     time.Duration
}

// NewStore creates a session store. A nil clock uses real time.
func NewStore(ttl time.Duration, clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		entries: make(map[string]sessionEntry),
		clock:   clock,
		ttl:     ttl,
	}
}

// Put stores a value under key, replacing any previous value.
func (s *Store) Put(key string, value json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = sessionEntry{
		value:     value,
		expiresAt: s.clock.Now().Add(s.ttl),
	}
}

// Get returns the value for key if present and not expired. Expired entries
// are removed on access.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.clock.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return e.value, true
}

// Delete removes a key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}
