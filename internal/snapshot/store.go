package snapshot

import (
	"sync"

	"github.com/Crypto90/nowplayingd/internal/domain"
)

// Store is the single slot holding the current published snapshot. It is
// written only by the poller and read by any number of concurrent readers;
// reads always observe a complete snapshot, never a partially updated one.
type Store struct {
	mu      sync.RWMutex
	current domain.Snapshot
}

// NewStore creates a store seeded with the default snapshot
func NewStore() *Store {
	return &Store{current: domain.DefaultSnapshot()}
}

// Get returns a copy of the current snapshot
func (s *Store) Get() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set replaces the current snapshot wholesale
func (s *Store) Set(snap domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = snap
}
