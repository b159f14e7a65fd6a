package memory

import (
	"context"
	"sync"

	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/repository"
)

// Store keeps cart snapshots in process memory, keyed by session.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string][]domain.CartItem
	saves     map[string]int
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		snapshots: make(map[string][]domain.CartItem),
		saves:     make(map[string]int),
	}
}

// Factory returns a repository.SnapshotStoreFactory backed by s.
func (s *Store) Factory() repository.SnapshotStoreFactory {
	return func(sessionID string) repository.CartSnapshotStore {
		return s.Session(sessionID)
	}
}

// Session returns the snapshot store for one session.
func (s *Store) Session(sessionID string) *SessionStore {
	return &SessionStore{parent: s, sessionID: sessionID}
}

// Saves reports how many times the session's snapshot was written.
func (s *Store) Saves(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves[sessionID]
}

// SessionStore implements repository.CartSnapshotStore for one session.
type SessionStore struct {
	parent    *Store
	sessionID string
}

// Load returns a copy of the saved items.
func (s *SessionStore) Load(_ context.Context) ([]domain.CartItem, error) {
	s.parent.mu.RLock()
	defer s.parent.mu.RUnlock()
	return domain.CloneItems(s.parent.snapshots[s.sessionID]), nil
}

// Save stores a copy of items.
func (s *SessionStore) Save(_ context.Context, items []domain.CartItem) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	s.parent.snapshots[s.sessionID] = domain.CloneItems(items)
	s.parent.saves[s.sessionID]++
	return nil
}
