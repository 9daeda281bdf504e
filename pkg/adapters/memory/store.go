package memory

import (
	"context"
	"sync"

	"github.com/gratitude5dee/tendril/pkg/domain"
)

// Store implements ports.CredentialStore in memory.
// Safe for concurrent use.
type Store struct {
	credential domain.Credential
	present    bool
	mu         sync.RWMutex
}

// NewStore creates a new in-memory store with an empty slot.
func NewStore() *Store {
	return &Store{}
}

// Get returns the stored credential.
func (s *Store) Get(ctx context.Context) (domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.present {
		return "", domain.ErrCredentialNotFound
	}
	return s.credential, nil
}

// Set replaces the slot content.
func (s *Store) Set(ctx context.Context, credential domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = credential
	s.present = true
	return nil
}

// Clear empties the slot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = ""
	s.present = false
	return nil
}
