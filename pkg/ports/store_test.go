package ports_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gratitude5dee/tendril/pkg/domain"
)

// mockStore is a minimal in-memory CredentialStore used to pin down the
// reference behavior adapters are expected to reproduce.
type mockStore struct {
	credential domain.Credential
	present    bool
}

func (m *mockStore) Get(ctx context.Context) (domain.Credential, error) {
	if !m.present {
		return "", domain.ErrCredentialNotFound
	}
	return m.credential, nil
}

func (m *mockStore) Set(ctx context.Context, credential domain.Credential) error {
	m.credential = credential
	m.present = true
	return nil
}

func (m *mockStore) Clear(ctx context.Context) error {
	m.credential = ""
	m.present = false
	return nil
}

func TestCredentialStore_Contract(t *testing.T) {
	// Verifies the reference slot semantics future adapters must follow.

	ctx := context.Background()
	store := &mockStore{}

	// 1. Empty slot
	_, err := store.Get(ctx)
	if !errors.Is(err, domain.ErrCredentialNotFound) {
		t.Errorf("Expected ErrCredentialNotFound, got %v", err)
	}

	// 2. Set
	if err := store.Set(ctx, "fal-key"); err != nil {
		t.Fatalf("Failed to set credential: %v", err)
	}

	// 3. Get
	got, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Failed to get credential: %v", err)
	}
	if got != "fal-key" {
		t.Errorf("Expected credential 'fal-key', got %q", got)
	}

	// 4. Clear
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Failed to clear credential: %v", err)
	}

	// 5. Get after clear
	_, err = store.Get(ctx)
	if !errors.Is(err, domain.ErrCredentialNotFound) {
		t.Errorf("Expected ErrCredentialNotFound after clear, got %v", err)
	}

	// 6. Clear is idempotent
	if err := store.Clear(ctx); err != nil {
		t.Errorf("Clearing an empty slot should not fail: %v", err)
	}
}
