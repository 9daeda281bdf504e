package ports

import (
	"context"

	"github.com/gratitude5dee/tendril/pkg/domain"
)

// CredentialStore defines the interface for the node's single credential slot.
// Consumers read the slot at the moment they need it; there is no change
// subscription.
type CredentialStore interface {
	// Get returns the stored credential.
	// Returns domain.ErrCredentialNotFound if the slot is empty.
	Get(ctx context.Context) (domain.Credential, error)

	// Set replaces the slot content.
	Set(ctx context.Context, credential domain.Credential) error

	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
}
