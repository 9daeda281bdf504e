package ports

import (
	"context"

	"github.com/gratitude5dee/tendril/pkg/domain"
)

// SessionSource observes the sign-in state owned by the host application.
// Implementations only read; session lifecycle (login, refresh, logout)
// belongs to the external auth subsystem.
type SessionSource interface {
	// Current returns the session as it stands right now.
	Current(ctx context.Context) (domain.Session, error)
}
