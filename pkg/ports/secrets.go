package ports

import (
	"context"

	"github.com/gratitude5dee/tendril/pkg/domain"
)

// SecretsService reveals credentials held by the remote platform on behalf of
// a signed-in user. Reveal is idempotent and safe to call again after a
// failure.
type SecretsService interface {
	// Reveal fetches the named secret using the session's access token.
	// Returns domain.ErrCredentialUnavailable when the service answers
	// without a usable value.
	Reveal(ctx context.Context, name string, accessToken string) (domain.Credential, error)
}
