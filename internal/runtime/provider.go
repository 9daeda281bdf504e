package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/gratitude5dee/tendril/pkg/domain"
)

// Initialize resolves the node's credential for the given session: the local
// store is consulted first, and only on a miss is the platform secrets
// service asked to reveal the secret, which is then persisted back. The
// inference client is configured exactly once on success.
//
// The session gates remote resolution. An unauthenticated session returns
// ErrNotAuthenticated, an authenticated session without a usable access
// token returns ErrSessionExpired; a credential already in the store is not
// reachable either way, because a signed-out editor must not generate.
func (n *Node) Initialize(ctx context.Context, session domain.Session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.ErrorContext(ctx, "credential initialization panicked", "panic", r)
			n.resetStore(ctx)
			n.notifier.Notify(initializationFailedNotice())
			err = fmt.Errorf("initializing credential: panic: %v", r)
		}
	}()

	if !session.Authenticated {
		n.logger.InfoContext(ctx, "initialization skipped, not signed in")
		n.notifier.Notify(domain.Notice{
			Title:       "Sign in required",
			Description: "Sign in to generate text with this node.",
			Severity:    domain.SeverityWarning,
		})
		return domain.ErrNotAuthenticated
	}

	if session.AccessToken == "" {
		n.logger.InfoContext(ctx, "initialization skipped, session expired")
		n.notifier.Notify(domain.Notice{
			Title:       "Session expired",
			Description: "Sign in again to continue.",
			Severity:    domain.SeverityWarning,
		})
		return domain.ErrSessionExpired
	}

	credential, err := n.store.Get(ctx)
	switch {
	case err == nil:
		n.client.Configure(credential)
		n.logger.DebugContext(ctx, "credential resolved from store")
		return nil
	case !errors.Is(err, domain.ErrCredentialNotFound):
		n.logger.ErrorContext(ctx, "credential store read failed", "err", err)
		n.resetStore(ctx)
		n.notifier.Notify(initializationFailedNotice())
		return fmt.Errorf("reading credential store: %w", err)
	}

	credential, err = n.secrets.Reveal(ctx, n.secretName, session.AccessToken)
	if err != nil {
		n.logger.WarnContext(ctx, "credential fetch failed", "secret", n.secretName, "err", err)
		n.notifier.Notify(domain.Notice{
			Title:       "Credential unavailable",
			Description: "Could not retrieve your API credential. Add it in settings.",
			Severity:    domain.SeverityError,
		})
		if !errors.Is(err, domain.ErrCredentialUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrCredentialUnavailable, err)
		}
		return fmt.Errorf("fetching credential %q: %w", n.secretName, err)
	}

	if err := n.store.Set(ctx, credential); err != nil {
		n.logger.ErrorContext(ctx, "persisting credential failed", "err", err)
		n.resetStore(ctx)
		n.notifier.Notify(initializationFailedNotice())
		return fmt.Errorf("persisting credential: %w", err)
	}

	n.client.Configure(credential)
	n.logger.InfoContext(ctx, "credential resolved from secrets service", "secret", n.secretName)
	return nil
}

// resetStore clears the credential slot so a later attempt starts clean.
func (n *Node) resetStore(ctx context.Context) {
	if err := n.store.Clear(ctx); err != nil {
		n.logger.ErrorContext(ctx, "credential store clear failed", "err", err)
	}
}

func initializationFailedNotice() domain.Notice {
	return domain.Notice{
		Title:       "Initialization failed",
		Description: "Credential setup failed. Add your key in settings.",
		Severity:    domain.SeverityError,
	}
}
