package middleware

import (
	"context"
	"log/slog"

	"github.com/gratitude5dee/tendril/pkg/domain"
	"github.com/gratitude5dee/tendril/pkg/ports"
)

type auditMiddleware struct {
	next   ports.CredentialStore
	logger *slog.Logger
}

// NewAuditMiddleware creates a middleware that logs every slot operation.
// Log lines record the operation and its outcome, never the credential value.
func NewAuditMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.CredentialStore) ports.CredentialStore {
		return &auditMiddleware{next: next, logger: logger}
	}
}

func (m *auditMiddleware) Get(ctx context.Context) (domain.Credential, error) {
	credential, err := m.next.Get(ctx)
	if err != nil {
		m.logger.DebugContext(ctx, "credential read", "present", false)
		return "", err
	}
	m.logger.DebugContext(ctx, "credential read", "present", true)
	return credential, nil
}

func (m *auditMiddleware) Set(ctx context.Context, credential domain.Credential) error {
	err := m.next.Set(ctx, credential)
	if err != nil {
		m.logger.WarnContext(ctx, "credential store failed", "err", err)
		return err
	}
	m.logger.InfoContext(ctx, "credential stored")
	return nil
}

func (m *auditMiddleware) Clear(ctx context.Context) error {
	err := m.next.Clear(ctx)
	if err != nil {
		m.logger.WarnContext(ctx, "credential clear failed", "err", err)
		return err
	}
	m.logger.InfoContext(ctx, "credential cleared")
	return nil
}
