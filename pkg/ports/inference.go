package ports

import (
	"context"

	"github.com/gratitude5dee/tendril/pkg/domain"
)

// LogFunc receives progress lines relayed from the remote endpoint while a
// request is queued or running. A nil LogFunc means the caller has no
// interest in progress.
type LogFunc func(domain.LogEntry)

// InferenceClient carries accepted requests to the remote inference endpoint.
type InferenceClient interface {
	// Configure installs the credential used to authorize subsequent calls.
	// It may be called again at any time to swap the credential.
	Configure(credential domain.Credential)

	// Generate submits the request and blocks until the remote settles it.
	// Remote rejections surface as *domain.RemoteError so callers can
	// classify them. Generate imposes no local deadline; cancellation is the
	// context's business.
	Generate(ctx context.Context, req domain.GenerationRequest, logf LogFunc) (domain.GenerationResult, error)
}
