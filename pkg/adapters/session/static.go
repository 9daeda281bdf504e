package session

import (
	"context"

	"github.com/gratitude5dee/tendril/pkg/domain"
	"github.com/gratitude5dee/tendril/pkg/ports"
)

// Static is a SessionSource with a fixed session, for hosts that manage
// sign-in themselves and for tests.
type Static struct {
	session domain.Session
}

// NewStatic creates a source that always reports the given session.
func NewStatic(session domain.Session) *Static {
	return &Static{session: session}
}

// NewAnonymous creates a source that always reports a signed-out session.
func NewAnonymous() *Static {
	return &Static{session: domain.Anonymous()}
}

var _ ports.SessionSource = (*Static)(nil)

// Current returns the fixed session.
func (s *Static) Current(ctx context.Context) (domain.Session, error) {
	return s.session, nil
}
