package session

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gratitude5dee/tendril/pkg/domain"
	"github.com/gratitude5dee/tendril/pkg/ports"
)

// TokenSource derives the session from a platform-issued JWT access token read
// fresh on every observation. The external auth subsystem owns issuance and
// signature verification; this source only reads the expiry claim to decide
// whether the token is still worth presenting.
type TokenSource struct {
	read func() (string, error)
}

// NewFromEnv reads the token from an environment variable on each call.
func NewFromEnv(name string) *TokenSource {
	return &TokenSource{
		read: func() (string, error) {
			return os.Getenv(name), nil
		},
	}
}

// NewFromFile reads the token from a file on each call. A missing file means
// signed out.
func NewFromFile(path string) *TokenSource {
	return &TokenSource{
		read: func() (string, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					return "", nil
				}
				return "", fmt.Errorf("reading token file: %w", err)
			}
			return strings.TrimSpace(string(data)), nil
		},
	}
}

// NewFromFunc builds a source around a custom token reader.
func NewFromFunc(read func() (string, error)) *TokenSource {
	return &TokenSource{read: read}
}

var _ ports.SessionSource = (*TokenSource)(nil)

// Current reads the token and derives the session. An absent or unparseable
// token reads as signed out; an expired token reads as authenticated with no
// usable access token, so callers can tell "sign in" from "session expired".
func (s *TokenSource) Current(ctx context.Context) (domain.Session, error) {
	token, err := s.read()
	if err != nil {
		return domain.Session{}, err
	}
	if token == "" {
		return domain.Anonymous(), nil
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.Anonymous(), nil
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return domain.Session{Authenticated: true, AccessToken: ""}, nil
	}

	return domain.Session{Authenticated: true, AccessToken: token}, nil
}
