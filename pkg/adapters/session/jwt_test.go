package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratitude5dee/tendril/pkg/adapters/session"
	"github.com/gratitude5dee/tendril/pkg/domain"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestTokenSource_ValidToken(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	source := session.NewFromFunc(func() (string, error) { return token, nil })

	got, err := source.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Authenticated)
	assert.Equal(t, token, got.AccessToken)
}

func TestTokenSource_ExpiredToken(t *testing.T) {
	token := signedToken(t, time.Now().Add(-time.Hour))
	source := session.NewFromFunc(func() (string, error) { return token, nil })

	got, err := source.Current(context.Background())
	require.NoError(t, err)

	// Known user, unusable token: the caller should report an expired
	// session, not ask for a fresh sign-in.
	assert.True(t, got.Authenticated)
	assert.Empty(t, got.AccessToken)
}

func TestTokenSource_NoToken(t *testing.T) {
	source := session.NewFromFunc(func() (string, error) { return "", nil })

	got, err := source.Current(context.Background())
	require.NoError(t, err)
	assert.False(t, got.Authenticated)
}

func TestTokenSource_GarbageToken(t *testing.T) {
	source := session.NewFromFunc(func() (string, error) { return "not-a-jwt", nil })

	got, err := source.Current(context.Background())
	require.NoError(t, err)
	assert.False(t, got.Authenticated)
}

func TestTokenSource_FromEnv(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	t.Setenv("TENDRIL_TEST_TOKEN", token)

	source := session.NewFromEnv("TENDRIL_TEST_TOKEN")
	got, err := source.Current(context.Background())

	require.NoError(t, err)
	assert.True(t, got.Authenticated)

	// The variable is re-read on every observation.
	t.Setenv("TENDRIL_TEST_TOKEN", "")
	got, err = source.Current(context.Background())
	require.NoError(t, err)
	assert.False(t, got.Authenticated)
}

func TestTokenSource_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	source := session.NewFromFile(path)

	// Missing file reads as signed out.
	got, err := source.Current(context.Background())
	require.NoError(t, err)
	assert.False(t, got.Authenticated)

	token := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, os.WriteFile(path, []byte(token+"\n"), 0600))

	got, err = source.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Authenticated)
	assert.Equal(t, token, got.AccessToken, "token should be trimmed")
}

func TestStatic(t *testing.T) {
	source := session.NewStatic(domain.Session{Authenticated: true, AccessToken: "tok"})

	got, err := source.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Session{Authenticated: true, AccessToken: "tok"}, got)

	anon, err := session.NewAnonymous().Current(context.Background())
	require.NoError(t, err)
	assert.False(t, anon.Authenticated)
}
