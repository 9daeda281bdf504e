package domain

import "log/slog"

// Credential is the secret API key that authorizes inference calls.
type Credential string

// Empty reports whether no credential is present.
func (c Credential) Empty() bool {
	return c == ""
}

// LogValue implements slog.LogValuer. The raw key never reaches a log line.
func (c Credential) LogValue() slog.Value {
	if c.Empty() {
		return slog.StringValue("")
	}
	return slog.StringValue("[redacted]")
}

// Session describes the signed-in user as observed from the external auth
// subsystem. The node only reads sessions; it never creates, refreshes, or
// destroys them.
type Session struct {
	// Authenticated is true when a user is signed in.
	Authenticated bool

	// AccessToken is the bearer token presented to the secrets service.
	// May be empty even when Authenticated is true (expired session).
	AccessToken string
}

// Anonymous returns the signed-out session.
func Anonymous() Session {
	return Session{}
}
