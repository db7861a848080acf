// Package session carries the per-request authentication state. A Session is
// either anonymous or bound to exactly one username.
package session

import (
	"context"
	"time"
)

// Session is the per-client authentication slot
type Session struct {
	// Username is empty for anonymous sessions
	Username string
	// IssuedAt is when the token was signed, zero for anonymous sessions
	// and for sessions built in code
	IssuedAt time.Time
}

// Anonymous returns a session with no authenticated user
func Anonymous() Session {
	return Session{}
}

// For returns a session authenticated as username
func For(username string) Session {
	return Session{Username: username}
}

// IsAnonymous reports whether no user is logged in
func (s Session) IsAnonymous() bool {
	return s.Username == ""
}

// IsOwner reports whether the session is authenticated as candidate
func (s Session) IsOwner(candidate string) bool {
	return !s.IsAnonymous() && s.Username == candidate
}

type contextKey string

const sessionContextKey contextKey = "session"

// WithSession returns a copy of ctx carrying s
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// FromContext returns the session stored in ctx, or an anonymous session
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(sessionContextKey).(Session)
	return s
}
