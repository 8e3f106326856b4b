// Package session maps opaque bearer tokens to authenticated user ids.
// A token is a signed JWT whose jti keys a server-side record with an
// expiry, so logout revokes the session before the token itself expires.
// The core only ever sees the resolved user id.
package session

import (
	"context"
	"errors"
)

// ErrInvalidSession covers unknown, expired and revoked tokens alike.
var ErrInvalidSession = errors.New("session: invalid or expired")

// Store issues, resolves and revokes sessions.
type Store interface {
	// Create starts a session for userID and returns the bearer token.
	Create(ctx context.Context, userID int) (string, error)
	// Resolve returns the user id a live token belongs to.
	Resolve(ctx context.Context, token string) (int, error)
	// Destroy revokes the session behind token. Revoking an unknown
	// token is a no-op.
	Destroy(ctx context.Context, token string) error
}
