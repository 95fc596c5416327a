// Package utils collects the small cross-cutting helpers the identity
// backend shares between layers: context keys for the authenticated account,
// bcrypt hashing, JSON response writing, the outbound HTTP client, JWT
// generation and parsing, and reset-key generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys so values stored by this
// package cannot collide with string keys from other packages.
type contextKey string

// String implements fmt.Stringer.
func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey carries the authenticated account's id through the request
// context. The auth middleware writes it after validating the bearer token;
// handlers read it back through [GetUserIDFromContext].
var UserIDCtxKey = contextKey("userID")

// GetUserIDFromContext retrieves the authenticated account's id from the
// context. The flag is false when no id was stored or the stored value is
// not an int64.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}
