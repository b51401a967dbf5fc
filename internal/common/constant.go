// Package common contains shared constants and small helpers used across
// camkeeper components.
package common

// Header names attached to outbound data API requests.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-Id"
	BearerPrefix            = "Bearer "
)

// Keys of the local metadata table that hold the persisted session.
const (
	AccessTokenKey  = "access_token"
	IDTokenKey      = "id_token"
	RefreshTokenKey = "refresh_token"
	UserKey         = "user"
)

// LastEmailKey holds the email of the last successful sign-in. It is not a
// session slot and survives sign-out.
const LastEmailKey = "last_email"

// SessionKeys lists every metadata key owned by the token store.
var SessionKeys = []string{AccessTokenKey, IDTokenKey, RefreshTokenKey, UserKey}
