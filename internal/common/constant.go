// Package common contains constants shared by the onboarding client packages:
// durable storage keys, header names and default endpoint paths.
package common

// Durable storage keys. The Session Store and the API client read and write
// the same locations without coordinating with each other.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	// UserSnapshotKey holds the persisted {"user": ...} snapshot.
	UserSnapshotKey = "auth-storage"
)

// HTTP headers set by the outbound interceptor.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)

// RefreshPath is the backend endpoint used to mint a new access token.
// Failures on this path are never retried.
const RefreshPath = "/auth/refresh/"

// DefaultLoginPath is the entry point reported to subscribers when the
// session is invalidated.
const DefaultLoginPath = "/auth/login"
