package common

import "errors"

var (
	// ErrInvalidToken is returned when a bearer token cannot be decoded.
	ErrInvalidToken = errors.New("invalid token")

	// ErrNoExpiry is returned for tokens without an exp claim.
	ErrNoExpiry = errors.New("token has no expiry")
)
