package client

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of a JWT without verifying the signature.
// It is for diagnostics only; the backend stays the authority on validity.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}
	if exp == nil {
		return time.Time{}, common.ErrNoExpiry
	}
	return exp.Time, nil
}
