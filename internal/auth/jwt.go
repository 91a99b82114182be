package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// TokenExpiry reads the exp claim of a provider access token. The signature is
// not checked: the provider verifies its own tokens, this is only used to know
// when to refresh. ok is false for opaque tokens and tokens without exp.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// CheckBearer validates the shape of an Authorization header value and returns
// the token. Tokens that are JWTs must not be expired at now.
func CheckBearer(header string, now time.Time) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	token = strings.TrimSpace(token)

	if exp, ok := TokenExpiry(token); ok && !now.Before(exp) {
		return "", fmt.Errorf("%w: expired at %s", ErrInvalidToken, exp.Format(time.RFC3339))
	}
	return token, nil
}
