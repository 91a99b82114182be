package auth

import (
	"context"
)

// TokenSource supplies bearer tokens for the statistics provider API.
// The server either forwards the caller's token or uses its own client
// credentials.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type contextKey struct{}

// WithToken stores a caller's provider token in the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKey{}, token)
}

// TokenFromContext returns the caller's provider token, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(contextKey{}).(string)
	return token, ok && token != ""
}

// Forwarding prefers the caller's token and falls back to another source.
// A nil fallback makes the caller's token mandatory.
type Forwarding struct {
	Fallback TokenSource
}

func (f Forwarding) Token(ctx context.Context) (string, error) {
	if token, ok := TokenFromContext(ctx); ok {
		return token, nil
	}
	if f.Fallback == nil {
		return "", ErrMissingToken
	}
	return f.Fallback.Token(ctx)
}
