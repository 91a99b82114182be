package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/raidsplit/internal/auth"
)

// ForwardBearer returns a middleware that picks up the caller's provider token
// from the Authorization header and stores it in the context for the API
// client. With required set, requests without a usable token are rejected;
// otherwise they continue and the server's own credentials are used.
func ForwardBearer(required bool) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			header := req.Header().Get("Authorization")
			if header == "" && !required {
				return next(ctx, req)
			}

			token, err := auth.CheckBearer(header, time.Now())
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(auth.WithToken(ctx, token), req)
		}
	}
}
