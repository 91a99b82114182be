package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/raidsplit/internal/auth"
	"github.com/mmynk/raidsplit/internal/calculator"
	"github.com/mmynk/raidsplit/internal/catalog"
	"github.com/mmynk/raidsplit/internal/warcraftlogs"
)

// toConnectError maps domain and provider errors to Connect codes.
func toConnectError(err error) *connect.Error {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr
	}

	code := connect.CodeInternal
	switch {
	case errors.Is(err, warcraftlogs.ErrInvalidReportCode),
		errors.Is(err, calculator.ErrInvalidPlayerCount):
		code = connect.CodeInvalidArgument
	case errors.Is(err, catalog.ErrUnsupportedZone):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		code = connect.CodeUnauthenticated
	case errors.Is(err, warcraftlogs.ErrReportNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, warcraftlogs.ErrUpstream):
		code = connect.CodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	}
	return connect.NewError(code, err)
}
