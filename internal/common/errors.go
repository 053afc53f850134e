package common

import (
	"errors"
	"net/http"
)

// Domain error taxonomy. Services return these wrapped with context; handlers
// map them to HTTP statuses, and scheduled jobs log them and move on.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotFound           = errors.New("not found")
	ErrFailedPrecondition = errors.New("failed precondition")
	ErrInternal           = errors.New("internal error")
)

// HTTPStatus maps a domain error to its response status. Unknown errors are
// treated as internal.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrFailedPrecondition):
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode maps a domain error to the machine-readable code used in the
// ErrorResponse envelope.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrInvalidArgument):
		return "INVALID_ARGUMENT"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrFailedPrecondition):
		return "FAILED_PRECONDITION"
	default:
		return "INTERNAL"
	}
}
