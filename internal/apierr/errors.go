// Package apierr provides the structured error taxonomy shared across the
// execution core: every component returns one of these kinds rather than
// an ad-hoc error string, so the REST boundary can translate it to a
// stable HTTP status without guessing.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable machine-readable error classification (spec §7).
type Kind string

const (
	KindInvalidInput         Kind = "INVALID_INPUT"
	KindNotOwner             Kind = "NOT_OWNER"
	KindDeviceBusy           Kind = "DEVICE_BUSY"
	KindHostUnreachable      Kind = "HOST_UNREACHABLE"
	KindInfeasible           Kind = "INFEASIBLE"
	KindNeedsDisambiguation  Kind = "NEEDS_DISAMBIGUATION"
	KindNotFound             Kind = "NOT_FOUND"
	KindTimeout              Kind = "TIMEOUT"
	KindCancelled            Kind = "CANCELLED"
	KindInternal             Kind = "INTERNAL"
)

// Error is the structured error type returned by every public operation.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind around a lower-level cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithDetails attaches structured context (e.g. conflicting candidates for
// NEEDS_DISAMBIGUATION) and returns the same error for chaining.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// As extracts an *Error from err, if any wraps one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HTTPStatus maps a Kind to the status code the REST boundary should emit.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotOwner:
		return http.StatusForbidden
	case KindDeviceBusy:
		return http.StatusConflict
	case KindHostUnreachable:
		return http.StatusBadGateway
	case KindInfeasible:
		return http.StatusUnprocessableEntity
	case KindNeedsDisambiguation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindCancelled:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
