// Package apperr carries the failure kinds the API reports to callers.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the stable, machine-readable category of a failure.
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindConflict           Kind = "conflict"
	KindUnauthenticated    Kind = "unauthenticated"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindInactiveUser       Kind = "inactive_user"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindInternal           Kind = "internal"
)

// Error is a failure with a caller-facing detail. Err, when set, is the
// underlying cause and is never shown to callers.
type Error struct {
	Kind   Kind
	Detail string
	Field  string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Detail + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the kind onto an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindInactiveUser:
		return http.StatusBadRequest
	case KindUnauthenticated, KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Validation(field, detail string) *Error {
	return &Error{Kind: KindValidation, Field: field, Detail: detail}
}

func Conflict(field, detail string, cause error) *Error {
	return &Error{Kind: KindConflict, Field: field, Detail: detail, Err: cause}
}

func Unauthenticated(cause error) *Error {
	return &Error{Kind: KindUnauthenticated, Detail: "Could not validate credentials", Err: cause}
}

func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Detail: "Incorrect email or password"}
}

func InactiveUser() *Error {
	return &Error{Kind: KindInactiveUser, Detail: "Inactive user"}
}

func Forbidden() *Error {
	return &Error{Kind: KindForbidden, Detail: "Not enough permissions"}
}

func NotFound(detail string) *Error {
	return &Error{Kind: KindNotFound, Detail: detail}
}

func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Detail: "internal server error", Err: cause}
}

// From returns err as an *Error, wrapping anything else as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
