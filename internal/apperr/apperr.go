// Package apperr is the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUpstream Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "upstream"
	}
}

// Error carries a user-facing message and, for upstream failures, the cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Msg: msg} }

func Forbidden(msg string) error { return &Error{Kind: KindForbidden, Msg: msg} }

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Upstream wraps a storage or I/O failure. A nil err yields nil.
func Upstream(msg string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindUpstream, Msg: msg, Err: err}
}

// KindOf reports the kind of err; anything outside the taxonomy is upstream.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUpstream
}

// Is reports whether err belongs to kind k.
func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }

func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing text of err and, for upstream failures, the
// underlying cause separately.
func Message(err error) (msg, cause string) {
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Err != nil {
			return ae.Msg, ae.Err.Error()
		}
		return ae.Msg, ""
	}
	return "Internal server error", err.Error()
}
