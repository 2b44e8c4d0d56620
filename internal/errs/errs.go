package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so the transport layer can pick a status code.
type Kind uint8

const (
	KindServerError Kind = iota
	KindUnauthorized
	KindNotFound
	KindInvalidInput
	KindConflict
	KindUpstreamFailure
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindConflict:
		return "conflict"
	case KindUpstreamFailure:
		return "upstream_failure"
	default:
		return "server_error"
	}
}

// HTTPStatus maps a kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error. Msg is safe to show to clients; Err is the
// underlying cause and is only ever logged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Public returns the client facing message. Server side kinds never expose
// their cause.
func (e *Error) Public() string {
	switch e.Kind {
	case KindServerError:
		return "internal server error"
	case KindUpstreamFailure:
		if e.Msg == "" {
			return "upstream service failure"
		}
	}
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Msg
}

func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Msg: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Msg: msg} }

func Invalid(msg string) error { return &Error{Kind: KindInvalidInput, Msg: msg} }

func Invalidf(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(msg string) error { return &Error{Kind: KindConflict, Msg: msg} }

// Upstream wraps a failure of an external provider (media store, mailer,
// identity provider).
func Upstream(msg string, err error) error {
	return &Error{Kind: KindUpstreamFailure, Msg: msg, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindServerError, Err: err}
}

// KindOf reports the kind of err. Unclassified errors are server errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServerError
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == k
}

// From returns err as a classified error, wrapping unknown errors as server
// errors.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindServerError, Err: err}
}
