// Package apperror defines the typed failures surfaced by the matching engine
// and the application admission path.
package apperror

import (
	"errors"
	"fmt"
)

// Kind identifies the failure type. Callers switch on it to pick a user-facing
// message or an HTTP status.
type Kind string

const (
	KindProvider             Kind = "provider_error"
	KindProviderAuth         Kind = "provider_auth_error"
	KindMatchingUnavailable  Kind = "matching_unavailable"
	KindRateLimitExceeded    Kind = "rate_limit_exceeded"
	KindDuplicateApplication Kind = "duplicate_application"
	KindForbidden            Kind = "forbidden"
	KindInvalidTransition    Kind = "invalid_transition"
	KindNotFound             Kind = "not_found"
	KindInvalidArgument      Kind = "invalid_argument"
	KindInternal             Kind = "internal"
)

// Retryable reports whether a caller may retry with backoff.
func (k Kind) Retryable() bool {
	return k == KindProvider || k == KindMatchingUnavailable
}

type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// Remaining is the quota left in the current window. Only set for
	// KindRateLimitExceeded.
	Remaining int
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so errors.Is(err, apperror.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is comparisons.
var (
	ErrProvider             = &Error{Kind: KindProvider}
	ErrProviderAuth         = &Error{Kind: KindProviderAuth}
	ErrMatchingUnavailable  = &Error{Kind: KindMatchingUnavailable}
	ErrRateLimitExceeded    = &Error{Kind: KindRateLimitExceeded}
	ErrDuplicateApplication = &Error{Kind: KindDuplicateApplication}
	ErrForbidden            = &Error{Kind: KindForbidden}
	ErrInvalidTransition    = &Error{Kind: KindInvalidTransition}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrInvalidArgument      = &Error{Kind: KindInvalidArgument}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func RateLimited(remaining int) *Error {
	return &Error{
		Kind:      KindRateLimitExceeded,
		Message:   "application rate limit exceeded",
		Remaining: remaining,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
