// Package apierr defines the small, closed error taxonomy used across
// the system so the Request Edge can map any returned error to an HTTP
// status without every package needing to know about HTTP.
package apierr

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the taxonomy's buckets.
type Kind string

const (
	KindInput           Kind = "input"
	KindNotFound        Kind = "not_found"
	KindUnauthorized    Kind = "unauthorized"
	KindRateLimited     Kind = "rate_limited"
	KindUpstreamFailure Kind = "upstream_failure"
	KindStore           Kind = "store"
	KindTimeout         Kind = "timeout"
)

// Error is a classified error wrapping an underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func newErr(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func Input(msg string, cause error) *Error           { return newErr(KindInput, msg, cause) }
func NotFound(msg string, cause error) *Error        { return newErr(KindNotFound, msg, cause) }
func Unauthorized(msg string, cause error) *Error    { return newErr(KindUnauthorized, msg, cause) }
func RateLimited(msg string, cause error) *Error     { return newErr(KindRateLimited, msg, cause) }
func UpstreamFailure(msg string, cause error) *Error { return newErr(KindUpstreamFailure, msg, cause) }
func Store(msg string, cause error) *Error           { return newErr(KindStore, msg, cause) }
func Timeout(msg string, cause error) *Error         { return newErr(KindTimeout, msg, cause) }

// StatusFor returns the conventional HTTP status for a Kind. The Request
// Edge is the only consumer of this; every other package just returns
// and wraps errors.
func StatusFor(k Kind) int {
	switch k {
	case KindInput:
		return 400
	case KindUnauthorized:
		return 401
	case KindNotFound:
		return 404
	case KindRateLimited:
		return 429
	case KindTimeout:
		return 504
	case KindUpstreamFailure:
		return 502
	case KindStore:
		return 500
	default:
		return 500
	}
}

// As extracts the classified *Error from err, if present anywhere in its
// chain. The Request Edge calls this once per handler response to decide
// status code and envelope shape; an unclassified error falls back to
// KindStore/500.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
