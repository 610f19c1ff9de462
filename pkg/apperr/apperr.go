// Package apperr defines the error kinds shared across the service so that
// handlers can map domain failures to HTTP statuses without inspecting
// message strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the request boundary.
type Kind int

const (
	// KindValidation marks malformed or inconsistent input caught before any
	// mutation (bad amounts, splits that don't add up, empty participants).
	KindValidation Kind = iota
	// KindNotFound marks a missing user, group, expense, or ledger row.
	KindNotFound
	// KindConstraint marks a business-rule violation on well-formed input
	// (self-settlement, overpayment, duplicate member).
	KindConstraint
	// KindConcurrency marks a conflicting two-row update; callers may retry.
	KindConcurrency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConstraint:
		return "constraint"
	case KindConcurrency:
		return "concurrency"
	default:
		return "unknown"
	}
}

// Error is a classified error with a user-presentable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Validation builds a validation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a not-found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Constraint builds a constraint error.
func Constraint(format string, args ...any) *Error {
	return &Error{Kind: KindConstraint, Message: fmt.Sprintf(format, args...)}
}

// Concurrency builds a concurrency error.
func Concurrency(format string, args ...any) *Error {
	return &Error{Kind: KindConcurrency, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or ok=false if err carries no kind.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is an apperr.Error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
