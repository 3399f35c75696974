// Package service holds the booking consistency core: sessions,
// availability, reservations and payments.  Every operation reports
// expected failures with the typed errors below; anything else is an
// unexpected store failure.
package service

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AuthReason tells apart unknown and expired credentials.
type AuthReason string

const (
	AuthInvalid AuthReason = "invalid"
	AuthExpired AuthReason = "expired"
)

// AuthError reports a token or credential problem.
type AuthError struct {
	Reason AuthReason
}

func (e *AuthError) Error() string {
	if e.Reason == AuthExpired {
		return "session expired"
	}
	return "invalid credentials"
}

// NotFoundError reports an unknown room or reservation.
type NotFoundError struct {
	Resource string
	ID       uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ConflictError reports a request that is well-formed but clashes with
// current state: an overlapping booking or an already paid reservation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// IntegrityError reports a uniqueness violation.
type IntegrityError struct {
	Message string
}

func (e *IntegrityError) Error() string { return e.Message }

func invalid(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

// IsAuth reports whether err is an AuthError and returns it.
func IsAuth(err error) (*AuthError, bool) {
	var ae *AuthError
	ok := errors.As(err, &ae)
	return ae, ok
}
