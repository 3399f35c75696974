// Package repository defines the persistence boundary of the booking
// service and its MySQL implementation.  The sentinel errors below are
// shared by every implementation so that the service layer can tell
// "missing" and "unique constraint violated" apart from I/O failures.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
// Services translate it into a NotFoundError or an AuthError.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint (email, session token, payment per reservation,
// transaction code).
var ErrDuplicate = errors.New("duplicate")
