// Package apperr defines the error taxonomy shared by every component.
// Handlers map these to HTTP statuses in one place; everything below the
// handler layer returns them wrapped with context.
package apperr

import "errors"

var (
	// ErrUnauthenticated is returned for a missing, invalid, or expired
	// credential.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrUnverified is returned for a valid credential whose account has not
	// confirmed its email yet.
	ErrUnverified = errors.New("account not verified")
	// ErrForbidden is returned for a cross-tenant or ownership violation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when an entity is absent or filtered out by
	// tenant scope. Callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned for uniqueness violations and blocked state
	// changes (duplicate team name, second tenant for an owner, ...).
	ErrConflict = errors.New("conflict")
	// ErrInvalidStatus is returned when a status write names a value outside
	// the task status enum.
	ErrInvalidStatus = errors.New("invalid status")
)
