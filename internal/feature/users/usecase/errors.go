// Package usecase implements the bucketing engine for the users feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when no user record exists for an id.
	ErrUserNotFound = errors.New("user not found")

	// ErrExternalIDNotFound is returned when no index record exists for
	// an external id key.
	ErrExternalIDNotFound = errors.New("external id not found")

	// ErrExternalIDTaken is returned by a repository when a create-only
	// write finds a record already present at the key.
	ErrExternalIDTaken = errors.New("external id already taken")

	// ErrIndexInconsistent is returned when an index record points at a
	// user that cannot be read. This is a store-side consistency
	// violation, distinct from a genuine not-found, and is surfaced as a
	// server error.
	ErrIndexInconsistent = errors.New("uniqueness index references missing user")
)
