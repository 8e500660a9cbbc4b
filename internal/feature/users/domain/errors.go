// Package domain defines domain-level errors for the users feature.
package domain

import "errors"

// Domain errors represent caller-supplied data violating an invariant.
// The transport layer maps them to 400 responses; they are never retried.
var (
	// ErrNoExternalIDs is returned when a create request carries no
	// external ids at all.
	ErrNoExternalIDs = errors.New("at least one external id is required")

	// ErrDuplicateExternalID is returned when a single create request
	// lists the same (type, id) pair twice. Rejected before any store
	// write, since the uniqueness check cannot tell a self-conflict from
	// an external race.
	ErrDuplicateExternalID = errors.New("duplicate external id in request")

	// ErrExternalIDConflict is returned when another user already owns
	// one of the requested external ids.
	ErrExternalIDConflict = errors.New("external id already exists")

	// ErrUnknownExternalIDType is returned when an external id type
	// literal is not part of the known set.
	ErrUnknownExternalIDType = errors.New("unknown external id type")

	// ErrMalformedKey is returned when a stored index key cannot be
	// decoded back into a typed external id.
	ErrMalformedKey = errors.New("malformed external id key")
)
