// Package entity defines the domain entities for the users feature.
package entity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kopparam/aerospike-bucketing/internal/feature/users/domain"
)

// ExternalIDType identifies the external system an alternate user
// identifier comes from.
type ExternalIDType string

const (
	TypeUnknown         ExternalIDType = "UNKNOWN"
	TypeGoCustomerID    ExternalIDType = "GO_CUSTOMER_ID"
	TypePayAccountID    ExternalIDType = "PAY_ACCOUNT_ID"
	TypeLendingPlatform ExternalIDType = "LENDING_PLATFORM_ID"
)

// externalIDTypes is the closed set of valid type literals.
var externalIDTypes = map[ExternalIDType]struct{}{
	TypeUnknown:         {},
	TypeGoCustomerID:    {},
	TypePayAccountID:    {},
	TypeLendingPlatform: {},
}

// Valid reports whether t is one of the known type literals.
func (t ExternalIDType) Valid() bool {
	_, ok := externalIDTypes[t]
	return ok
}

func (t ExternalIDType) String() string {
	return string(t)
}

// UnmarshalJSON decodes a type literal strictly: an unrecognized literal is
// a deserialization error, it is never coerced to UNKNOWN.
func (t *ExternalIDType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed := ExternalIDType(s)
	if !parsed.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownExternalIDType, s)
	}
	*t = parsed
	return nil
}

// ExternalID is an alternate, globally-unique identifier for a user,
// tagged with the system it originates from. It is a value object:
// two ExternalIDs are equal iff both Type and ID are equal.
type ExternalID struct {
	Type ExternalIDType `json:"type"`
	ID   string         `json:"id"`
}

// Key encodes the external id as the canonical index key "{TYPE}:{value}".
// The encoding is injective because type literals never contain ':'.
func (e ExternalID) Key() string {
	return fmt.Sprintf("%s:%s", e.Type, e.ID)
}

// ParseKey decodes a canonical index key back into an ExternalID.
// It fails with domain.ErrMalformedKey unless the key splits into a known
// type literal and a non-empty value. ParseKey(x.Key()) == x for every
// valid ExternalID.
func ParseKey(key string) (ExternalID, error) {
	typ, value, found := strings.Cut(key, ":")
	if !found || value == "" {
		return ExternalID{}, fmt.Errorf("%w: %q", domain.ErrMalformedKey, key)
	}
	parsed := ExternalIDType(typ)
	if !parsed.Valid() {
		return ExternalID{}, fmt.Errorf("%w: %q", domain.ErrMalformedKey, key)
	}
	return ExternalID{Type: parsed, ID: value}, nil
}
