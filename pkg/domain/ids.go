// Package domain holds the registry's typed identifiers.
//
// Identities are parsed, never cast, at trust boundaries: anything coming in
// over the wire goes through ParseIdentity so the rest of the code can assume
// a valid, non-nil value.
package domain

import (
	"github.com/google/uuid"

	dErrors "namereg/pkg/domain-errors"
)

// Identity is the principal that owns, reserves, or administers registry
// entries. It is a distinct type so an identity can never be confused with a
// canonical key or any other string at compile time.
type Identity uuid.UUID

// NilIdentity is the zero identity. It is never a valid owner.
var NilIdentity = Identity(uuid.Nil)

// ParseIdentity validates and returns an Identity.
// Rejects empty strings, malformed UUIDs, and the nil UUID.
func ParseIdentity(s string) (Identity, error) {
	if s == "" {
		return NilIdentity, dErrors.New(dErrors.CodeInvalidInput, "identity is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return NilIdentity, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid identity")
	}
	if u == uuid.Nil {
		return NilIdentity, dErrors.New(dErrors.CodeInvalidInput, "identity must not be nil")
	}
	return Identity(u), nil
}

// NewIdentity returns a fresh random identity. Intended for tests and
// bootstrap tooling; production identities arrive via ParseIdentity.
func NewIdentity() Identity {
	return Identity(uuid.New())
}

func (i Identity) String() string {
	return uuid.UUID(i).String()
}

// IsNil reports whether the identity is the zero value.
func (i Identity) IsNil() bool {
	return uuid.UUID(i) == uuid.Nil
}

// MarshalText renders the identity in canonical UUID form so JSON payloads
// carry a string, not a byte array.
func (i Identity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText applies the same validation as ParseIdentity.
func (i *Identity) UnmarshalText(data []byte) error {
	parsed, err := ParseIdentity(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
