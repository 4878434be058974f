package models

import (
	"fmt"
	"strings"
	"time"

	id "namereg/pkg/domain"
)

// The registry's error surface is a closed set of tagged variants, each
// carrying the minimal context a caller needs to react: the offending value
// or the conflicting identity. Handlers switch on the concrete types; nothing
// else implements RegistryError.

// RegistryError is implemented by every variant in the closed set.
type RegistryError interface {
	error
	// Tag is the stable wire identifier of the variant.
	Tag() string
}

// InvalidNameLengthError reports a name outside [MinNameLen, MaxNameLen].
type InvalidNameLengthError struct {
	Length int
}

func (e *InvalidNameLengthError) Error() string {
	return fmt.Sprintf("invalid domain name length %d, must be between %d and %d", e.Length, MinNameLen, MaxNameLen)
}

func (e *InvalidNameLengthError) Tag() string { return "invalid_domain_name_length" }

// InvalidExtensionError reports an extension outside the supported set.
type InvalidExtensionError struct {
	Extension string
}

func (e *InvalidExtensionError) Error() string {
	return fmt.Sprintf("invalid domain extension %q, supported: %s", e.Extension, strings.Join(Extensions(), ", "))
}

func (e *InvalidExtensionError) Tag() string { return "invalid_domain_extension" }

// InvalidKeyError reports a malformed pre-combined key.
type InvalidKeyError struct {
	Key string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid domain key %q", e.Key)
}

func (e *InvalidKeyError) Tag() string { return "invalid_domain_key" }

// InvalidDurationError reports a claim duration outside the allowed bounds.
type InvalidDurationError struct {
	Duration time.Duration
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration %s, must be between %s and %s", e.Duration, MinDuration, MaxDuration)
}

func (e *InvalidDurationError) Tag() string { return "invalid_duration" }

// AlreadyClaimedError reports a key held by an existing record. Carries the
// conflicting owner so callers can tell who holds it.
type AlreadyClaimedError struct {
	Key   string
	Owner id.Identity
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("domain %q already claimed by %s", e.Key, e.Owner)
}

func (e *AlreadyClaimedError) Tag() string { return "domain_already_claimed" }

// ReservedError reports a key reserved for someone other than the caller.
type ReservedError struct {
	Key         string
	ReservedFor id.Identity
}

func (e *ReservedError) Error() string {
	return fmt.Sprintf("domain %q is reserved for %s", e.Key, e.ReservedFor)
}

func (e *ReservedError) Tag() string { return "domain_reserved" }

// NotFoundError reports a key with no record.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("domain %q not found", e.Key)
}

func (e *NotFoundError) Tag() string { return "domain_not_found" }

// StillValidError reports a revoke attempt by a non-owner while ownership is
// still in force.
type StillValidError struct {
	Key   string
	Owner id.Identity
}

func (e *StillValidError) Error() string {
	return fmt.Sprintf("domain %q is still valid and owned by %s", e.Key, e.Owner)
}

func (e *StillValidError) Tag() string { return "domain_still_valid" }

// NotOwnerError reports a transfer attempt by anyone but the current owner.
type NotOwnerError struct {
	Key string
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("caller does not own domain %q", e.Key)
}

func (e *NotOwnerError) Tag() string { return "caller_not_domain_owner" }

// OwnershipExpiredError reports a transfer attempt on an expired record.
type OwnershipExpiredError struct {
	Key string
}

func (e *OwnershipExpiredError) Error() string {
	return fmt.Sprintf("ownership of domain %q has expired", e.Key)
}

func (e *OwnershipExpiredError) Tag() string { return "domain_ownership_expired" }

// NotRegistryOwnerError reports a reserve attempt by anyone but the
// administrative identity.
type NotRegistryOwnerError struct{}

func (e *NotRegistryOwnerError) Error() string {
	return "caller is not the registry owner"
}

func (e *NotRegistryOwnerError) Tag() string { return "caller_not_registry_owner" }
