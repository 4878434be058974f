package models

import (
	"time"

	id "namereg/pkg/domain"
)

// Ownership duration bounds for a claim.
const (
	MinDuration = time.Second
	MaxDuration = 365 * 24 * time.Hour
)

// Domain is one registry entry, keyed by its canonical key.
//
// Invariants:
//   - Key is canonical (validated by NewKey/ParseKey) and immutable
//   - Ownership is active iff ValidUntil is at or after the current time
//   - Every mutation replaces the record wholesale and appends exactly one
//     history entry before the record write
//
// Revocation zeroes ValidUntil but keeps Owner, so lookups on a revoked but
// not yet reclaimed key still attribute it to the previous owner.
type Domain struct {
	Key        string      `json:"key"`
	Owner      id.Identity `json:"owner"`
	ValidUntil time.Time   `json:"valid_until"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// IsActive reports whether ownership is still in force at now. The boundary
// is inclusive: a record whose ValidUntil equals now is still active, which
// is what blocks a claim at that exact instant.
func (d *Domain) IsActive(now time.Time) bool {
	return !d.ValidUntil.Before(now)
}

// CanClaim checks whether caller may claim this record's key at now.
// Claiming an expired record is claiming an unclaimed key; the prior owner
// has no residual privilege.
func (d *Domain) CanClaim(now time.Time) error {
	if d.IsActive(now) {
		return &AlreadyClaimedError{Key: d.Key, Owner: d.Owner}
	}
	return nil
}

// CanRevoke checks whether caller may revoke at now. The current owner may
// revoke unconditionally; anyone else only once the record is no longer
// strictly valid (ValidUntil > now blocks, the boundary instant does not).
func (d *Domain) CanRevoke(caller id.Identity, now time.Time) error {
	if caller == d.Owner {
		return nil
	}
	if d.ValidUntil.After(now) {
		return &StillValidError{Key: d.Key, Owner: d.Owner}
	}
	return nil
}

// ApplyRevoke zeroes validity and keeps the owner. Call CanRevoke first.
func (d *Domain) ApplyRevoke(now time.Time) {
	d.ValidUntil = time.Time{}
	d.UpdatedAt = now
}

// CanTransfer checks whether caller may transfer at now. Only the current
// owner may initiate, and only while the record has not expired (strictly
// before now is expired; the boundary instant may still transfer).
func (d *Domain) CanTransfer(caller id.Identity, now time.Time) error {
	if caller != d.Owner {
		return &NotOwnerError{Key: d.Key}
	}
	if d.ValidUntil.Before(now) {
		return &OwnershipExpiredError{Key: d.Key}
	}
	return nil
}

// ApplyTransfer hands the record to newOwner, preserving ValidUntil.
// Call CanTransfer first.
func (d *Domain) ApplyTransfer(newOwner id.Identity, now time.Time) {
	d.Owner = newOwner
	d.UpdatedAt = now
}

// NewDomain builds the record for a successful claim.
// ValidateDuration must have passed already.
func NewDomain(key string, owner id.Identity, duration time.Duration, now time.Time) *Domain {
	return &Domain{
		Key:        key,
		Owner:      owner,
		ValidUntil: now.Add(duration),
		UpdatedAt:  now,
	}
}

// ValidateDuration enforces the claim duration bounds, inclusive.
func ValidateDuration(duration time.Duration) error {
	if duration < MinDuration || duration > MaxDuration {
		return &InvalidDurationError{Duration: duration}
	}
	return nil
}

// Reservation is an administrative hold on a key for one identity's
// exclusive future claim. It blocks claims by anyone else and is deleted the
// moment the reserved identity claims successfully.
type Reservation struct {
	Key         string      `json:"key"`
	ReservedFor id.Identity `json:"reserved_for"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Blocks reports whether this reservation denies a claim by caller.
func (r *Reservation) Blocks(caller id.Identity) bool {
	return r.ReservedFor != caller
}

// HistoryEntry is one immutable audit record of an ownership-affecting
// transition. Entries are append-only; the sequence for a key never shrinks.
type HistoryEntry struct {
	Owner      id.Identity `json:"owner"`
	ValidUntil time.Time   `json:"valid_until"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewHistoryEntry captures the state a record holds after a transition.
func NewHistoryEntry(d *Domain, now time.Time) HistoryEntry {
	return HistoryEntry{
		Owner:      d.Owner,
		ValidUntil: d.ValidUntil,
		CreatedAt:  now,
	}
}
