package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "namereg/pkg/domain"
)

var now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func TestDomain_IsActive_Boundary(t *testing.T) {
	d := &Domain{Key: "alice.icp", Owner: id.NewIdentity(), ValidUntil: now}

	// Active at exactly ValidUntil, expired one instant later.
	assert.True(t, d.IsActive(now))
	assert.True(t, d.IsActive(now.Add(-time.Second)))
	assert.False(t, d.IsActive(now.Add(time.Nanosecond)))
}

func TestDomain_CanClaim(t *testing.T) {
	owner := id.NewIdentity()
	d := &Domain{Key: "alice.icp", Owner: owner, ValidUntil: now}

	t.Run("blocked while active, including the boundary instant", func(t *testing.T) {
		err := d.CanClaim(now)
		var claimed *AlreadyClaimedError
		require.ErrorAs(t, err, &claimed)
		assert.Equal(t, owner, claimed.Owner)
	})

	t.Run("open once expired", func(t *testing.T) {
		assert.NoError(t, d.CanClaim(now.Add(time.Second)))
	})
}

func TestDomain_CanRevoke(t *testing.T) {
	owner := id.NewIdentity()
	stranger := id.NewIdentity()
	d := &Domain{Key: "alice.icp", Owner: owner, ValidUntil: now}

	t.Run("owner may revoke unconditionally", func(t *testing.T) {
		assert.NoError(t, d.CanRevoke(owner, now.Add(-time.Hour)))
	})

	t.Run("non-owner blocked while strictly valid", func(t *testing.T) {
		err := d.CanRevoke(stranger, now.Add(-time.Second))
		var stillValid *StillValidError
		require.ErrorAs(t, err, &stillValid)
		assert.Equal(t, owner, stillValid.Owner)
	})

	t.Run("non-owner allowed at the boundary instant", func(t *testing.T) {
		// Revoke-blocking is a strict comparison: at exactly ValidUntil the
		// record no longer protects itself from third-party revocation.
		assert.NoError(t, d.CanRevoke(stranger, now))
	})
}

func TestDomain_ApplyRevoke_PreservesOwner(t *testing.T) {
	owner := id.NewIdentity()
	d := &Domain{Key: "alice.icp", Owner: owner, ValidUntil: now.Add(time.Hour)}

	d.ApplyRevoke(now)

	assert.Equal(t, owner, d.Owner)
	assert.True(t, d.ValidUntil.IsZero())
	assert.Equal(t, now, d.UpdatedAt)
	assert.False(t, d.IsActive(now))
}

func TestDomain_CanTransfer(t *testing.T) {
	owner := id.NewIdentity()
	stranger := id.NewIdentity()
	d := &Domain{Key: "alice.icp", Owner: owner, ValidUntil: now}

	t.Run("only the owner may initiate", func(t *testing.T) {
		err := d.CanTransfer(stranger, now.Add(-time.Hour))
		var notOwner *NotOwnerError
		require.ErrorAs(t, err, &notOwner)
	})

	t.Run("allowed at the boundary instant", func(t *testing.T) {
		assert.NoError(t, d.CanTransfer(owner, now))
	})

	t.Run("rejected once strictly expired", func(t *testing.T) {
		err := d.CanTransfer(owner, now.Add(time.Second))
		var expired *OwnershipExpiredError
		require.ErrorAs(t, err, &expired)
	})
}

func TestDomain_ApplyTransfer_PreservesValidity(t *testing.T) {
	owner := id.NewIdentity()
	newOwner := id.NewIdentity()
	until := now.Add(time.Hour)
	d := &Domain{Key: "alice.icp", Owner: owner, ValidUntil: until}

	d.ApplyTransfer(newOwner, now)

	assert.Equal(t, newOwner, d.Owner)
	assert.Equal(t, until, d.ValidUntil)
	assert.Equal(t, now, d.UpdatedAt)
}

func TestValidateDuration_Bounds(t *testing.T) {
	assert.NoError(t, ValidateDuration(MinDuration))
	assert.NoError(t, ValidateDuration(MaxDuration))

	var invalid *InvalidDurationError
	require.ErrorAs(t, ValidateDuration(MinDuration-time.Nanosecond), &invalid)
	assert.Equal(t, MinDuration-time.Nanosecond, invalid.Duration)
	require.ErrorAs(t, ValidateDuration(MaxDuration+time.Nanosecond), &invalid)
}

func TestReservation_Blocks(t *testing.T) {
	target := id.NewIdentity()
	r := &Reservation{Key: "alice.icp", ReservedFor: target}

	assert.False(t, r.Blocks(target))
	assert.True(t, r.Blocks(id.NewIdentity()))
}

func TestNewDomainAndHistoryEntry(t *testing.T) {
	owner := id.NewIdentity()
	d := NewDomain("alice.icp", owner, time.Hour, now)

	assert.Equal(t, now.Add(time.Hour), d.ValidUntil)
	assert.Equal(t, now, d.UpdatedAt)

	entry := NewHistoryEntry(d, now)
	assert.Equal(t, owner, entry.Owner)
	assert.Equal(t, d.ValidUntil, entry.ValidUntil)
	assert.Equal(t, now, entry.CreatedAt)
}
