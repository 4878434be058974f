package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "namereg/pkg/domain-errors"
)

// TestParseIdentity_Invariants validates the parsing invariant:
// identities must be valid, non-empty, non-nil UUIDs.
func TestParseIdentity_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseIdentity("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseIdentity("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseIdentity(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseIdentity(valid.String())
		require.NoError(t, err)
		assert.Equal(t, Identity(valid), id)
	})

	t.Run("round-trips through String", func(t *testing.T) {
		id := NewIdentity()
		parsed, err := ParseIdentity(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})
}

func TestIdentity_IsNil(t *testing.T) {
	assert.True(t, NilIdentity.IsNil())
	assert.False(t, NewIdentity().IsNil())
}
