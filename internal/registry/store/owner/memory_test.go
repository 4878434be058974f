package owner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "namereg/pkg/domain"
	"namereg/pkg/platform/sentinel"
)

func TestInMemory_InitOnce(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	_, err := store.Get(ctx)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	admin := id.NewIdentity()
	require.NoError(t, store.Init(ctx, admin))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin, got)

	// Re-initialization is rejected and the stored value is untouched.
	err = store.Init(ctx, id.NewIdentity())
	require.ErrorIs(t, err, sentinel.ErrConflict)

	got, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin, got)
}
