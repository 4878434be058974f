//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"namereg/internal/registry/store/cache"
	id "namereg/pkg/domain"
	"namereg/pkg/platform/sentinel"
	"namereg/pkg/testutil/containers"
)

func TestRedisLookupCache(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	t.Cleanup(func() {
		_ = rc.Client.Close()
		_ = rc.Container.Terminate(ctx)
	})

	lookupCache := cache.NewRedisLookupCache(rc.Client, time.Minute)
	owner := id.NewIdentity()

	_, err := lookupCache.GetOwner(ctx, "alice.icp")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, lookupCache.SetOwner(ctx, "alice.icp", owner))

	got, err := lookupCache.GetOwner(ctx, "alice.icp")
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	require.NoError(t, lookupCache.Invalidate(ctx, "alice.icp"))
	_, err = lookupCache.GetOwner(ctx, "alice.icp")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
