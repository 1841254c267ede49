package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLeaseRejectsSecondHolder(t *testing.T) {
	lease := NewMemoryLease(time.Minute)
	ctx := context.Background()

	acquired, err := lease.Acquire(ctx, "media-1")
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, err = lease.Acquire(ctx, "media-1")
	require.NoError(t, err)
	assert.False(t, acquired, "second acquire on a held key must be rejected")
}

func TestMemoryLeaseReleaseFreesKey(t *testing.T) {
	lease := NewMemoryLease(time.Minute)
	ctx := context.Background()

	acquired, err := lease.Acquire(ctx, "media-1")
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, lease.Release(ctx, "media-1"))

	acquired, err = lease.Acquire(ctx, "media-1")
	require.NoError(t, err)
	assert.True(t, acquired, "released key must be acquirable again")
}

func TestMemoryLeaseKeysAreIndependent(t *testing.T) {
	lease := NewMemoryLease(time.Minute)
	ctx := context.Background()

	acquired, err := lease.Acquire(ctx, "media-1")
	require.NoError(t, err)
	require.True(t, acquired)

	acquired, err = lease.Acquire(ctx, "media-2")
	require.NoError(t, err)
	assert.True(t, acquired, "a lease on one record must not block another")
}

func TestMemoryLeaseExpires(t *testing.T) {
	lease := NewMemoryLease(20 * time.Millisecond)
	ctx := context.Background()

	acquired, err := lease.Acquire(ctx, "media-1")
	require.NoError(t, err)
	require.True(t, acquired)

	time.Sleep(50 * time.Millisecond)

	acquired, err = lease.Acquire(ctx, "media-1")
	require.NoError(t, err)
	assert.True(t, acquired, "expired lease must be acquirable by a new holder")
}

func TestMemoryLeaseReleaseUnheldKeyIsNoop(t *testing.T) {
	lease := NewMemoryLease(time.Minute)
	assert.NoError(t, lease.Release(context.Background(), "never-held"))
}
