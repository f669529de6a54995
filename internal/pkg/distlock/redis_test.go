package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLocker(client, time.Minute), mr
}

func TestRedisLockerExclusive(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	ok, err := locker.TryLock(ctx, "dispatch:c1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Second attempt is turned away while the key is still held.
	ok, err = locker.TryLock(ctx, "dispatch:c1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, locker.Unlock(ctx, "dispatch:c1"))

	ok, err = locker.TryLock(ctx, "dispatch:c1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockerIndependentKeys(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	ok, err := locker.TryLock(ctx, "dispatch:c1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = locker.TryLock(ctx, "dispatch:c2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockerUnlockOnlyOwn(t *testing.T) {
	first, mr := newTestLocker(t)
	ctx := context.Background()

	ok, err := first.TryLock(ctx, "dispatch:c1")
	require.NoError(t, err)
	require.True(t, ok)

	// A locker that never held the key must not delete it.
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	second := NewRedisLocker(client, time.Minute)
	require.NoError(t, second.Unlock(ctx, "dispatch:c1"))

	ok, err = second.TryLock(ctx, "dispatch:c1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLockerExpiry(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	ok, err := locker.TryLock(ctx, "dispatch:c1")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err = locker.TryLock(ctx, "dispatch:c1")
	require.NoError(t, err)
	assert.True(t, ok)
}
