package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"parknet-backend/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLockTest(t *testing.T, wait time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	l := NewRedisLocker(rdb, time.Minute, wait)
	l.Retry = 5 * time.Millisecond
	return l, mr
}

func TestAcquire_SetsKeyWithTTLAndReleases(t *testing.T) {
	l, mr := setupLockTest(t, 100*time.Millisecond)

	unlock, err := l.Acquire(context.Background(), "lottery:lock:2025-06")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lottery:lock:2025-06"))
	assert.Equal(t, time.Minute, mr.TTL("lottery:lock:2025-06"))

	unlock()
	assert.False(t, mr.Exists("lottery:lock:2025-06"))
}

func TestAcquire_TimesOutWhileHeld(t *testing.T) {
	l, _ := setupLockTest(t, 30*time.Millisecond)
	ctx := context.Background()

	unlock, err := l.Acquire(ctx, "k")
	require.NoError(t, err)
	defer unlock()

	_, err = l.Acquire(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrLockTimeout)

	other, err := l.Acquire(ctx, "other")
	require.NoError(t, err)
	other()
}

func TestAcquire_WaitsForRelease(t *testing.T) {
	l, _ := setupLockTest(t, 2*time.Second)
	ctx := context.Background()

	unlock, err := l.Acquire(ctx, "k")
	require.NoError(t, err)
	go func() {
		time.Sleep(20 * time.Millisecond)
		unlock()
	}()

	second, err := l.Acquire(ctx, "k")
	require.NoError(t, err)
	second()
}

func TestRelease_DoesNotDeleteForeignToken(t *testing.T) {
	l, mr := setupLockTest(t, 10*time.Millisecond)

	unlock, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	// Simulate expiry and takeover by another holder.
	mr.Del("k")
	require.NoError(t, mr.Set("k", "someone-else"))

	unlock()
	v, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v)
}

func TestAcquire_MutualExclusion(t *testing.T) {
	l, _ := setupLockTest(t, 5*time.Second)
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Acquire(context.Background(), "k")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestAcquire_ContextCancelled(t *testing.T) {
	l, _ := setupLockTest(t, 5*time.Second)
	unlock, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "k")
	assert.Error(t, err)
}
