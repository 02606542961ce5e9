package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryCache_RoundTripWithinTTL(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewMemoryCache(WithClock(clock.Now))
	defer c.Close()

	require.NoError(t, c.Set(ctx, "search:perenual::rose:8", []byte(`["rose"]`), DefaultTTL))

	clock.Advance(59 * time.Minute)
	data, ok, err := c.Get(ctx, "search:perenual::rose:8")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["rose"]`, string(data))
}

func TestMemoryCache_ExpiredIsAbsent(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewMemoryCache(WithClock(clock.Now))
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), DefaultTTL))

	clock.Advance(DefaultTTL + time.Second)
	data, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
	assert.Equal(t, 0, c.Len(), "expired entry should be removed on read")
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	data, ok, err := c.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestMemoryCache_OverwriteLastWriterWins(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("first"), DefaultTTL))
	require.NoError(t, c.Set(ctx, "k", []byte("second"), DefaultTTL))

	data, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", string(data))
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_OverwriteRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewMemoryCache(WithClock(clock.Now))
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("stale"), DefaultTTL))
	clock.Advance(50 * time.Minute)
	require.NoError(t, c.Set(ctx, "k", []byte("fresh"), DefaultTTL))
	clock.Advance(50 * time.Minute)

	data, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fresh", string(data))
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewMemoryCache(WithClock(clock.Now))
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	clock.Advance(365 * 24 * time.Hour)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	defer c.Close()

	buf := []byte("original")
	require.NoError(t, c.Set(ctx, "k", buf, DefaultTTL))
	buf[0] = 'X'

	data, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "original", string(data))

	data[0] = 'Y'
	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "original", string(again))
}

func TestMemoryCache_MaxEntriesEvictsOldest(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewMemoryCache(WithClock(clock.Now), WithMaxEntries(2))
	defer c.Close()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), DefaultTTL))
	clock.Advance(time.Second)
	require.NoError(t, c.Set(ctx, "b", []byte("2"), DefaultTTL))
	clock.Advance(time.Second)
	require.NoError(t, c.Set(ctx, "c", []byte("3"), DefaultTTL))

	assert.Equal(t, 2, c.Len())
	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok, _ = c.Get(ctx, "c")
	assert.True(t, ok)

	// Overwriting an existing key never evicts.
	require.NoError(t, c.Set(ctx, "b", []byte("2b"), DefaultTTL))
	assert.Equal(t, 2, c.Len())
}

func TestMemoryCache_MaxEntriesPrefersExpired(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewMemoryCache(WithClock(clock.Now), WithMaxEntries(2))
	defer c.Close()

	require.NoError(t, c.Set(ctx, "old", []byte("1"), DefaultTTL))
	clock.Advance(time.Second)
	require.NoError(t, c.Set(ctx, "short", []byte("2"), time.Minute))
	clock.Advance(2 * time.Minute)
	require.NoError(t, c.Set(ctx, "new", []byte("3"), DefaultTTL))

	_, ok, _ := c.Get(ctx, "old")
	assert.True(t, ok, "expired entry should be purged before evicting live ones")
}

func TestMemoryCache_Sweep(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	c := NewMemoryCache(WithClock(clock.Now))
	defer c.Close()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), DefaultTTL))
	clock.Advance(2 * time.Minute)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_SweepInterval(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(WithSweepInterval(5 * time.Millisecond))
	defer c.Close()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Millisecond))
	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMemoryCache_Closed(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "Close should be idempotent")

	_, _, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Set(ctx, "k", nil, time.Minute), ErrClosed)
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(WithMaxEntries(50))
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := NewDefaultKeyer().SpeciesKey("perenual:", j%80)
				_ = c.Set(ctx, key, []byte{byte(i)}, DefaultTTL)
				_, _, _ = c.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 50)
}
