package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func withTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

func TestAsideWithoutClientAlwaysFetches(t *testing.T) {
	SetClient(nil)

	calls := 0
	var got cachedThing
	fetch := func() error {
		calls++
		got = cachedThing{ID: 1, Name: "fetched"}
		return nil
	}

	ctx := context.Background()
	require.NoError(t, Aside(ctx, "thing:1", &got, time.Minute, fetch))
	require.NoError(t, Aside(ctx, "thing:1", &got, time.Minute, fetch))

	assert.Equal(t, 2, calls)
	assert.Equal(t, "fetched", got.Name)
}

func TestAsidePopulatesAndReadsCache(t *testing.T) {
	mr := withTestRedis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			calls++
			*dest = cachedThing{ID: 7, Name: "from the database"}
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, Aside(ctx, "thing:7", &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists("thing:7"))

	// The second read is served from the cache.
	var second cachedThing
	require.NoError(t, Aside(ctx, "thing:7", &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "from the database", second.Name)

	// After the TTL expires the fetch runs again.
	mr.FastForward(2 * time.Minute)
	var third cachedThing
	require.NoError(t, Aside(ctx, "thing:7", &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestAsidePropagatesFetchErrors(t *testing.T) {
	withTestRedis(t)

	wantErr := errors.New("database unavailable")
	var dest cachedThing
	err := Aside(context.Background(), "thing:9", &dest, time.Minute, func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestInvalidateRemovesKey(t *testing.T) {
	mr := withTestRedis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey(3), cachedThing{ID: 3}, time.Minute))
	require.True(t, mr.Exists("user:3"))

	InvalidateUser(ctx, 3)
	assert.False(t, mr.Exists("user:3"))
}
