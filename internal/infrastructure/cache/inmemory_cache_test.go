package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstack/backend/tests/testutil"
)

type lookupRecorder struct {
	hits, misses int
}

func (r *lookupRecorder) CacheLookup(_ string, hit bool) {
	if hit {
		r.hits++
		return
	}
	r.misses++
}

func TestInMemoryCache_GetSet(t *testing.T) {
	c := NewInMemoryCache()
	defer c.Close()
	ctx := context.Background()

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "k", []byte("v1"), time.Minute))

	value, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v1"), value)

	hits, misses := c.GetStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestInMemoryCache_ReturnsCopies(t *testing.T) {
	c := NewInMemoryCache()
	defer c.Close()
	ctx := context.Background()

	input := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", input, 0))
	input[0] = 'x'

	value, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(value))
	value[1] = 'y'

	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestInMemoryCache_Expiry(t *testing.T) {
	c := NewInMemoryCache()
	defer c.Close()
	ctx := context.Background()

	expired := func(key string) func() bool {
		return func() bool {
			_, found, err := c.Get(ctx, key)
			return err == nil && !found
		}
	}

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Millisecond))
	require.NoError(t, c.Set(ctx, "long", []byte("v"), time.Hour))
	testutil.AssertEventually(t, expired("short"), time.Second, time.Millisecond)

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Millisecond))
	testutil.AssertEventually(t, expired("short"), time.Second, time.Millisecond)
	c.doCleanup()
	assert.Equal(t, 1, c.Count())

	_, found, err := c.Get(ctx, "long")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestInMemoryCache_Delete(t *testing.T) {
	c := NewInMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	require.NoError(t, c.Delete(ctx, "a", "b", "missing"))
	assert.Zero(t, c.Count())
}

func TestInMemoryCache_Observer(t *testing.T) {
	recorder := &lookupRecorder{}
	c := NewInMemoryCache(WithObserver(recorder))
	defer c.Close()
	ctx := context.Background()

	_, _, _ = c.Get(ctx, "k")
	_ = c.Set(ctx, "k", []byte("v"), 0)
	_, _, _ = c.Get(ctx, "k")
	_, _, _ = c.Get(ctx, "k")

	assert.Equal(t, 2, recorder.hits)
	assert.Equal(t, 1, recorder.misses)
	assert.Equal(t, BackendInMemory, c.Backend())
}

func TestInMemoryCache_CloseTwice(t *testing.T) {
	c := NewInMemoryCache()
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

func TestJSONHelpers(t *testing.T) {
	c := NewInMemoryCache()
	defer c.Close()
	ctx := context.Background()

	type item struct {
		Name string `json:"name"`
	}

	var out []item
	found, err := GetJSON(ctx, c, "items", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, c, "items", []item{{Name: "a"}, {Name: "b"}}, 0))

	found, err = GetJSON(ctx, c, "items", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []item{{Name: "a"}, {Name: "b"}}, out)

	require.NoError(t, c.Set(ctx, "broken", []byte("{"), 0))
	_, err = GetJSON(ctx, c, "broken", &out)
	assert.Error(t, err)
}
