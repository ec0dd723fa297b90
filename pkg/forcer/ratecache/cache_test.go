package ratecache

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T, opts Options) *Cache {
	t.Helper()
	c, err := Open(t.TempDir(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// fakeClock returns a clock function advanced by step on every call.
func fakeClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestKeyBytes_Distinct(t *testing.T) {
	base := Key{Length: 3, BatchSize: 100000, Alphabet: "abc"}
	variants := []Key{
		{Length: 4, BatchSize: 100000, Alphabet: "abc"},
		{Length: 3, BatchSize: 1000, Alphabet: "abc"},
		{Length: 3, BatchSize: 100000, Alphabet: "abcd"},
		{Length: 3, BatchSize: 100000, Alphabet: "abc", Live: true},
	}
	for _, v := range variants {
		assert.NotEqual(t, string(base.Bytes()), string(v.Bytes()), "%+v", v)
	}
	assert.Equal(t, base.Bytes(), Key{Length: 3, BatchSize: 100000, Alphabet: "abc"}.Bytes())
}

func TestEntryEncodeDecode(t *testing.T) {
	in := &Entry{Rate: 12345.5, Created: 42}
	data, err := in.Encode()
	require.NoError(t, err)

	var out Entry
	require.NoError(t, out.Decode(data))
	assert.Equal(t, *in, out)
}

func TestCache_PutGet(t *testing.T) {
	c := openTestCache(t, Options{})
	key := Key{Length: 3, BatchSize: 100000, Alphabet: "abc"}

	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache misses")

	require.NoError(t, c.Put(key, 1.5e6))

	rate, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 1.5e6, rate, 1e-6)

	_, ok, err = c.Get(Key{Length: 3, BatchSize: 100000, Alphabet: "abc", Live: true})
	require.NoError(t, err)
	assert.False(t, ok, "live mode is a separate entry")
}

func TestCache_UnboundedRate(t *testing.T) {
	c := openTestCache(t, Options{})
	key := Key{Length: 1, BatchSize: 1, Alphabet: "a"}

	require.NoError(t, c.Put(key, math.Inf(1)))

	rate, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, math.IsInf(rate, 1))
}

func TestCache_Expiry(t *testing.T) {
	c := openTestCache(t, Options{TTL: time.Hour})
	c.now = fakeClock(time.Now(), 40*time.Minute)
	key := Key{Length: 3, Alphabet: "abc"}

	require.NoError(t, c.Put(key, 10)) // stored at +40m

	_, ok, err := c.Get(key) // read at +80m
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = c.Get(key) // read at +120m
	require.NoError(t, err)
	assert.False(t, ok, "entry older than the TTL misses")
}

func TestCache_BoundedEvictsOldest(t *testing.T) {
	c := openTestCache(t, Options{MaxEntries: 3})
	c.now = fakeClock(time.Now(), time.Second)

	for length := 1; length <= 5; length++ {
		require.NoError(t, c.Put(Key{Length: length, Alphabet: "ab"}, float64(length)))
	}

	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for length := 1; length <= 5; length++ {
		_, ok, err := c.Get(Key{Length: length, Alphabet: "ab"})
		require.NoError(t, err)
		assert.Equal(t, length > 2, ok, "length %d", length)
	}
}

func TestCache_Clear(t *testing.T) {
	c := openTestCache(t, Options{})
	require.NoError(t, c.Put(Key{Length: 1}, 1))
	require.NoError(t, c.Put(Key{Length: 2}, 2))

	require.NoError(t, c.Clear())

	n, err := c.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDefaultPath(t *testing.T) {
	assert.Contains(t, DefaultPath(), "forcer")
}
