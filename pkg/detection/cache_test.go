package detection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_FIFOEviction(t *testing.T) {
	c := NewCache(3)

	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("doc%d", i), 1, []Result{{Match: fmt.Sprint(i)}})
	}
	// Reading does not refresh an entry's position
	_, ok := c.Get("doc0", 1)
	require.True(t, ok)

	c.Put("doc3", 1, nil)

	_, ok = c.Get("doc0", 1)
	assert.False(t, ok)
	for _, key := range []string{"doc1", "doc2", "doc3"} {
		_, ok := c.Get(key, 1)
		assert.True(t, ok, key)
	}
	assert.Equal(t, 3, c.Len())
}

func TestCache_VersionIsPartOfKey(t *testing.T) {
	c := NewCache(10)
	c.Put("doc", 1, []Result{{Match: "v1"}})

	_, ok := c.Get("doc", 2)
	assert.False(t, ok)

	got, ok := c.Get("doc", 1)
	require.True(t, ok)
	assert.Equal(t, "v1", got[0].Match)
}

func TestCache_EntriesAreNotReplaced(t *testing.T) {
	c := NewCache(10)
	c.Put("doc", 1, []Result{{Match: "first"}})
	c.Put("doc", 1, []Result{{Match: "second"}})

	got, _ := c.Get("doc", 1)
	assert.Equal(t, "first", got[0].Match)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Clear(t *testing.T) {
	c := NewCache(0)
	assert.Equal(t, DefaultCacheCapacity, c.Capacity())

	c.Put("a", 1, nil)
	c.Put("b", 1, nil)
	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a", 1)
	assert.False(t, ok)

	// Eviction order restarts after a clear
	for i := 0; i < DefaultCacheCapacity; i++ {
		c.Put(fmt.Sprintf("n%d", i), 1, nil)
	}
	assert.Equal(t, DefaultCacheCapacity, c.Len())
}
