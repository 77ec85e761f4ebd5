package detection

import (
	"strconv"
)

// DefaultCacheCapacity bounds the number of cached document versions
const DefaultCacheCapacity = 100

// cacheKey identifies one version of one document
func cacheKey(uri string, version int) string {
	return uri + ":" + strconv.Itoa(version)
}

// Cache holds unfiltered scan results per document version. When more than
// Capacity entries are stored the oldest-inserted entry is evicted. Entries
// are never updated in place.
//
// A Cache is owned by a single Engine and is not safe for concurrent use.
type Cache struct {
	capacity int
	entries  map[string][]Result
	order    []string
}

// NewCache creates a cache holding at most capacity entries
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string][]Result, capacity+1),
		order:    make([]string, 0, capacity+1),
	}
}

// Get returns the stored results for a document version
func (c *Cache) Get(uri string, version int) ([]Result, bool) {
	results, ok := c.entries[cacheKey(uri, version)]
	return results, ok
}

// Put stores results for a document version. Storing an existing key keeps
// the original entry.
func (c *Cache) Put(uri string, version int, results []Result) {
	key := cacheKey(uri, version)
	if _, exists := c.entries[key]; exists {
		return
	}

	c.entries[key] = results
	c.order = append(c.order, key)

	for len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	return len(c.entries)
}

// Capacity returns the eviction threshold
func (c *Cache) Capacity() int {
	return c.capacity
}

// Clear drops every entry
func (c *Cache) Clear() {
	clear(c.entries)
	c.order = c.order[:0]
}
