package query

import (
	"container/list"
	"sync"
	"time"
)

// keyCache is an LRU cache with TTL holding the last successful result
// per query key. Entries past their TTL are kept until evicted so the
// store can fall back to a stale value when a refresh fails.
type keyCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type cacheEntry struct {
	key       string
	value     any
	fetchedAt time.Time
}

func newKeyCache(maxSize int, ttl time.Duration) *keyCache {
	return &keyCache{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// get returns the cached value for key along with whether the entry is
// still fresh. A stale entry is returned with fresh=false, not dropped.
func (c *keyCache) get(key string) (value any, fresh, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[key]
	if !exists {
		return nil, false, false
	}

	entry := elem.Value.(*cacheEntry)
	c.lru.MoveToFront(elem)
	return entry.value, time.Since(entry.fetchedAt) < c.ttl, true
}

// set stores a value under key; the last writer for a key wins.
func (c *keyCache) set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry{key: key, value: value, fetchedAt: time.Now()}

	if elem, exists := c.items[key]; exists {
		elem.Value = entry
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(entry)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *keyCache) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

func (c *keyCache) removeElement(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	delete(c.items, entry.key)
	c.lru.Remove(elem)
}

// cleanExpired drops entries whose staleness exceeds twice the TTL and
// returns the number removed. The doubled window keeps recent stale
// values available as error fallbacks.
func (c *keyCache) cleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-2 * c.ttl)
	var toRemove []*list.Element

	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(*cacheEntry).fetchedAt.Before(cutoff) {
			toRemove = append(toRemove, elem)
		}
	}

	for _, elem := range toRemove {
		c.removeElement(elem)
	}

	return len(toRemove)
}

func (c *keyCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
