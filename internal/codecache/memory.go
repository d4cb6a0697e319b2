package codecache

import (
	"container/list"
	"sync"
	"time"

	"github.com/standardbeagle/classgrep/internal/debug"
)

// MemoryCache is a thread-safe LRU cache with optional entry expiry
type MemoryCache struct {
	maxEntries int
	ttl        time.Duration
	now        func() time.Time

	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List
	bytes int64
	stats Stats
}

type memoryEntry struct {
	name    string
	text    string
	digest  uint64
	expires time.Time // zero = never
}

// NewMemoryCache creates a cache holding at most maxEntries units.
// ttl <= 0 disables expiry.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 2000 // Default size
	}
	return &MemoryCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		items:      make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Get retrieves text and marks the entry as recently used
func (c *MemoryCache) Get(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[name]
	if !ok {
		c.stats.Misses++
		return "", false
	}
	entry := elem.Value.(*memoryEntry)
	if !entry.expires.IsZero() && c.now().After(entry.expires) {
		c.removeElement(elem)
		c.stats.Evictions++
		c.stats.Misses++
		return "", false
	}

	c.order.MoveToFront(elem)
	c.stats.Hits++
	return entry.text, true
}

// Put adds or replaces the text for name
func (c *MemoryCache) Put(name, text string) {
	digest := Digest(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[name]; ok {
		entry := elem.Value.(*memoryEntry)
		c.order.MoveToFront(elem)
		entry.expires = c.expiry()
		if entry.digest == digest {
			c.stats.Unchanged++
			return
		}
		c.bytes += int64(len(text) - len(entry.text))
		entry.text = text
		entry.digest = digest
		return
	}

	elem := c.order.PushFront(&memoryEntry{name: name, text: text, digest: digest, expires: c.expiry()})
	c.items[name] = elem
	c.bytes += int64(len(text))

	// Evict oldest if over capacity
	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		debug.LogCache("evicting %s\n", oldest.Value.(*memoryEntry).name)
		c.removeElement(oldest)
		c.stats.Evictions++
	}
}

// Invalidate drops name from the cache
func (c *MemoryCache) Invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[name]; ok {
		c.removeElement(elem)
	}
}

// Stats returns a snapshot of the counters
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Entries = c.order.Len()
	s.Bytes = c.bytes
	return s
}

// Close releases all entries
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order = list.New()
	c.bytes = 0
	return nil
}

func (c *MemoryCache) expiry() time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(c.ttl)
}

func (c *MemoryCache) removeElement(elem *list.Element) {
	entry := elem.Value.(*memoryEntry)
	c.order.Remove(elem)
	delete(c.items, entry.name)
	c.bytes -= int64(len(entry.text))
}
