package sprite

import (
	"container/list"
	"fmt"
	"sync"
)

// cacheKey identifies one rendered sprite: the same Pokémon rendered at
// two widths is two entries.
type cacheKey struct {
	id    int
	width int
}

type cacheEntry struct {
	key      cacheKey
	rendered string
}

// Stats are the cache counters shown in the debug status bar.
type Stats struct {
	Hits      int
	Misses    int
	Evictions int
	Len       int
	Capacity  int
}

// Cache is a bounded LRU of rendered sprites over a DiskStore. It is
// safe for concurrent use: UI commands run in their own goroutines, so
// overlapping detail loads can hit the cache at the same time.
type Cache struct {
	disk     *DiskStore
	capacity int

	mu      sync.Mutex
	order   *list.List // front = most recently used
	entries map[cacheKey]*list.Element

	hits      int
	misses    int
	evictions int
}

// NewCache creates an LRU cache with the given entry capacity.
func NewCache(disk *DiskStore, capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		disk:     disk,
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[cacheKey]*list.Element),
	}
}

// Get returns the rendered sprite for (id, width), rendering and caching
// it on a miss. A missing or corrupt sprite file renders a placeholder;
// the error return is reserved for genuinely unexpected failures.
func (c *Cache) Get(id, width int) (string, error) {
	key := cacheKey{id: id, width: width}

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.hits++
		c.order.MoveToFront(el)
		rendered := el.Value.(*cacheEntry).rendered
		c.mu.Unlock()
		return rendered, nil
	}
	c.misses++
	c.mu.Unlock()

	// render outside the lock; disk read and PNG decode are slow
	rendered := c.render(id, width)

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		// another load rendered the same sprite first
		c.order.MoveToFront(el)
		rendered = el.Value.(*cacheEntry).rendered
	} else {
		c.insert(key, rendered)
	}
	c.mu.Unlock()
	return rendered, nil
}

func (c *Cache) render(id, width int) string {
	data, err := c.disk.Read(id)
	if err != nil {
		return Placeholder(width)
	}
	rendered, err := RenderPNG(data, width)
	if err != nil {
		return Placeholder(width)
	}
	return rendered
}

func (c *Cache) insert(key cacheKey, rendered string) {
	el := c.order.PushFront(&cacheEntry{key: key, rendered: rendered})
	c.entries[key] = el

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
		c.evictions++
	}
}

// Invalidate drops every cached rendering of one dex id, for all widths.
func (c *Cache) Invalidate(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, el := range c.entries {
		if key.id == id {
			c.order.Remove(el)
			delete(c.entries, key)
		}
	}
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Len:       c.order.Len(),
		Capacity:  c.capacity,
	}
}

// String formats stats for the debug status bar.
func (s Stats) String() string {
	return fmt.Sprintf("sprites %d/%d hit=%d miss=%d evict=%d",
		s.Len, s.Capacity, s.Hits, s.Misses, s.Evictions)
}
