package hangar

// CacheLocation pins a cached value's slot, mirroring the teacher's
// SimpleCache[T]/CacheLocation pairing — callers that memoize it
// alongside an entity can skip the map lookup on the next access.
type CacheLocation struct {
	Index int
}

// Cache is a generic side-table for values application code wants to
// memoize per entity or archetype without paying component-storage
// overhead for data that's rarely read (e.g. a computed bounding box,
// a pathfinding result). Adapted from the teacher's SimpleCache[T],
// keyed by a raw uint32 (an entity id or archetype id) instead of a
// table.Entry.
type Cache[T any] struct {
	items      []T
	indexByKey map[uint32]int
}

// NewCache returns an empty Cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{indexByKey: make(map[uint32]int)}
}

// FactoryNewCache is the Factory-style constructor, matching
// FactoryNewComponent's naming.
func FactoryNewCache[T any]() *Cache[T] { return NewCache[T]() }

// Register stores value under key, overwriting any previous entry, and
// returns its location.
func (c *Cache[T]) Register(key uint32, value T) CacheLocation {
	if idx, ok := c.indexByKey[key]; ok {
		c.items[idx] = value
		return CacheLocation{Index: idx}
	}
	idx := len(c.items)
	c.items = append(c.items, value)
	c.indexByKey[key] = idx
	return CacheLocation{Index: idx}
}

// GetIndex returns key's slot index, if present.
func (c *Cache[T]) GetIndex(key uint32) (int, bool) {
	idx, ok := c.indexByKey[key]
	return idx, ok
}

// GetItem returns a pointer into the cache's backing slice at idx, or
// nil if idx is out of range.
func (c *Cache[T]) GetItem(idx int) *T {
	if idx < 0 || idx >= len(c.items) {
		return nil
	}
	return &c.items[idx]
}

// Get is the common-case Register companion: look up by key directly.
func (c *Cache[T]) Get(key uint32) (*T, bool) {
	idx, ok := c.indexByKey[key]
	if !ok {
		return nil, false
	}
	return &c.items[idx], true
}

// Clear empties the cache, retaining its backing storage for reuse.
func (c *Cache[T]) Clear() {
	c.items = c.items[:0]
	for k := range c.indexByKey {
		delete(c.indexByKey, k)
	}
}

// Len returns the number of entries currently cached.
func (c *Cache[T]) Len() int { return len(c.items) }
