package nutrition

import (
	"container/list"
	"sync"

	"github.com/hyperjump/taberu/internal/models"
)

// ProductCache is an LRU cache of found products keyed by barcode.
type ProductCache struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type cacheEntry struct {
	key   string
	value *models.Food
}

// NewProductCache creates a new cache with the given capacity.
func NewProductCache(capacity int) *ProductCache {
	return &ProductCache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns a deep copy of the cached product for barcode if present.
func (c *ProductCache) Get(barcode string) (*models.Food, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[barcode]; ok {
		c.lru.MoveToFront(elem)
		return elem.Value.(*cacheEntry).value.Clone(), true
	}
	return nil, false
}

// Set stores a deep copy of the product for barcode, evicting the oldest entry if at capacity.
func (c *ProductCache) Set(barcode string, value *models.Food) {
	if c.capacity <= 0 || value == nil {
		return
	}
	value = value.Clone()
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[barcode]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}

	entry := &cacheEntry{key: barcode, value: value}
	elem := c.lru.PushFront(entry)
	c.cache[barcode] = elem

	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.cache, oldest.Value.(*cacheEntry).key)
		}
	}
}

// Len returns the number of cached products.
func (c *ProductCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
