// Package doccache provides a bounded, time-expiring cache of loaded document
// records, keyed by folder+name, to avoid redundant network fetches.
package doccache

import (
	"container/list"
	"sync"
	"time"

	"github.com/hoteleiro/concierge/internal/models"
)

// Cache holds at most capacity entries for at most maxAge each. Eviction on
// overflow removes the entry inserted earliest; reads never refresh an entry's
// position (insertion-order semantics, not LRU).
type Cache struct {
	capacity int
	maxAge   time.Duration
	entries  map[string]*list.Element
	order    *list.List
	mu       sync.Mutex
	now      func() time.Time
}

type entry struct {
	key        string
	record     *models.DocumentRecord
	insertedAt time.Time
}

// New creates a cache with the given capacity and entry age limit.
func New(capacity int, maxAge time.Duration) *Cache {
	return &Cache{
		capacity: capacity,
		maxAge:   maxAge,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the cached record for key. An entry older than the age limit is
// removed and reported as absent.
func (c *Cache) Get(key string) (*models.DocumentRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	ent := elem.Value.(*entry)
	if c.now().Sub(ent.insertedAt) > c.maxAge {
		c.order.Remove(elem)
		delete(c.entries, key)
		return nil, false
	}
	return ent.record, true
}

// Set stores record under key. At capacity, the earliest-inserted entry is
// evicted first.
func (c *Cache) Set(key string, record *models.DocumentRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		ent := elem.Value.(*entry)
		ent.record = record
		ent.insertedAt = c.now()
		c.order.MoveToBack(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Front()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*entry).key)
		}
	}

	c.entries[key] = c.order.PushBack(&entry{
		key:        key,
		record:     record,
		insertedAt: c.now(),
	})
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

// Len returns the number of entries currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
