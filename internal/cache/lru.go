package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/recgo/internal/resource"
	"github.com/hupe1980/recgo/model"
)

// LRU implements a byte-bounded LRU RecordCache.
type LRU struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[model.RID]*list.Element
	evictList *list.List
	rc        *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	rid   model.RID
	value []byte
}

// NewLRU creates a new LRU cache with the given capacity in bytes.
// If rc is provided, it will be used to track memory usage.
func NewLRU(capacity int64, rc *resource.Controller) *LRU {
	return &LRU{
		capacity:  capacity,
		items:     make(map[model.RID]*list.Element),
		evictList: list.New(),
		rc:        rc,
	}
}

// Get returns cached record bytes.
func (c *LRU) Get(rid model.RID) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[rid]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry).value, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches record bytes.
func (c *LRU) Set(rid model.RID, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	itemSize := int64(len(b))
	if ent, ok := c.items[rid]; ok {
		c.removeElement(ent)
	}
	if itemSize > c.capacity {
		return
	}

	// Evict locally first so that released memory is available to the controller.
	for c.size+itemSize > c.capacity {
		ent := c.evictList.Back()
		if ent == nil {
			break
		}
		c.removeElement(ent)
	}

	if !c.rc.TryAcquireMemory(itemSize) {
		return
	}

	element := c.evictList.PushFront(&entry{rid: rid, value: b})
	c.items[rid] = element
	c.size += itemSize
}

// Invalidate removes a single record.
func (c *LRU) Invalidate(rid model.RID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[rid]; ok {
		c.removeElement(ent)
	}
}

// InvalidateBucket removes every record of a bucket.
func (c *LRU) InvalidateBucket(bucket int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*list.Element
	for rid, element := range c.items {
		if rid.BucketID == bucket {
			toRemove = append(toRemove, element)
		}
	}
	for _, e := range toRemove {
		c.removeElement(e)
	}
}

// Stats returns hit and miss counters.
func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the current size of the cache in bytes.
func (c *LRU) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of cached records.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRU) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*entry)
	delete(c.items, kv.rid)
	itemSize := int64(len(kv.value))
	c.size -= itemSize
	c.rc.ReleaseMemory(itemSize)
}
