package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recgo/internal/resource"
	"github.com/hupe1980/recgo/model"
)

func TestLRU_Basic(t *testing.T) {
	c := NewLRU(30, nil)
	a, b, d := model.NewRID(1, 0), model.NewRID(1, 1), model.NewRID(1, 2)

	c.Set(a, make([]byte, 10))
	c.Set(b, make([]byte, 10))
	c.Set(d, make([]byte, 10))
	assert.Equal(t, int64(30), c.Size())

	// Touch a so b becomes least recently used.
	_, ok := c.Get(a)
	require.True(t, ok)

	c.Set(model.NewRID(1, 3), make([]byte, 10))
	_, ok = c.Get(b)
	assert.False(t, ok, "b should be evicted")
	_, ok = c.Get(a)
	assert.True(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRU_EdgeCases(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	c := NewLRU(50, rc)
	rid := model.NewRID(2, 7)

	c.Set(rid, make([]byte, 60))
	_, ok := c.Get(rid)
	assert.False(t, ok, "item larger than capacity should not be cached")

	c.Set(rid, make([]byte, 10))
	c.Set(rid, make([]byte, 20))
	assert.Equal(t, int64(20), c.Size())
	assert.Equal(t, int64(20), rc.MemoryUsage())

	c.Set(rid, make([]byte, 5))
	assert.Equal(t, int64(5), c.Size())
	assert.Equal(t, int64(5), rc.MemoryUsage())

	c.Invalidate(rid)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestLRU_ControllerLimit(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 10})
	c := NewLRU(50, rc)

	c.Set(model.NewRID(0, 0), make([]byte, 8))
	c.Set(model.NewRID(0, 1), make([]byte, 8))

	_, ok := c.Get(model.NewRID(0, 1))
	assert.False(t, ok, "controller denied the second entry")
	assert.Equal(t, int64(8), rc.MemoryUsage())
}

func TestLRU_InvalidateBucket(t *testing.T) {
	c := NewLRU(1000, nil)
	for i := range int64(5) {
		c.Set(model.NewRID(1, i), []byte("x"))
		c.Set(model.NewRID(2, i), []byte("y"))
	}

	c.InvalidateBucket(1)
	assert.Equal(t, 5, c.Len())
	_, ok := c.Get(model.NewRID(2, 3))
	assert.True(t, ok)
}

func TestSharded(t *testing.T) {
	c := NewSharded(1<<20, nil)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range int64(100) {
				rid := model.NewRID(int32(g), i)
				c.Set(rid, []byte(fmt.Sprint(rid)))
			}
		}()
	}
	wg.Wait()

	b, ok := c.Get(model.NewRID(3, 42))
	require.True(t, ok)
	assert.Equal(t, "#3:42", string(b))

	c.InvalidateBucket(3)
	_, ok = c.Get(model.NewRID(3, 42))
	assert.False(t, ok)

	c.Invalidate(model.NewRID(4, 1))
	_, ok = c.Get(model.NewRID(4, 1))
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
	assert.Positive(t, c.Size())
}
