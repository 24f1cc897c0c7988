package cache

import (
	"encoding/binary"
	"hash/maphash"

	"github.com/hupe1980/recgo/internal/resource"
	"github.com/hupe1980/recgo/model"
)

const numShards = 16

// Sharded spreads records across LRU shards to reduce lock contention.
type Sharded struct {
	shards [numShards]*LRU
	seed   maphash.Seed
}

// NewSharded creates a sharded cache.
// The capacity is divided evenly across all shards.
func NewSharded(capacity int64, rc *resource.Controller) *Sharded {
	shardCapacity := max(capacity/numShards, 1)

	s := &Sharded{seed: maphash.MakeSeed()}
	for i := range numShards {
		s.shards[i] = NewLRU(shardCapacity, rc)
	}
	return s
}

func (s *Sharded) shard(rid model.RID) *LRU {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[0:], uint32(rid.BucketID))
	binary.LittleEndian.PutUint64(buf[4:], uint64(rid.Position))
	return s.shards[maphash.Bytes(s.seed, buf[:])%numShards]
}

// Get returns cached record bytes.
func (s *Sharded) Get(rid model.RID) ([]byte, bool) {
	return s.shard(rid).Get(rid)
}

// Set caches record bytes.
func (s *Sharded) Set(rid model.RID, b []byte) {
	s.shard(rid).Set(rid, b)
}

// Invalidate removes a single record.
func (s *Sharded) Invalidate(rid model.RID) {
	s.shard(rid).Invalidate(rid)
}

// InvalidateBucket removes every record of a bucket from all shards.
func (s *Sharded) InvalidateBucket(bucket int32) {
	for _, sh := range s.shards {
		sh.InvalidateBucket(bucket)
	}
}

// Stats aggregates statistics from all shards.
func (s *Sharded) Stats() (hits, misses int64) {
	for _, sh := range s.shards {
		h, m := sh.Stats()
		hits += h
		misses += m
	}
	return hits, misses
}

// Size returns the total size across all shards.
func (s *Sharded) Size() int64 {
	var total int64
	for _, sh := range s.shards {
		total += sh.Size()
	}
	return total
}

var (
	_ RecordCache = (*LRU)(nil)
	_ RecordCache = (*Sharded)(nil)
)
