package storage

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/recgo/model"
)

// MemoryStore is an in-memory RecordStore. Positions within a bucket are
// assigned sequentially from zero.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[int32]*memBucket
}

type memBucket struct {
	records [][]byte
	live    *roaring64.Bitmap
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[int32]*memBucket)}
}

// Create implements RecordStore.
func (m *MemoryStore) Create(ctx context.Context, bucket int32, data []byte) (model.RID, error) {
	if err := ctx.Err(); err != nil {
		return model.Null, err
	}
	if bucket < 0 {
		return model.Null, fmt.Errorf("%w: %d", ErrInvalidBucket, bucket)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[bucket]
	if !ok {
		b = &memBucket{live: roaring64.New()}
		m.buckets[bucket] = b
	}
	pos := int64(len(b.records))
	b.records = append(b.records, bytes.Clone(data))
	b.live.Add(uint64(pos))
	return model.NewRID(bucket, pos), nil
}

// Read implements RecordStore.
func (m *MemoryStore) Read(ctx context.Context, rid model.RID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	b, err := m.liveBucket(rid)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b.records[rid.Position]), nil
}

// Update implements RecordStore.
func (m *MemoryStore) Update(ctx context.Context, rid model.RID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.liveBucket(rid)
	if err != nil {
		return err
	}
	b.records[rid.Position] = bytes.Clone(data)
	return nil
}

// Delete implements RecordStore.
func (m *MemoryStore) Delete(ctx context.Context, rid model.RID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.liveBucket(rid)
	if err != nil {
		return err
	}
	b.records[rid.Position] = nil
	b.live.Remove(uint64(rid.Position))
	return nil
}

// Positions returns the live positions of bucket in ascending order.
func (m *MemoryStore) Positions(bucket int32) []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.buckets[bucket]
	if !ok {
		return nil
	}
	out := make([]int64, 0, b.live.GetCardinality())
	it := b.live.Iterator()
	for it.HasNext() {
		out = append(out, int64(it.Next()))
	}
	return out
}

// Count returns the number of live records in bucket.
func (m *MemoryStore) Count(bucket int32) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if b, ok := m.buckets[bucket]; ok {
		return int(b.live.GetCardinality())
	}
	return 0
}

// Buckets returns the ids of buckets that hold or held records.
func (m *MemoryStore) Buckets() []int32 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int32, 0, len(m.buckets))
	for id := range m.buckets {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// liveBucket must be called with m.mu held.
func (m *MemoryStore) liveBucket(rid model.RID) (*memBucket, error) {
	if err := checkRID(rid); err != nil {
		return nil, fmt.Errorf("%w: %s", err, rid)
	}
	b, ok := m.buckets[rid.BucketID]
	if !ok || !b.live.Contains(uint64(rid.Position)) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rid)
	}
	return b, nil
}

var _ RecordStore = (*MemoryStore)(nil)
