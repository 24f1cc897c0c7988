package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/model"
)

// PositionAllocator hands out record positions within a bucket. Positions are
// never handed out twice.
type PositionAllocator interface {
	Next(ctx context.Context, bucket int32) (int64, error)
}

// LocalAllocator allocates positions in process. The first allocation in a
// bucket lists the bucket's blobs and continues after the highest position,
// so a single writer can reopen a store. Use a shared allocator such as
// s3.DDBAllocator when several processes write the same bucket.
type LocalAllocator struct {
	store blobstore.BlobStore

	mu   sync.Mutex
	next map[int32]int64
}

// NewLocalAllocator returns an allocator recovering from store.
func NewLocalAllocator(store blobstore.BlobStore) *LocalAllocator {
	return &LocalAllocator{store: store, next: make(map[int32]int64)}
}

// Next implements PositionAllocator.
func (a *LocalAllocator) Next(ctx context.Context, bucket int32) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, ok := a.next[bucket]
	if !ok {
		var err error
		if n, err = a.scan(ctx, bucket); err != nil {
			return 0, err
		}
	}
	a.next[bucket] = n + 1
	return n, nil
}

// Recover scans the given buckets concurrently so later allocations do not
// block on a listing.
func (a *LocalAllocator) Recover(ctx context.Context, buckets ...int32) error {
	found := make([]int64, len(buckets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, bucket := range buckets {
		g.Go(func() error {
			n, err := a.scan(ctx, bucket)
			found[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for i, bucket := range buckets {
		a.next[bucket] = max(a.next[bucket], found[i])
	}
	return nil
}

// scan returns one past the highest position stored in bucket.
func (a *LocalAllocator) scan(ctx context.Context, bucket int32) (int64, error) {
	names, err := a.store.List(ctx, bucketPrefix(bucket))
	if err != nil {
		return 0, fmt.Errorf("list bucket %d: %w", bucket, err)
	}
	next := int64(0)
	for _, name := range names {
		rid, ok := parseRecordKey(name)
		if !ok || rid.BucketID != bucket {
			continue
		}
		next = max(next, rid.Position+1)
	}
	return next, nil
}

// recordKey names the blob of rid. Positions are zero padded so listings
// sort numerically.
func recordKey(rid model.RID) string {
	return fmt.Sprintf("%s%019d", bucketPrefix(rid.BucketID), rid.Position)
}

func bucketPrefix(bucket int32) string {
	return "b" + strconv.FormatInt(int64(bucket), 10) + "/"
}

func parseRecordKey(name string) (model.RID, bool) {
	bucketPart, posPart, ok := strings.Cut(strings.TrimPrefix(name, "b"), "/")
	if !ok || !strings.HasPrefix(name, "b") {
		return model.Null, false
	}
	bucket, err := strconv.ParseInt(bucketPart, 10, 32)
	if err != nil || bucket < 0 {
		return model.Null, false
	}
	pos, err := strconv.ParseInt(posPart, 10, 64)
	if err != nil || pos < 0 {
		return model.Null, false
	}
	return model.NewRID(int32(bucket), pos), true
}
