package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/internal/cache"
	"github.com/hupe1980/recgo/internal/resource"
	"github.com/hupe1980/recgo/model"
)

// BlobOption configures a BlobRecordStore.
type BlobOption func(*blobOptions)

type blobOptions struct {
	compression Compression
	cacheBytes  int64
	rc          *resource.Controller
	alloc       PositionAllocator
	logger      *slog.Logger
}

// WithCompression sets the codec for new record blobs. Blobs that do not
// shrink by at least 10% are stored uncompressed.
func WithCompression(c Compression) BlobOption {
	return func(o *blobOptions) { o.compression = c }
}

// WithCacheSize enables a record cache bounded to n bytes.
func WithCacheSize(n int64) BlobOption {
	return func(o *blobOptions) { o.cacheBytes = n }
}

// WithResourceController bounds blob IO and cache memory.
func WithResourceController(rc *resource.Controller) BlobOption {
	return func(o *blobOptions) { o.rc = rc }
}

// WithPositionAllocator replaces the default LocalAllocator.
func WithPositionAllocator(a PositionAllocator) BlobOption {
	return func(o *blobOptions) {
		if a != nil {
			o.alloc = a
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) BlobOption {
	return func(o *blobOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// BlobRecordStore keeps every record in its own blob named b<bucket>/<position>.
type BlobRecordStore struct {
	store       blobstore.BlobStore
	alloc       PositionAllocator
	compression Compression
	cache       cache.RecordCache
	rc          *resource.Controller
	logger      *slog.Logger
}

// NewBlobRecordStore returns a RecordStore over store.
func NewBlobRecordStore(store blobstore.BlobStore, opts ...BlobOption) *BlobRecordStore {
	o := blobOptions{
		compression: CompressionNone,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.alloc == nil {
		o.alloc = NewLocalAllocator(store)
	}

	s := &BlobRecordStore{
		store:       store,
		alloc:       o.alloc,
		compression: o.compression,
		rc:          o.rc,
		logger:      o.logger,
	}
	if o.cacheBytes > 0 {
		s.cache = cache.NewSharded(o.cacheBytes, o.rc)
	}
	return s
}

// Create implements RecordStore.
func (s *BlobRecordStore) Create(ctx context.Context, bucket int32, data []byte) (model.RID, error) {
	if bucket < 0 {
		return model.Null, fmt.Errorf("%w: %d", ErrInvalidBucket, bucket)
	}
	pos, err := s.alloc.Next(ctx, bucket)
	if err != nil {
		return model.Null, fmt.Errorf("allocate position in bucket %d: %w", bucket, err)
	}
	rid := model.NewRID(bucket, pos)

	frame, err := encodeFrame(s.compression, data)
	if err != nil {
		return model.Null, err
	}
	if err := s.put(ctx, rid, frame, true); err != nil {
		return model.Null, err
	}
	s.remember(rid, data)
	return rid, nil
}

// Read implements RecordStore.
func (s *BlobRecordStore) Read(ctx context.Context, rid model.RID) ([]byte, error) {
	if err := checkRID(rid); err != nil {
		return nil, fmt.Errorf("%w: %s", err, rid)
	}
	if s.cache != nil {
		if data, ok := s.cache.Get(rid); ok {
			return bytes.Clone(data), nil
		}
	}

	frame, err := s.get(ctx, rid)
	if err != nil {
		return nil, err
	}
	data, err := decodeFrame(frame)
	if err != nil {
		if errors.Is(err, ErrChecksum) {
			s.logger.Error("record failed checksum", "rid", rid.String(), "error", err)
		}
		return nil, fmt.Errorf("%w: %s", err, rid)
	}
	s.remember(rid, data)
	return data, nil
}

// ReadMany reads rids in parallel, bounded by the IO slot limit. The result
// is in input order. Any failure aborts the whole call.
func (s *BlobRecordStore) ReadMany(ctx context.Context, rids []model.RID) ([][]byte, error) {
	out := make([][]byte, len(rids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.rc.MaxConcurrentIO())
	for i, rid := range rids {
		g.Go(func() error {
			data, err := s.Read(ctx, rid)
			out[i] = data
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update implements RecordStore.
func (s *BlobRecordStore) Update(ctx context.Context, rid model.RID, data []byte) error {
	if _, err := s.Read(ctx, rid); err != nil {
		return err
	}
	frame, err := encodeFrame(s.compression, data)
	if err != nil {
		return err
	}
	if err := s.put(ctx, rid, frame, false); err != nil {
		if s.cache != nil {
			s.cache.Invalidate(rid)
		}
		return err
	}
	s.remember(rid, data)
	return nil
}

// Delete implements RecordStore. The blob is replaced by a tombstone so the
// position is not recovered as free.
func (s *BlobRecordStore) Delete(ctx context.Context, rid model.RID) error {
	if _, err := s.Read(ctx, rid); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(rid)
	}
	return s.put(ctx, rid, []byte{frameTombstone}, false)
}

// CacheStats returns record cache hits and misses. Both are zero without a cache.
func (s *BlobRecordStore) CacheStats() (hits, misses int64) {
	if s.cache == nil {
		return 0, 0
	}
	return s.cache.Stats()
}

func (s *BlobRecordStore) remember(rid model.RID, data []byte) {
	if s.cache != nil {
		s.cache.Set(rid, bytes.Clone(data))
	}
}

func (s *BlobRecordStore) put(ctx context.Context, rid model.RID, frame []byte, create bool) error {
	if err := s.rc.AcquireIOSlot(ctx); err != nil {
		return err
	}
	defer s.rc.ReleaseIOSlot()
	if err := s.rc.AcquireIO(ctx, len(frame)); err != nil {
		return err
	}

	key := recordKey(rid)
	if cs, ok := s.store.(blobstore.ConditionalStore); ok && create {
		if err := cs.PutIfAbsent(ctx, key, frame); err != nil {
			if errors.Is(err, blobstore.ErrConflict) {
				return fmt.Errorf("position %s already taken: %w", rid, err)
			}
			return fmt.Errorf("put %s: %w", key, err)
		}
		return nil
	}
	if err := s.store.Put(ctx, key, frame); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *BlobRecordStore) get(ctx context.Context, rid model.RID) ([]byte, error) {
	if err := s.rc.AcquireIOSlot(ctx); err != nil {
		return nil, err
	}
	defer s.rc.ReleaseIOSlot()

	key := recordKey(rid)
	frame, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, rid)
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	if err := s.rc.AcquireIO(ctx, len(frame)); err != nil {
		return nil, err
	}
	return frame, nil
}

var _ RecordStore = (*BlobRecordStore)(nil)
