package recgo

import (
	"log/slog"

	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/graph"
	"github.com/hupe1980/recgo/schema"
	"github.com/hupe1980/recgo/storage"
)

// DefaultDictionaryName is the blob holding the dictionary snapshot.
const DefaultDictionaryName = "dictionary"

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	blobStore        blobstore.BlobStore
	recordStore      storage.RecordStore
	dictionaryName   string
	chunkCapacity    int
	chunkBucket      int32
	compression      storage.Compression
	cacheBytes       int64
	ioLimit          int64
	maxConcurrentIO  int64
	strictTypes      bool
	schema           *schema.Registry
	allocator        storage.PositionAllocator
}

// Option configures Open.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := recgo.NewJSONLogger(slog.LevelInfo)
//	db, _ := recgo.Open(ctx, recgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &recgo.BasicMetricsCollector{}
//	db, _ := recgo.Open(ctx, recgo.WithMetricsCollector(metrics))
//	// ... use db ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithBlobStore keeps records and the dictionary snapshot in bs.
// Records go through a storage.BlobRecordStore unless WithRecordStore is set.
//
// Example with S3:
//
//	bs, _ := s3.New(ctx, "my-bucket", "graphs/social")
//	db, _ := recgo.Open(ctx, recgo.WithBlobStore(bs))
func WithBlobStore(bs blobstore.BlobStore) Option {
	return func(o *options) {
		o.blobStore = bs
	}
}

// WithRecordStore sets the record store directly. Without a blob store the
// dictionary lives only in memory.
func WithRecordStore(rs storage.RecordStore) Option {
	return func(o *options) {
		o.recordStore = rs
	}
}

// WithDictionaryName sets the blob name of the dictionary snapshot.
func WithDictionaryName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.dictionaryName = name
		}
	}
}

// WithChunkCapacity sets the number of pairs per edge chunk.
func WithChunkCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkCapacity = n
		}
	}
}

// WithEdgeChunkBucket stores edge chunks in bucket. By default a chunk is
// stored in the bucket of its vertex.
func WithEdgeChunkBucket(bucket int32) Option {
	return func(o *options) {
		o.chunkBucket = bucket
	}
}

// WithCompression sets blob compression for records. It only applies to the
// blob-backed record store.
func WithCompression(c storage.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCacheSize enables a record cache of n bytes for the blob-backed store.
func WithCacheSize(n int64) Option {
	return func(o *options) {
		o.cacheBytes = n
	}
}

// WithIOLimit bounds blob throughput to bytesPerSec and the number of
// concurrent blob requests to maxConcurrent. Zero keeps the default.
func WithIOLimit(bytesPerSec, maxConcurrent int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
		o.maxConcurrentIO = maxConcurrent
	}
}

// WithStrictTypes makes unknown value tags and unsupported kinds errors.
// By default they are logged and stored or read as null.
func WithStrictTypes(strict bool) Option {
	return func(o *options) {
		o.strictTypes = strict
	}
}

// WithSchema enables property kind warnings and typed Get.
func WithSchema(r *schema.Registry) Option {
	return func(o *options) {
		o.schema = r
	}
}

// WithPositionAllocator sets the allocator for the blob-backed record store,
// e.g. s3.DDBAllocator when several processes share one bucket.
func WithPositionAllocator(a storage.PositionAllocator) Option {
	return func(o *options) {
		o.allocator = a
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		dictionaryName:   DefaultDictionaryName,
		chunkCapacity:    graph.DefaultChunkCapacity,
		chunkBucket:      -1,
		compression:      storage.CompressionNone,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
