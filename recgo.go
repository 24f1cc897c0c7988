package recgo

import (
	"context"
	"errors"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/buffer"
	"github.com/hupe1980/recgo/dictionary"
	"github.com/hupe1980/recgo/graph"
	"github.com/hupe1980/recgo/internal/resource"
	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/schema"
	"github.com/hupe1980/recgo/serializer"
	"github.com/hupe1980/recgo/storage"
	"github.com/hupe1980/recgo/value"
)

const lockStripes = 64

// Record is a decoded record.
type Record struct {
	RID  model.RID
	Type model.RecordType
	// Out and In are the adjacency heads of a vertex or the endpoints of an
	// edge, model.Null for documents.
	Out, In    model.RID
	Properties value.Properties
}

// DB is an embedded document and graph record store.
// It is safe for concurrent use.
type DB struct {
	store   storage.RecordStore
	blobs   blobstore.BlobStore
	dict    *dictionary.Dictionary
	ser     *serializer.Serializer
	schema  *schema.Registry
	logger  *Logger
	metrics MetricsCollector

	dictName      string
	chunkCapacity int
	chunkBucket   int32

	scratch sync.Pool
	stripes [lockStripes]sync.Mutex
	closed  atomic.Bool
}

// Open creates a DB. Without WithBlobStore or WithRecordStore records are
// kept in memory. With a blob store the dictionary snapshot is loaded from it
// and written back by Close.
func Open(ctx context.Context, optFns ...Option) (*DB, error) {
	o := applyOptions(optFns)

	dict := dictionary.New()
	if o.blobStore != nil {
		loaded, err := dictionary.Load(ctx, o.blobStore, o.dictionaryName)
		switch {
		case err == nil:
			dict = loaded
			o.logger.LogDictionary(ctx, "load", o.dictionaryName, dict.Len(), nil)
		case errors.Is(err, blobstore.ErrNotFound):
		default:
			o.logger.LogDictionary(ctx, "load", o.dictionaryName, 0, err)
			return nil, translateError(err)
		}
	}

	store := o.recordStore
	switch {
	case store != nil:
	case o.blobStore != nil:
		rc := resource.NewController(resource.Config{
			MemoryLimitBytes:   o.cacheBytes,
			MaxConcurrentIO:    o.maxConcurrentIO,
			IOLimitBytesPerSec: o.ioLimit,
		})
		store = storage.NewBlobRecordStore(o.blobStore,
			storage.WithCompression(o.compression),
			storage.WithCacheSize(o.cacheBytes),
			storage.WithResourceController(rc),
			storage.WithPositionAllocator(o.allocator),
			storage.WithLogger(o.logger.Logger),
		)
	default:
		store = storage.NewMemoryStore()
	}

	serOpts := []serializer.Option{
		serializer.WithLogger(o.logger.Logger),
		serializer.WithStrictTypes(o.strictTypes),
	}
	if o.schema != nil {
		serOpts = append(serOpts, serializer.WithSchema(o.schema))
	}

	db := &DB{
		store:         store,
		blobs:         o.blobStore,
		dict:          dict,
		ser:           serializer.New(dict, serOpts...),
		schema:        o.schema,
		logger:        o.logger,
		metrics:       o.metricsCollector,
		dictName:      o.dictionaryName,
		chunkCapacity: o.chunkCapacity,
		chunkBucket:   o.chunkBucket,
	}
	db.scratch.New = func() any { return serializer.NewScratch() }
	return db, nil
}

// Close saves the dictionary snapshot when a blob store is configured.
// Further calls return nil.
func (db *DB) Close(ctx context.Context) error {
	if db == nil || !db.closed.CompareAndSwap(false, true) {
		return nil
	}
	if db.blobs == nil {
		return nil
	}
	err := db.dict.Save(ctx, db.blobs, db.dictName)
	db.logger.LogDictionary(ctx, "save", db.dictName, db.dict.Len(), err)
	return translateError(err)
}

// Dictionary returns the property name dictionary.
func (db *DB) Dictionary() *dictionary.Dictionary {
	return db.dict
}

// Store returns the underlying record store.
func (db *DB) Store() storage.RecordStore {
	return db.store
}

// RenameProperty renames a property for every record at once.
func (db *DB) RenameProperty(ctx context.Context, oldName, newName string) error {
	if db.closed.Load() {
		return ErrClosed
	}
	err := db.dict.UpdateName(oldName, newName)
	db.logger.LogRename(ctx, oldName, newName, err)
	return translateError(err)
}

// CreateDocument stores a document in bucket.
func (db *DB) CreateDocument(ctx context.Context, bucket int32, props value.Properties) (model.RID, error) {
	return db.create(ctx, bucket, serializer.NewDocument(props))
}

// CreateVertex stores a vertex without edges in bucket.
func (db *DB) CreateVertex(ctx context.Context, bucket int32, props value.Properties) (model.RID, error) {
	return db.create(ctx, bucket, serializer.NewVertex(props))
}

// CreateEdge stores an edge from one vertex to another and appends it to the
// OUT list of from and the IN list of to.
func (db *DB) CreateEdge(ctx context.Context, bucket int32, from, to model.RID, props value.Properties) (model.RID, error) {
	for _, v := range []model.RID{from, to} {
		if err := db.expectVertex(ctx, v); err != nil {
			return model.Null, err
		}
	}

	edge, err := db.create(ctx, bucket, serializer.NewEdge(from, to, props))
	if err != nil {
		return model.Null, err
	}

	start := time.Now()
	err = db.connect(ctx, from, to, edge)
	db.metrics.RecordEdgeAppend(2, time.Since(start), err)
	db.logger.LogConnect(ctx, from, to, edge, err)
	if err != nil {
		return edge, translateError(err)
	}
	return edge, nil
}

func (db *DB) connect(ctx context.Context, from, to, edge model.RID) error {
	unlock := db.lock(from, to)
	defer unlock()

	out, err := db.openList(ctx, from, model.Out)
	if err != nil {
		return err
	}
	if err := out.Add(ctx, to, edge); err != nil {
		return err
	}
	in, err := db.openList(ctx, to, model.In)
	if err != nil {
		return err
	}
	return in.Add(ctx, from, edge)
}

func (db *DB) openList(ctx context.Context, vertex model.RID, dir model.Direction) (*graph.EdgeLinkedList, error) {
	opts := []graph.Option{
		graph.WithChunkCapacity(db.chunkCapacity),
		graph.WithLogger(db.logger.Logger),
	}
	if db.chunkBucket >= 0 {
		opts = append(opts, graph.WithChunkBucket(db.chunkBucket))
	}
	return graph.Open(ctx, db.store, vertex, dir, opts...)
}

// Edges yields the adjacency of vertex in dir, most recent chunk first.
func (db *DB) Edges(ctx context.Context, vertex model.RID, dir model.Direction) iter.Seq2[graph.Pair, error] {
	return func(yield func(graph.Pair, error) bool) {
		if db.closed.Load() {
			yield(graph.Pair{}, ErrClosed)
			return
		}
		l, err := db.openList(ctx, vertex, dir)
		if err != nil {
			yield(graph.Pair{}, translateError(err))
			return
		}
		for p, err := range l.All(ctx) {
			if !yield(p, translateError(err)) || err != nil {
				return
			}
		}
	}
}

// Endpoints returns the out and in vertices of an edge.
func (db *DB) Endpoints(ctx context.Context, edge model.RID) (out, in model.RID, err error) {
	buf, err := db.read(ctx, edge)
	if err != nil {
		return model.Null, model.Null, err
	}
	h, err := serializer.ReadHeader(buf, serializer.WithRID(edge))
	if err != nil {
		return model.Null, model.Null, translateError(err)
	}
	if h.Type != model.RecordEdge {
		return model.Null, model.Null, &ErrRecordTypeMismatch{RID: edge, Expected: model.RecordEdge.String(), Actual: h.Type.String()}
	}
	return h.Out, h.In, nil
}

// Get reads a whole record. A non-empty typeName requires the record's bucket
// to belong to that schema type or one of its subtypes.
func (db *DB) Get(ctx context.Context, rid model.RID, typeName string) (*Record, error) {
	buf, err := db.read(ctx, rid)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	h, err := serializer.ReadHeader(buf, serializer.WithRID(rid))
	if err != nil {
		db.metrics.RecordDeserialize(time.Since(start), err)
		return nil, translateError(err)
	}
	if err := db.checkType(rid, h.Type, typeName); err != nil {
		return nil, err
	}
	props, err := db.ser.DeserializeAll(buf, serializer.WithRID(rid))
	db.metrics.RecordDeserialize(time.Since(start), err)
	if err != nil {
		db.logger.LogRead(ctx, rid, err)
		return nil, translateError(err)
	}
	return &Record{RID: rid, Type: h.Type, Out: h.Out, In: h.In, Properties: props}, nil
}

func (db *DB) checkType(rid model.RID, actual model.RecordType, typeName string) error {
	if typeName == "" {
		return nil
	}
	if db.schema == nil {
		return &ErrRecordTypeMismatch{RID: rid, Expected: typeName, Actual: "untyped", cause: schema.ErrUnknownType}
	}
	t, ok := db.schema.TypeOfBucket(rid.BucketID)
	if !ok {
		return &ErrRecordTypeMismatch{RID: rid, Expected: typeName, Actual: "untyped", cause: schema.ErrUnknownType}
	}
	if t.Record != actual {
		return &ErrRecordTypeMismatch{RID: rid, Expected: t.Record.String(), Actual: actual.String()}
	}
	if !db.schema.IsSubtypeOf(t.Name, typeName) {
		return &ErrRecordTypeMismatch{RID: rid, Expected: typeName, Actual: t.Name}
	}
	return nil
}

// Properties returns the named properties of rid, or all of them when no
// names are given. Missing names are absent from the result.
func (db *DB) Properties(ctx context.Context, rid model.RID, names ...string) (map[string]value.Value, error) {
	if len(names) == 0 {
		props, err := db.AllProperties(ctx, rid)
		if err != nil {
			return nil, err
		}
		return props.Map(), nil
	}

	buf, err := db.read(ctx, rid)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	m, err := db.ser.DeserializeFiltered(buf, names, serializer.WithRID(rid))
	db.metrics.RecordDeserialize(time.Since(start), err)
	if err != nil {
		db.logger.LogRead(ctx, rid, err)
		return nil, translateError(err)
	}
	return m, nil
}

// AllProperties returns every property of rid in stored order.
func (db *DB) AllProperties(ctx context.Context, rid model.RID) (value.Properties, error) {
	buf, err := db.read(ctx, rid)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	props, err := db.ser.DeserializeAll(buf, serializer.WithRID(rid))
	db.metrics.RecordDeserialize(time.Since(start), err)
	if err != nil {
		db.logger.LogRead(ctx, rid, err)
		return nil, translateError(err)
	}
	return props, nil
}

// PropertyNames returns the property names of rid without decoding values.
func (db *DB) PropertyNames(ctx context.Context, rid model.RID) ([]string, error) {
	buf, err := db.read(ctx, rid)
	if err != nil {
		return nil, err
	}
	names, err := db.ser.PropertyNames(buf, serializer.WithRID(rid))
	if err != nil {
		db.logger.LogRead(ctx, rid, err)
		return nil, translateError(err)
	}
	return names, nil
}

// UpdateProperties replaces the properties of rid. Graph pointers are kept.
func (db *DB) UpdateProperties(ctx context.Context, rid model.RID, props value.Properties) error {
	if db.closed.Load() {
		return ErrClosed
	}
	// Vertex pointers move when edges are added; hold the same lock.
	unlock := db.lock(rid, rid)
	defer unlock()

	err := db.update(ctx, rid, props)
	db.logger.LogUpdate(ctx, rid, err)
	return translateError(err)
}

func (db *DB) update(ctx context.Context, rid model.RID, props value.Properties) error {
	buf, err := db.read(ctx, rid)
	if err != nil {
		return err
	}
	h, err := serializer.ReadHeader(buf, serializer.WithRID(rid))
	if err != nil {
		return err
	}

	start := time.Now()
	sc := db.scratch.Get().(*serializer.Scratch)
	defer db.scratch.Put(sc)
	next, err := db.ser.Serialize(sc, serializer.Record{Type: h.Type, Out: h.Out, In: h.In, Properties: props}, serializer.WithRID(rid))
	if err != nil {
		db.metrics.RecordSerialize(0, time.Since(start), err)
		return err
	}
	err = db.store.Update(ctx, rid, next.Bytes())
	db.metrics.RecordSerialize(next.Limit(), time.Since(start), err)
	return err
}

func (db *DB) create(ctx context.Context, bucket int32, r serializer.Record) (model.RID, error) {
	if db.closed.Load() {
		return model.Null, ErrClosed
	}
	start := time.Now()
	sc := db.scratch.Get().(*serializer.Scratch)
	defer db.scratch.Put(sc)

	// Schema checks need the bucket; the position is not known yet.
	buf, err := db.ser.Serialize(sc, r, serializer.WithRID(model.NewRID(bucket, 0)))
	if err != nil {
		db.metrics.RecordSerialize(0, time.Since(start), err)
		db.logger.LogCreate(ctx, r.Type, model.Null, err)
		return model.Null, translateError(err)
	}
	rid, err := db.store.Create(ctx, bucket, buf.Bytes())
	db.metrics.RecordSerialize(buf.Limit(), time.Since(start), err)
	db.logger.LogCreate(ctx, r.Type, rid, err)
	if err != nil {
		return model.Null, translateError(err)
	}
	return rid, nil
}

func (db *DB) read(ctx context.Context, rid model.RID) (*buffer.Buffer, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}
	data, err := db.store.Read(ctx, rid)
	if err != nil {
		db.logger.LogRead(ctx, rid, err)
		return nil, translateError(err)
	}
	return buffer.Wrap(data), nil
}

func (db *DB) expectVertex(ctx context.Context, rid model.RID) error {
	buf, err := db.read(ctx, rid)
	if err != nil {
		return err
	}
	t, err := serializer.RecordType(buf, serializer.WithRID(rid))
	if err != nil {
		return translateError(err)
	}
	if t != model.RecordVertex {
		return &ErrRecordTypeMismatch{RID: rid, Expected: model.RecordVertex.String(), Actual: t.String()}
	}
	return nil
}

// lock takes the stripes of a and b in index order and returns the unlock func.
func (db *DB) lock(a, b model.RID) func() {
	i, j := stripeOf(a), stripeOf(b)
	if i > j {
		i, j = j, i
	}
	db.stripes[i].Lock()
	if i != j {
		db.stripes[j].Lock()
	}
	return func() {
		if i != j {
			db.stripes[j].Unlock()
		}
		db.stripes[i].Unlock()
	}
}

// stripeOf mixes bucket and position with the murmur3 finalizer.
func stripeOf(rid model.RID) int {
	h := uint64(rid.Position) ^ uint64(uint32(rid.BucketID))*0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return int(h % lockStripes)
}
