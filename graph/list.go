package graph

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/hupe1980/recgo/buffer"
	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/serializer"
)

var (
	// ErrNotVertex is returned when the owning record is not a vertex.
	ErrNotVertex = errors.New("record is not a vertex")
	// ErrCycle is returned when a chunk chain links back onto itself.
	ErrCycle = errors.New("edge chunk chain contains a cycle")
)

// Store is the record storage an adjacency list reads and writes.
type Store interface {
	Create(ctx context.Context, bucket int32, data []byte) (model.RID, error)
	Read(ctx context.Context, rid model.RID) ([]byte, error)
	Update(ctx context.Context, rid model.RID, data []byte) error
}

// Option configures an EdgeLinkedList.
type Option func(*options)

type options struct {
	capacity int
	bucket   int32
	logger   *slog.Logger
}

// WithChunkCapacity sets the pair capacity of newly allocated chunks.
// Existing chunks keep the capacity they were created with.
func WithChunkCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithChunkBucket stores new chunks in bucket instead of the vertex bucket.
func WithChunkBucket(bucket int32) Option {
	return func(o *options) { o.bucket = bucket }
}

// WithLogger sets the logger for chunk allocation events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// EdgeLinkedList is the adjacency of one vertex in one direction: a chain of
// EdgeChunk records whose newest chunk is referenced by the vertex header.
//
// An EdgeLinkedList is not safe for concurrent use. Writers to the same vertex
// must be serialized by the caller.
type EdgeLinkedList struct {
	store     Store
	vertex    model.RID
	direction model.Direction
	head      model.RID
	capacity  int
	bucket    int32
	logger    *slog.Logger

	// headChunk caches the decoded head; nil forces a reload.
	headChunk *EdgeChunk
}

// Open loads the head pointer of vertex for dir. A null pointer means the
// vertex has no edges in that direction yet.
func Open(ctx context.Context, store Store, vertex model.RID, dir model.Direction, opts ...Option) (*EdgeLinkedList, error) {
	o := options{
		capacity: DefaultChunkCapacity,
		bucket:   vertex.BucketID,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	l := &EdgeLinkedList{
		store:     store,
		vertex:    vertex,
		direction: dir,
		capacity:  o.capacity,
		bucket:    o.bucket,
		logger:    o.logger,
	}
	buf, err := l.readVertex(ctx)
	if err != nil {
		return nil, err
	}
	out, in, err := serializer.GraphPointers(buf, serializer.WithRID(vertex))
	if err != nil {
		return nil, err
	}
	l.head = out
	if dir == model.In {
		l.head = in
	}
	return l, nil
}

// Vertex returns the owning vertex.
func (l *EdgeLinkedList) Vertex() model.RID { return l.vertex }

// Direction returns the direction this list covers.
func (l *EdgeLinkedList) Direction() model.Direction { return l.direction }

// Head returns the RID of the newest chunk, or model.Null when there is none.
func (l *EdgeLinkedList) Head() model.RID { return l.head }

// Add appends a single pair.
func (l *EdgeLinkedList) Add(ctx context.Context, neighbor, edge model.RID) error {
	return l.AddAll(ctx, []Pair{{Neighbor: neighbor, Edge: edge}})
}

// AddAll appends pairs to the head chunk, allocating new chunks as the head
// fills. A new chunk is always stored before the vertex is repointed at it,
// so a failure in between leaves an unreferenced chunk and never a vertex
// pointing at a missing one.
func (l *EdgeLinkedList) AddAll(ctx context.Context, pairs []Pair) error {
	if len(pairs) == 0 {
		return nil
	}

	head, err := l.loadHead(ctx)
	if err != nil {
		return err
	}

	dirty := false   // head holds appends not yet written
	pending := false // head is a new chunk not yet created
	for _, p := range pairs {
		if head != nil && head.Append(p.Neighbor, p.Edge) {
			dirty = true
			continue
		}

		if head != nil {
			if err := l.flush(ctx, head, pending, dirty); err != nil {
				return err
			}
		}

		next := model.Null
		if head != nil {
			next = head.RID()
		}
		head = NewEdgeChunk(l.capacity, next)
		head.Append(p.Neighbor, p.Edge)
		pending, dirty = true, true
	}

	return l.flush(ctx, head, pending, dirty)
}

// flush writes head. A pending chunk is created and then linked from the
// vertex; an existing one is updated in place.
func (l *EdgeLinkedList) flush(ctx context.Context, head *EdgeChunk, pending, dirty bool) error {
	if !dirty {
		return nil
	}
	data, err := head.MarshalBinary()
	if err != nil {
		return err
	}

	if !pending {
		if err := l.store.Update(ctx, head.RID(), data); err != nil {
			l.headChunk = nil
			return fmt.Errorf("update edge chunk %s: %w", head.RID(), err)
		}
		l.headChunk = head
		return nil
	}

	rid, err := l.store.Create(ctx, l.bucket, data)
	if err != nil {
		l.headChunk = nil
		return fmt.Errorf("create edge chunk: %w", err)
	}
	head.rid = rid

	if err := l.repoint(ctx, rid); err != nil {
		l.headChunk = nil
		l.logger.Warn("edge chunk stored but vertex not repointed",
			"vertex", l.vertex.String(), "direction", l.direction.String(), "chunk", rid.String(), "error", err)
		return err
	}
	l.head = rid
	l.headChunk = head
	l.logger.Debug("edge chunk allocated",
		"vertex", l.vertex.String(), "direction", l.direction.String(),
		"chunk", rid.String(), "next", head.Next().String())
	return nil
}

func (l *EdgeLinkedList) repoint(ctx context.Context, chunk model.RID) error {
	buf, err := l.readVertex(ctx)
	if err != nil {
		return err
	}
	next, err := serializer.WithGraphPointer(buf, l.direction, chunk, serializer.WithRID(l.vertex))
	if err != nil {
		return err
	}
	if err := l.store.Update(ctx, l.vertex, next.Bytes()); err != nil {
		return fmt.Errorf("repoint vertex %s: %w", l.vertex, err)
	}
	return nil
}

func (l *EdgeLinkedList) readVertex(ctx context.Context) (*buffer.Buffer, error) {
	data, err := l.store.Read(ctx, l.vertex)
	if err != nil {
		return nil, fmt.Errorf("read vertex %s: %w", l.vertex, err)
	}
	buf := buffer.Wrap(data)
	t, err := serializer.RecordType(buf, serializer.WithRID(l.vertex))
	if err != nil {
		return nil, err
	}
	if t != model.RecordVertex {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotVertex, l.vertex, t)
	}
	return buf, nil
}

func (l *EdgeLinkedList) loadHead(ctx context.Context) (*EdgeChunk, error) {
	if l.head.IsNull() {
		return nil, nil
	}
	if l.headChunk != nil && l.headChunk.RID() == l.head {
		return l.headChunk, nil
	}
	c, err := l.readChunk(ctx, l.head)
	if err != nil {
		return nil, err
	}
	l.headChunk = c
	return c, nil
}

func (l *EdgeLinkedList) readChunk(ctx context.Context, rid model.RID) (*EdgeChunk, error) {
	data, err := l.store.Read(ctx, rid)
	if err != nil {
		return nil, fmt.Errorf("read edge chunk %s: %w", rid, err)
	}
	return UnmarshalEdgeChunk(rid, data)
}

// Chunks yields the chain from the head chunk to the oldest one.
func (l *EdgeLinkedList) Chunks(ctx context.Context) iter.Seq2[*EdgeChunk, error] {
	return func(yield func(*EdgeChunk, error) bool) {
		seen := make(map[model.RID]struct{})
		for rid := l.head; !rid.IsNull(); {
			if _, ok := seen[rid]; ok {
				yield(nil, fmt.Errorf("%w: %s revisited", ErrCycle, rid))
				return
			}
			seen[rid] = struct{}{}

			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			c, err := l.readChunk(ctx, rid)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(c, nil) {
				return
			}
			rid = c.Next()
		}
	}
}

// All yields every pair, newest chunk first and insertion order within a
// chunk. Iteration stops after the first error.
func (l *EdgeLinkedList) All(ctx context.Context) iter.Seq2[Pair, error] {
	return func(yield func(Pair, error) bool) {
		for c, err := range l.Chunks(ctx) {
			if err != nil {
				yield(Pair{}, err)
				return
			}
			for p := range c.All() {
				if !yield(p, nil) {
					return
				}
			}
		}
	}
}

// Count returns the number of pairs across all chunks.
func (l *EdgeLinkedList) Count(ctx context.Context) (int, error) {
	n := 0
	for c, err := range l.Chunks(ctx) {
		if err != nil {
			return 0, err
		}
		n += c.Len()
	}
	return n, nil
}
