package graph

import (
	"fmt"
	"iter"

	"github.com/hupe1980/recgo/buffer"
	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/serializer"
)

// DefaultChunkCapacity is the number of pairs per chunk when none is configured.
const DefaultChunkCapacity = 64

const (
	pairSize        = 2 * (4 + 8)
	chunkHeaderSize = 1 + (4 + 8) + 4 + 4
)

// Pair is one adjacency entry: the vertex on the other side and the edge record.
type Pair struct {
	Neighbor model.RID
	Edge     model.RID
}

// EdgeChunk is one fixed-capacity segment of an adjacency list.
//
// Encoded layout (constant size for a given capacity):
//
//	byte   record type EdgeChunk
//	int32  next bucket, int64 next position
//	int32  capacity
//	int32  count
//	cap x  (neighbor RID, edge RID)
type EdgeChunk struct {
	rid   model.RID
	next  model.RID
	pairs []Pair
}

// NewEdgeChunk returns an empty chunk linking to next. A capacity below one
// selects DefaultChunkCapacity.
func NewEdgeChunk(capacity int, next model.RID) *EdgeChunk {
	if capacity < 1 {
		capacity = DefaultChunkCapacity
	}
	return &EdgeChunk{
		rid:   model.Null,
		next:  next,
		pairs: make([]Pair, 0, capacity),
	}
}

// Append adds a pair and reports false when the chunk is full.
func (c *EdgeChunk) Append(neighbor, edge model.RID) bool {
	if c.Full() {
		return false
	}
	c.pairs = append(c.pairs, Pair{Neighbor: neighbor, Edge: edge})
	return true
}

// All yields pairs in insertion order. The sequence can be ranged over repeatedly.
func (c *EdgeChunk) All() iter.Seq[Pair] {
	return func(yield func(Pair) bool) {
		for _, p := range c.pairs {
			if !yield(p) {
				return
			}
		}
	}
}

// Next returns the RID of the previously allocated chunk, or model.Null.
func (c *EdgeChunk) Next() model.RID { return c.next }

// RID returns the chunk's own RID, model.Null until it has been stored.
func (c *EdgeChunk) RID() model.RID { return c.rid }

// Len returns the number of pairs.
func (c *EdgeChunk) Len() int { return len(c.pairs) }

// Cap returns the pair capacity.
func (c *EdgeChunk) Cap() int { return cap(c.pairs) }

// Full reports whether Append would fail.
func (c *EdgeChunk) Full() bool { return len(c.pairs) == cap(c.pairs) }

// MarshalBinary encodes the chunk. Unused slots are written as null RIDs so
// the record size never changes.
func (c *EdgeChunk) MarshalBinary() ([]byte, error) {
	b := buffer.New(EncodedSize(c.Cap()))
	b.PutByte(byte(model.RecordEdgeChunk))
	b.PutInt(c.next.BucketID)
	b.PutLong(c.next.Position)
	b.PutInt(int32(c.Cap()))
	b.PutInt(int32(c.Len()))
	for i := range c.Cap() {
		p := Pair{Neighbor: model.Null, Edge: model.Null}
		if i < len(c.pairs) {
			p = c.pairs[i]
		}
		b.PutInt(p.Neighbor.BucketID)
		b.PutLong(p.Neighbor.Position)
		b.PutInt(p.Edge.BucketID)
		b.PutLong(p.Edge.Position)
	}
	return b.Bytes(), nil
}

// EncodedSize returns the record size of a chunk with the given capacity.
func EncodedSize(capacity int) int {
	return chunkHeaderSize + capacity*pairSize
}

// UnmarshalEdgeChunk decodes a chunk stored at rid.
func UnmarshalEdgeChunk(rid model.RID, data []byte) (*EdgeChunk, error) {
	b := buffer.Wrap(data)
	t, err := b.GetByte()
	if err != nil {
		return nil, chunkError(rid, 0, err, "missing record type")
	}
	if model.RecordType(t) != model.RecordEdgeChunk {
		return nil, chunkError(rid, 0, nil, "record type %s is not an edge chunk", model.RecordType(t))
	}

	next, err := getRID(b)
	if err != nil {
		return nil, chunkError(rid, b.Position(), err, "reading next pointer")
	}
	capacity, err := b.GetInt()
	if err != nil {
		return nil, chunkError(rid, b.Position(), err, "reading capacity")
	}
	count, err := b.GetInt()
	if err != nil {
		return nil, chunkError(rid, b.Position(), err, "reading count")
	}
	if capacity < 1 || count < 0 || count > capacity {
		return nil, chunkError(rid, b.Position(), nil, "count %d with capacity %d", count, capacity)
	}
	if want := EncodedSize(int(capacity)); len(data) != want {
		return nil, chunkError(rid, 0, nil, "chunk of capacity %d has %d bytes, want %d", capacity, len(data), want)
	}

	c := &EdgeChunk{rid: rid, next: next, pairs: make([]Pair, count, capacity)}
	for i := range c.pairs {
		// Sizes were checked above, reads cannot underflow.
		c.pairs[i].Neighbor, _ = getRID(b)
		c.pairs[i].Edge, _ = getRID(b)
	}
	return c, nil
}

func getRID(b *buffer.Buffer) (model.RID, error) {
	bucket, err := b.GetInt()
	if err != nil {
		return model.Null, err
	}
	pos, err := b.GetLong()
	if err != nil {
		return model.Null, err
	}
	return model.NewRID(bucket, pos), nil
}

func chunkError(rid model.RID, off int, err error, format string, args ...any) error {
	return &serializer.SerializationError{
		RID:    rid,
		Offset: off,
		Reason: fmt.Sprintf(format, args...),
		Err:    err,
	}
}
