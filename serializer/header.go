package serializer

import (
	"fmt"
	"math"

	"github.com/hupe1980/recgo/buffer"
	"github.com/hupe1980/recgo/model"
)

const (
	outPointerOffset = 1
	inPointerOffset  = outPointerOffset + ridSize
	ridSize          = 4 + 8
)

// Header is the decoded fixed part of a record.
type Header struct {
	Type model.RecordType
	// Out and In are model.Null for documents.
	Out, In model.RID
	// Size is the offset where the content region starts.
	Size int
	// Count is the number of properties.
	Count int
}

// parseHeader validates the header of data and returns a cursor positioned at
// the property table.
func parseHeader(data []byte, rid model.RID) (*buffer.Buffer, Header, error) {
	b := buffer.Wrap(data)
	h := Header{Out: model.Null, In: model.Null}

	t, err := b.GetByte()
	if err != nil {
		return nil, h, corrupted(rid, 0, err, "missing record type")
	}
	h.Type = model.RecordType(t)
	switch h.Type {
	case model.RecordDocument, model.RecordVertex, model.RecordEdge:
	case model.RecordEdgeChunk:
		return nil, h, &RecordTypeError{RID: rid, Type: h.Type}
	default:
		return nil, h, corrupted(rid, 0, nil, "unknown record type %d", t)
	}

	if h.Type.HasGraphPointers() {
		if h.Out, err = getRID(b); err != nil {
			return nil, h, corrupted(rid, b.Position(), err, "reading out pointer")
		}
		if h.In, err = getRID(b); err != nil {
			return nil, h, corrupted(rid, b.Position(), err, "reading in pointer")
		}
	}

	size, err := b.GetInt()
	if err != nil {
		return nil, h, corrupted(rid, b.Position(), err, "reading header size")
	}
	if int(size) < b.Position() || int(size) > b.Limit() {
		return nil, h, corrupted(rid, b.Position()-4, nil, "header size %d outside [%d, %d]", size, b.Position(), b.Limit())
	}
	h.Size = int(size)

	countAt := b.Position()
	count, err := b.GetNumber()
	if err != nil {
		return nil, h, corrupted(rid, countAt, err, "reading property count")
	}
	if count < 0 {
		return nil, h, corrupted(rid, countAt, nil, "negative property count %d", count)
	}
	// Each table entry takes at least two bytes.
	if count > int64(h.Size-b.Position())/2 {
		return nil, h, corrupted(rid, countAt, nil, "property count %d exceeds header size %d", count, h.Size)
	}
	h.Count = int(count)
	return b, h, nil
}

// scanTable calls fn with each property id and its absolute content offset.
// fn returns false to stop early.
func scanTable(b *buffer.Buffer, h Header, rid model.RID, fn func(id int32, off int) (bool, error)) error {
	for range h.Count {
		at := b.Position()
		id, err := b.GetNumber()
		if err != nil {
			return corrupted(rid, at, err, "reading property id")
		}
		if id < 0 || id > math.MaxInt32 {
			return corrupted(rid, at, nil, "property id %d out of range", id)
		}
		at = b.Position()
		off, err := b.GetNumber()
		if err != nil {
			return corrupted(rid, at, err, "reading content offset")
		}
		// Every value takes at least its tag byte.
		if off < 0 || int64(h.Size)+off >= int64(b.Limit()) {
			return corrupted(rid, at, nil, "content offset %d outside buffer of %d bytes", off, b.Limit())
		}
		more, err := fn(int32(id), h.Size+int(off))
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	if b.Position() != h.Size {
		return corrupted(rid, b.Position(), nil, "property table ends at %d, header size is %d", b.Position(), h.Size)
	}
	return nil
}

// ReadHeader decodes the header of buf without touching its cursor.
func ReadHeader(buf *buffer.Buffer, opts ...CallOption) (Header, error) {
	_, h, err := parseHeader(buf.Bytes(), applyCallOptions(opts).rid)
	return h, err
}

// RecordType returns the record type tag of buf.
func RecordType(buf *buffer.Buffer, opts ...CallOption) (model.RecordType, error) {
	data := buf.Bytes()
	rid := applyCallOptions(opts).rid
	if len(data) == 0 {
		return 0, corrupted(rid, 0, buffer.ErrUnderflow, "missing record type")
	}
	t := model.RecordType(data[0])
	if !t.Valid() {
		return 0, corrupted(rid, 0, nil, "unknown record type %d", data[0])
	}
	return t, nil
}

// GraphPointers returns the out and in pointers of a vertex or edge.
func GraphPointers(buf *buffer.Buffer, opts ...CallOption) (out, in model.RID, err error) {
	h, err := ReadHeader(buf, opts...)
	if err != nil {
		return model.Null, model.Null, err
	}
	if !h.Type.HasGraphPointers() {
		return model.Null, model.Null, fmt.Errorf("%w: %s", ErrNotGraphRecord, h.Type)
	}
	return h.Out, h.In, nil
}

// WithGraphPointers returns a copy of buf with both graph pointers replaced.
// buf is not modified and the content bytes are copied verbatim.
func WithGraphPointers(buf *buffer.Buffer, out, in model.RID, opts ...CallOption) (*buffer.Buffer, error) {
	h, err := ReadHeader(buf, opts...)
	if err != nil {
		return nil, err
	}
	if !h.Type.HasGraphPointers() {
		return nil, fmt.Errorf("%w: %s", ErrNotGraphRecord, h.Type)
	}
	if h.Type == model.RecordEdge && (out.IsNull() || in.IsNull()) {
		return nil, fmt.Errorf("%w: out %s, in %s", ErrMissingEndpoint, out, in)
	}

	cp := buffer.Wrap(buf.Bytes()).Copy()
	if err := putRIDAt(cp, outPointerOffset, out); err != nil {
		return nil, err
	}
	if err := putRIDAt(cp, inPointerOffset, in); err != nil {
		return nil, err
	}
	cp.Rewind()
	return cp, nil
}

// WithGraphPointer returns a copy of buf with the pointer for dir replaced.
func WithGraphPointer(buf *buffer.Buffer, dir model.Direction, rid model.RID, opts ...CallOption) (*buffer.Buffer, error) {
	out, in, err := GraphPointers(buf, opts...)
	if err != nil {
		return nil, err
	}
	if dir == model.Out {
		out = rid
	} else {
		in = rid
	}
	return WithGraphPointers(buf, out, in, opts...)
}

func putRIDAt(b *buffer.Buffer, off int, rid model.RID) error {
	if err := b.PutIntAt(off, rid.BucketID); err != nil {
		return err
	}
	return b.PutLongAt(off+4, rid.Position)
}
