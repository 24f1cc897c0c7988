package model

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRID is returned when a string is not in the canonical "#bucket:position" form.
var ErrInvalidRID = errors.New("invalid rid")

// RID identifies a stored record by bucket and position.
// It is immutable and comparable.
type RID struct {
	BucketID int32
	Position int64
}

// Null is the "no reference" sentinel.
var Null = RID{BucketID: -1, Position: -1}

// NewRID returns the RID for the given bucket and position.
func NewRID(bucketID int32, position int64) RID {
	return RID{BucketID: bucketID, Position: position}
}

// ParseRID parses the canonical "#bucket:position" form.
func ParseRID(s string) (RID, error) {
	body, ok := strings.CutPrefix(s, "#")
	if !ok {
		return Null, fmt.Errorf("%w: %q: missing '#'", ErrInvalidRID, s)
	}
	b, p, ok := strings.Cut(body, ":")
	if !ok {
		return Null, fmt.Errorf("%w: %q: missing ':'", ErrInvalidRID, s)
	}
	bucket, err := strconv.ParseInt(b, 10, 32)
	if err != nil {
		return Null, fmt.Errorf("%w: %q: bucket: %w", ErrInvalidRID, s, err)
	}
	pos, err := strconv.ParseInt(p, 10, 64)
	if err != nil {
		return Null, fmt.Errorf("%w: %q: position: %w", ErrInvalidRID, s, err)
	}
	return RID{BucketID: int32(bucket), Position: pos}, nil
}

// IsNull reports whether r is the "no reference" sentinel (negative bucket).
func (r RID) IsNull() bool {
	return r.BucketID < 0
}

// String returns the canonical "#bucket:position" form.
func (r RID) String() string {
	return "#" + strconv.FormatInt(int64(r.BucketID), 10) + ":" + strconv.FormatInt(r.Position, 10)
}

// Compare orders RIDs by bucket id, then position.
func (r RID) Compare(o RID) int {
	if c := cmp.Compare(r.BucketID, o.BucketID); c != 0 {
		return c
	}
	return cmp.Compare(r.Position, o.Position)
}

// Less reports whether r sorts before o.
func (r RID) Less(o RID) bool {
	return r.Compare(o) < 0
}

// CompareRID is RID.Compare as a free function, suitable for slices.SortFunc.
func CompareRID(a, b RID) int {
	return a.Compare(b)
}

// RecordType is the first byte of every encoded record.
type RecordType uint8

const (
	// RecordDocument is a plain property document.
	RecordDocument RecordType = 1
	// RecordVertex is a graph vertex: document plus out/in head chunk pointers.
	RecordVertex RecordType = 2
	// RecordEdge is a graph edge: document plus out/in endpoint pointers.
	RecordEdge RecordType = 3
	// RecordEdgeChunk is one fixed-capacity segment of a vertex adjacency list.
	RecordEdgeChunk RecordType = 4
)

// Valid reports whether t is a known record type.
func (t RecordType) Valid() bool {
	return t >= RecordDocument && t <= RecordEdgeChunk
}

// HasGraphPointers reports whether records of this type carry two RIDs after the type byte.
func (t RecordType) HasGraphPointers() bool {
	return t == RecordVertex || t == RecordEdge
}

// String returns the string representation of the RecordType.
func (t RecordType) String() string {
	switch t {
	case RecordDocument:
		return "Document"
	case RecordVertex:
		return "Vertex"
	case RecordEdge:
		return "Edge"
	case RecordEdgeChunk:
		return "EdgeChunk"
	default:
		return "Unknown(" + strconv.Itoa(int(t)) + ")"
	}
}

// Direction selects one side of a vertex adjacency.
type Direction uint8

const (
	// Out are edges leaving the vertex.
	Out Direction = iota
	// In are edges arriving at the vertex.
	In
)

func (d Direction) String() string {
	switch d {
	case Out:
		return "OUT"
	case In:
		return "IN"
	default:
		return "Direction(" + strconv.Itoa(int(d)) + ")"
	}
}
