package serializer

import (
	"fmt"
	"log/slog"

	"github.com/hupe1980/recgo/buffer"
	"github.com/hupe1980/recgo/dictionary"
	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/schema"
	"github.com/hupe1980/recgo/value"
)

// Record is the input to Serialize. Build it with NewDocument, NewVertex or
// NewEdge; a zero RID is a real position, not an absent pointer.
type Record struct {
	Type model.RecordType
	// Out and In are the head chunk RIDs of a vertex or the endpoints of an
	// edge. model.Null marks a vertex side without chunks. Ignored for
	// documents.
	Out, In    model.RID
	Properties value.Properties
}

// NewDocument returns a document record.
func NewDocument(props value.Properties) Record {
	return Record{Type: model.RecordDocument, Out: model.Null, In: model.Null, Properties: props}
}

// NewVertex returns a vertex record with no edge chunks on either side.
func NewVertex(props value.Properties) Record {
	return Record{Type: model.RecordVertex, Out: model.Null, In: model.Null, Properties: props}
}

// NewEdge returns an edge record from out to in.
func NewEdge(out, in model.RID, props value.Properties) Record {
	return Record{Type: model.RecordEdge, Out: out, In: in, Properties: props}
}

// Option configures a Serializer.
type Option func(*options)

type options struct {
	logger *slog.Logger
	strict bool
	schema *schema.Registry
}

// WithLogger sets the logger for diagnostics about skipped values.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStrictTypes makes unknown tags and unsupported kinds an error instead of
// a logged null.
func WithStrictTypes(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithSchema enables kind checks against the type owning the record's bucket.
// Mismatches are logged, never rejected.
func WithSchema(r *schema.Registry) Option {
	return func(o *options) { o.schema = r }
}

// CallOption configures a single encode or decode call.
type CallOption func(*callOptions)

type callOptions struct {
	rid model.RID
}

// WithRID names the record being processed. It selects the schema type on
// Serialize and is reported in SerializationError.
func WithRID(rid model.RID) CallOption {
	return func(o *callOptions) { o.rid = rid }
}

func applyCallOptions(opts []CallOption) callOptions {
	o := callOptions{rid: model.Null}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Serializer converts records to and from their binary form.
// A Serializer is safe for concurrent use; Scratch buffers are not.
type Serializer struct {
	dict   *dictionary.Dictionary
	logger *slog.Logger
	strict bool
	schema *schema.Registry
}

// New creates a Serializer resolving property names through dict.
func New(dict *dictionary.Dictionary, opts ...Option) *Serializer {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return &Serializer{
		dict:   dict,
		logger: o.logger,
		strict: o.strict,
		schema: o.schema,
	}
}

// Dictionary returns the dictionary used for property names.
func (s *Serializer) Dictionary() *dictionary.Dictionary {
	return s.dict
}

// Scratch holds per-call working buffers. Reuse one Scratch per goroutine.
type Scratch struct {
	header  *buffer.Buffer
	content *buffer.Buffer
	offsets []int
}

// NewScratch returns an empty Scratch.
func NewScratch() *Scratch {
	return &Scratch{
		header:  buffer.New(64),
		content: buffer.New(256),
	}
}

func (sc *Scratch) reset(n int) {
	sc.header.Clear()
	sc.content.Clear()
	sc.offsets = sc.offsets[:0]
	if cap(sc.offsets) < n {
		sc.offsets = make([]int, 0, n)
	}
}

// Serialize encodes r into a new buffer positioned at 0. sc may be nil.
//
// Layout:
//
//	byte     record type
//	[graph]  out RID, in RID (int32 bucket, int64 position each)
//	int32    header size (offset where content starts)
//	varint   property count
//	count x  (varint property id, varint content offset)
//	content  count x (tag byte, payload)
func (s *Serializer) Serialize(sc *Scratch, r Record, opts ...CallOption) (*buffer.Buffer, error) {
	o := applyCallOptions(opts)

	switch r.Type {
	case model.RecordDocument, model.RecordVertex:
	case model.RecordEdge:
		if r.Out.IsNull() || r.In.IsNull() {
			return nil, fmt.Errorf("%w: out %s, in %s", ErrMissingEndpoint, r.Out, r.In)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidRecordType, r.Type)
	}

	if len(r.Properties) > 1 {
		seen := make(map[string]struct{}, len(r.Properties))
		for _, p := range r.Properties {
			if _, dup := seen[p.Name]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateProperty, p.Name)
			}
			seen[p.Name] = struct{}{}
		}
	}

	s.checkSchema(o.rid, r.Properties)

	if sc == nil {
		sc = NewScratch()
	}
	sc.reset(len(r.Properties))

	content := sc.content
	for _, p := range r.Properties {
		sc.offsets = append(sc.offsets, content.Position())
		v := p.Value
		if !encodable(v) {
			if s.strict {
				return nil, fmt.Errorf("%w: property %q has kind %s", ErrUnsupportedKind, p.Name, v.Kind)
			}
			s.logger.Warn("unsupported value kind, storing null",
				"rid", o.rid.String(), "property", p.Name, "kind", v.Kind.String())
			v = value.Null()
		}
		content.PutByte(byte(v.Kind))
		if err := EncodePayload(content, v); err != nil {
			return nil, err
		}
	}

	header := sc.header
	header.PutByte(byte(r.Type))
	if r.Type.HasGraphPointers() {
		putRID(header, r.Out)
		putRID(header, r.In)
	}
	sizeAt := header.Position()
	header.PutInt(0)
	header.PutNumber(int64(len(r.Properties)))
	for i, p := range r.Properties {
		id, _ := s.dict.ID(p.Name, true)
		header.PutNumber(int64(id))
		header.PutNumber(int64(sc.offsets[i]))
	}
	if err := header.PutIntAt(sizeAt, int32(header.Position())); err != nil {
		return nil, err
	}

	out := buffer.New(header.Position() + content.Position())
	out.PutRaw(header.Bytes())
	out.PutRaw(content.Bytes())
	out.Flip()
	return out, nil
}

func (s *Serializer) checkSchema(rid model.RID, props value.Properties) {
	if s.schema == nil || rid.IsNull() {
		return
	}
	t, ok := s.schema.TypeOfBucket(rid.BucketID)
	if !ok {
		return
	}
	for _, v := range s.schema.Validate(t.Name, props) {
		s.logger.Warn("property kind does not match schema",
			"rid", rid.String(), "type", v.Type, "property", v.Property,
			"expected", v.Expected.String(), "actual", v.Actual.String())
	}
}
