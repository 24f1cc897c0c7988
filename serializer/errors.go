package serializer

import (
	"errors"
	"fmt"

	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/value"
)

var (
	// ErrCorrupted is wrapped by every SerializationError.
	ErrCorrupted = errors.New("corrupted record")
	// ErrUnsupportedKind is returned in strict mode for a value kind the codec cannot encode or decode.
	ErrUnsupportedKind = errors.New("unsupported value kind")
	// ErrDuplicateProperty is returned when a record lists the same property twice.
	ErrDuplicateProperty = errors.New("duplicate property")
	// ErrMissingEndpoint is returned when an edge lacks an endpoint.
	ErrMissingEndpoint = errors.New("edge requires both endpoints")
	// ErrInvalidRecordType is returned when serializing a record type without properties.
	ErrInvalidRecordType = errors.New("invalid record type")
	// ErrNotGraphRecord is returned by graph pointer operations on documents.
	ErrNotGraphRecord = errors.New("record has no graph pointers")
	// ErrNoProperties is wrapped by RecordTypeError.
	ErrNoProperties = errors.New("record type carries no properties")
)

// RecordTypeError reports a well-formed record of a type without a property
// header, such as an edge chunk.
type RecordTypeError struct {
	RID  model.RID
	Type model.RecordType
}

func (e *RecordTypeError) Error() string {
	if e.RID.IsNull() {
		return fmt.Sprintf("%s: %s", e.Type, ErrNoProperties)
	}
	return fmt.Sprintf("record %s: %s: %s", e.RID, e.Type, ErrNoProperties)
}

func (e *RecordTypeError) Unwrap() error { return ErrNoProperties }

// SerializationError reports a record that could not be decoded.
type SerializationError struct {
	// RID is the record being decoded, model.Null when unknown.
	RID model.RID
	// Offset is the byte offset where decoding failed.
	Offset int
	Reason string
	Err    error
}

func (e *SerializationError) Error() string {
	msg := "corrupted record"
	if !e.RID.IsNull() {
		msg += " " + e.RID.String()
	}
	msg += fmt.Sprintf(" at offset %d: %s", e.Offset, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports ErrCorrupted so callers can test with errors.Is.
func (e *SerializationError) Is(target error) bool {
	return target == ErrCorrupted
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

func corrupted(rid model.RID, offset int, err error, format string, args ...any) error {
	return &SerializationError{
		RID:    rid,
		Offset: offset,
		Reason: fmt.Sprintf(format, args...),
		Err:    err,
	}
}

// unknownKindError marks a tag the decoder does not understand. In lenient
// mode it turns the property into null; in strict mode it surfaces as
// ErrUnsupportedKind.
type unknownKindError struct {
	kind value.Kind
}

func (e *unknownKindError) Error() string {
	return fmt.Sprintf("%s: tag %d", ErrUnsupportedKind, uint8(e.kind))
}

func (e *unknownKindError) Unwrap() error { return ErrUnsupportedKind }
