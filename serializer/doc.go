// Package serializer encodes records to bytes and back.
//
// A record is a header followed by a content region:
//
//	byte      record type
//	[graph]   out RID, in RID (int32 bucket, int64 position each)
//	int32     header size, the offset where content starts
//	varint    property count
//	count x   (varint property id, varint content offset)
//	content   count x (tag byte, payload)
//
// Property names are stored as dictionary ids. The header table lets
// DeserializeFiltered decode a few properties without touching the rest, and
// graph pointers live at fixed offsets so WithGraphPointers can rewrite them
// without re-encoding.
//
// # Type tags
//
// Every value is prefixed with its value.Kind. Integers, floats and dates use
// zig-zag varints; strings, binaries and decimal magnitudes are length
// prefixed; RIDs inside content are stored as two varints. An unknown tag is
// decoded as null and logged unless the Serializer was built with
// WithStrictTypes.
//
// # Comparator
//
// Compare and CompareValues order encoded payloads directly. Their result
// matches value.Compare on the decoded values.
//
// # Errors
//
// Malformed input never yields a partial result. Every decode failure is a
// *SerializationError and matches ErrCorrupted with errors.Is.
package serializer
