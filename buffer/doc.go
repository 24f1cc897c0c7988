// Package buffer provides the growable byte cursor every record encoding is written into.
//
// A Buffer owns a byte region, a read/write position and a logical limit.
// Writes at the position grow the region as needed and move the limit forward;
// reads past the limit fail with ErrUnderflow.
//
// # Encodings
//
//   - Fixed width integers are big-endian (PutShort, PutInt, PutLong).
//   - Numbers (PutNumber) are zig-zag varints: 7 data bits per byte with a
//     continuation bit, so smaller magnitudes cost fewer bytes and the output is
//     byte-for-byte reproducible for identical inputs.
//   - Strings and byte slices are prefixed with their unsigned varint length.
//
// Buffers are not safe for concurrent use. Encoded records are treated as
// immutable once built: callers that need a modified version take a Copy first.
package buffer
