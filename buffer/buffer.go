package buffer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrUnderflow is returned when a read would cross the logical end of the buffer.
var ErrUnderflow = errors.New("buffer underflow")

// ErrInvalidNumber is returned when a varint is malformed or overflows 64 bits.
var ErrInvalidNumber = errors.New("invalid varint")

// ErrInvalidPosition is returned by SetPosition for offsets outside [0, limit].
var ErrInvalidPosition = errors.New("invalid buffer position")

// ErrInvalidString is returned when a decoded string is not valid UTF-8.
var ErrInvalidString = errors.New("invalid utf-8 string")

// Buffer is a growable byte cursor.
type Buffer struct {
	data  []byte
	pos   int
	limit int
}

// New returns an empty buffer with the given initial capacity.
func New(capacity int) *Buffer {
	return &Buffer{data: make([]byte, 0, capacity)}
}

// Wrap returns a buffer reading b from offset 0. The buffer aliases b.
func Wrap(b []byte) *Buffer {
	return &Buffer{data: b, limit: len(b)}
}

// Position returns the current cursor offset.
func (b *Buffer) Position() int { return b.pos }

// Limit returns the logical end of the buffer.
func (b *Buffer) Limit() int { return b.limit }

// Remaining returns the number of readable bytes after the cursor.
func (b *Buffer) Remaining() int { return b.limit - b.pos }

// SetPosition moves the cursor to off, which must lie within [0, Limit()].
func (b *Buffer) SetPosition(off int) error {
	if off < 0 || off > b.limit {
		return fmt.Errorf("%w: %d (limit %d)", ErrInvalidPosition, off, b.limit)
	}
	b.pos = off
	return nil
}

// Flip sets the limit to the current position and rewinds the cursor.
func (b *Buffer) Flip() {
	b.limit = b.pos
	b.pos = 0
}

// Rewind moves the cursor to offset 0, keeping the limit.
func (b *Buffer) Rewind() {
	b.pos = 0
}

// Clear empties the buffer for reuse, keeping the allocated capacity.
func (b *Buffer) Clear() {
	b.data = b.data[:0]
	b.pos = 0
	b.limit = 0
}

// Bytes returns the bytes in [0, Limit()). The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.limit]
}

// Copy returns a deep copy with the same position and limit.
func (b *Buffer) Copy() *Buffer {
	data := make([]byte, len(b.data), max(cap(b.data), len(b.data)))
	copy(data, b.data)
	return &Buffer{data: data, pos: b.pos, limit: b.limit}
}

// grow ensures n bytes are writable at the cursor and returns the target slice.
func (b *Buffer) grow(n int) []byte {
	end := b.pos + n
	if end > len(b.data) {
		if end > cap(b.data) {
			nd := make([]byte, end, max(2*cap(b.data), end, 64))
			copy(nd, b.data)
			b.data = nd
		} else {
			b.data = b.data[:end]
		}
	}
	dst := b.data[b.pos:end]
	b.pos = end
	if end > b.limit {
		b.limit = end
	}
	return dst
}

// take returns the next n readable bytes and advances the cursor.
func (b *Buffer) take(n int) ([]byte, error) {
	if n < 0 || b.pos+n > b.limit {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d (limit %d)", ErrUnderflow, n, b.pos, b.limit)
	}
	src := b.data[b.pos : b.pos+n]
	b.pos += n
	return src, nil
}

// PutByte writes one byte.
func (b *Buffer) PutByte(v byte) {
	b.grow(1)[0] = v
}

// GetByte reads one byte.
func (b *Buffer) GetByte() (byte, error) {
	src, err := b.take(1)
	if err != nil {
		return 0, err
	}
	return src[0], nil
}

// PutShort writes a big-endian int16.
func (b *Buffer) PutShort(v int16) {
	binary.BigEndian.PutUint16(b.grow(2), uint16(v))
}

// GetShort reads a big-endian int16.
func (b *Buffer) GetShort() (int16, error) {
	src, err := b.take(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(src)), nil
}

// PutInt writes a big-endian int32.
func (b *Buffer) PutInt(v int32) {
	binary.BigEndian.PutUint32(b.grow(4), uint32(v))
}

// GetInt reads a big-endian int32.
func (b *Buffer) GetInt() (int32, error) {
	src, err := b.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(src)), nil
}

// PutLong writes a big-endian int64.
func (b *Buffer) PutLong(v int64) {
	binary.BigEndian.PutUint64(b.grow(8), uint64(v))
}

// GetLong reads a big-endian int64.
func (b *Buffer) GetLong() (int64, error) {
	src, err := b.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(src)), nil
}

// PutIntAt overwrites 4 bytes at off without moving the cursor.
// The range must already be written.
func (b *Buffer) PutIntAt(off int, v int32) error {
	if off < 0 || off+4 > len(b.data) {
		return fmt.Errorf("%w: int at %d (size %d)", ErrInvalidPosition, off, len(b.data))
	}
	binary.BigEndian.PutUint32(b.data[off:], uint32(v))
	return nil
}

// PutLongAt overwrites 8 bytes at off without moving the cursor.
// The range must already be written.
func (b *Buffer) PutLongAt(off int, v int64) error {
	if off < 0 || off+8 > len(b.data) {
		return fmt.Errorf("%w: long at %d (size %d)", ErrInvalidPosition, off, len(b.data))
	}
	binary.BigEndian.PutUint64(b.data[off:], uint64(v))
	return nil
}

// PutNumber writes a zig-zag varint and returns the number of bytes written.
func (b *Buffer) PutNumber(v int64) int {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], v)
	copy(b.grow(n), tmp[:n])
	return n
}

// GetNumber reads a zig-zag varint.
func (b *Buffer) GetNumber() (int64, error) {
	v, n := binary.Varint(b.data[b.pos:b.limit])
	if n == 0 {
		return 0, fmt.Errorf("%w: truncated varint at offset %d", ErrUnderflow, b.pos)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: overflow at offset %d", ErrInvalidNumber, b.pos)
	}
	b.pos += n
	return v, nil
}

// PutUnsignedNumber writes an unsigned varint and returns the number of bytes written.
func (b *Buffer) PutUnsignedNumber(v uint64) int {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	copy(b.grow(n), tmp[:n])
	return n
}

// GetUnsignedNumber reads an unsigned varint.
func (b *Buffer) GetUnsignedNumber() (uint64, error) {
	v, n := binary.Uvarint(b.data[b.pos:b.limit])
	if n == 0 {
		return 0, fmt.Errorf("%w: truncated varint at offset %d", ErrUnderflow, b.pos)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: overflow at offset %d", ErrInvalidNumber, b.pos)
	}
	b.pos += n
	return v, nil
}

// NumberSize returns the encoded length of v as written by PutNumber.
func NumberSize(v int64) int {
	var tmp [binary.MaxVarintLen64]byte
	return binary.PutVarint(tmp[:], v)
}

// PutRaw writes p without a length prefix.
func (b *Buffer) PutRaw(p []byte) {
	copy(b.grow(len(p)), p)
}

// GetRaw reads n bytes without a length prefix. The result aliases the buffer.
func (b *Buffer) GetRaw(n int) ([]byte, error) {
	return b.take(n)
}

// PutBytes writes a length-prefixed byte slice.
func (b *Buffer) PutBytes(p []byte) {
	b.PutUnsignedNumber(uint64(len(p)))
	b.PutRaw(p)
}

// GetBytes reads a length-prefixed byte slice into a fresh slice.
func (b *Buffer) GetBytes() ([]byte, error) {
	n, err := b.GetUnsignedNumber()
	if err != nil {
		return nil, err
	}
	if n > uint64(b.Remaining()) {
		return nil, fmt.Errorf("%w: length %d exceeds %d remaining bytes", ErrUnderflow, n, b.Remaining())
	}
	src, err := b.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}

// PutString writes a length-prefixed UTF-8 string.
func (b *Buffer) PutString(s string) {
	b.PutUnsignedNumber(uint64(len(s)))
	copy(b.grow(len(s)), s)
}

// GetString reads a length-prefixed UTF-8 string.
func (b *Buffer) GetString() (string, error) {
	n, err := b.GetUnsignedNumber()
	if err != nil {
		return "", err
	}
	if n > uint64(b.Remaining()) {
		return "", fmt.Errorf("%w: length %d exceeds %d remaining bytes", ErrUnderflow, n, b.Remaining())
	}
	src, err := b.take(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(src) {
		return "", fmt.Errorf("%w at offset %d", ErrInvalidString, b.pos-len(src))
	}
	return string(src), nil
}
