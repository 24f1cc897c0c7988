package storage

import (
	"fmt"

	"github.com/hupe1980/recgo/buffer"
	"github.com/hupe1980/recgo/internal/compress"
	"github.com/hupe1980/recgo/internal/hash"
)

// Compression selects how record blobs are compressed.
type Compression = compress.Type

const (
	// CompressionNone stores records as is.
	CompressionNone = compress.None
	// CompressionLZ4 favours speed.
	CompressionLZ4 = compress.LZ4
	// CompressionZSTD favours ratio.
	CompressionZSTD = compress.ZSTD
)

// frameTombstone marks a deleted record. Its position stays allocated.
const frameTombstone = 0xff

// encodeFrame wraps a record for storage:
//
//	byte    compression
//	uvarint uncompressed size
//	int32   CRC32C of the uncompressed record
//	...     payload
func encodeFrame(c Compression, data []byte) ([]byte, error) {
	payload, used, err := compress.Encode(c, data)
	if err != nil {
		return nil, err
	}
	b := buffer.New(1 + buffer.NumberSize(int64(len(data))) + 4 + len(payload))
	b.PutByte(byte(used))
	b.PutUnsignedNumber(uint64(len(data)))
	b.PutInt(int32(hash.CRC32C(data)))
	b.PutRaw(payload)
	return b.Bytes(), nil
}

// decodeFrame returns ErrNotFound for tombstones and ErrChecksum when the
// decoded record does not match its checksum.
func decodeFrame(frame []byte) ([]byte, error) {
	b := buffer.Wrap(frame)
	t, err := b.GetByte()
	if err != nil {
		return nil, fmt.Errorf("%w: empty frame", ErrChecksum)
	}
	if t == frameTombstone {
		return nil, ErrNotFound
	}
	size, err := b.GetUnsignedNumber()
	if err != nil {
		return nil, fmt.Errorf("%w: reading size: %v", ErrChecksum, err)
	}
	sum, err := b.GetInt()
	if err != nil {
		return nil, fmt.Errorf("%w: reading checksum: %v", ErrChecksum, err)
	}
	// Reject sizes no record can have.
	if size > 1<<31 {
		return nil, fmt.Errorf("%w: size %d", ErrChecksum, size)
	}
	payload, _ := b.GetRaw(b.Remaining())

	data, err := compress.Decode(compress.Type(t), payload, int(size))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChecksum, err)
	}
	if !hash.VerifyCRC32C(data, uint32(sum)) {
		return nil, ErrChecksum
	}
	return data, nil
}
