package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type defines the compression algorithm used.
type Type uint8

const (
	// None indicates no compression.
	None Type = 0
	// LZ4 indicates LZ4 block compression (fast, good for hot data).
	LZ4 Type = 1
	// ZSTD indicates ZSTD block compression (better ratio, good for cold data).
	ZSTD Type = 2
)

// ErrUnknownType is returned for an unknown compression tag.
var ErrUnknownType = errors.New("compress: unknown compression type")

// ErrSizeMismatch is returned when decompressed data is not of the expected size.
var ErrSizeMismatch = errors.New("compress: decompressed size mismatch")

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Encode compresses data with t. It returns the type actually used: when
// compression saves less than 10%, the data is returned as is with None.
func Encode(t Type, data []byte) ([]byte, Type, error) {
	if t == None || len(data) == 0 {
		return data, None, nil
	}

	var compressed []byte
	switch t {
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, None, err
		}
		// n == 0 means incompressible.
		compressed = buf[:n]
	case ZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, None, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		return data, None, nil
	}
	return compressed, t, nil
}

// Decode decompresses data produced by Encode. size is the uncompressed length.
func Decode(t Type, data []byte, size int) ([]byte, error) {
	switch t {
	case None:
		if len(data) != size {
			return nil, ErrSizeMismatch
		}
		return data, nil
	case LZ4:
		result := make([]byte, size)
		n, err := lz4.UncompressBlock(data, result)
		if err != nil {
			return nil, err
		}
		if n != size {
			return nil, ErrSizeMismatch
		}
		return result, nil
	case ZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)

		decoded, err := dec.DecodeAll(data, make([]byte, 0, size))
		if err != nil {
			return nil, err
		}
		if len(decoded) != size {
			return nil, ErrSizeMismatch
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
}
