package serializer

import (
	"bytes"
	"cmp"
	"fmt"
	"math"

	"github.com/hupe1980/recgo/buffer"
	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/value"
)

// Compare orders two encoded payloads of the same kind without building
// values. offA and offB point at the payload, after the tag byte. The result
// agrees with value.Compare on the decoded values.
func Compare(a *buffer.Buffer, offA int, b *buffer.Buffer, offB int, kind value.Kind) (int, error) {
	if !kind.Comparable() {
		return 0, fmt.Errorf("%w: %s", value.ErrIncomparable, kind)
	}
	ra, err := readerAt(a, offA)
	if err != nil {
		return 0, err
	}
	rb, err := readerAt(b, offB)
	if err != nil {
		return 0, err
	}
	return comparePayload(ra, rb, kind)
}

// CompareValues compares two raw payloads of the given kind.
func CompareValues(a, b []byte, kind value.Kind) (int, error) {
	if !kind.Comparable() {
		return 0, fmt.Errorf("%w: %s", value.ErrIncomparable, kind)
	}
	return comparePayload(buffer.Wrap(a), buffer.Wrap(b), kind)
}

func readerAt(buf *buffer.Buffer, off int) (*buffer.Buffer, error) {
	r := buffer.Wrap(buf.Bytes())
	if err := r.SetPosition(off); err != nil {
		return nil, corrupted(model.Null, off, err, "comparator offset")
	}
	return r, nil
}

func comparePayload(a, b *buffer.Buffer, kind value.Kind) (int, error) {
	switch kind {
	case value.KindNull:
		return 0, nil
	case value.KindString, value.KindBinary:
		x, err := getLengthPrefixed(a)
		if err != nil {
			return 0, corrupted(model.Null, a.Position(), err, "reading %s", kind)
		}
		y, err := getLengthPrefixed(b)
		if err != nil {
			return 0, corrupted(model.Null, b.Position(), err, "reading %s", kind)
		}
		return bytes.Compare(x, y), nil
	case value.KindByte:
		x, err := a.GetByte()
		if err != nil {
			return 0, corrupted(model.Null, a.Position(), err, "reading byte")
		}
		y, err := b.GetByte()
		if err != nil {
			return 0, corrupted(model.Null, b.Position(), err, "reading byte")
		}
		return cmp.Compare(int8(x), int8(y)), nil
	case value.KindBoolean:
		x, err := a.GetByte()
		if err != nil {
			return 0, corrupted(model.Null, a.Position(), err, "reading boolean")
		}
		y, err := b.GetByte()
		if err != nil {
			return 0, corrupted(model.Null, b.Position(), err, "reading boolean")
		}
		return cmp.Compare(boolRank(x), boolRank(y)), nil
	case value.KindShort, value.KindInt, value.KindLong, value.KindDate, value.KindDateTime:
		x, y, err := numbers(a, b)
		if err != nil {
			return 0, err
		}
		return cmp.Compare(x, y), nil
	case value.KindFloat:
		x, y, err := numbers(a, b)
		if err != nil {
			return 0, err
		}
		fx := math.Float32frombits(uint32(int32(x)))
		fy := math.Float32frombits(uint32(int32(y)))
		return cmp.Compare(fx, fy), nil
	case value.KindDouble:
		x, y, err := numbers(a, b)
		if err != nil {
			return 0, err
		}
		return cmp.Compare(math.Float64frombits(uint64(x)), math.Float64frombits(uint64(y))), nil
	case value.KindDecimal:
		x, xs, err := getDecimal(a)
		if err != nil {
			return 0, corrupted(model.Null, a.Position(), err, "reading decimal")
		}
		y, ys, err := getDecimal(b)
		if err != nil {
			return 0, corrupted(model.Null, b.Position(), err, "reading decimal")
		}
		return value.CompareDecimal(x, xs, y, ys), nil
	case value.KindRID:
		x, err := getCompressedRID(a)
		if err != nil {
			return 0, corrupted(model.Null, a.Position(), err, "reading rid")
		}
		y, err := getCompressedRID(b)
		if err != nil {
			return 0, corrupted(model.Null, b.Position(), err, "reading rid")
		}
		return x.Compare(y), nil
	default:
		return 0, fmt.Errorf("%w: %s", value.ErrIncomparable, kind)
	}
}

func numbers(a, b *buffer.Buffer) (int64, int64, error) {
	x, err := a.GetNumber()
	if err != nil {
		return 0, 0, corrupted(model.Null, a.Position(), err, "reading number")
	}
	y, err := b.GetNumber()
	if err != nil {
		return 0, 0, corrupted(model.Null, b.Position(), err, "reading number")
	}
	return x, y, nil
}

func boolRank(b byte) int {
	if b == 1 {
		return 1
	}
	return 0
}
