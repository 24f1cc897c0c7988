package serializer

import (
	"fmt"
	"math"
	"math/big"

	"github.com/hupe1980/recgo/buffer"
	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/value"
)

// encodable reports whether v and every nested item can be written.
func encodable(v value.Value) bool {
	if !v.Kind.Valid() {
		return false
	}
	if items, ok := v.AsList(); ok {
		for _, item := range items {
			if !encodable(item) {
				return false
			}
		}
	}
	return true
}

// EncodePayload writes the payload of v without its tag byte.
func EncodePayload(b *buffer.Buffer, v value.Value) error {
	switch v.Kind {
	case value.KindNull:
	case value.KindString:
		s, _ := v.AsString()
		b.PutString(s)
	case value.KindByte:
		n, _ := v.AsInt64()
		b.PutByte(byte(int8(n)))
	case value.KindBoolean:
		if t, _ := v.AsBool(); t {
			b.PutByte(1)
		} else {
			b.PutByte(0)
		}
	case value.KindShort, value.KindInt, value.KindLong:
		n, _ := v.AsInt64()
		b.PutNumber(n)
	case value.KindFloat:
		f, _ := v.AsFloat64()
		b.PutNumber(int64(int32(math.Float32bits(float32(f)))))
	case value.KindDouble:
		f, _ := v.AsFloat64()
		b.PutNumber(int64(math.Float64bits(f)))
	case value.KindDate, value.KindDateTime:
		ms, _ := v.Millis()
		b.PutNumber(ms)
	case value.KindDecimal:
		unscaled, scale, _ := v.AsDecimal()
		b.PutNumber(int64(scale))
		b.PutBytes(twosComplement(unscaled))
	case value.KindRID:
		rid, _ := v.AsRID()
		putCompressedRID(b, rid)
	case value.KindBinary:
		raw, _ := v.AsBinary()
		b.PutBytes(raw)
	case value.KindList:
		items, _ := v.AsList()
		b.PutNumber(int64(len(items)))
		for _, item := range items {
			b.PutByte(byte(item.Kind))
			if err := EncodePayload(b, item); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, v.Kind)
	}
	return nil
}

// DecodePayload reads a payload of the given kind.
func DecodePayload(b *buffer.Buffer, kind value.Kind) (value.Value, error) {
	switch kind {
	case value.KindNull:
		return value.Null(), nil
	case value.KindString:
		s, err := b.GetString()
		return value.String(s), err
	case value.KindByte:
		n, err := b.GetByte()
		return value.Byte(int8(n)), err
	case value.KindBoolean:
		n, err := b.GetByte()
		if err == nil && n > 1 {
			err = fmt.Errorf("invalid boolean byte %d", n)
		}
		return value.Bool(n == 1), err
	case value.KindShort:
		n, err := getRanged(b, math.MinInt16, math.MaxInt16)
		return value.Short(int16(n)), err
	case value.KindInt:
		n, err := getRanged(b, math.MinInt32, math.MaxInt32)
		return value.Int(int32(n)), err
	case value.KindLong:
		n, err := b.GetNumber()
		return value.Long(n), err
	case value.KindFloat:
		n, err := getRanged(b, math.MinInt32, math.MaxInt32)
		return value.Float(math.Float32frombits(uint32(int32(n)))), err
	case value.KindDouble:
		n, err := b.GetNumber()
		return value.Double(math.Float64frombits(uint64(n))), err
	case value.KindDate:
		n, err := b.GetNumber()
		return value.DateMillis(n), err
	case value.KindDateTime:
		n, err := b.GetNumber()
		return value.DateTimeMillis(n), err
	case value.KindDecimal:
		unscaled, scale, err := getDecimal(b)
		return value.Decimal(unscaled, scale), err
	case value.KindRID:
		rid, err := getCompressedRID(b)
		return value.Ref(rid), err
	case value.KindBinary:
		raw, err := b.GetBytes()
		return value.Binary(raw), err
	case value.KindList:
		return decodeList(b)
	default:
		return value.Null(), &unknownKindError{kind: kind}
	}
}

func decodeList(b *buffer.Buffer) (value.Value, error) {
	n, err := b.GetNumber()
	if err != nil {
		return value.Null(), err
	}
	// Every item takes at least its tag byte.
	if n < 0 || n > int64(b.Remaining()) {
		return value.Null(), fmt.Errorf("invalid list length %d", n)
	}
	items := make([]value.Value, 0, n)
	for range n {
		tag, err := b.GetByte()
		if err != nil {
			return value.Null(), err
		}
		item, err := DecodePayload(b, value.Kind(tag))
		if err != nil {
			return value.Null(), err
		}
		items = append(items, item)
	}
	return value.List(items...), nil
}

func getRanged(b *buffer.Buffer, lo, hi int64) (int64, error) {
	n, err := b.GetNumber()
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("value %d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}

func getDecimal(b *buffer.Buffer) (*big.Int, int32, error) {
	scale, err := getRanged(b, math.MinInt32, math.MaxInt32)
	if err != nil {
		return nil, 0, err
	}
	raw, err := getLengthPrefixed(b)
	if err != nil {
		return nil, 0, err
	}
	return fromTwosComplement(raw), int32(scale), nil
}

// getLengthPrefixed reads a length-prefixed slice aliasing the buffer.
func getLengthPrefixed(b *buffer.Buffer) ([]byte, error) {
	n, err := b.GetUnsignedNumber()
	if err != nil {
		return nil, err
	}
	if n > uint64(b.Remaining()) {
		return nil, fmt.Errorf("%w: length %d exceeds %d remaining bytes", buffer.ErrUnderflow, n, b.Remaining())
	}
	return b.GetRaw(int(n))
}

func putCompressedRID(b *buffer.Buffer, rid model.RID) {
	b.PutNumber(int64(rid.BucketID))
	b.PutNumber(rid.Position)
}

func getCompressedRID(b *buffer.Buffer) (model.RID, error) {
	bucket, err := getRanged(b, math.MinInt32, math.MaxInt32)
	if err != nil {
		return model.Null, err
	}
	pos, err := b.GetNumber()
	if err != nil {
		return model.Null, err
	}
	return model.NewRID(int32(bucket), pos), nil
}

func putRID(b *buffer.Buffer, rid model.RID) {
	b.PutInt(rid.BucketID)
	b.PutLong(rid.Position)
}

func getRID(b *buffer.Buffer) (model.RID, error) {
	bucket, err := b.GetInt()
	if err != nil {
		return model.Null, err
	}
	pos, err := b.GetLong()
	if err != nil {
		return model.Null, err
	}
	return model.NewRID(bucket, pos), nil
}

// twosComplement returns the big-endian two's complement form of x.
func twosComplement(x *big.Int) []byte {
	switch x.Sign() {
	case 0:
		return []byte{0}
	case 1:
		b := x.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	default:
		n := x.BitLen()/8 + 1
		m := new(big.Int).Lsh(big.NewInt(1), uint(8*n))
		return m.Add(m, x).Bytes()
	}
}

func fromTwosComplement(b []byte) *big.Int {
	x := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		x.Sub(x, new(big.Int).Lsh(big.NewInt(1), uint(8*len(b))))
	}
	return x
}
