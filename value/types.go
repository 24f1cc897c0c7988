package value

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/recgo/model"
)

var (
	// ErrIncomparable is returned when two values have no common ordering.
	ErrIncomparable = errors.New("values are not comparable")

	// ErrInvalidDecimal is returned by ParseDecimal for malformed input.
	ErrInvalidDecimal = errors.New("invalid decimal")
)

// Value is a small typed value used for record properties.
//
// The representation avoids reflection: the Kind selects which field is
// meaningful. The zero Value has KindInvalid.
type Value struct {
	Kind Kind

	i     int64 // Byte, Short, Int, Long, Date, DateTime (epoch millis)
	f     float64
	b     bool
	s     string
	raw   []byte
	rid   model.RID
	list  []Value
	dec   *big.Int // Decimal unscaled value
	scale int32
}

// Null returns a null Value.
func Null() Value { return Value{Kind: KindNull} }

// String returns a string Value.
func String(v string) Value { return Value{Kind: KindString, s: v} }

// Byte returns a Byte Value.
func Byte(v int8) Value { return Value{Kind: KindByte, i: int64(v)} }

// Bool returns a Boolean Value.
func Bool(v bool) Value { return Value{Kind: KindBoolean, b: v} }

// Short returns a Short Value.
func Short(v int16) Value { return Value{Kind: KindShort, i: int64(v)} }

// Int returns an Int Value.
func Int(v int32) Value { return Value{Kind: KindInt, i: int64(v)} }

// Long returns a Long Value.
func Long(v int64) Value { return Value{Kind: KindLong, i: v} }

// Float returns a Float Value.
func Float(v float32) Value { return Value{Kind: KindFloat, f: float64(v)} }

// Double returns a Double Value.
func Double(v float64) Value { return Value{Kind: KindDouble, f: v} }

// Date returns a Date Value for the calendar day of t in UTC.
func Date(t time.Time) Value {
	u := t.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return Value{Kind: KindDate, i: day.UnixMilli()}
}

// DateMillis returns a Date Value from epoch milliseconds, as stored on disk.
func DateMillis(ms int64) Value { return Value{Kind: KindDate, i: ms} }

// DateTime returns a DateTime Value truncated to millisecond precision.
func DateTime(t time.Time) Value { return Value{Kind: KindDateTime, i: t.UnixMilli()} }

// DateTimeMillis returns a DateTime Value from epoch milliseconds.
func DateTimeMillis(ms int64) Value { return Value{Kind: KindDateTime, i: ms} }

// Decimal returns a Decimal Value equal to unscaled * 10^-scale.
// A nil unscaled value is treated as zero.
func Decimal(unscaled *big.Int, scale int32) Value {
	d := new(big.Int)
	if unscaled != nil {
		d.Set(unscaled)
	}
	return Value{Kind: KindDecimal, dec: d, scale: scale}
}

// ParseDecimal parses a plain decimal literal such as "-12.3400".
// The scale is the number of fractional digits.
func ParseDecimal(s string) (Value, error) {
	digits := s
	neg := false
	switch {
	case strings.HasPrefix(digits, "-"):
		neg = true
		digits = digits[1:]
	case strings.HasPrefix(digits, "+"):
		digits = digits[1:]
	}
	intPart, frac, hasPoint := strings.Cut(digits, ".")
	if intPart == "" && frac == "" {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	if hasPoint && frac == "" {
		return Value{}, fmt.Errorf("%w: %q: empty fraction", ErrInvalidDecimal, s)
	}
	for _, c := range intPart + frac {
		if c < '0' || c > '9' {
			return Value{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
		}
	}
	unscaled, ok := new(big.Int).SetString(intPart+frac, 10)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	if neg {
		unscaled.Neg(unscaled)
	}
	return Value{Kind: KindDecimal, dec: unscaled, scale: int32(len(frac))}, nil
}

// Ref returns a RID Value referencing another record.
func Ref(rid model.RID) Value { return Value{Kind: KindRID, rid: rid} }

// Binary returns a Binary Value holding a copy of p.
func Binary(p []byte) Value {
	c := make([]byte, len(p))
	copy(c, p)
	return Value{Kind: KindBinary, raw: c}
}

// List returns a List Value holding a copy of items.
func List(items ...Value) Value {
	c := make([]Value, len(items))
	copy(c, items)
	return Value{Kind: KindList, list: c}
}

// IsNull reports whether v is a null value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// AsString returns the string value if Kind is KindString.
func (v Value) AsString() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsBool returns the boolean value if Kind is KindBoolean.
func (v Value) AsBool() (bool, bool) {
	if v.Kind != KindBoolean {
		return false, false
	}
	return v.b, true
}

// AsInt64 returns the integer value for Byte, Short, Int and Long kinds.
func (v Value) AsInt64() (int64, bool) {
	switch v.Kind {
	case KindByte, KindShort, KindInt, KindLong:
		return v.i, true
	default:
		return 0, false
	}
}

// AsFloat64 returns the floating point value for Float and Double kinds.
func (v Value) AsFloat64() (float64, bool) {
	switch v.Kind {
	case KindFloat, KindDouble:
		return v.f, true
	default:
		return 0, false
	}
}

// AsTime returns the instant for Date and DateTime kinds, in UTC.
func (v Value) AsTime() (time.Time, bool) {
	switch v.Kind {
	case KindDate, KindDateTime:
		return time.UnixMilli(v.i).UTC(), true
	default:
		return time.Time{}, false
	}
}

// Millis returns the stored epoch milliseconds for Date and DateTime kinds.
func (v Value) Millis() (int64, bool) {
	switch v.Kind {
	case KindDate, KindDateTime:
		return v.i, true
	default:
		return 0, false
	}
}

// AsDecimal returns a copy of the unscaled value and the scale if Kind is KindDecimal.
func (v Value) AsDecimal() (*big.Int, int32, bool) {
	if v.Kind != KindDecimal {
		return nil, 0, false
	}
	return new(big.Int).Set(v.dec), v.scale, true
}

// AsRID returns the referenced RID if Kind is KindRID.
func (v Value) AsRID() (model.RID, bool) {
	if v.Kind != KindRID {
		return model.Null, false
	}
	return v.rid, true
}

// AsBinary returns the raw bytes if Kind is KindBinary. The slice must be treated as read-only.
func (v Value) AsBinary() ([]byte, bool) {
	if v.Kind != KindBinary {
		return nil, false
	}
	return v.raw, true
}

// AsList returns the items if Kind is KindList. The slice must be treated as read-only.
func (v Value) AsList() ([]Value, bool) {
	if v.Kind != KindList {
		return nil, false
	}
	return v.list, true
}

// Equal reports whether v and o have the same kind and the same encoded content.
// Floating point values compare by bit pattern, so NaN equals NaN and -0 differs from 0.
// Decimals compare by unscaled value and scale: 1.0 and 1.00 are not equal.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInvalid, KindNull:
		return true
	case KindString:
		return v.s == o.s
	case KindBoolean:
		return v.b == o.b
	case KindByte, KindShort, KindInt, KindLong, KindDate, KindDateTime:
		return v.i == o.i
	case KindFloat, KindDouble:
		return math.Float64bits(v.f) == math.Float64bits(o.f)
	case KindDecimal:
		return v.scale == o.scale && v.dec.Cmp(o.dec) == 0
	case KindRID:
		return v.rid == o.rid
	case KindBinary:
		return bytes.Equal(v.raw, o.raw)
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare orders two values of the same kind.
//
// Integers and dates compare numerically, floats follow cmp.Compare (NaN sorts
// first), decimals compare by numeric value regardless of scale, strings and
// binaries compare bytewise, RIDs by bucket then position, false sorts before
// true. Lists compare element by element, then by length.
// Values of different kinds return ErrIncomparable.
func Compare(a, b Value) (int, error) {
	if a.Kind != b.Kind {
		return 0, fmt.Errorf("%w: %s vs %s", ErrIncomparable, a.Kind, b.Kind)
	}
	switch a.Kind {
	case KindNull:
		return 0, nil
	case KindString:
		return strings.Compare(a.s, b.s), nil
	case KindBoolean:
		return compareBool(a.b, b.b), nil
	case KindByte, KindShort, KindInt, KindLong, KindDate, KindDateTime:
		return cmp.Compare(a.i, b.i), nil
	case KindFloat, KindDouble:
		return cmp.Compare(a.f, b.f), nil
	case KindDecimal:
		return CompareDecimal(a.dec, a.scale, b.dec, b.scale), nil
	case KindRID:
		return a.rid.Compare(b.rid), nil
	case KindBinary:
		return bytes.Compare(a.raw, b.raw), nil
	case KindList:
		for i := range min(len(a.list), len(b.list)) {
			c, err := Compare(a.list[i], b.list[i])
			if err != nil {
				return 0, err
			}
			if c != 0 {
				return c, nil
			}
		}
		return cmp.Compare(len(a.list), len(b.list)), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrIncomparable, a.Kind)
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// CompareDecimal compares x*10^-xs with y*10^-ys.
func CompareDecimal(x *big.Int, xs int32, y *big.Int, ys int32) int {
	if xs == ys {
		return x.Cmp(y)
	}
	sx, sy := x.Sign(), y.Sign()
	if sx != sy {
		return cmp.Compare(sx, sy)
	}
	if sx == 0 {
		return 0
	}
	// Magnitudes at least two orders apart decide without rescaling. This
	// also bounds the rescale below by the operand digit counts.
	ex, ey := magnitude(x, xs), magnitude(y, ys)
	switch {
	case ex-ey >= 2:
		return sx
	case ey-ex >= 2:
		return -sx
	}
	if xs < ys {
		return scaleUp(x, ys-xs).Cmp(y)
	}
	return x.Cmp(scaleUp(y, xs-ys))
}

// magnitude estimates the decimal exponent of v*10^-scale: the digit count
// of v minus scale, overestimating the digit count by at most one.
func magnitude(v *big.Int, scale int32) int64 {
	digits := int64(v.BitLen())*30103/100000 + 1
	return digits - int64(scale)
}

func scaleUp(v *big.Int, by int32) *big.Int {
	p := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(by)), nil)
	return p.Mul(p, v)
}

// String returns a human readable representation of v.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindString:
		return strconv.Quote(v.s)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindByte, KindShort, KindInt, KindLong:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindDate:
		return time.UnixMilli(v.i).UTC().Format(time.DateOnly)
	case KindDateTime:
		return time.UnixMilli(v.i).UTC().Format("2006-01-02T15:04:05.000Z07:00")
	case KindDecimal:
		return formatDecimal(v.dec, v.scale)
	case KindRID:
		return v.rid.String()
	case KindBinary:
		return fmt.Sprintf("binary[%d]", len(v.raw))
	case KindList:
		parts := make([]string, len(v.list))
		for i := range v.list {
			parts[i] = v.list[i].String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "invalid"
	}
}

func formatDecimal(unscaled *big.Int, scale int32) string {
	digits := new(big.Int).Abs(unscaled).String()
	sign := ""
	if unscaled.Sign() < 0 {
		sign = "-"
	}
	switch {
	case scale <= 0:
		return sign + digits + strings.Repeat("0", int(-scale))
	case int(scale) >= len(digits):
		return sign + "0." + strings.Repeat("0", int(scale)-len(digits)) + digits
	default:
		cut := len(digits) - int(scale)
		return sign + digits[:cut] + "." + digits[cut:]
	}
}
