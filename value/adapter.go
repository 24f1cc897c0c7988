package value

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/hupe1980/recgo/model"
)

// ErrUnsupportedType is returned by FromAny for Go types with no matching Kind.
var ErrUnsupportedType = errors.New("unsupported value type")

// FromAny converts a Go value into a typed Value.
//
// This exists as an adapter layer for user input and legacy APIs.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case int8:
		return Byte(x), nil
	case int16:
		return Short(x), nil
	case int32:
		return Int(x), nil
	case int:
		return Long(int64(x)), nil
	case int64:
		return Long(x), nil
	case uint8:
		return Short(int16(x)), nil
	case uint16:
		return Int(int32(x)), nil
	case uint32:
		return Long(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			// Avoid silently truncating large values.
			return Value{}, fmt.Errorf("%w: uint64 out of range: %d", ErrUnsupportedType, x)
		}
		return Long(int64(x)), nil
	case float32:
		return Float(x), nil
	case float64:
		return Double(x), nil
	case time.Time:
		return DateTime(x), nil
	case *big.Int:
		return Decimal(x, 0), nil
	case model.RID:
		return Ref(x), nil
	case []byte:
		return Binary(x), nil
	case []Value:
		return List(x...), nil
	case []any:
		items := make([]Value, len(x))
		for i := range x {
			item, err := FromAny(x[i])
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return Value{Kind: KindList, list: items}, nil
	case []string:
		items := make([]Value, len(x))
		for i := range x {
			items[i] = String(x[i])
		}
		return Value{Kind: KindList, list: items}, nil
	case []int64:
		items := make([]Value, len(x))
		for i := range x {
			items[i] = Long(x[i])
		}
		return Value{Kind: KindList, list: items}, nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// ToAny converts v back into a native Go value.
// Decimals become *big.Rat, dates become time.Time in UTC.
func (v Value) ToAny() any {
	switch v.Kind {
	case KindString:
		return v.s
	case KindBoolean:
		return v.b
	case KindByte:
		return int8(v.i)
	case KindShort:
		return int16(v.i)
	case KindInt:
		return int32(v.i)
	case KindLong:
		return v.i
	case KindFloat:
		return float32(v.f)
	case KindDouble:
		return v.f
	case KindDate, KindDateTime:
		return time.UnixMilli(v.i).UTC()
	case KindDecimal:
		r := new(big.Rat).SetInt(v.dec)
		if v.scale != 0 {
			p := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs32(v.scale))), nil)
			if v.scale > 0 {
				r.Quo(r, new(big.Rat).SetInt(p))
			} else {
				r.Mul(r, new(big.Rat).SetInt(p))
			}
		}
		return r
	case KindRID:
		return v.rid
	case KindBinary:
		return v.raw
	case KindList:
		out := make([]any, len(v.list))
		for i := range v.list {
			out[i] = v.list[i].ToAny()
		}
		return out
	default:
		return nil
	}
}

func abs32(v int32) int64 {
	if v < 0 {
		return -int64(v)
	}
	return int64(v)
}

// PropertiesFromMap converts a map[string]any into Properties.
// Go maps are unordered, so callers that need a stable layout should build Properties directly.
func PropertiesFromMap(m map[string]any) (Properties, error) {
	p := make(Properties, 0, len(m))
	for k, v := range m {
		vv, err := FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		p = append(p, Property{Name: k, Value: vv})
	}
	return p, nil
}
