package value

import "strconv"

// Kind identifies the concrete type stored in a Value. It is also the tag byte
// written in front of every encoded value.
//
// NOTE: This is persisted; keep it stable.
type Kind uint8

const (
	// KindInvalid marks an unsupported value. It is never written.
	KindInvalid Kind = iota
	// KindNull represents a null value.
	KindNull
	// KindString represents a UTF-8 string.
	KindString
	// KindByte represents a signed 8-bit integer.
	KindByte
	// KindBoolean represents a boolean.
	KindBoolean
	// KindShort represents a signed 16-bit integer.
	KindShort
	// KindInt represents a signed 32-bit integer.
	KindInt
	// KindLong represents a signed 64-bit integer.
	KindLong
	// KindFloat represents an IEEE-754 binary32 number.
	KindFloat
	// KindDouble represents an IEEE-754 binary64 number.
	KindDouble
	// KindDate represents a calendar day (UTC midnight, millisecond epoch).
	KindDate
	// KindDateTime represents an instant with millisecond precision.
	KindDateTime
	// KindDecimal represents an arbitrary precision decimal (unscaled value, scale).
	KindDecimal
	// KindRID represents a reference to another record.
	KindRID
	// KindBinary represents raw bytes.
	KindBinary
	// KindList represents an ordered list of values of any kind.
	KindList

	kindCount
)

// Valid reports whether k is a kind the codec can encode.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

// Comparable reports whether values of this kind have a binary ordering.
func (k Kind) Comparable() bool {
	return k.Valid() && k != KindList
}

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "Invalid"
	case KindNull:
		return "Null"
	case KindString:
		return "String"
	case KindByte:
		return "Byte"
	case KindBoolean:
		return "Boolean"
	case KindShort:
		return "Short"
	case KindInt:
		return "Int"
	case KindLong:
		return "Long"
	case KindFloat:
		return "Float"
	case KindDouble:
		return "Double"
	case KindDate:
		return "Date"
	case KindDateTime:
		return "DateTime"
	case KindDecimal:
		return "Decimal"
	case KindRID:
		return "RID"
	case KindBinary:
		return "Binary"
	case KindList:
		return "List"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}
