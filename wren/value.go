package wren

import (
	"math"
)

// Value represents a script value using NaN-boxing.
//
// All values are 64-bit IEEE 754 doubles. Non-numeric values are encoded
// in the quiet-NaN space using tag bits to distinguish types.
//
// Encoding scheme:
//   - Number: native IEEE 754 double (if not a tagged NaN, it's a number)
//   - Object: quiet NaN + tagObject + 48-bit object registry ID
//   - Special: quiet NaN + tagSpecial + special value ID (null/true/false)
type Value uint64

// NaN-boxing constants
const (
	// Quiet NaN prefix: exponent all 1s, quiet bit set, sign bit 0
	nanBits uint64 = 0x7FF8000000000000

	// Tag mask: 3 bits within the NaN mantissa space
	tagMask uint64 = 0x0007000000000000

	// Payload mask: 48 bits for registry IDs
	payloadMask uint64 = 0x0000FFFFFFFFFFFF

	// Tag values (shifted into position)
	tagObject  uint64 = 0x0001000000000000 // Heap object registry ID
	tagSpecial uint64 = 0x0002000000000000 // null, true, false
)

// Special value payloads
const (
	specialNull  uint64 = 0
	specialTrue  uint64 = 1
	specialFalse uint64 = 2
)

// Pre-defined special values
const (
	Null  Value = Value(nanBits | tagSpecial | specialNull)
	True  Value = Value(nanBits | tagSpecial | specialTrue)
	False Value = Value(nanBits | tagSpecial | specialFalse)
)

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

// IsNum returns true if v represents a float64 number.
// A value is a number if it's not one of our tagged NaN values.
// This includes regular numbers, infinities, and "real" NaN values.
func (v Value) IsNum() bool {
	bits := uint64(v)

	// Exponent not all 1s: a regular float
	if (bits & 0x7FF0000000000000) != 0x7FF0000000000000 {
		return true
	}

	// +Inf / -Inf have a zero mantissa and are valid numbers
	mantissa := bits & 0x000FFFFFFFFFFFFF
	if mantissa == 0 {
		return true
	}

	// Signaling NaNs are not ours, treat as numbers
	if (bits & nanBits) != nanBits {
		return true
	}

	// A quiet NaN with no tag bits is a "real" NaN
	tag := bits & tagMask
	if tag == 0 {
		return true
	}

	return false
}

// IsObject returns true if v carries a heap object registry ID.
func (v Value) IsObject() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagObject)
}

// IsSpecial returns true if v is null, true, or false.
func (v Value) IsSpecial() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagSpecial)
}

// IsNull returns true if v is the null value.
func (v Value) IsNull() bool {
	return v == Null
}

// IsBool returns true if v is true or false.
func (v Value) IsBool() bool {
	return v == True || v == False
}

// ---------------------------------------------------------------------------
// Number operations
// ---------------------------------------------------------------------------

// Num returns v as a float64.
// Panics if v is not a number.
func (v Value) Num() float64 {
	if !v.IsNum() {
		panic("Value.Num: not a number")
	}
	return math.Float64frombits(uint64(v))
}

// FromNum creates a Value from a float64.
func FromNum(f float64) Value {
	return Value(math.Float64bits(f))
}

// ---------------------------------------------------------------------------
// Object registry ID operations
// ---------------------------------------------------------------------------

// ObjectID returns the object registry ID encoded in v.
// Panics if v is not an object.
func (v Value) ObjectID() uint32 {
	if !v.IsObject() {
		panic("Value.ObjectID: not an object")
	}
	return uint32(uint64(v) & payloadMask)
}

// FromObjectID creates a Value from an object registry ID.
func FromObjectID(id uint32) Value {
	return Value(nanBits | tagObject | uint64(id))
}

// ---------------------------------------------------------------------------
// Boolean operations
// ---------------------------------------------------------------------------

// Bool returns v as a bool.
// Panics if v is not true or false.
func (v Value) Bool() bool {
	switch v {
	case True:
		return true
	case False:
		return false
	default:
		panic("Value.Bool: not a boolean")
	}
}

// FromBool creates a Value from a bool.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// IsTruthy returns true if v is considered "truthy" in conditionals.
// Only false and null are falsy; everything else is truthy.
func (v Value) IsTruthy() bool {
	return v != False && v != Null
}
