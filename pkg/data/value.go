// Package data provides the self-describing value type exchanged over
// every transport and its binary wire codec.
package data

import (
	"bytes"
	"fmt"
	"strconv"
)

// Kind identifies the active variant of a Value.
type Kind uint8

// Kinds
const (
	KindNull Kind = iota
	KindBool
	KindString
	KindArray
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindString: "string",
	KindArray:  "array",
	KindInt8:   "i8",
	KindInt16:  "i16",
	KindInt32:  "i32",
	KindInt64:  "i64",
	KindUInt8:  "u8",
	KindUInt16: "u16",
	KindUInt32: "u32",
	KindUInt64: "u64",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsInteger indicates the kind is one of the fixed-width integers.
func (k Kind) IsInteger() bool {
	return k >= KindInt8 && k <= KindUInt64
}

// IsSigned indicates the kind is a signed integer.
func (k Kind) IsSigned() bool {
	return k >= KindInt8 && k <= KindInt64
}

// Width returns the encoded byte width of an integer kind, 0 otherwise.
func (k Kind) Width() int {
	switch k {
	case KindInt8, KindUInt8:
		return 1
	case KindInt16, KindUInt16:
		return 2
	case KindInt32, KindUInt32:
		return 4
	case KindInt64, KindUInt64:
		return 8
	}
	return 0
}

// Value is a tagged union of Null, Bool, String, Array and sized integers.
// The zero Value is Null. A Value is immutable once constructed, so
// assigning it never exposes shared mutable state.
type Value struct {
	kind Kind
	// bits holds the bool (0/1) or the integer in two's complement,
	// sign-extended for signed kinds.
	bits uint64
	str  string
	arr  []Value
}

// Null creates a Null value.
func Null() Value { return Value{} }

// Bool creates a Bool value.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.bits = 1
	}
	return v
}

// String creates a String value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bytes creates a String value from raw bytes.
func Bytes(b []byte) Value { return Value{kind: KindString, str: string(b)} }

// Array creates an Array value holding a copy of elems.
func Array(elems ...Value) Value {
	arr := make([]Value, len(elems))
	copy(arr, elems)
	return Value{kind: KindArray, arr: arr}
}

// Int8 creates an Int8 value.
func Int8(i int8) Value { return Value{kind: KindInt8, bits: uint64(int64(i))} }

// Int16 creates an Int16 value.
func Int16(i int16) Value { return Value{kind: KindInt16, bits: uint64(int64(i))} }

// Int32 creates an Int32 value.
func Int32(i int32) Value { return Value{kind: KindInt32, bits: uint64(int64(i))} }

// Int64 creates an Int64 value.
func Int64(i int64) Value { return Value{kind: KindInt64, bits: uint64(i)} }

// UInt8 creates a UInt8 value.
func UInt8(i uint8) Value { return Value{kind: KindUInt8, bits: uint64(i)} }

// UInt16 creates a UInt16 value.
func UInt16(i uint16) Value { return Value{kind: KindUInt16, bits: uint64(i)} }

// UInt32 creates a UInt32 value.
func UInt32(i uint32) Value { return Value{kind: KindUInt32, bits: uint64(i)} }

// UInt64 creates a UInt64 value.
func UInt64(i uint64) Value { return Value{kind: KindUInt64, bits: i} }

// Kind returns the active variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull indicates the value is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the bool, or false if v is not a Bool.
func (v Value) AsBool() bool { return v.kind == KindBool && v.bits != 0 }

// AsString returns the string, or "" if v is not a String.
func (v Value) AsString() string {
	if v.kind != KindString {
		return ""
	}
	return v.str
}

// AsArray returns a copy of the elements, or an empty slice if v is not an Array.
func (v Value) AsArray() []Value {
	if v.kind != KindArray {
		return []Value{}
	}
	arr := make([]Value, len(v.arr))
	copy(arr, v.arr)
	return arr
}

// Len returns the number of array elements or string bytes, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindString:
		return len(v.str)
	}
	return 0
}

// Index returns the i-th array element, or Null if out of range or v is not an Array.
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}
	}
	return v.arr[i]
}

// AsInt8 returns the int8, or -1 if v is not an Int8.
func (v Value) AsInt8() int8 {
	if v.kind != KindInt8 {
		return -1
	}
	return int8(v.bits)
}

// AsInt16 returns the int16, or -1 if v is not an Int16.
func (v Value) AsInt16() int16 {
	if v.kind != KindInt16 {
		return -1
	}
	return int16(v.bits)
}

// AsInt32 returns the int32, or -1 if v is not an Int32.
func (v Value) AsInt32() int32 {
	if v.kind != KindInt32 {
		return -1
	}
	return int32(v.bits)
}

// AsInt64 returns the int64, or -1 if v is not an Int64.
func (v Value) AsInt64() int64 {
	if v.kind != KindInt64 {
		return -1
	}
	return int64(v.bits)
}

// AsUInt8 returns the uint8, or 0xff if v is not a UInt8.
func (v Value) AsUInt8() uint8 {
	if v.kind != KindUInt8 {
		return 0xff
	}
	return uint8(v.bits)
}

// AsUInt16 returns the uint16, or 0xffff if v is not a UInt16.
func (v Value) AsUInt16() uint16 {
	if v.kind != KindUInt16 {
		return 0xffff
	}
	return uint16(v.bits)
}

// AsUInt32 returns the uint32, or 0xffffffff if v is not a UInt32.
func (v Value) AsUInt32() uint32 {
	if v.kind != KindUInt32 {
		return 0xffffffff
	}
	return uint32(v.bits)
}

// AsUInt64 returns the uint64, or all ones if v is not a UInt64.
func (v Value) AsUInt64() uint64 {
	if v.kind != KindUInt64 {
		return ^uint64(0)
	}
	return v.bits
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	if v.kind != KindArray {
		return v
	}
	arr := make([]Value, len(v.arr))
	for n, elem := range v.arr {
		arr[n] = elem.Clone()
	}
	v.arr = arr
	return v
}

// Equal compares kind and payload. Values of different kinds are never equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for n := range v.arr {
			if !v.arr[n].Equal(o.arr[n]) {
				return false
			}
		}
		return true
	}
	return v.bits == o.bits
}

// String implements fmt.Stringer with a debug representation, e.g.
// [i8(5), true, "ab"].
func (v Value) String() string {
	var w bytes.Buffer
	v.format(&w)
	return w.String()
}

func (v Value) format(w *bytes.Buffer) {
	switch v.kind {
	case KindNull:
		w.WriteString("null")
	case KindBool:
		w.WriteString(strconv.FormatBool(v.bits != 0))
	case KindString:
		w.WriteString(strconv.Quote(v.str))
	case KindArray:
		w.WriteByte('[')
		for n, elem := range v.arr {
			if n > 0 {
				w.WriteString(", ")
			}
			elem.format(w)
		}
		w.WriteByte(']')
	default:
		if v.kind.IsSigned() {
			fmt.Fprintf(w, "%s(%d)", v.kind, int64(v.bits))
		} else {
			fmt.Fprintf(w, "%s(%d)", v.kind, v.bits)
		}
	}
}
