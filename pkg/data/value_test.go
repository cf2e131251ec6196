package data

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConversionSentinels(t *testing.T) {
	s := String("x")
	require.False(t, s.AsBool())
	require.Equal(t, int8(-1), s.AsInt8())
	require.Equal(t, int16(-1), s.AsInt16())
	require.Equal(t, int32(-1), s.AsInt32())
	require.Equal(t, int64(-1), s.AsInt64())
	require.Equal(t, uint8(0xff), s.AsUInt8())
	require.Equal(t, uint16(0xffff), s.AsUInt16())
	require.Equal(t, uint32(0xffffffff), s.AsUInt32())
	require.Equal(t, ^uint64(0), s.AsUInt64())
	require.Empty(t, s.AsArray())
	require.NotNil(t, s.AsArray())
	require.Equal(t, "", Int8(3).AsString())

	// same width, different signedness is still a mismatch.
	require.Equal(t, uint8(0xff), Int8(3).AsUInt8())
	require.Equal(t, int8(3), Int8(3).AsInt8())
	require.Equal(t, int64(-9), Int64(-9).AsInt64())
	require.True(t, Bool(true).AsBool())
	require.Equal(t, "x", s.AsString())
}

func TestEqual(t *testing.T) {
	require.True(t, Null().Equal(Value{}))
	require.False(t, Int8(1).Equal(UInt8(1)))
	require.False(t, Int16(1).Equal(Int32(1)))
	require.False(t, Null().Equal(Array()))
	require.False(t, String("").Equal(Null()))
	require.True(t, Array(Int8(1), String("a")).Equal(Array(Int8(1), String("a"))))
	require.False(t, Array(Int8(1)).Equal(Array(Int8(1), Int8(1))))
	require.False(t, Array(Int8(1)).Equal(Array(Int8(2))))
	require.True(t, Bool(false).Equal(Bool(false)))
	require.False(t, Bool(false).Equal(Bool(true)))
}

func TestArrayOwnership(t *testing.T) {
	elems := []Value{Int8(1), Int8(2)}
	v := Array(elems...)
	elems[0] = String("changed")
	require.Equal(t, int8(1), v.Index(0).AsInt8())

	out := v.AsArray()
	out[1] = Null()
	require.Equal(t, int8(2), v.Index(1).AsInt8())

	clone := Array(v, String("s")).Clone()
	require.True(t, clone.Equal(Array(v, String("s"))))
	require.Equal(t, 2, clone.Len())
	require.True(t, clone.Index(5).IsNull())
}

func TestFormat(t *testing.T) {
	v := Array(Int8(-5), Bool(true), String("ab"), Null(), UInt64(7), Array())
	require.Equal(t, `[i8(-5), true, "ab", null, u64(7), []]`, v.String())
	require.Equal(t, "u16", KindUInt16.String())
	require.Equal(t, "kind(99)", Kind(99).String())
}
