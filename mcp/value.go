package mcp

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ValueKind tags the payload carried by a Value. Dispatch goes through this
// tag rather than runtime type assertions on an empty interface, so a write
// item's shape is known statically once constructed.
type ValueKind int

const (
	KindBool ValueKind = iota
	KindBoolSlice
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindChar
	KindCharSlice
	KindByteSlice
	KindString
	KindInt16Slice
	KindUint16Slice
	KindInt32Slice
	KindUint32Slice
	KindInt64Slice
	KindUint64Slice
	KindFloat32Slice
	KindFloat64Slice
)

// Value is a tagged union over every payload shape a write item may carry.
// Construct one with the matching constructor (BoolValue, Int16Value, ...);
// the zero Value is not valid.
type Value struct {
	kind ValueKind

	b   bool
	bs  []bool
	u8  uint8
	i16 int16
	u16 uint16
	i32 int32
	u32 uint32
	i64 int64
	u64 uint64
	f32 float32
	f64 float64
	ch  byte
	chs []byte
	bys []byte
	str string

	i16s []int16
	u16s []uint16
	i32s []int32
	u32s []uint32
	i64s []int64
	u64s []uint64
	f32s []float32
	f64s []float64
}

func BoolValue(v bool) Value             { return Value{kind: KindBool, b: v} }
func BoolSliceValue(v []bool) Value      { return Value{kind: KindBoolSlice, bs: v} }
func Uint8Value(v uint8) Value           { return Value{kind: KindUint8, u8: v} }
func Int16Value(v int16) Value           { return Value{kind: KindInt16, i16: v} }
func Uint16Value(v uint16) Value         { return Value{kind: KindUint16, u16: v} }
func Int32Value(v int32) Value           { return Value{kind: KindInt32, i32: v} }
func Uint32Value(v uint32) Value         { return Value{kind: KindUint32, u32: v} }
func Int64Value(v int64) Value           { return Value{kind: KindInt64, i64: v} }
func Uint64Value(v uint64) Value         { return Value{kind: KindUint64, u64: v} }
func Float32Value(v float32) Value       { return Value{kind: KindFloat32, f32: v} }
func Float64Value(v float64) Value       { return Value{kind: KindFloat64, f64: v} }
func CharValue(v byte) Value             { return Value{kind: KindChar, ch: v} }
func CharSliceValue(v []byte) Value      { return Value{kind: KindCharSlice, chs: v} }
func ByteSliceValue(v []byte) Value      { return Value{kind: KindByteSlice, bys: v} }
func StringValue(v string) Value         { return Value{kind: KindString, str: v} }
func Int16SliceValue(v []int16) Value    { return Value{kind: KindInt16Slice, i16s: v} }
func Uint16SliceValue(v []uint16) Value  { return Value{kind: KindUint16Slice, u16s: v} }
func Int32SliceValue(v []int32) Value    { return Value{kind: KindInt32Slice, i32s: v} }
func Uint32SliceValue(v []uint32) Value  { return Value{kind: KindUint32Slice, u32s: v} }
func Int64SliceValue(v []int64) Value    { return Value{kind: KindInt64Slice, i64s: v} }
func Uint64SliceValue(v []uint64) Value  { return Value{kind: KindUint64Slice, u64s: v} }
func Float32SliceValue(v []float32) Value { return Value{kind: KindFloat32Slice, f32s: v} }
func Float64SliceValue(v []float64) Value { return Value{kind: KindFloat64Slice, f64s: v} }

// Kind reports the tag of v.
func (v Value) Kind() ValueKind { return v.kind }

// IsBit reports whether v is a bool or []bool — the bit-granularity family
// that uses a different command opcode and bit-packed payload than the
// word-granularity family below.
func (v Value) IsBit() bool {
	return v.kind == KindBool || v.kind == KindBoolSlice
}

// Bits returns the bit sequence of a bool/[]bool value.
func (v Value) Bits() ([]bool, error) {
	switch v.kind {
	case KindBool:
		return []bool{v.b}, nil
	case KindBoolSlice:
		return v.bs, nil
	default:
		return nil, &InvalidPLCDataFormatError{Value: v}
	}
}

func padEven(b []byte) []byte {
	if len(b)%2 == 0 {
		return b
	}
	return append(b, 0x00)
}

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// EncodeRawBytes returns the little-endian in-memory byte sequence for a
// word-granularity value. This is the shared representation both the binary
// frame (used as-is) and the ASCII frame (further swapped per-word/dword)
// are built from.
func (v Value) EncodeRawBytes() ([]byte, error) {
	switch v.kind {
	case KindUint8:
		return []byte{v.u8, 0x00}, nil
	case KindChar:
		return []byte{v.ch, 0x00}, nil
	case KindInt16:
		return le16(uint16(v.i16)), nil
	case KindUint16:
		return le16(v.u16), nil
	case KindInt32:
		return le32(uint32(v.i32)), nil
	case KindUint32:
		return le32(v.u32), nil
	case KindFloat32:
		return le32(math.Float32bits(v.f32)), nil
	case KindInt64:
		return le64(uint64(v.i64)), nil
	case KindUint64:
		return le64(v.u64), nil
	case KindFloat64:
		return le64(math.Float64bits(v.f64)), nil
	case KindCharSlice:
		return padEven(append([]byte(nil), v.chs...)), nil
	case KindByteSlice:
		return padEven(append([]byte(nil), v.bys...)), nil
	case KindString:
		return padEven([]byte(v.str)), nil
	case KindInt16Slice:
		out := make([]byte, 0, 2*len(v.i16s))
		for _, e := range v.i16s {
			out = append(out, le16(uint16(e))...)
		}
		return out, nil
	case KindUint16Slice:
		out := make([]byte, 0, 2*len(v.u16s))
		for _, e := range v.u16s {
			out = append(out, le16(e)...)
		}
		return out, nil
	case KindInt32Slice:
		out := make([]byte, 0, 4*len(v.i32s))
		for _, e := range v.i32s {
			out = append(out, le32(uint32(e))...)
		}
		return out, nil
	case KindUint32Slice:
		out := make([]byte, 0, 4*len(v.u32s))
		for _, e := range v.u32s {
			out = append(out, le32(e)...)
		}
		return out, nil
	case KindFloat32Slice:
		out := make([]byte, 0, 4*len(v.f32s))
		for _, e := range v.f32s {
			out = append(out, le32(math.Float32bits(e))...)
		}
		return out, nil
	case KindInt64Slice:
		out := make([]byte, 0, 8*len(v.i64s))
		for _, e := range v.i64s {
			out = append(out, le64(uint64(e))...)
		}
		return out, nil
	case KindUint64Slice:
		out := make([]byte, 0, 8*len(v.u64s))
		for _, e := range v.u64s {
			out = append(out, le64(e)...)
		}
		return out, nil
	case KindFloat64Slice:
		out := make([]byte, 0, 8*len(v.f64s))
		for _, e := range v.f64s {
			out = append(out, le64(math.Float64bits(e))...)
		}
		return out, nil
	default:
		return nil, &InvalidPLCDataFormatError{Value: v}
	}
}

func (v Value) String() string {
	return fmt.Sprintf("Value(kind=%d)", v.kind)
}
