package mcp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeRawBytesScalars(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want []byte
	}{
		{"uint8", Uint8Value(0x42), []byte{0x42, 0x00}},
		{"char", CharValue('A'), []byte{'A', 0x00}},
		{"int16", Int16Value(0x0102), []byte{0x02, 0x01}},
		{"uint32", Uint32Value(0x01020304), []byte{0x04, 0x03, 0x02, 0x01}},
		{"int64", Int64Value(0x0102030405060708), []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}},
		{"float32", Float32Value(1.0), []byte{0x00, 0x00, 0x80, 0x3F}},
		{"string odd", StringValue("abc"), []byte{'a', 'b', 'c', 0x00}},
		{"string even", StringValue("ab"), []byte{'a', 'b'}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.v.EncodeRawBytes()
			if err != nil {
				t.Fatalf("EncodeRawBytes: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("EncodeRawBytes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeRawBytesSlices(t *testing.T) {
	v := Int16SliceValue([]int16{1, 2})
	got, err := v.EncodeRawBytes()
	if err != nil {
		t.Fatalf("EncodeRawBytes: %v", err)
	}
	want := []byte{0x01, 0x00, 0x02, 0x00}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestIsBit(t *testing.T) {
	if !BoolValue(true).IsBit() {
		t.Errorf("BoolValue should be a bit value")
	}
	if !BoolSliceValue([]bool{true, false}).IsBit() {
		t.Errorf("BoolSliceValue should be a bit value")
	}
	if Int16Value(1).IsBit() {
		t.Errorf("Int16Value should not be a bit value")
	}
}

func TestBits(t *testing.T) {
	bits, err := BoolSliceValue([]bool{true, false, true}).Bits()
	if err != nil {
		t.Fatalf("Bits: %v", err)
	}
	want := []bool{true, false, true}
	if diff := cmp.Diff(want, bits); diff != "" {
		t.Errorf("Bits mismatch (-want +got):\n%s", diff)
	}

	if _, err := Int16Value(1).Bits(); err == nil {
		t.Errorf("Bits on a non-bit value should fail")
	}
}

func TestClassifyForRandomWrite(t *testing.T) {
	words, dwords, err := classifyForRandomWrite(Int16Value(7))
	if err != nil {
		t.Fatalf("classifyForRandomWrite: %v", err)
	}
	if len(words) != 1 || len(dwords) != 0 {
		t.Errorf("int16 should classify as 1 word slot, got words=%d dwords=%d", len(words), len(dwords))
	}

	words, dwords, err = classifyForRandomWrite(Int64Value(1))
	if err != nil {
		t.Fatalf("classifyForRandomWrite: %v", err)
	}
	if len(words) != 0 || len(dwords) != 2 {
		t.Errorf("int64 should classify as 2 dword slots, got words=%d dwords=%d", len(words), len(dwords))
	}

	words, dwords, err = classifyForRandomWrite(Int32SliceValue([]int32{1, 2, 3}))
	if err != nil {
		t.Fatalf("classifyForRandomWrite: %v", err)
	}
	if len(words) != 0 || len(dwords) != 3 {
		t.Errorf("[]int32 of 3 should classify as 3 dword slots, got words=%d dwords=%d", len(words), len(dwords))
	}
}
