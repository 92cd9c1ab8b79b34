package mcp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPackBitsBinary(t *testing.T) {
	got := packBitsBinary([]bool{true, false, true})
	want := []byte{0x10, 0x10}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("packBitsBinary mismatch (-want +got):\n%s", diff)
	}
}

func TestPackBitsASCII(t *testing.T) {
	got := packBitsASCII([]bool{true, false, true})
	if got != "101" {
		t.Errorf("packBitsASCII = %q, want %q", got, "101")
	}
}

func TestUnpackBitsBinaryRoundTrip(t *testing.T) {
	bits := []bool{true, false, true, true, false}
	packed := packBitsBinary(bits)
	got := unpackBitsBinary(packed, len(bits))
	if diff := cmp.Diff(bits, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnpackBitsASCIIRoundTrip(t *testing.T) {
	bits := []bool{true, false, true}
	got := unpackBitsASCII(packBitsASCII(bits))
	if diff := cmp.Diff(bits, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnpackWordBoolsBinary(t *testing.T) {
	raw := []byte{0x03, 0x00} // bits 0 and 1 set, low byte first
	got := unpackWordBoolsBinary(raw)
	want := make([]bool, 16)
	want[0] = true
	want[1] = true
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
