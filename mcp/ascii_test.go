package mcp

import "testing"

func TestAsciiEncodeWords(t *testing.T) {
	// [lo, hi] = [0x04, 0x03] emits hi||lo = "0304"
	got, err := asciiEncodeWords([]byte{0x04, 0x03})
	if err != nil {
		t.Fatalf("asciiEncodeWords: %v", err)
	}
	if got != "0304" {
		t.Errorf("asciiEncodeWords = %q, want %q", got, "0304")
	}
}

func TestAsciiEncodeDwords(t *testing.T) {
	// [b0,b1,b2,b3] = [0x04,0x03,0x02,0x01] emits b3||b2||b1||b0 = "01020304"
	got, err := asciiEncodeDwords([]byte{0x04, 0x03, 0x02, 0x01})
	if err != nil {
		t.Fatalf("asciiEncodeDwords: %v", err)
	}
	if got != "01020304" {
		t.Errorf("asciiEncodeDwords = %q, want %q", got, "01020304")
	}
}

func TestAsciiEncodeWordsOddLength(t *testing.T) {
	if _, err := asciiEncodeWords([]byte{0x01}); err == nil {
		t.Errorf("odd-length buffer should be rejected")
	}
}

func TestAsciiEncodeDwordsNotMultipleOfFour(t *testing.T) {
	if _, err := asciiEncodeDwords([]byte{0x01, 0x02}); err == nil {
		t.Errorf("non-multiple-of-4 buffer should be rejected")
	}
}

func TestAsciiUnswapWords(t *testing.T) {
	got := asciiUnswapWords([]byte{0x00, 0x01, 0x00, 0x02})
	want := []byte{0x01, 0x00, 0x02, 0x00}
	if string(got) != string(want) {
		t.Errorf("asciiUnswapWords = % X, want % X", got, want)
	}
}
