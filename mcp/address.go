package mcp

import (
	"fmt"
	"strconv"
	"strings"
)

// Address is a 24-bit device offset, the range the MELSEC-Q/L 3E frame
// family addresses in a single request.
type Address uint32

// MaxAddress is the largest representable 24-bit address.
const MaxAddress Address = 0xFFFFFF

// EncodeBinary renders (code, addr) as the four bytes a binary frame uses:
// the three low bytes of little-endian(addr) followed by the device tag.
func (a Address) EncodeBinary(code DeviceCode) [4]byte {
	var out [4]byte
	out[0] = byte(a)
	out[1] = byte(a >> 8)
	out[2] = byte(a >> 16)
	out[3] = byte(code)
	return out
}

// EncodeASCII renders (code, addr) as the mnemonic (padded to two columns
// with '*') followed by six decimal or hexadecimal digits, hex iff code is
// hex-addressed.
func (a Address) EncodeASCII(code DeviceCode) string {
	mnemonic := code.Mnemonic()
	if len(mnemonic) == 1 {
		mnemonic += "*"
	}

	var digits string
	if code.HexAddressed() {
		digits = strings.ToUpper(strconv.FormatUint(uint64(a), 16))
	} else {
		digits = strconv.FormatUint(uint64(a), 10)
	}
	digits = fitToSixDigits(digits)

	return mnemonic + digits
}

// fitToSixDigits left-pads with '0' to six characters, or truncates to the
// trailing six characters if longer.
func fitToSixDigits(digits string) string {
	if len(digits) > 6 {
		return digits[len(digits)-6:]
	}
	for len(digits) < 6 {
		digits = "0" + digits
	}
	return digits
}

// DecodeAddressBinary reverses EncodeBinary.
func DecodeAddressBinary(b [4]byte) (Address, DeviceCode) {
	addr := Address(b[0]) | Address(b[1])<<8 | Address(b[2])<<16
	return addr, DeviceCode(b[3])
}

// ParseAddressASCII reverses EncodeASCII, given the device code (the
// mnemonic is assumed already stripped by the caller since frame layout
// carries code and digits separately).
func ParseAddressASCII(code DeviceCode, digits string) (Address, error) {
	base := 10
	if code.HexAddressed() {
		base = 16
	}
	v, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, fmt.Errorf("mcp: invalid address digits %q for %s: %w", digits, code, err)
	}
	return Address(v), nil
}
