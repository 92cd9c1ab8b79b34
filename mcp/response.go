package mcp

import (
	"encoding/binary"
	"math"
)

const (
	responseEndCodeWidth  = 2 // bytes, binary
	responseLengthWidthBin = 2
	responseLengthWidthASCII = 4 // hex chars
	responseEndCodeWidthASCII = 4
)

// ParseResponse validates a 3E response frame and returns its payload.
// expectedPayloadBytes is the binary byte length the caller expects the
// payload to carry (0 for a write/ack, wordCount*2 for a read of
// wordCount registers, wordCount*2+dwordCount*4 for a random read) — it is
// compared against the response's own declared length field.
func ParseResponse(opt FrameOptions, raw []byte, expectedPayloadBytes int) ([]byte, error) {
	if opt.Format == FormatASCII {
		return parseASCIIResponse(raw, expectedPayloadBytes)
	}
	return parseBinaryResponse(raw, expectedPayloadBytes)
}

func parseBinaryResponse(raw []byte, expectedPayloadBytes int) ([]byte, error) {
	const prefixWidth = 7 // D0 00 network pc FF 03 00
	const lengthWidth = 2
	if len(raw) < prefixWidth+lengthWidth+responseEndCodeWidth {
		return nil, &ProtocolMismatchError{Got: raw}
	}
	if raw[0] != 0xD0 || raw[1] != 0x00 || raw[4] != 0xFF || raw[5] != 0x03 || raw[6] != 0x00 {
		return nil, &ProtocolMismatchError{Got: raw[:prefixWidth]}
	}

	declaredLen := int(binary.LittleEndian.Uint16(raw[prefixWidth : prefixWidth+lengthWidth]))
	rest := raw[prefixWidth+lengthWidth:]
	receivedLen := len(rest)
	expectedLen := expectedPayloadBytes + responseEndCodeWidth
	if declaredLen != receivedLen || declaredLen != expectedLen {
		return nil, &LengthMismatchError{Declared: declaredLen, Received: receivedLen, Expected: expectedLen}
	}

	endCode := binary.LittleEndian.Uint16(rest[0:2])
	payload := rest[2:]
	if endCode != 0 {
		return nil, &DeviceError{EndCode: endCode, Trailing: payload}
	}
	return payload, nil
}

func parseASCIIResponse(raw []byte, expectedPayloadBytes int) ([]byte, error) {
	const prefixChars = 14 // "D000" + net(2) + pc(2) + "03FF" + "00"
	if len(raw) < prefixChars+responseLengthWidthASCII+responseEndCodeWidthASCII {
		return nil, &ProtocolMismatchError{Got: raw}
	}
	s := string(raw)
	if s[0:4] != "D000" || s[8:12] != "03FF" || s[12:14] != "00" {
		return nil, &ProtocolMismatchError{Got: raw[:prefixChars]}
	}

	declaredLen, err := parseHexInt(s[prefixChars : prefixChars+responseLengthWidthASCII])
	if err != nil {
		return nil, &ProtocolMismatchError{Got: raw}
	}
	rest := s[prefixChars+responseLengthWidthASCII:]
	receivedLen := len(rest)
	expectedLen := expectedPayloadBytes*2 + responseEndCodeWidthASCII
	if declaredLen != receivedLen || declaredLen != expectedLen {
		return nil, &LengthMismatchError{Declared: declaredLen, Received: receivedLen, Expected: expectedLen}
	}

	endCode, err := parseHexInt(rest[0:4])
	if err != nil {
		return nil, &ProtocolMismatchError{Got: raw}
	}
	payloadText := rest[4:]
	payloadRaw, err := decodeHexUpper(payloadText)
	if err != nil {
		return nil, &ProtocolMismatchError{Got: raw}
	}
	payload := asciiUnswapWords(payloadRaw)

	if endCode != 0 {
		return nil, &DeviceError{EndCode: uint16(endCode), Trailing: payload}
	}
	return payload, nil
}

func parseHexInt(s string) (int, error) {
	var v int
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= int(c - '0')
		case c >= 'A' && c <= 'F':
			v |= int(c-'A') + 10
		case c >= 'a' && c <= 'f':
			v |= int(c-'a') + 10
		default:
			return 0, &ProtocolMismatchError{}
		}
	}
	return v, nil
}

// ReceiveItem is the typed view over a read response's raw bytes. A
// trailing partial element is zero-padded when reinterpreted.
type ReceiveItem struct {
	Device  DeviceCode
	Address Address
	Raw     []byte
}

// Bytes returns the raw response payload.
func (r ReceiveItem) Bytes() []byte {
	return r.Raw
}

func padTo(raw []byte, multiple int) []byte {
	rem := len(raw) % multiple
	if rem == 0 {
		return raw
	}
	out := make([]byte, len(raw)+(multiple-rem))
	copy(out, raw)
	return out
}

// BoolArray reinterprets Raw as 16 bools per 2 bytes, bit 0 of the low byte
// first.
func (r ReceiveItem) BoolArray() []bool {
	return unpackWordBoolsBinary(r.Raw)
}

func (r ReceiveItem) Int16Array() []int16 {
	raw := padTo(r.Raw, 2)
	out := make([]int16, len(raw)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return out
}

func (r ReceiveItem) UInt16Array() []uint16 {
	raw := padTo(r.Raw, 2)
	out := make([]uint16, len(raw)/2)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(raw[i*2:])
	}
	return out
}

func (r ReceiveItem) Int32Array() []int32 {
	raw := padTo(r.Raw, 4)
	out := make([]int32, len(raw)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out
}

func (r ReceiveItem) UInt32Array() []uint32 {
	raw := padTo(r.Raw, 4)
	out := make([]uint32, len(raw)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return out
}

func (r ReceiveItem) Int64Array() []int64 {
	raw := padTo(r.Raw, 8)
	out := make([]int64, len(raw)/8)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return out
}

func (r ReceiveItem) UInt64Array() []uint64 {
	raw := padTo(r.Raw, 8)
	out := make([]uint64, len(raw)/8)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(raw[i*8:])
	}
	return out
}

func (r ReceiveItem) Float32Array() []float32 {
	raw := padTo(r.Raw, 4)
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out
}

func (r ReceiveItem) Float64Array() []float64 {
	raw := padTo(r.Raw, 8)
	out := make([]float64, len(raw)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return out
}

// String reinterprets Raw as an ASCII string, trimming trailing NUL padding.
func (r ReceiveItem) String() string {
	end := len(r.Raw)
	for end > 0 && r.Raw[end-1] == 0x00 {
		end--
	}
	return string(r.Raw[:end])
}
