package mcp

import (
	"fmt"
)

// ProtocolFormat picks the wire encoding for a session. It is fixed at
// session construction and never changes mid-frame.
type ProtocolFormat int

const (
	FormatBinary ProtocolFormat = iota
	FormatASCII
)

func (f ProtocolFormat) String() string {
	if f == FormatASCII {
		return "ASCII"
	}
	return "Binary"
}

// Command/subcommand pairs for the four verbs plus the loop-back health
// check, shared by both wire encodings.
const (
	cmdRead           = 0x0401
	cmdRandomRead     = 0x0403
	cmdWrite          = 0x1401
	cmdRandomWrite    = 0x1402
	cmdHealthCheck    = 0x0619
	subWord           = 0x0000
	subBit            = 0x0001
	subHealthCheck    = 0x0000
	maxRandomPoints   = 255
	healthCheckPayload = "ABCDE"
)

// FrameOptions carries the per-session fields every frame's outer header
// needs.
type FrameOptions struct {
	Format       ProtocolFormat
	NetworkNo    byte
	PCNo         byte
	TimeoutTicks uint16 // units of 250ms
}

// assembledFrame is the byte buffer ready to write to the socket, in
// whichever encoding opt.Format selects.
type assembledFrame struct {
	bytes []byte
}

// --- outer header + prefix -------------------------------------------------

func wrapBinary(opt FrameOptions, body []byte) []byte {
	out := make([]byte, 0, 8+len(body))
	out = append(out, 0x50, 0x00, opt.NetworkNo, opt.PCNo, 0xFF, 0x03, 0x00)
	out = append(out, le16(uint16(len(body)))...)
	out = append(out, body...)
	return out
}

func wrapASCII(opt FrameOptions, body string) []byte {
	header := fmt.Sprintf("5000%02X%02X03FF00%04X", opt.NetworkNo, opt.PCNo, len(body))
	return []byte(header + body)
}

func binaryPrefix(opt FrameOptions, command, subcommand uint16) []byte {
	out := make([]byte, 0, 6)
	out = append(out, le16(opt.TimeoutTicks)...)
	out = append(out, le16(command)...)
	out = append(out, le16(subcommand)...)
	return out
}

func asciiPrefix(opt FrameOptions, command, subcommand uint16) string {
	return fmt.Sprintf("%04X%04X%04X", opt.TimeoutTicks, command, subcommand)
}

// --- health check -----------------------------------------------------------

// BuildHealthCheckFrame builds the loop-back test request (MC protocol
// command 0x0619): the PLC echoes the fixed 5-byte payload back unchanged.
func BuildHealthCheckFrame(opt FrameOptions) []byte {
	if opt.Format == FormatASCII {
		body := asciiPrefix(opt, cmdHealthCheck, subHealthCheck) +
			fmt.Sprintf("%04X", len(healthCheckPayload)) +
			upperHex([]byte(healthCheckPayload))
		return wrapASCII(opt, body)
	}
	body := binaryPrefix(opt, cmdHealthCheck, subHealthCheck)
	body = append(body, le16(uint16(len(healthCheckPayload)))...)
	body = append(body, []byte(healthCheckPayload)...)
	return wrapBinary(opt, body)
}

// --- single-point read -------------------------------------------------------

// BuildReadFrame builds a single-point (contiguous) word read request.
func BuildReadFrame(opt FrameOptions, item ReadItem) []byte {
	if opt.Format == FormatASCII {
		body := asciiPrefix(opt, cmdRead, subWord) +
			item.Address.EncodeASCII(item.Device) +
			fmt.Sprintf("%04X", item.NumPoints)
		return wrapASCII(opt, body)
	}
	addr := item.Address.EncodeBinary(item.Device)
	body := binaryPrefix(opt, cmdRead, subWord)
	body = append(body, addr[:]...)
	body = append(body, le16(item.NumPoints)...)
	return wrapBinary(opt, body)
}

// --- single-point write ------------------------------------------------------

// BuildWriteFrame builds a single-point write request. Bool/[]bool values
// take the bit subcommand and bit-packed payload; everything else takes
// the word subcommand and raw value bytes.
func BuildWriteFrame(opt FrameOptions, item WriteItem) ([]byte, error) {
	if item.Value.IsBit() {
		return buildBitWriteFrame(opt, item)
	}
	return buildWordWriteFrame(opt, item)
}

func buildWordWriteFrame(opt FrameOptions, item WriteItem) ([]byte, error) {
	raw, err := item.Value.EncodeRawBytes()
	if err != nil {
		return nil, err
	}
	pointCount := uint16(len(raw) / 2)

	if opt.Format == FormatASCII {
		valueText, err := asciiEncodeWords(raw)
		if err != nil {
			return nil, err
		}
		body := asciiPrefix(opt, cmdWrite, subWord) +
			item.Address.EncodeASCII(item.Device) +
			fmt.Sprintf("%04X", pointCount) +
			valueText
		return wrapASCII(opt, body), nil
	}

	addr := item.Address.EncodeBinary(item.Device)
	body := binaryPrefix(opt, cmdWrite, subWord)
	body = append(body, addr[:]...)
	body = append(body, le16(pointCount)...)
	body = append(body, raw...)
	return wrapBinary(opt, body), nil
}

func buildBitWriteFrame(opt FrameOptions, item WriteItem) ([]byte, error) {
	bits, err := item.Value.Bits()
	if err != nil {
		return nil, err
	}
	bitCount := uint16(len(bits))

	if opt.Format == FormatASCII {
		body := asciiPrefix(opt, cmdWrite, subBit) +
			item.Address.EncodeASCII(item.Device) +
			fmt.Sprintf("%04X", bitCount) +
			packBitsASCII(bits)
		return wrapASCII(opt, body), nil
	}

	addr := item.Address.EncodeBinary(item.Device)
	body := binaryPrefix(opt, cmdWrite, subBit)
	body = append(body, addr[:]...)
	body = append(body, le16(bitCount)...)
	body = append(body, packBitsBinary(bits)...)
	return wrapBinary(opt, body), nil
}

// --- random read --------------------------------------------------------

// classifyReadItems splits items into the word-list and dword-list the
// random-read command's heterogeneous payload requires, preserving each
// item's relative order within its list. The caller (frame assembly or the
// public API's response reassembly) uses the same split either side of the
// wire.
func classifyReadItems(items []ReadItem) (wordItems, dwordItems []ReadItem, err error) {
	for _, it := range items {
		switch it.NumPoints {
		case 1:
			wordItems = append(wordItems, it)
		case 2:
			dwordItems = append(dwordItems, it)
		default:
			return nil, nil, &InvalidPLCDataFormatError{Value: it}
		}
	}
	if len(wordItems) > maxRandomPoints || len(dwordItems) > maxRandomPoints {
		return nil, nil, &MessageSizeOverflowError{WordCount: len(wordItems), DwordCount: len(dwordItems)}
	}
	return wordItems, dwordItems, nil
}

// BuildRandomReadFrame builds a multi-point random read request. Each item
// must have NumPoints 1 (word slot) or 2 (dword slot).
func BuildRandomReadFrame(opt FrameOptions, items []ReadItem) ([]byte, error) {
	wordItems, dwordItems, err := classifyReadItems(items)
	if err != nil {
		return nil, err
	}

	if opt.Format == FormatASCII {
		body := asciiPrefix(opt, cmdRandomRead, subWord) +
			fmt.Sprintf("%02X%02X", len(wordItems), len(dwordItems))
		for _, it := range wordItems {
			body += it.Address.EncodeASCII(it.Device)
		}
		for _, it := range dwordItems {
			body += it.Address.EncodeASCII(it.Device)
		}
		return wrapASCII(opt, body), nil
	}

	body := binaryPrefix(opt, cmdRandomRead, subWord)
	body = append(body, byte(len(wordItems)), byte(len(dwordItems)))
	for _, it := range wordItems {
		addr := it.Address.EncodeBinary(it.Device)
		body = append(body, addr[:]...)
	}
	for _, it := range dwordItems {
		addr := it.Address.EncodeBinary(it.Device)
		body = append(body, addr[:]...)
	}
	return wrapBinary(opt, body), nil
}

// --- random write --------------------------------------------------------

// randomWriteBitPoint is one point of a random bit-write frame.
type randomWriteBitPoint struct {
	Device  DeviceCode
	Address Address
	Bit     bool
}

// randomWriteSlot is one point of a random word/dword-write frame.
type randomWriteSlot struct {
	Device  DeviceCode
	Address Address
	Bytes   []byte // 2 bytes (word) or 4 bytes (dword)
}

// BuildRandomWriteFrames splits items into a bit frame and a word/dword
// frame — bits and words cannot share one random-write frame — and builds
// whichever of the two are needed. Returns 0, 1, or 2 frames.
func BuildRandomWriteFrames(opt FrameOptions, items []WriteItem) ([][]byte, error) {
	var bitPoints []randomWriteBitPoint
	var wordSlots, dwordSlots []randomWriteSlot

	for _, it := range items {
		if it.Value.IsBit() {
			bits, err := it.Value.Bits()
			if err != nil {
				return nil, err
			}
			addr := it.Address
			for _, b := range bits {
				bitPoints = append(bitPoints, randomWriteBitPoint{it.Device, addr, b})
				addr++
			}
			continue
		}

		words, dwords, err := classifyForRandomWrite(it.Value)
		if err != nil {
			return nil, err
		}
		// classifyForRandomWrite puts a string/char-slice/byte-slice value's
		// leading bytes in dwords and only its trailing 2 bytes (if any) in
		// words, so addresses must be assigned dwords-first to keep the
		// base address attached to the leading bytes.
		addr := it.Address
		for _, d := range dwords {
			dwordSlots = append(dwordSlots, randomWriteSlot{it.Device, addr, d.bytes})
			addr += 2
		}
		for _, w := range words {
			wordSlots = append(wordSlots, randomWriteSlot{it.Device, addr, w.bytes})
			addr++
		}
	}

	var frames [][]byte

	if len(bitPoints) > 0 {
		if len(bitPoints) > maxRandomPoints {
			return nil, &MessageSizeOverflowError{WordCount: len(bitPoints)}
		}
		f, err := buildRandomWriteBitFrame(opt, bitPoints)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}

	if len(wordSlots) > 0 || len(dwordSlots) > 0 {
		if len(wordSlots) > maxRandomPoints || len(dwordSlots) > maxRandomPoints {
			return nil, &MessageSizeOverflowError{WordCount: len(wordSlots), DwordCount: len(dwordSlots)}
		}
		f, err := buildRandomWriteWordFrame(opt, wordSlots, dwordSlots)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}

	return frames, nil
}

func buildRandomWriteWordFrame(opt FrameOptions, wordSlots, dwordSlots []randomWriteSlot) ([]byte, error) {
	if opt.Format == FormatASCII {
		body := asciiPrefix(opt, cmdRandomWrite, subWord) +
			fmt.Sprintf("%02X%02X", len(wordSlots), len(dwordSlots))
		for _, s := range wordSlots {
			valueText, err := asciiEncodeWords(s.Bytes)
			if err != nil {
				return nil, err
			}
			body += s.Address.EncodeASCII(s.Device) + valueText
		}
		for _, s := range dwordSlots {
			valueText, err := asciiEncodeDwords(s.Bytes)
			if err != nil {
				return nil, err
			}
			body += s.Address.EncodeASCII(s.Device) + valueText
		}
		return wrapASCII(opt, body), nil
	}

	body := binaryPrefix(opt, cmdRandomWrite, subWord)
	body = append(body, byte(len(wordSlots)), byte(len(dwordSlots)))
	for _, s := range wordSlots {
		addr := s.Address.EncodeBinary(s.Device)
		body = append(body, addr[:]...)
		body = append(body, s.Bytes...)
	}
	for _, s := range dwordSlots {
		addr := s.Address.EncodeBinary(s.Device)
		body = append(body, addr[:]...)
		body = append(body, s.Bytes...)
	}
	return wrapBinary(opt, body), nil
}

func buildRandomWriteBitFrame(opt FrameOptions, points []randomWriteBitPoint) ([]byte, error) {
	if opt.Format == FormatASCII {
		body := asciiPrefix(opt, cmdRandomWrite, subBit) + fmt.Sprintf("%02X", len(points))
		for _, p := range points {
			bitChar := "0"
			if p.Bit {
				bitChar = "1"
			}
			body += p.Address.EncodeASCII(p.Device) + bitChar
		}
		return wrapASCII(opt, body), nil
	}

	payload := []byte{byte(len(points))}
	for _, p := range points {
		addr := p.Address.EncodeBinary(p.Device)
		payload = append(payload, addr[:]...)
		payload = append(payload, byte(p.Device)) // explicit device tag duplicated per point
		if p.Bit {
			payload = append(payload, 0x01)
		} else {
			payload = append(payload, 0x00)
		}
	}

	prefix := binaryPrefix(opt, cmdRandomWrite, subBit)
	body := append(append([]byte{}, prefix...), payload...)

	// The random-write-bit payload is always odd-length (a 1-byte count
	// plus whole 6-byte points); the wire length field reports
	// ceil(len/2) instead of the true byte count.
	trueLength := len(body)
	length := trueLength
	if trueLength%2 != 0 {
		length = trueLength/2 + 1
	}

	out := make([]byte, 0, 8+len(body))
	out = append(out, 0x50, 0x00, opt.NetworkNo, opt.PCNo, 0xFF, 0x03, 0x00)
	out = append(out, le16(uint16(length))...)
	out = append(out, body...)
	return out, nil
}
