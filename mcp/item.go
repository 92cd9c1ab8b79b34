package mcp

import "math"

// ReadItem requests numPoints 16-bit registers starting at Address on
// Device. For random-read use, NumPoints must be 1 (classified as a word
// slot) or 2 (classified as a dword slot); single-point read accepts any
// count up to the frame's length budget.
type ReadItem struct {
	Device    DeviceCode
	Address   Address
	NumPoints uint16
}

// WriteItem carries one destination and the value to place there. Value's
// kind decides whether the point goes through the bit family or the
// word/dword family of commands.
type WriteItem struct {
	Device  DeviceCode
	Address Address
	Value   Value
}

// SendItem is either a ReadItem or a WriteItem — the shape Write/Read
// operations on Client accept. Exactly one of Read/Write is populated.
type SendItem struct {
	Read  *ReadItem
	Write *WriteItem
}

// ReadRequest wraps a ReadItem as a SendItem.
func ReadRequest(device DeviceCode, addr Address, numPoints uint16) SendItem {
	item := ReadItem{Device: device, Address: addr, NumPoints: numPoints}
	return SendItem{Read: &item}
}

// WriteRequest wraps a WriteItem as a SendItem.
func WriteRequest(device DeviceCode, addr Address, value Value) SendItem {
	item := WriteItem{Device: device, Address: addr, Value: value}
	return SendItem{Write: &item}
}

// chunk is one word (2-byte) or dword (4-byte) slot produced when
// classifying a write value for the random-write command.
type chunk struct {
	bytes []byte
}

// classifyForRandomWrite splits v into the word-list and dword-list the
// random-write command's heterogeneous payload requires, returned as
// (words, dwords), the order the wire payload carries them in. The caller
// assigns addresses: for a value split across both lists (a string,
// char-slice or byte-slice), the dwords hold the leading bytes and the
// words the trailing bytes, so consecutive addresses run through the
// dwords first and then the words.
func classifyForRandomWrite(v Value) (words []chunk, dwords []chunk, err error) {
	switch v.kind {
	case KindUint8, KindChar, KindInt16, KindUint16:
		raw, err := v.EncodeRawBytes()
		if err != nil {
			return nil, nil, err
		}
		return []chunk{{raw}}, nil, nil

	case KindInt32, KindUint32, KindFloat32:
		raw, err := v.EncodeRawBytes()
		if err != nil {
			return nil, nil, err
		}
		return nil, []chunk{{raw}}, nil

	case KindInt64, KindUint64, KindFloat64:
		raw, err := v.EncodeRawBytes()
		if err != nil {
			return nil, nil, err
		}
		return nil, []chunk{{raw[0:4]}, {raw[4:8]}}, nil

	case KindInt16Slice:
		for _, e := range v.i16s {
			words = append(words, chunk{le16(uint16(e))})
		}
		return words, nil, nil
	case KindUint16Slice:
		for _, e := range v.u16s {
			words = append(words, chunk{le16(e)})
		}
		return words, nil, nil

	case KindInt32Slice:
		for _, e := range v.i32s {
			dwords = append(dwords, chunk{le32(uint32(e))})
		}
		return nil, dwords, nil
	case KindUint32Slice:
		for _, e := range v.u32s {
			dwords = append(dwords, chunk{le32(e)})
		}
		return nil, dwords, nil
	case KindFloat32Slice:
		for _, e := range v.f32s {
			dwords = append(dwords, chunk{le32(math.Float32bits(e))})
		}
		return nil, dwords, nil

	case KindInt64Slice:
		for _, e := range v.i64s {
			raw := le64(uint64(e))
			dwords = append(dwords, chunk{raw[0:4]}, chunk{raw[4:8]})
		}
		return nil, dwords, nil
	case KindUint64Slice:
		for _, e := range v.u64s {
			raw := le64(e)
			dwords = append(dwords, chunk{raw[0:4]}, chunk{raw[4:8]})
		}
		return nil, dwords, nil
	case KindFloat64Slice:
		for _, e := range v.f64s {
			raw := le64(math.Float64bits(e))
			dwords = append(dwords, chunk{raw[0:4]}, chunk{raw[4:8]})
		}
		return nil, dwords, nil

	case KindString, KindCharSlice, KindByteSlice:
		raw, err := v.EncodeRawBytes()
		if err != nil {
			return nil, nil, err
		}
		// As many whole dword slots as fit, then one trailing word slot
		// if exactly 2 bytes remain (raw is always even-length, padded).
		i := 0
		for ; i+4 <= len(raw); i += 4 {
			dwords = append(dwords, chunk{raw[i : i+4]})
		}
		if i+2 == len(raw) {
			words = append(words, chunk{raw[i : i+2]})
		}
		return words, dwords, nil

	default:
		// TryParse-style fallback: classify as word if it can't be
		// represented as a dword.
		raw, rawErr := v.EncodeRawBytes()
		if rawErr != nil {
			return nil, nil, rawErr
		}
		if len(raw) == 2 {
			return []chunk{{raw}}, nil, nil
		}
		return nil, nil, &InvalidPLCDataFormatError{Value: v}
	}
}
