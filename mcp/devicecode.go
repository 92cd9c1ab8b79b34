package mcp

import "fmt"

// DeviceCode identifies a PLC memory area. Each code has a fixed one-byte
// tag used in binary frames and a textual mnemonic used in ASCII frames.
type DeviceCode byte

// Recognized device codes and their one-byte binary tags.
const (
	DeviceM  DeviceCode = 0x90
	DeviceSM DeviceCode = 0x91
	DeviceL  DeviceCode = 0x92
	DeviceF  DeviceCode = 0x93
	DeviceV  DeviceCode = 0x94
	DeviceX  DeviceCode = 0x9C
	DeviceY  DeviceCode = 0x9D
	DeviceB  DeviceCode = 0xA0
	DeviceSB DeviceCode = 0xA1
	DeviceDX DeviceCode = 0xA2
	DeviceDY DeviceCode = 0xA3
	DeviceD  DeviceCode = 0xA8
	DeviceSD DeviceCode = 0xA9
	DeviceR  DeviceCode = 0xAF
	DeviceZR DeviceCode = 0xB0
	DeviceW  DeviceCode = 0xB4
	DeviceSW DeviceCode = 0xB5
	DeviceTC DeviceCode = 0xC0
	DeviceTS DeviceCode = 0xC1
	DeviceTN DeviceCode = 0xC2
	DeviceCC DeviceCode = 0xC3
	DeviceCS DeviceCode = 0xC4
	DeviceCN DeviceCode = 0xC5
	DeviceZ  DeviceCode = 0xCC
)

var deviceMnemonics = map[DeviceCode]string{
	DeviceM:  "M",
	DeviceSM: "SM",
	DeviceL:  "L",
	DeviceF:  "F",
	DeviceV:  "V",
	DeviceX:  "X",
	DeviceY:  "Y",
	DeviceB:  "B",
	DeviceSB: "SB",
	DeviceDX: "DX",
	DeviceDY: "DY",
	DeviceD:  "D",
	DeviceSD: "SD",
	DeviceR:  "R",
	DeviceZR: "ZR",
	DeviceW:  "W",
	DeviceSW: "SW",
	DeviceTC: "TC",
	DeviceTS: "TS",
	DeviceTN: "TN",
	DeviceCC: "CC",
	DeviceCS: "CS",
	DeviceCN: "CN",
	DeviceZ:  "Z",
}

var mnemonicDevices = func() map[string]DeviceCode {
	m := make(map[string]DeviceCode, len(deviceMnemonics))
	for code, name := range deviceMnemonics {
		m[name] = code
	}
	return m
}()

// DeviceCodeByName looks up a DeviceCode by its textual mnemonic (e.g. "D", "ZR").
func DeviceCodeByName(name string) (DeviceCode, bool) {
	code, ok := mnemonicDevices[name]
	return code, ok
}

// Mnemonic returns the device code's textual name, or "" if unrecognized.
func (d DeviceCode) Mnemonic() string {
	return deviceMnemonics[d]
}

func (d DeviceCode) String() string {
	if m := d.Mnemonic(); m != "" {
		return m
	}
	return fmt.Sprintf("DeviceCode(%#02x)", byte(d))
}

// HexAddressed reports whether the device code's ASCII address form is
// rendered in hexadecimal rather than decimal. The hex-addressed range is
// [0x9C, 0xA3]: X, Y, B, SB, DX, DY.
func (d DeviceCode) HexAddressed() bool {
	return d >= DeviceX && d <= DeviceDY
}
