package memhook

import (
	"encoding/binary"

	"github.com/younwookim/dstas/internal/domain/input"
)

// The game's XInput state block: a 16-bit button field, two trigger
// bytes and four little-endian int16 stick axes.
const padBlockSize = 12

// Wire button layout: bits 0-9 are dpad up/down/left/right, start, back,
// both thumb clicks and both shoulders in order; bits 12-15 are A B X Y.
// That matches the input.Button declaration order with a two-bit gap
// before the face buttons.
const (
	lowButtonMask   = 0x03FF
	faceButtonShift = 2
)

// encodePad converts a sample to the 12-byte XInput block.
func encodePad(s input.State) [padBlockSize]byte {
	var out [padBlockSize]byte

	b := uint16(s.Buttons)
	wire := (b & lowButtonMask) | (b&^lowButtonMask)<<faceButtonShift
	binary.LittleEndian.PutUint16(out[0:2], wire)

	out[2] = byte(clamp01(s.LT) * 255)
	out[3] = byte(clamp01(s.RT) * 255)

	binary.LittleEndian.PutUint16(out[4:6], uint16(axisToInt16(s.LX)))
	binary.LittleEndian.PutUint16(out[6:8], uint16(axisToInt16(s.LY)))
	binary.LittleEndian.PutUint16(out[8:10], uint16(axisToInt16(s.RX)))
	binary.LittleEndian.PutUint16(out[10:12], uint16(axisToInt16(s.RY)))

	return out
}

// decodePad converts the 12-byte XInput block back to a sample.
func decodePad(data [padBlockSize]byte) input.State {
	wire := binary.LittleEndian.Uint16(data[0:2])
	b := (wire & lowButtonMask) | (wire>>faceButtonShift)&^lowButtonMask

	return input.State{
		Buttons: input.Button(b),
		LT:      float64(data[2]) / 255,
		RT:      float64(data[3]) / 255,
		LX:      int16ToAxis(int16(binary.LittleEndian.Uint16(data[4:6]))),
		LY:      int16ToAxis(int16(binary.LittleEndian.Uint16(data[6:8]))),
		RX:      int16ToAxis(int16(binary.LittleEndian.Uint16(data[8:10]))),
		RY:      int16ToAxis(int16(binary.LittleEndian.Uint16(data[10:12]))),
	}
}

func axisToInt16(v float64) int16 {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}

func int16ToAxis(v int16) float64 {
	f := float64(v) / 32767
	if f < -1 {
		f = -1
	}
	return f
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
