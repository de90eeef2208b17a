// Package gamepad samples a physical controller through ebiten's
// standard gamepad layout. It only produces meaningful samples from
// inside a running ebiten game loop, which is how cmd/padrec uses it.
package gamepad

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/dstas/internal/domain/input"
)

// ErrNoGamepad reports that no standard-layout gamepad is connected.
var ErrNoGamepad = errors.New("no standard-layout gamepad connected")

var buttonMap = []struct {
	std ebiten.StandardGamepadButton
	bit input.Button
}{
	{ebiten.StandardGamepadButtonLeftTop, input.DpadUp},
	{ebiten.StandardGamepadButtonLeftBottom, input.DpadDown},
	{ebiten.StandardGamepadButtonLeftLeft, input.DpadLeft},
	{ebiten.StandardGamepadButtonLeftRight, input.DpadRight},
	{ebiten.StandardGamepadButtonCenterRight, input.Start},
	{ebiten.StandardGamepadButtonCenterLeft, input.Select},
	{ebiten.StandardGamepadButtonLeftStick, input.L3},
	{ebiten.StandardGamepadButtonRightStick, input.R3},
	{ebiten.StandardGamepadButtonFrontTopLeft, input.L1},
	{ebiten.StandardGamepadButtonFrontTopRight, input.R1},
	{ebiten.StandardGamepadButtonRightBottom, input.A},
	{ebiten.StandardGamepadButtonRightRight, input.B},
	{ebiten.StandardGamepadButtonRightLeft, input.X},
	{ebiten.StandardGamepadButtonRightTop, input.Y},
}

// Source samples the first connected standard-layout gamepad. It rescans
// on every sample so unplugging and replugging the pad just works.
type Source struct {
	ids []ebiten.GamepadID
}

// New creates a gamepad source.
func New() *Source {
	return &Source{}
}

// Sample reads the current pad state. It fails with ErrNoGamepad when
// nothing suitable is connected.
func (s *Source) Sample() (input.State, error) {
	s.ids = ebiten.AppendGamepadIDs(s.ids[:0])

	for _, id := range s.ids {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		return readPad(id), nil
	}
	return input.State{}, ErrNoGamepad
}

func readPad(id ebiten.GamepadID) input.State {
	var st input.State
	for _, bm := range buttonMap {
		if ebiten.IsStandardGamepadButtonPressed(id, bm.std) {
			st.Buttons |= bm.bit
		}
	}

	// Ebiten's vertical axes grow downward; the movement model treats
	// forward as positive.
	st.LX = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
	st.LY = -ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
	st.RX = ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)
	st.RY = -ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)

	st.LT = ebiten.StandardGamepadButtonValue(id, ebiten.StandardGamepadButtonFrontBottomLeft)
	st.RT = ebiten.StandardGamepadButtonValue(id, ebiten.StandardGamepadButtonFrontBottomRight)

	return st.Clamped()
}
