// Package input models controller state over time: single gamepad samples,
// keyframes held for a number of logical frames, and ordered sequences of
// keyframes that can be chained, repeated and merged into new values.
package input

import "strings"

// Button is a bitmask of the digital buttons on the pad.
type Button uint16

const (
	DpadUp Button = 1 << iota
	DpadDown
	DpadLeft
	DpadRight
	Start
	Select
	L3
	R3
	L1
	R1
	A
	B
	X
	Y
)

var buttonNames = []struct {
	b    Button
	name string
}{
	{DpadUp, "dpad_up"},
	{DpadDown, "dpad_down"},
	{DpadLeft, "dpad_left"},
	{DpadRight, "dpad_right"},
	{Start, "start"},
	{Select, "select"},
	{L3, "l3"},
	{R3, "r3"},
	{L1, "l1"},
	{R1, "r1"},
	{A, "a"},
	{B, "b"},
	{X, "x"},
	{Y, "y"},
}

// String returns the pressed buttons as a "+"-joined list.
func (b Button) String() string {
	if b == 0 {
		return "none"
	}
	var names []string
	for _, bn := range buttonNames {
		if b&bn.b != 0 {
			names = append(names, bn.name)
		}
	}
	return strings.Join(names, "+")
}

// Has reports whether every button in mask is pressed.
func (b Button) Has(mask Button) bool {
	return b&mask == mask
}

// State is a single gamepad sample: pressed buttons, both analog sticks
// and both triggers. The zero value is the neutral "no input" state.
// Stick axes are in [-1, 1], triggers in [0, 1].
type State struct {
	Buttons Button
	LX, LY  float64
	RX, RY  float64
	LT, RT  float64
}

// Neutral is the no-input state applied to idle the device.
var Neutral = State{}

// IsNeutral reports whether the sample carries no input at all.
func (s State) IsNeutral() bool {
	return s == Neutral
}

// HasButton reports whether the sample holds a digital button press.
// Triggers and sticks do not count; this matches the arming rule where
// stick drift must not start a recording.
func (s State) HasButton() bool {
	return s.Buttons != 0
}

// clamp1 bounds v to [-1, 1].
func clamp1(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// clamp01 bounds v to [0, 1].
func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

// Clamped returns a copy of the state with every axis bounded to its
// valid range. Samples from live hardware go through this before they
// enter a sequence.
func (s State) Clamped() State {
	s.LX = clamp1(s.LX)
	s.LY = clamp1(s.LY)
	s.RX = clamp1(s.RX)
	s.RY = clamp1(s.RY)
	s.LT = clamp01(s.LT)
	s.RT = clamp01(s.RT)
	return s
}

// String returns a compact description of the sample.
func (s State) String() string {
	var sb strings.Builder
	sb.WriteString(s.Buttons.String())
	appendAxis := func(name string, v float64) {
		if v != 0 {
			sb.WriteByte(' ')
			sb.WriteString(name)
		}
	}
	appendAxis("lx", s.LX)
	appendAxis("ly", s.LY)
	appendAxis("rx", s.RX)
	appendAxis("ry", s.RY)
	appendAxis("lt", s.LT)
	appendAxis("rt", s.RT)
	return sb.String()
}
