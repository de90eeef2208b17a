package input

// Move is a named movement primitive: a canonical controller state plus
// any behaviour fixed at construction. For sprint moves, DodgeUnder is
// the minimum hold in frames for a sustained sprint; the game treats a
// shorter hold as a quick evade. That property belongs to the primitive
// itself and is never reinterpreted later.
type Move struct {
	Name       string
	State      State
	DodgeUnder int
}

// For returns the primitive held for the given number of frames.
func (m Move) For(frames int) Keyframe {
	return NewKeyframe(m.State, frames)
}

// Keyframe returns the primitive as a single-frame keyframe.
func (m Move) Keyframe() Keyframe {
	return m.For(1)
}

// Frames implements Playable; a bare primitive occupies one frame.
func (m Move) Frames() int { return 1 }

// Flatten implements Playable.
func (m Move) Flatten() []State { return []State{m.State.Clamped()} }

// EvadesAt reports whether holding the primitive for the given number of
// frames produces the quick evasive action instead of a sustained sprint.
func (m Move) EvadesAt(frames int) bool {
	return m.DodgeUnder > 0 && frames < m.DodgeUnder
}

// DefaultDodgeThreshold is the sprint hold, in frames, below which the
// control scheme produces a dodge. Tuned for the 30fps target; override
// through the Primitives config section.
const DefaultDodgeThreshold = 14

const halfSpeed = 0.5

func stickMove(name string, x, y, scale float64) Move {
	return Move{Name: name, State: State{LX: x * scale, LY: y * scale}}
}

// Moves is the canonical movement primitives table: full-magnitude and
// half-magnitude ("walk") left-stick presets in eight directions. The
// sprint variants carry the dodge threshold.
func Moves(dodgeThreshold int) map[string]Move {
	if dodgeThreshold <= 0 {
		dodgeThreshold = DefaultDodgeThreshold
	}
	table := map[string]Move{
		"run":            stickMove("run", 0, 1, 1),
		"run_back":       stickMove("run_back", 0, -1, 1),
		"run_left":       stickMove("run_left", -1, 0, 1),
		"run_right":      stickMove("run_right", 1, 0, 1),
		"run_up_left":    stickMove("run_up_left", -1, 1, 1),
		"run_up_right":   stickMove("run_up_right", 1, 1, 1),
		"run_down_left":  stickMove("run_down_left", -1, -1, 1),
		"run_down_right": stickMove("run_down_right", 1, -1, 1),

		"walk":            stickMove("walk", 0, 1, halfSpeed),
		"walk_back":       stickMove("walk_back", 0, -1, halfSpeed),
		"walk_left":       stickMove("walk_left", -1, 0, halfSpeed),
		"walk_right":      stickMove("walk_right", 1, 0, halfSpeed),
		"walk_up_left":    stickMove("walk_up_left", -1, 1, halfSpeed),
		"walk_up_right":   stickMove("walk_up_right", 1, 1, halfSpeed),
		"walk_down_left":  stickMove("walk_down_left", -1, -1, halfSpeed),
		"walk_down_right": stickMove("walk_down_right", 1, -1, halfSpeed),
	}
	for _, name := range []string{
		"run", "run_back", "run_left", "run_right",
		"run_up_left", "run_up_right", "run_down_left", "run_down_right",
	} {
		m := table[name]
		m.DodgeUnder = dodgeThreshold
		table[name] = m
	}
	return table
}

// Button atoms: single-frame presses for every digital button, plus the
// pure wait. These are the building blocks scripts chain together.
var (
	Wait = Keyframe{Count: 1}

	PressA      = Press(A)
	PressB      = Press(B)
	PressX      = Press(X)
	PressY      = Press(Y)
	PressL1     = Press(L1)
	PressR1     = Press(R1)
	PressL3     = Press(L3)
	PressR3     = Press(R3)
	PressStart  = Press(Start)
	PressSelect = Press(Select)
	PressUp     = Press(DpadUp)
	PressDown   = Press(DpadDown)
	PressLeft   = Press(DpadLeft)
	PressRight  = Press(DpadRight)

	// Trigger pulls as full-pressure single frames.
	PressL2 = Keyframe{State: State{LT: 1}, Count: 1}
	PressR2 = Keyframe{State: State{RT: 1}, Count: 1}
)

// WaitFor is a pure wait held for the given number of frames.
func WaitFor(frames int) Keyframe {
	return NewKeyframe(Neutral, frames)
}
