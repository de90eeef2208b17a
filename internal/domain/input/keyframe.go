package input

import "fmt"

// Playable is anything that flattens to an ordered stream of per-frame
// controller states. Keyframe and Sequence are the two implementations.
type Playable interface {
	// Flatten expands the value to one State per logical frame.
	Flatten() []State
	// Frames returns the total number of logical frames.
	Frames() int
}

// Keyframe is one controller state held for a fixed number of logical
// frames. A keyframe with the neutral state is a pure wait.
type Keyframe struct {
	State State
	Count int
}

// NewKeyframe builds a keyframe holding state for frames logical frames.
// Frame counts below one are clamped to one; a keyframe always occupies
// at least one frame.
func NewKeyframe(state State, frames int) Keyframe {
	if frames < 1 {
		frames = 1
	}
	return Keyframe{State: state.Clamped(), Count: frames}
}

// Press is a single-frame keyframe for a set of buttons.
func Press(buttons Button) Keyframe {
	return Keyframe{State: State{Buttons: buttons}, Count: 1}
}

// Frames returns the keyframe's duration in logical frames.
func (k Keyframe) Frames() int {
	if k.Count < 1 {
		return 1
	}
	return k.Count
}

// Flatten expands the keyframe to one identical State per frame.
func (k Keyframe) Flatten() []State {
	out := make([]State, k.Frames())
	for i := range out {
		out[i] = k.State
	}
	return out
}

// Repeat returns a copy of the keyframe with its duration multiplied by n.
func (k Keyframe) Repeat(n int) (Keyframe, error) {
	if n < 1 {
		return Keyframe{}, &InvalidArityError{Count: n}
	}
	return Keyframe{State: k.State, Count: k.Frames() * n}, nil
}

// Merge combines two keyframes into one simultaneous press. Buttons are
// unioned. An analog axis set on both sides to different non-default
// values is a conflict. The merged duration is the longer of the two;
// whether the shorter operand's state is held through the trailing frames
// is decided by the caller via holdShorter (the default configuration
// holds it). When the frames differ the result is a short sequence, so
// Merge returns a Playable.
func Merge(a, b Keyframe, holdShorter bool) (Playable, error) {
	merged, err := mergeStates(a.State, b.State)
	if err != nil {
		return nil, err
	}

	af, bf := a.Frames(), b.Frames()
	if af == bf {
		return Keyframe{State: merged, Count: af}, nil
	}

	long, short := a, b
	if bf > af {
		long, short = b, a
	}
	head := Keyframe{State: merged, Count: short.Frames()}
	tailFrames := long.Frames() - short.Frames()

	tailState := long.State
	if holdShorter {
		// Keep the shorter press held for the remainder as well.
		tailState = merged
	}
	return Sequence{frames: []Keyframe{head, {State: tailState, Count: tailFrames}}}, nil
}

// mergeStates unions two samples, rejecting conflicting analog axes.
func mergeStates(a, b State) (State, error) {
	out := State{Buttons: a.Buttons | b.Buttons}

	axes := []struct {
		name string
		a, b float64
		dst  *float64
	}{
		{"lx", a.LX, b.LX, &out.LX},
		{"ly", a.LY, b.LY, &out.LY},
		{"rx", a.RX, b.RX, &out.RX},
		{"ry", a.RY, b.RY, &out.RY},
		{"lt", a.LT, b.LT, &out.LT},
		{"rt", a.RT, b.RT, &out.RT},
	}
	for _, ax := range axes {
		switch {
		case ax.a == 0:
			*ax.dst = ax.b
		case ax.b == 0 || ax.a == ax.b:
			*ax.dst = ax.a
		default:
			return State{}, &ConflictError{Axis: ax.name, A: ax.a, B: ax.b}
		}
	}
	return out, nil
}

// MergePlayable merges two playables that are both single keyframes.
// Aligning two arbitrary-length sequences frame by frame is ambiguous, so
// anything else is rejected.
func MergePlayable(a, b Playable, holdShorter bool) (Playable, error) {
	ka, aok := asKeyframe(a)
	kb, bok := asKeyframe(b)
	if !aok || !bok {
		return nil, &UnsupportedError{
			Op:     "merge",
			Reason: fmt.Sprintf("cannot merge %T with %T; only keyframes combine simultaneously", a, b),
		}
	}
	return Merge(ka, kb, holdShorter)
}

// asKeyframe unwraps a playable into a keyframe when it is atomic: either
// a Keyframe value or a sequence of exactly one keyframe.
func asKeyframe(p Playable) (Keyframe, bool) {
	switch v := p.(type) {
	case Keyframe:
		return v, true
	case Sequence:
		if len(v.frames) == 1 {
			return v.frames[0], true
		}
	}
	return Keyframe{}, false
}
