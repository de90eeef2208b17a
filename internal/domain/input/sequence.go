package input

// Sequence is an ordered run of keyframes. The zero value is the empty
// sequence, which plays for zero frames and is the identity for Chain.
// Sequences are immutable values: every operation returns a new Sequence
// and never mutates its operands, so interactively-built expressions can
// be reused and recombined freely.
type Sequence struct {
	frames []Keyframe
}

// NewSequence builds a sequence from playables in order. Nested sequences
// are spliced flat; keyframes are copied by value.
func NewSequence(parts ...Playable) Sequence {
	var frames []Keyframe
	for _, p := range parts {
		switch v := p.(type) {
		case Keyframe:
			frames = append(frames, v)
		case Sequence:
			frames = append(frames, v.frames...)
		default:
			for _, s := range p.Flatten() {
				frames = append(frames, Keyframe{State: s, Count: 1})
			}
		}
	}
	return Sequence{frames: frames}
}

// Keyframes returns a copy of the sequence's keyframes.
func (s Sequence) Keyframes() []Keyframe {
	out := make([]Keyframe, len(s.frames))
	copy(out, s.frames)
	return out
}

// Len returns the number of keyframes in the sequence.
func (s Sequence) Len() int {
	return len(s.frames)
}

// Frames returns the total duration in logical frames.
func (s Sequence) Frames() int {
	total := 0
	for _, k := range s.frames {
		total += k.Frames()
	}
	return total
}

// Flatten expands the sequence to one State per logical frame, in order.
func (s Sequence) Flatten() []State {
	out := make([]State, 0, s.Frames())
	for _, k := range s.frames {
		out = append(out, k.Flatten()...)
	}
	return out
}

// Chain concatenates playables into one sequence. The right operand
// starts one scheduling tick after the left operand's last tick ends.
// Chain is associative and the empty sequence is its identity.
func Chain(parts ...Playable) Sequence {
	return NewSequence(parts...)
}

// Repeat plays p back-to-back n times. For a keyframe this multiplies its
// duration; for a sequence the whole ordered stream repeats. n < 1 is an
// arity error.
func Repeat(p Playable, n int) (Playable, error) {
	if n < 1 {
		return nil, &InvalidArityError{Count: n}
	}
	switch v := p.(type) {
	case Keyframe:
		return v.Repeat(n)
	case Sequence:
		frames := make([]Keyframe, 0, len(v.frames)*n)
		for i := 0; i < n; i++ {
			frames = append(frames, v.frames...)
		}
		return Sequence{frames: frames}, nil
	default:
		one := NewSequence(p)
		return Repeat(one, n)
	}
}

// Coalesce returns an equivalent sequence with consecutive keyframes that
// hold the same state folded into one keyframe with the summed duration.
// The flattened tick stream is unchanged.
func (s Sequence) Coalesce() Sequence {
	if len(s.frames) < 2 {
		return Sequence{frames: append([]Keyframe(nil), s.frames...)}
	}
	out := make([]Keyframe, 0, len(s.frames))
	cur := s.frames[0]
	for _, k := range s.frames[1:] {
		if k.State == cur.State {
			cur.Count = cur.Frames() + k.Frames()
			continue
		}
		out = append(out, cur)
		cur = k
	}
	out = append(out, cur)
	return Sequence{frames: out}
}

// FromStates builds a coalesced sequence from a stream of per-frame
// samples, one state per tick.
func FromStates(states []State) Sequence {
	frames := make([]Keyframe, 0, len(states))
	for _, st := range states {
		frames = append(frames, Keyframe{State: st, Count: 1})
	}
	return Sequence{frames: frames}.Coalesce()
}
