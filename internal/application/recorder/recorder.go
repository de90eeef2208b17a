// Package recorder captures live controller activity into a sequence,
// sampling once per logical frame of the target and coalescing identical
// consecutive samples.
package recorder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/younwookim/dstas/internal/application/engine"
	"github.com/younwookim/dstas/internal/application/state"
	"github.com/younwookim/dstas/internal/domain/input"
)

// armButtons are the digital buttons whose edge arms a recording when
// ArmOnAnyInput is off. Stick drift and trigger noise never arm.
const armButtons = input.Start | input.Select | input.A | input.B | input.X | input.Y

// DefaultStopCombo ends a recording when both meta buttons are held
// together.
const DefaultStopCombo = input.Start | input.Select

// Options controls one recording session.
type Options struct {
	// StartDelay sleeps before arming so the operator can switch focus
	// to the game window.
	StartDelay time.Duration
	// ArmOnAnyInput starts capturing on any non-neutral sample instead
	// of waiting for a digital button press.
	ArmOnAnyInput bool
	// PollInterval is the sleep between samples while waiting to arm and
	// between clock peeks while recording.
	PollInterval time.Duration
	// StopCombo is the button chord that finishes the recording.
	StopCombo input.Button
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = engine.DefaultPollInterval
	}
	if o.StopCombo == 0 {
		o.StopCombo = DefaultStopCombo
	}
	return o
}

// Recorder samples a live source once per logical frame and builds a
// sequence out of what it sees.
type Recorder struct {
	clock  engine.Clock
	source engine.Source

	mu    sync.Mutex
	state state.SessionState
}

// New creates a recorder over the given clock and live input source.
func New(clock engine.Clock, source engine.Source) *Recorder {
	return &Recorder{clock: clock, source: source, state: state.StateIdle}
}

// State returns the session's current lifecycle state.
func (r *Recorder) State() state.SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Recorder) setState(s state.SessionState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Record blocks until the stop chord is seen and returns the captured
// sequence. The session arms on the first qualifying input; there is no
// timeout on that wait, only cancellation. The stop-chord sample itself
// is not recorded.
func (r *Recorder) Record(ctx context.Context, opts Options) (input.Sequence, error) {
	opts = opts.withDefaults()

	r.setState(state.StateIdle)
	defer r.setState(state.StateDone)

	if opts.StartDelay > 0 {
		if err := sleepCtx(ctx, opts.StartDelay); err != nil {
			return input.Sequence{}, err
		}
	}
	r.setState(state.StateArmed)

	var states []input.State
	armed := false

	for {
		s, err := r.source.Sample()
		if err != nil {
			return input.Sequence{}, fmt.Errorf("sample live input: %w", err)
		}
		s = s.Clamped()

		if !armed {
			if !qualifies(s, opts.ArmOnAnyInput) {
				if err := sleepCtx(ctx, opts.PollInterval); err != nil {
					return input.Sequence{}, err
				}
				continue
			}
			armed = true
			r.setState(state.StateRecording)
		}

		if s.Buttons.Has(opts.StopCombo) {
			return input.FromStates(states), nil
		}
		states = append(states, s)

		if err := r.waitTick(ctx, opts.PollInterval); err != nil {
			return input.Sequence{}, err
		}
	}
}

// qualifies reports whether a live sample arms the recording.
func qualifies(s input.State, anyInput bool) bool {
	if anyInput {
		return !s.IsNeutral()
	}
	return s.Buttons&armButtons != 0
}

// waitTick blocks until the game advances one frame. Unlike playback
// there is no stall timeout here; a paused game simply pauses the
// recording until it resumes or the caller cancels.
func (r *Recorder) waitTick(ctx context.Context, poll time.Duration) error {
	prev := r.clock.Read()
	for !r.clock.HasAdvanced(prev) {
		if err := sleepCtx(ctx, poll); err != nil {
			return err
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
