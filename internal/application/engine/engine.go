// Package engine plays input sequences against the target process one
// logical frame at a time. A logical frame is one advance of the game's
// own counter as read from its memory, not a wall-clock tick, so playback
// stays frame-exact however unevenly the game runs.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/younwookim/dstas/internal/domain/input"
)

// Clock reads the target's frame counter. Read must not block and must
// return the previous value rather than fail on a transient read error;
// the gate treats "no advance" the same whether the game is idling or a
// single peek hiccupped. Counter values are non-decreasing for the
// lifetime of a session.
type Clock interface {
	Read() uint64
	HasAdvanced(prev uint64) bool
}

// Driver applies one controller sample to the virtual device for the
// current tick. Applying the same state twice is harmless; the engine
// calls it exactly once per frame it advances.
type Driver interface {
	Apply(input.State) error
}

// Source samples the live controller state. Used by the recorder.
type Source interface {
	Sample() (input.State, error)
}

// Options controls one playback session.
type Options struct {
	// StartDelay sleeps before the session touches the device, giving
	// the operator time to focus the game window.
	StartDelay time.Duration
	// NoInitialWait applies the first sample immediately instead of
	// waiting for a clock advance first.
	NoInitialWait bool
	// FirstSampleDelay is slept before the first sample when the initial
	// wait is skipped. Without it the first input is often eaten.
	FirstSampleDelay time.Duration
	// PollInterval is the sleep between clock peeks while gated.
	PollInterval time.Duration
	// StallTimeout aborts the session when the counter stops advancing
	// for this long.
	StallTimeout time.Duration
	// Observer, when set, is called once per applied sample.
	Observer func(frame int, s input.State)
}

// Default timing values, matching the 30fps target the scripts are
// written for.
const (
	DefaultPollInterval     = 2 * time.Millisecond
	DefaultStallTimeout     = 2 * time.Second
	DefaultFirstSampleDelay = 50 * time.Millisecond
)

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.StallTimeout <= 0 {
		o.StallTimeout = DefaultStallTimeout
	}
	if o.FirstSampleDelay <= 0 {
		o.FirstSampleDelay = DefaultFirstSampleDelay
	}
	return o
}

// Engine drains a playable one logical frame at a time, gated on clock
// advances, pushing samples through the driver.
type Engine struct {
	clock  Clock
	driver Driver
}

// New creates an engine over the given clock and driver.
func New(clock Clock, driver Driver) *Engine {
	return &Engine{clock: clock, driver: driver}
}

// Play applies every frame of p in order, exactly once each, with at
// least one real target-frame boundary between consecutive samples. On
// every exit path, error or not, the device is driven back to neutral.
func (e *Engine) Play(ctx context.Context, p input.Playable, opts Options) error {
	samples := p.Flatten()
	if len(samples) == 0 {
		return nil
	}
	opts = opts.withDefaults()

	if opts.StartDelay > 0 {
		if err := sleepCtx(ctx, opts.StartDelay); err != nil {
			return err
		}
	}

	// Idle the device whatever happens below.
	defer e.driver.Apply(input.Neutral) //nolint:errcheck

	if opts.NoInitialWait {
		if err := sleepCtx(ctx, opts.FirstSampleDelay); err != nil {
			return err
		}
	} else {
		if err := e.waitAdvance(ctx, e.clock.Read(), opts); err != nil {
			return err
		}
	}

	for i, s := range samples {
		before := e.clock.Read()
		if err := e.driver.Apply(s); err != nil {
			return &DriverError{Frame: i, Err: err}
		}
		if opts.Observer != nil {
			opts.Observer(i, s)
		}
		if err := e.waitAdvance(ctx, before, opts); err != nil {
			return err
		}
	}
	return nil
}

// waitAdvance blocks until the clock strictly exceeds prev, polling
// cooperatively rather than spinning. It fails with a StallError once the
// stall timeout passes with no advance.
func (e *Engine) waitAdvance(ctx context.Context, prev uint64, opts Options) error {
	deadline := time.Now().Add(opts.StallTimeout)
	for !e.clock.HasAdvanced(prev) {
		if time.Now().After(deadline) {
			return &StallError{Timeout: opts.StallTimeout, Counter: prev}
		}
		if err := sleepCtx(ctx, opts.PollInterval); err != nil {
			return err
		}
	}
	return nil
}

// sleepCtx sleeps for d or until the context is cancelled.
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

// DriverError reports the virtual device rejecting or losing a state
// application. The session is aborted, never retried: re-applying input
// risks double-pressing something game-affecting.
type DriverError struct {
	Frame int
	Err   error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("driver rejected sample at frame %d: %v", e.Frame, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }

// StallError reports the target's counter no longer advancing.
type StallError struct {
	Timeout time.Duration
	Counter uint64
}

func (e *StallError) Error() string {
	return fmt.Sprintf("game clock stalled at %d for longer than %s", e.Counter, e.Timeout)
}
