// Package tas is the command surface over the engine, recorder and tape:
// run composed input against the game, record live play, and save or
// load tapes. It owns the session lock; the controller belongs to at
// most one playback or recording at a time.
package tas

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/younwookim/dstas/internal/application/engine"
	"github.com/younwookim/dstas/internal/application/recorder"
	"github.com/younwookim/dstas/internal/application/tape"
	"github.com/younwookim/dstas/internal/domain/input"
	"github.com/younwookim/dstas/internal/infrastructure/config"
)

// ErrSessionActive reports a second session while the controller is
// already owned. Concurrent playback and recording on the same device
// would produce undefined device state.
var ErrSessionActive = errors.New("another session is already using the controller")

// Passthrough is implemented by drivers that can hand the device back
// and forth between the player and the engine.
type Passthrough interface {
	SetPassthrough(enabled bool) error
}

// RunOptions controls one playback session.
type RunOptions struct {
	// StartDelay before the first input, with a logged countdown.
	StartDelay time.Duration
	// NoInitialWait applies the first sample without waiting for a
	// clock advance.
	NoInitialWait bool
	// Display logs each non-wait press as it is applied.
	Display bool
}

// RecordOptions controls one recording session. Zero values fall back
// to the configured defaults.
type RecordOptions struct {
	StartDelay    time.Duration
	ArmOnAnyInput bool
}

// TAS binds a clock, driver and live source into the command surface.
type TAS struct {
	clock  engine.Clock
	driver engine.Driver
	source engine.Source
	cfg    config.Config

	mu sync.Mutex
}

// New creates the command surface. source may be nil when recording is
// not needed.
func New(clock engine.Clock, driver engine.Driver, source engine.Source, cfg config.Config) *TAS {
	return &TAS{clock: clock, driver: driver, source: source, cfg: cfg}
}

// Moves returns the movement primitives table under the configured
// dodge threshold.
func (t *TAS) Moves() map[string]input.Move {
	return input.Moves(t.cfg.Primitives.DodgeThresholdFrames)
}

// Merge combines two keyframes under the configured duration-fill rule.
func (t *TAS) Merge(a, b input.Keyframe) (input.Playable, error) {
	return input.Merge(a, b, t.cfg.Primitives.MergeHoldShorter)
}

// Run plays a composed playable against the game.
func (t *TAS) Run(ctx context.Context, p input.Playable, opts RunOptions) error {
	if p.Frames() == 0 {
		log.Print("no sequence defined")
		return nil
	}
	if !t.mu.TryLock() {
		return ErrSessionActive
	}
	defer t.mu.Unlock()

	release, err := t.acquireDevice()
	if err != nil {
		return err
	}
	defer release()

	if err := countdown(ctx, opts.StartDelay); err != nil {
		return err
	}

	eopts := engine.Options{
		NoInitialWait:    opts.NoInitialWait || t.cfg.Engine.NoInitialWait,
		FirstSampleDelay: t.cfg.Engine.FirstSampleDelay(),
		PollInterval:     t.cfg.Engine.PollInterval(),
		StallTimeout:     t.cfg.Engine.StallTimeout(),
	}
	if opts.Display {
		eopts.Observer = func(frame int, s input.State) {
			if !s.IsNeutral() {
				log.Printf("frame %d: %s", frame, s)
			}
		}
	}

	log.Printf("executing sequence (%d frames)", p.Frames())
	if err := engine.New(t.clock, t.driver).Play(ctx, p, eopts); err != nil {
		return err
	}
	log.Print("sequence executed")
	return nil
}

// Playback replays a recorded or loaded sequence; identical to Run but
// named for the load-and-replay path.
func (t *TAS) Playback(ctx context.Context, seq input.Sequence, opts RunOptions) error {
	return t.Run(ctx, seq, opts)
}

// Record captures live play into a sequence. Stop by holding start and
// select together.
func (t *TAS) Record(ctx context.Context, opts RecordOptions) (input.Sequence, error) {
	if t.source == nil {
		return input.Sequence{}, errors.New("no live input source configured")
	}
	if !t.mu.TryLock() {
		return input.Sequence{}, ErrSessionActive
	}
	defer t.mu.Unlock()

	delay := opts.StartDelay
	if delay == 0 {
		delay = t.cfg.Recorder.StartDelay()
	}
	if delay > 0 {
		log.Printf("preparing to record in %s", delay)
	}
	if err := countdown(ctx, delay); err != nil {
		return input.Sequence{}, err
	}

	log.Print("recording armed; waiting for input (start+select to finish)")
	rec := recorder.New(t.clock, t.source)
	seq, err := rec.Record(ctx, recorder.Options{
		ArmOnAnyInput: opts.ArmOnAnyInput || t.cfg.Recorder.ArmOnAnyInput,
		PollInterval:  t.cfg.Engine.PollInterval(),
	})
	if err != nil {
		return input.Sequence{}, err
	}
	log.Printf("recording finished (%d keyframes, %d frames)", seq.Len(), seq.Frames())
	return seq, nil
}

// Save writes a sequence to a tape file.
func (t *TAS) Save(seq input.Sequence, filename string) error {
	return tape.SaveFile(filename, seq)
}

// Load reads a sequence from a tape file.
func (t *TAS) Load(filename string) (input.Sequence, error) {
	return tape.LoadFile(filename)
}

// acquireDevice takes the controller away from the player for the
// session and returns a release that hands it back. Release runs on
// every exit path so an aborted session never leaves the pad dead.
func (t *TAS) acquireDevice() (func(), error) {
	pt, ok := t.driver.(Passthrough)
	if !ok {
		return func() {}, nil
	}
	if err := pt.SetPassthrough(false); err != nil {
		return nil, err
	}
	return func() {
		if err := pt.SetPassthrough(true); err != nil {
			log.Printf("failed to restore controller passthrough: %v", err)
		}
	}, nil
}

// countdown sleeps for delay, logging the last five seconds one by one
// so the operator can get back to the game window.
func countdown(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	const tick = time.Second
	for delay > 0 {
		if delay <= 5*tick {
			log.Printf("%d", int(delay/tick)+1)
		}
		step := tick
		if delay < step {
			step = delay
		}
		timer := time.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay -= step
	}
	return nil
}
