package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/dstas/internal/application/state"
	"github.com/younwookim/dstas/internal/domain/input"
)

// tickClock advances once per HasAdvanced check.
type tickClock struct {
	mu    sync.Mutex
	value uint64
}

func (c *tickClock) Read() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *tickClock) HasAdvanced(prev uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value++
	return c.value > prev
}

// scriptSource replays a fixed script of samples, holding the last one
// once the script runs out.
type scriptSource struct {
	mu      sync.Mutex
	samples []input.State
	idx     int
	err     error
}

func (s *scriptSource) Sample() (input.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return input.State{}, s.err
	}
	if s.idx >= len(s.samples) {
		return s.samples[len(s.samples)-1], nil
	}
	out := s.samples[s.idx]
	s.idx++
	return out, nil
}

var stop = input.State{Buttons: input.Start | input.Select}

func fastOptions() Options {
	return Options{PollInterval: time.Microsecond}
}

func TestRecord_CoalescesIdenticalSamples(t *testing.T) {
	a := input.State{Buttons: input.A}
	run := input.State{LY: 1}
	src := &scriptSource{samples: []input.State{a, a, a, run, stop}}

	rec := New(&tickClock{}, src)
	seq, err := rec.Record(context.Background(), fastOptions())
	require.NoError(t, err)

	require.Equal(t, 2, seq.Len())
	frames := seq.Keyframes()
	assert.Equal(t, 3, frames[0].Frames())
	assert.Equal(t, input.A, frames[0].State.Buttons)
	assert.Equal(t, 1, frames[1].Frames())
	assert.Equal(t, 1.0, frames[1].State.LY)
	assert.Equal(t, state.StateDone, rec.State())
}

func TestRecord_ButtonArming_IgnoresStickNoise(t *testing.T) {
	drift := input.State{LX: 0.2}
	a := input.State{Buttons: input.A}
	src := &scriptSource{samples: []input.State{{}, drift, drift, a, stop}}

	rec := New(&tickClock{}, src)
	seq, err := rec.Record(context.Background(), fastOptions())
	require.NoError(t, err)

	// The drift samples came before arming and were not captured.
	require.Equal(t, 1, seq.Len())
	assert.Equal(t, input.A, seq.Keyframes()[0].State.Buttons)
}

func TestRecord_ArmOnAnyInput_CapturesStickFirst(t *testing.T) {
	run := input.State{LY: 1}
	src := &scriptSource{samples: []input.State{{}, run, run, stop}}

	opts := fastOptions()
	opts.ArmOnAnyInput = true

	rec := New(&tickClock{}, src)
	seq, err := rec.Record(context.Background(), opts)
	require.NoError(t, err)

	require.Equal(t, 1, seq.Len())
	assert.Equal(t, 2, seq.Keyframes()[0].Frames())
	assert.Equal(t, 1.0, seq.Keyframes()[0].State.LY)
}

func TestRecord_StopComboNotRecorded(t *testing.T) {
	a := input.State{Buttons: input.A}
	src := &scriptSource{samples: []input.State{a, stop}}

	rec := New(&tickClock{}, src)
	seq, err := rec.Record(context.Background(), fastOptions())
	require.NoError(t, err)

	for _, s := range seq.Flatten() {
		assert.False(t, s.Buttons.Has(input.Start|input.Select))
	}
}

func TestRecord_SourceFailureAborts(t *testing.T) {
	src := &scriptSource{err: errors.New("pad unreadable")}

	rec := New(&tickClock{}, src)
	_, err := rec.Record(context.Background(), fastOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample live input")
}

func TestRecord_CancelWhileWaitingToArm(t *testing.T) {
	// Neutral forever: the arming wait has no timeout, only cancellation.
	src := &scriptSource{samples: []input.State{{}}}
	rec := New(&tickClock{}, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := rec.Record(ctx, fastOptions())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, state.StateArmed, rec.State())
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("recording did not stop after cancellation")
	}
}

func TestRecord_StartDelayKeepsIdleState(t *testing.T) {
	a := input.State{Buttons: input.A}
	src := &scriptSource{samples: []input.State{a, stop}}
	rec := New(&tickClock{}, src)

	opts := fastOptions()
	opts.StartDelay = 50 * time.Millisecond

	done := make(chan struct{})
	go func() {
		_, _ = rec.Record(context.Background(), opts)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, state.StateIdle, rec.State())
	<-done
	assert.Equal(t, state.StateDone, rec.State())
}

func TestRecord_ClampsLiveSamples(t *testing.T) {
	hot := input.State{Buttons: input.A, LY: 3.5}
	src := &scriptSource{samples: []input.State{hot, stop}}

	rec := New(&tickClock{}, src)
	seq, err := rec.Record(context.Background(), fastOptions())
	require.NoError(t, err)

	require.Equal(t, 1, seq.Len())
	assert.Equal(t, 1.0, seq.Keyframes()[0].State.LY)
}
