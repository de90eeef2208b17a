package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/dstas/internal/domain/input"
)

// fakeClock advances its counter once per HasAdvanced check while
// running, imitating a game that renders one frame per poll.
type fakeClock struct {
	mu      sync.Mutex
	value   uint64
	frozen  bool
	queries int
}

func (c *fakeClock) Read() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *fakeClock) HasAdvanced(prev uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries++
	if !c.frozen {
		c.value++
	}
	return c.value > prev
}

func (c *fakeClock) freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
}

// fakeDriver records every applied sample.
type fakeDriver struct {
	mu      sync.Mutex
	applied []input.State
	calls   int
	failAt  int // fail on the nth Apply (1-based), 0 = never
	err     error
}

func (d *fakeDriver) Apply(s input.State) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.failAt > 0 && d.calls == d.failAt {
		return d.err
	}
	d.applied = append(d.applied, s)
	return nil
}

func (d *fakeDriver) states() []input.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]input.State(nil), d.applied...)
}

func fastOptions() Options {
	return Options{
		PollInterval: time.Microsecond,
		StallTimeout: time.Second,
	}
}

func TestPlay_AppliesEverySampleInOrderExactlyOnce(t *testing.T) {
	clock := &fakeClock{}
	driver := &fakeDriver{}
	eng := New(clock, driver)

	seq := input.Chain(input.PressSelect, input.PressRight, input.PressA)
	err := eng.Play(context.Background(), seq, fastOptions())
	require.NoError(t, err)

	states := driver.states()
	// Three samples plus the trailing neutral reset.
	require.Len(t, states, 4)
	assert.Equal(t, input.Select, states[0].Buttons)
	assert.Equal(t, input.DpadRight, states[1].Buttons)
	assert.Equal(t, input.A, states[2].Buttons)
	assert.Equal(t, input.Neutral, states[3])
}

func TestPlay_OneClockAdvancePerSample(t *testing.T) {
	clock := &fakeClock{}
	driver := &fakeDriver{}
	eng := New(clock, driver)

	const n = 10
	held, err := input.Repeat(input.PressA, n)
	require.NoError(t, err)

	err = eng.Play(context.Background(), held, fastOptions())
	require.NoError(t, err)

	// One gate check per sample plus the initial gate; the fake clock
	// advances exactly once per check.
	assert.Equal(t, n+1, clock.queries)
	assert.Equal(t, uint64(n+1), clock.Read())
}

func TestPlay_NoInitialWaitSkipsFirstGate(t *testing.T) {
	clock := &fakeClock{}
	driver := &fakeDriver{}
	eng := New(clock, driver)

	opts := fastOptions()
	opts.NoInitialWait = true
	opts.FirstSampleDelay = time.Microsecond

	err := eng.Play(context.Background(), input.PressA, opts)
	require.NoError(t, err)

	// Only the per-sample gate ran.
	assert.Equal(t, 1, clock.queries)
}

func TestPlay_EmptySequenceTouchesNothing(t *testing.T) {
	clock := &fakeClock{}
	driver := &fakeDriver{}
	eng := New(clock, driver)

	err := eng.Play(context.Background(), input.Sequence{}, fastOptions())
	require.NoError(t, err)
	assert.Empty(t, driver.states())
	assert.Zero(t, clock.queries)
}

func TestPlay_StallAbortsAfterTimeoutNotBefore(t *testing.T) {
	clock := &fakeClock{}
	clock.freeze()
	driver := &fakeDriver{}
	eng := New(clock, driver)

	opts := Options{
		PollInterval:  time.Millisecond,
		StallTimeout:  50 * time.Millisecond,
		NoInitialWait: true,
	}

	start := time.Now()
	err := eng.Play(context.Background(), input.PressA, opts)
	elapsed := time.Since(start)

	var stall *StallError
	require.True(t, errors.As(err, &stall))
	assert.Equal(t, opts.StallTimeout, stall.Timeout)
	assert.GreaterOrEqual(t, elapsed, opts.StallTimeout)

	// The sample went out before the stall; the device was then idled.
	states := driver.states()
	require.Len(t, states, 2)
	assert.Equal(t, input.Neutral, states[1])
}

func TestPlay_DriverFailureAborts(t *testing.T) {
	clock := &fakeClock{}
	driver := &fakeDriver{failAt: 2, err: errors.New("device detached")}
	eng := New(clock, driver)

	seq := input.Chain(input.PressA, input.PressB, input.PressX)
	err := eng.Play(context.Background(), seq, fastOptions())

	var drvErr *DriverError
	require.True(t, errors.As(err, &drvErr))
	assert.Equal(t, 1, drvErr.Frame)

	// First sample applied, then the neutral reset; nothing after the
	// failing frame.
	states := driver.states()
	require.Len(t, states, 2)
	assert.Equal(t, input.A, states[0].Buttons)
	assert.Equal(t, input.Neutral, states[1])
}

func TestPlay_CancelStopsPromptlyAndIdlesDevice(t *testing.T) {
	clock := &fakeClock{}
	clock.freeze()
	driver := &fakeDriver{}
	eng := New(clock, driver)

	ctx, cancel := context.WithCancel(context.Background())
	opts := Options{
		PollInterval:  time.Millisecond,
		StallTimeout:  10 * time.Second,
		NoInitialWait: true,
	}

	done := make(chan error, 1)
	go func() {
		held, _ := input.Repeat(input.PressA, 100)
		done <- eng.Play(ctx, held, opts)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("playback did not stop after cancellation")
	}

	states := driver.states()
	require.NotEmpty(t, states)
	assert.Equal(t, input.Neutral, states[len(states)-1])
}

func TestPlay_ObserverSeesEachFrame(t *testing.T) {
	clock := &fakeClock{}
	driver := &fakeDriver{}
	eng := New(clock, driver)

	var seen []int
	opts := fastOptions()
	opts.Observer = func(frame int, _ input.State) {
		seen = append(seen, frame)
	}

	seq := input.Chain(input.PressA, input.PressB)
	require.NoError(t, eng.Play(context.Background(), seq, opts))
	assert.Equal(t, []int{0, 1}, seen)
}
