//go:build !windows

package memhook

import (
	"errors"

	"github.com/younwookim/dstas/internal/domain/input"
)

var errUnsupported = errors.New("process memory hooks require windows")

// Hook is a stub on non-windows platforms; Attach always fails.
type Hook struct{}

// Attach fails: the target only runs on windows.
func Attach(windowTitle string) (*Hook, error) {
	return nil, &AttachError{Target: windowTitle, Err: errUnsupported}
}

// Close releases nothing.
func (h *Hook) Close() error { return nil }

// IGT is unavailable on this platform.
func (h *Hook) IGT() (uint64, error) { return 0, errUnsupported }

// FrameCount is unavailable on this platform.
func (h *Hook) FrameCount() (uint64, error) { return 0, errUnsupported }

// Clock returns a clock whose reads always fail over to the last value.
func (h *Hook) Clock() *Clock { return NewClock(h.IGT) }

// Sample is unavailable on this platform.
func (h *Hook) Sample() (input.State, error) { return input.State{}, errUnsupported }

// Apply is unavailable on this platform.
func (h *Hook) Apply(input.State) error { return errUnsupported }

// SetPassthrough is unavailable on this platform.
func (h *Hook) SetPassthrough(bool) error { return errUnsupported }
