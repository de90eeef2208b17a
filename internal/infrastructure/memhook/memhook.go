// Package memhook attaches to the running game process and exposes its
// in-game timer, frame counter and XInput controller block through
// process-memory reads and writes. Only windows builds can attach; other
// platforms get a stub that fails with an AttachError.
package memhook

import "fmt"

// AttachError reports a missing or unreadable target process. It is
// surfaced to the caller and never retried by the core.
type AttachError struct {
	Target string
	Err    error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("cannot attach to %q: %v", e.Target, e.Err)
}

func (e *AttachError) Unwrap() error { return e.Err }
