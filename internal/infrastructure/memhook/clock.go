package memhook

import "sync"

// CounterFunc reads a monotonically non-decreasing counter from the
// target process.
type CounterFunc func() (uint64, error)

// Clock adapts a memory counter to the engine's clock contract: Read
// never blocks and falls back to the last good value on a transient read
// failure, so the gate treats a hiccup the same as "no advance yet".
type Clock struct {
	read CounterFunc

	mu   sync.Mutex
	last uint64
}

// NewClock creates a clock over the given counter read.
func NewClock(read CounterFunc) *Clock {
	return &Clock{read: read}
}

// Read returns the latest observed counter value.
func (c *Clock) Read() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, err := c.read()
	if err != nil {
		return c.last
	}
	c.last = v
	return v
}

// HasAdvanced reports whether the counter has strictly passed prev.
func (c *Clock) HasAdvanced(prev uint64) bool {
	return c.Read() > prev
}
