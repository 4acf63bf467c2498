package port

import "time"

// SystemClock reports uptime using the host's monotonic clock,
// anchored at construction time.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) UptimeMillis() uint64 {
	return uint64(time.Since(c.start).Milliseconds())
}

// ManualClock is a Clock a test can advance explicitly, standing in
// for uptime_ms in the original firmware's idle loop.
type ManualClock struct {
	millis uint64
}

func (c *ManualClock) UptimeMillis() uint64 {
	return c.millis
}

// Advance moves the clock forward by the given number of milliseconds.
func (c *ManualClock) Advance(millis uint64) {
	c.millis += millis
}
