// Package timeout provides a restartable deadline used to bound command
// exchanges with a device.
//
// A Timeout starts running as soon as it is created:
//
//	t := timeout.New(300 * time.Millisecond)
//	for !t.IsExpired() {
//	    // poll
//	}
//
// Time is read through the monotonic clock carried by time.Now, so wall
// clock adjustments never shorten or extend a deadline.
package timeout

import (
	"fmt"
	"time"
)

// Clock returns the current time. It must return values carrying a
// monotonic reading (time.Now does).
type Clock func() time.Time

// Option configures a Timeout
type Option func(*Timeout)

// WithClock replaces the time source, mainly for tests
func WithClock(clock Clock) Option {
	return func(t *Timeout) {
		if clock != nil {
			t.now = clock
		}
	}
}

// Timeout reports whether a fixed duration has elapsed since it was last
// reset. A duration of zero or less is expired on the first check.
type Timeout struct {
	now      Clock
	duration time.Duration
	start    time.Time
	end      time.Time
}

// New creates a Timeout with the given duration and starts it
func New(d time.Duration, opts ...Option) *Timeout {
	t := &Timeout{
		now:      time.Now,
		duration: d,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.Reset()
	return t
}

// Reset restarts the timeout using the current duration
func (t *Timeout) Reset() {
	t.start = t.now()
	t.end = t.start.Add(t.duration)
}

// ResetTo installs d as the new duration and restarts the timeout.
// A zero d keeps the previous duration.
func (t *Timeout) ResetTo(d time.Duration) {
	if d != 0 {
		t.duration = d
	}
	t.Reset()
}

// IsExpired returns true once the current time reaches the deadline
func (t *Timeout) IsExpired() bool {
	return !t.now().Before(t.end)
}

// Duration returns the configured duration
func (t *Timeout) Duration() time.Duration {
	return t.duration
}

// Elapsed returns the time since the last reset
func (t *Timeout) Elapsed() time.Duration {
	return t.now().Sub(t.start)
}

// Remaining returns the time left before expiry, never negative
func (t *Timeout) Remaining() time.Duration {
	remaining := t.end.Sub(t.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Status returns elapsed and remaining time formatted as hours, minutes and
// seconds, e.g. "00hrs 01mins 05secs".
func (t *Timeout) Status() (elapsed, remaining string) {
	now := t.now()
	e := now.Sub(t.start)
	r := t.end.Sub(now)
	if r < 0 {
		r = 0
	}
	return FormatHMS(e), FormatHMS(r)
}

// FormatHMS formats d truncated to whole seconds
func FormatHMS(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	hours := secs / 3600
	mins := (secs % 3600) / 60
	secs %= 60
	return fmt.Sprintf("%02dhrs %02dmins %02dsecs", hours, mins, secs)
}
