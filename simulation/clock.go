package simulation

import "time"

// Clock abstracts wall-clock time so source/sink emission cadence can be
// driven deterministically in tests (spec §5, §9 design notes: "Expose
// an injectable clock in the reimplementation so tests can advance time
// deterministically").
type Clock interface {
	Now() time.Time
}

// RealClock reports actual wall-clock time, the default a host uses
// outside of tests.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// ManualClock is a Clock a test advances explicitly, standing in for
// the source's wall-clock "now" (spec §9).
type ManualClock struct {
	t time.Time
}

// NewManualClock returns a ManualClock starting at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{t: t}
}

func (c *ManualClock) Now() time.Time { return c.t }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
