package emitter

import (
	"time"

	"github.com/Nemiari/crowd-hydrodynamics/core"
)

// Sink removes at most one eligible particle per Rate interval, near a
// point or along a line/plane edge (spec §4.5).
type Sink struct {
	Position  core.Vector2
	Direction core.Vector2 // unit vector, only meaningful when Length > 0
	Range     float64      // perpendicular tolerance
	Length    float64      // > 0 selects line/plane mode; 0 selects point mode
	Rate      float64      // particles/second; <= 0 never drains
	LastDrain time.Time

	Plane *PlaneRef // optional back-reference, spec §9
}

// Ready reports whether enough wall-clock time has passed since the
// last successful drain for another attempt to be made.
func (s *Sink) Ready(now time.Time) bool {
	if s.Rate <= 0 {
		return false
	}
	intervalMs := 1000.0 / s.Rate
	return now.Sub(s.LastDrain).Seconds()*1000 >= intervalMs
}

// Eligible reports whether a particle at pos should be removed by this
// sink (spec §4.5).
func (s *Sink) Eligible(pos core.Vector2) bool {
	if s.Length > 0 {
		d := pos.Sub(s.Position)
		parallel := d.Dot(s.Direction)
		perp := d.Sub(s.Direction.Scale(parallel)).Length()
		return perp <= s.Range && abs(parallel) <= s.Length/2
	}
	return pos.Sub(s.Position).Length() <= s.Range
}

// MarkDrained advances LastDrain to now. The engine calls this only
// after actually removing a particle (spec §4.5: "advance
// last_drain_timestamp = now only on successful removal").
func (s *Sink) MarkDrained(now time.Time) {
	s.LastDrain = now
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
