package emitter

import (
	"math"
	"math/rand"
	"time"

	"github.com/Nemiari/crowd-hydrodynamics/core"
)

// Shape is the closed set of source geometries: a point spawn disc or a
// line segment (spec §3).
type Shape interface {
	isShape()
}

// PointShape spawns within a disc of SpawnRadius around the source
// position.
type PointShape struct {
	SpawnRadius float64
}

func (PointShape) isShape() {}

// LineShape spawns along a segment of Length centered on the source
// position, oriented by Direction (must be a unit vector).
type LineShape struct {
	Direction core.Vector2
	Length    float64
}

func (LineShape) isShape() {}

// Source emits particles at Rate particles/second along a Point or
// Line shape (spec §4.4). A Source attached to a plane (Plane != nil)
// has its Position/Shape recomputed every tick by the engine from the
// referenced obstacle, since the relation is a lookup, not ownership.
type Source struct {
	Position          core.Vector2
	Shape             Shape
	VelocityMagnitude float64
	Rate              float64 // particles/second; <= 0 never emits
	LastEmit          time.Time

	Plane *PlaneRef // optional back-reference, spec §9
}

// ready reports whether enough wall-clock time has passed since the
// last emission attempt for another attempt to be made.
func (s *Source) ready(now time.Time) bool {
	if s.Rate <= 0 {
		return false
	}
	intervalMs := 1000.0 / s.Rate
	return now.Sub(s.LastEmit).Seconds()*1000 >= intervalMs
}

// TryEmit attempts to sample a new particle. It only samples when both
// the timing interval has elapsed and countBelowMax holds; when it does
// sample, LastEmit always advances to now regardless of whether the
// sampled position turns out to lie inside the domain (spec §4.4, §9
// open question 4 — emission is counted in attempts, not successes).
// The caller (the engine) is responsible for checking domain bounds and
// appending the particle.
func (s *Source) TryEmit(now time.Time, countBelowMax bool, rng *rand.Rand) (pos, vel core.Vector2, attempted bool) {
	if !s.ready(now) || !countBelowMax {
		return core.Vector2{}, core.Vector2{}, false
	}
	s.LastEmit = now
	pos, vel = s.sample(rng)
	return pos, vel, true
}

func (s *Source) sample(rng *rand.Rand) (pos, vel core.Vector2) {
	switch shape := s.Shape.(type) {
	case LineShape:
		u := (rng.Float64()*2 - 1) * shape.Length / 2
		jitter := (rng.Float64()*2 - 1) * 0.05
		perp := shape.Direction.Perp()
		pos = s.Position.Add(perp.Scale(u)).Add(shape.Direction.Scale(jitter))
		nx := (rng.Float64()*2 - 1) * 0.15
		ny := (rng.Float64()*2 - 1) * 0.15
		base := shape.Direction.Scale(s.VelocityMagnitude)
		vel = core.Vector2{X: base.X * (1 + nx), Y: base.Y * (1 + ny)}
		return pos, vel
	case PointShape:
		theta := rng.Float64() * 2 * math.Pi
		r := rng.Float64() * shape.SpawnRadius
		dir := core.Vector2{X: math.Cos(theta), Y: math.Sin(theta)}
		pos = s.Position.Add(dir.Scale(r))
		vel = dir.Scale(0.5)
		return pos, vel
	default:
		return s.Position, core.Vector2{}
	}
}
