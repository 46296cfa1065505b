// Package simulation implements the orchestration engine: it owns all
// particle/obstacle/source/sink state and exposes the lifecycle and
// query API described in spec §6.
package simulation

import (
	"math/rand"

	"github.com/Nemiari/crowd-hydrodynamics/core"
	"github.com/Nemiari/crowd-hydrodynamics/emitter"
	"github.com/Nemiari/crowd-hydrodynamics/grid"
	"github.com/Nemiari/crowd-hydrodynamics/kernel"
	"github.com/Nemiari/crowd-hydrodynamics/obstacle"
)

// Bounds is the simulation domain, in simulation units.
type Bounds struct {
	XMin, XMax, YMin, YMax float64
}

func (b Bounds) Width() float64  { return b.XMax - b.XMin }
func (b Bounds) Height() float64 { return b.YMax - b.YMin }

func (b Bounds) Contains(p core.Vector2) bool {
	return p.X >= b.XMin && p.X <= b.XMax && p.Y >= b.YMin && p.Y <= b.YMax
}

type forcedVelocityState struct {
	cellIndex  int
	vx, vy     float64
	armed      bool
}

// Simulation is the engine: a single self-contained value whose
// lifetime spans one session. All methods take a pointer receiver;
// independent Simulation values never share state (spec §9 design
// notes).
type Simulation struct {
	Bounds   Bounds
	Scale    float64 // S
	Width    int     // canvas width in screen units, informational
	Height   int     // canvas height in screen units, informational
	Params   FluidParameters
	Friction float64

	Particles []core.Particle
	Obstacles []obstacle.StaticObstacle
	Sources   []*emitter.Source
	Sinks     []*emitter.Sink

	Grid   *grid.Grid
	nx, ny int

	forced forcedVelocityState

	clock Clock
	rng   *rand.Rand
	debug bool

	initialized bool
}

// New constructs an idle Simulation. Call Init before DoPhysics.
func New() *Simulation {
	return &Simulation{
		Scale:    DefaultScale,
		Params:   DefaultFluidParameters(),
		Friction: DefaultFriction,
		clock:    RealClock{},
		rng:      rand.New(rand.NewSource(1)),
	}
}

// SetClock injects a Clock, for deterministic tests (spec §5, §9).
func (sim *Simulation) SetClock(c Clock) { sim.clock = c }

// SetSeed reseeds the engine's pseudo-random sequence, for reproducible
// tests (spec §5: "implementations should expose a seed... to make
// tests reproducible").
func (sim *Simulation) SetSeed(seed int64) { sim.rng = rand.New(rand.NewSource(seed)) }

// SetDebug toggles whether grid cell overflow surfaces as an error
// (spec §4.2: "Implementations may alternatively treat overflow as an
// error when a debug mode is enabled"). Only affects grids built after
// the call.
func (sim *Simulation) SetDebug(debug bool) { sim.debug = debug }

// gridSpace translates a position from domain coordinates (origin at
// Bounds.XMin/YMin, which need not be zero — spec §6's init/resize
// both allow a non-zero left/bottom) into the grid's own [0,W)x[0,H)
// coordinate space.
func (sim *Simulation) gridSpace(pos core.Vector2) core.Vector2 {
	return core.Vector2{X: pos.X - sim.Bounds.XMin, Y: pos.Y - sim.Bounds.YMin}
}

func (sim *Simulation) gridDims() (int, int) {
	nx := int(sim.Bounds.Width() / kernel.H)
	if nx < 1 {
		nx = 1
	}
	ny := int(sim.Bounds.Height() / kernel.H)
	if ny < 1 {
		ny = 1
	}
	return nx, ny
}

func (sim *Simulation) setBounds(left, right, bottom, top, margin float64) {
	sim.Bounds = Bounds{
		XMin: (left + margin) / sim.Scale,
		XMax: (right - margin) / sim.Scale,
		YMin: (bottom + margin) / sim.Scale,
		YMax: (top - margin) / sim.Scale,
	}
}

func (sim *Simulation) rebuildGridIfNeeded() {
	nx, ny := sim.gridDims()
	if sim.Grid != nil && nx == sim.nx && ny == sim.ny {
		// Dimensions (cell count) unchanged: spec §6 says Init/Resize are
		// idempotent in that case and only the world extent is updated.
		sim.Grid.W = sim.Bounds.Width()
		sim.Grid.H = sim.Bounds.Height()
		return
	}
	sim.nx, sim.ny = nx, ny
	sim.Grid = grid.New(nx, ny, sim.Bounds.Width(), sim.Bounds.Height(), sim.debug)
}

// Init establishes the domain and (re)builds the grid if its cell
// dimensions changed (spec §6). width/height are the host's canvas size
// in screen units, kept for the render-side adapter's convenience; they
// do not otherwise affect the physics.
func (sim *Simulation) Init(width, height int, left, right, bottom, top float64) {
	sim.Width, sim.Height = width, height
	sim.setBounds(left, right, bottom, top, 0)
	sim.rebuildGridIfNeeded()
	sim.initialized = true
}

// Resize updates the domain bounds with a small interior margin (spec
// §6) and rebuilds the grid only if its cell dimensions changed.
func (sim *Simulation) Resize(left, right, bottom, top float64) {
	sim.setBounds(left, right, bottom, top, ResizeMargin)
	sim.rebuildGridIfNeeded()
}

// Cleanup discards particles, sources and sinks and disarms forced
// velocity. The grid structure is retained; obstacles are retained too
// (spec §5: "cleanup() discards particles, sources, sinks, and resets
// the forced-velocity flag... the grid... is retained").
func (sim *Simulation) Cleanup() {
	sim.Particles = sim.Particles[:0]
	sim.Sources = nil
	sim.Sinks = nil
	sim.forced = forcedVelocityState{}
	if sim.Grid != nil {
		sim.Grid.Reset()
	}
}

// ClearParticlesOnly drops particles but keeps sources/sinks/obstacles
// (spec §6).
func (sim *Simulation) ClearParticlesOnly() {
	sim.Particles = sim.Particles[:0]
}

// SetNumParticles reallocates the particle slice to exactly n randomly
// placed particles; a no-op when already n (spec §6).
func (sim *Simulation) SetNumParticles(n int) {
	if n == len(sim.Particles) {
		return
	}
	particles := make([]core.Particle, n)
	initialDensity := sim.Params.ParticleMass * kernel.Poly6Zero
	for i := range particles {
		particles[i] = core.Particle{
			Position: core.Vector2{
				X: sim.Bounds.XMin + sim.rng.Float64()*sim.Bounds.Width(),
				Y: sim.Bounds.YMin + sim.rng.Float64()*sim.Bounds.Height(),
			},
			Mass:    sim.Params.ParticleMass,
			Density: initialDensity,
		}
	}
	sim.Particles = particles
}

// SetFluidProperties updates the fluid's physical constants (spec §6).
func (sim *Simulation) SetFluidProperties(p FluidParameters) {
	sim.Params = p
}

// GetParticleCount returns the number of live particles.
func (sim *Simulation) GetParticleCount() int {
	return len(sim.Particles)
}

// screenY converts a simulation-unit Y coordinate to screen units,
// inverting the flip ForceVelocity applies going the other way (spec
// §4.11, §6).
func (sim *Simulation) screenY(simY float64) float64 {
	return (sim.Bounds.YMax - simY) * sim.Scale
}

// GetParticlePosition returns particle i's position in screen units, or
// (0, 0) if i is out of range (spec §7).
func (sim *Simulation) GetParticlePosition(i int) (x, y float64) {
	if i < 0 || i >= len(sim.Particles) {
		return 0, 0
	}
	p := sim.Particles[i].Position
	return p.X * sim.Scale, sim.screenY(p.Y)
}

// GetParticlePressure returns particle i's pressure in simulation
// units, or 0 if i is out of range.
func (sim *Simulation) GetParticlePressure(i int) float64 {
	if i < 0 || i >= len(sim.Particles) {
		return 0
	}
	return sim.Particles[i].Pressure
}

// GetParticleVelocity returns particle i's velocity in simulation
// units, or (0, 0) if i is out of range.
func (sim *Simulation) GetParticleVelocity(i int) (vx, vy float64) {
	if i < 0 || i >= len(sim.Particles) {
		return 0, 0
	}
	v := sim.Particles[i].Velocity
	return v.X, v.Y
}

// ForceVelocity schedules a one-shot velocity override for every
// particle in the grid cell covering screen point (x, y) (spec §4.11,
// §6). A no-op if the engine isn't initialized or the point falls
// outside the domain.
func (sim *Simulation) ForceVelocity(x, y, dx, dy float64) {
	if !sim.initialized {
		return
	}
	simX := x / sim.Scale
	simY := sim.Bounds.YMax - y/sim.Scale
	gp := sim.gridSpace(core.Vector2{X: simX, Y: simY})
	idx, ok := sim.Grid.CellIndexAt(gp.X, gp.Y)
	if !ok {
		return
	}
	sim.forced = forcedVelocityState{cellIndex: idx, vx: dx, vy: -dy, armed: true}
}

// AddStaticObject appends an obstacle and returns its index, the handle
// sources/sinks use to attach to it (spec §6, §9).
func (sim *Simulation) AddStaticObject(o obstacle.StaticObstacle) int {
	sim.Obstacles = append(sim.Obstacles, o)
	return len(sim.Obstacles) - 1
}

// RemoveStaticObject removes o if present, reports whether it was
// found, and drops (or reindexes) any source/sink attached to it or to
// an obstacle that shifted index as a result (spec §6, §9).
func (sim *Simulation) RemoveStaticObject(o obstacle.StaticObstacle) bool {
	idx := -1
	for i, existing := range sim.Obstacles {
		if existing == o {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	sim.Obstacles = append(sim.Obstacles[:idx], sim.Obstacles[idx+1:]...)
	sim.reindexAfterRemoval(idx)
	return true
}

func (sim *Simulation) reindexAfterRemoval(removedIdx int) {
	keepSources := sim.Sources[:0]
	for _, s := range sim.Sources {
		if s.Plane == nil || s.Plane.ObstacleIndex == emitter.DomainPlane {
			keepSources = append(keepSources, s)
			continue
		}
		switch {
		case s.Plane.ObstacleIndex == removedIdx:
			continue // drop: its obstacle is gone
		case s.Plane.ObstacleIndex > removedIdx:
			s.Plane.ObstacleIndex--
		}
		keepSources = append(keepSources, s)
	}
	sim.Sources = keepSources

	keepSinks := sim.Sinks[:0]
	for _, s := range sim.Sinks {
		if s.Plane == nil || s.Plane.ObstacleIndex == emitter.DomainPlane {
			keepSinks = append(keepSinks, s)
			continue
		}
		switch {
		case s.Plane.ObstacleIndex == removedIdx:
			continue
		case s.Plane.ObstacleIndex > removedIdx:
			s.Plane.ObstacleIndex--
		}
		keepSinks = append(keepSinks, s)
	}
	sim.Sinks = keepSinks
}

// ClearStaticObjects removes every obstacle and drops any source/sink
// attached to one (domain-attached ones survive, since the domain
// boundary itself was never an obstacle).
func (sim *Simulation) ClearStaticObjects() {
	sim.Obstacles = nil
	keepSources := sim.Sources[:0]
	for _, s := range sim.Sources {
		if s.Plane == nil || s.Plane.ObstacleIndex == emitter.DomainPlane {
			keepSources = append(keepSources, s)
		}
	}
	sim.Sources = keepSources

	keepSinks := sim.Sinks[:0]
	for _, s := range sim.Sinks {
		if s.Plane == nil || s.Plane.ObstacleIndex == emitter.DomainPlane {
			keepSinks = append(keepSinks, s)
		}
	}
	sim.Sinks = keepSinks
}

// GetStaticColliders returns the current obstacle set.
func (sim *Simulation) GetStaticColliders() []obstacle.StaticObstacle {
	return sim.Obstacles
}

// GetParticleSources returns the current source set.
func (sim *Simulation) GetParticleSources() []*emitter.Source {
	return sim.Sources
}

// GetParticleSinks returns the current sink set.
func (sim *Simulation) GetParticleSinks() []*emitter.Sink {
	return sim.Sinks
}

// resolvePlane derives (position, outward direction, side length) for a
// PlaneRef, using either the domain boundary or an obstacle Rectangle.
// ok is false when the reference no longer resolves to a rectangle
// (e.g. it names a Circle, or an out-of-range index) — the caller must
// drop the attached source/sink in that case (spec §7).
func (sim *Simulation) resolvePlane(ref emitter.PlaneRef) (pos, dir core.Vector2, length float64, ok bool) {
	var minC, maxC core.Vector2
	if ref.ObstacleIndex == emitter.DomainPlane {
		minC = core.Vector2{X: sim.Bounds.XMin, Y: sim.Bounds.YMin}
		maxC = core.Vector2{X: sim.Bounds.XMax, Y: sim.Bounds.YMax}
	} else {
		if ref.ObstacleIndex < 0 || ref.ObstacleIndex >= len(sim.Obstacles) {
			return core.Vector2{}, core.Vector2{}, 0, false
		}
		rect, isRect := sim.Obstacles[ref.ObstacleIndex].(*obstacle.Rectangle)
		if !isRect {
			return core.Vector2{}, core.Vector2{}, 0, false
		}
		minC = rect.MinCorner
		maxC = rect.MaxCorner()
	}

	midX := (minC.X + maxC.X) / 2
	midY := (minC.Y + maxC.Y) / 2
	switch ref.Side {
	case emitter.Top:
		return core.Vector2{X: midX, Y: maxC.Y}, core.Vector2{X: 0, Y: 1}, maxC.X - minC.X, true
	case emitter.Bottom:
		return core.Vector2{X: midX, Y: minC.Y}, core.Vector2{X: 0, Y: -1}, maxC.X - minC.X, true
	case emitter.Left:
		return core.Vector2{X: minC.X, Y: midY}, core.Vector2{X: -1, Y: 0}, maxC.Y - minC.Y, true
	case emitter.Right:
		return core.Vector2{X: maxC.X, Y: midY}, core.Vector2{X: 1, Y: 0}, maxC.Y - minC.Y, true
	default:
		return core.Vector2{}, core.Vector2{}, 0, false
	}
}

