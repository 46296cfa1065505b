package simulation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nemiari/crowd-hydrodynamics/core"
	"github.com/Nemiari/crowd-hydrodynamics/emitter"
	"github.com/Nemiari/crowd-hydrodynamics/kernel"
	"github.com/Nemiari/crowd-hydrodynamics/obstacle"
)

func newTestSim(left, right, bottom, top float64) *Simulation {
	sim := New()
	sim.Scale = 1 // keep screen units == simulation units for test arithmetic
	sim.Init(100, 100, left, right, bottom, top)
	return sim
}

func (sim *Simulation) bindAll() {
	sim.Grid.Reset()
	for i := range sim.Particles {
		_ = sim.Grid.Bind(i, sim.gridSpace(sim.Particles[i].Position))
	}
}

// Scenario 1: single pair density (spec §8).
func TestSinglePairDensity(t *testing.T) {
	sim := newTestSim(0, 10, 0, 10)
	sim.Particles = []core.Particle{
		{Position: core.Vector2{X: 0.5, Y: 0.5}, Mass: 1},
		{Position: core.Vector2{X: 0.7, Y: 0.5}, Mass: 1},
	}
	sim.bindAll()
	sim.computeDensity()

	expected := 1*kernel.Poly6Zero + 1*kernel.Poly6(0.04)
	assert.InDelta(t, expected, sim.Particles[0].Density, 1e-9)
	assert.InDelta(t, expected, sim.Particles[1].Density, 1e-9)
}

// Scenario 2: circle ejection (spec §8).
func TestCircleEjection(t *testing.T) {
	sim := newTestSim(0, 10, 0, 10)
	sim.AddStaticObject(&obstacle.Circle{Center: core.Vector2{X: 5, Y: 5}, Radius: 1})
	sim.Particles = []core.Particle{
		{Position: core.Vector2{X: 5, Y: 5}, Mass: 1, Density: kernel.Poly6Zero},
	}
	sim.bindAll()
	sim.DoPhysics()

	dist := sim.Particles[0].Position.Sub(core.Vector2{X: 5, Y: 5}).Length()
	assert.InDelta(t, 1.01, dist, 0.05)
	assert.InDelta(t, 0, sim.Particles[0].Velocity.Length(), 1e-6)
}

// Scenario 3: deterministic line source (spec §8).
func TestDeterministicLineSource(t *testing.T) {
	sim := newTestSim(0, 20, 0, 20)
	clock := NewManualClock(time.Unix(0, 0))
	sim.SetClock(clock)
	sim.SetSeed(42)
	// Zero gas constant and viscosity: no pressure, viscous or boundary
	// force acts, so each particle keeps its emission-time velocity.
	sim.SetFluidProperties(FluidParameters{ParticleMass: 1, GasConstant: 0, RestDensity: 1, Viscosity: 0})

	sim.AddParticleSource(core.Vector2{X: 1, Y: 5}, core.Vector2{X: 1, Y: 0}, 0, 1000, 2)

	for i := 0; i < 10; i++ {
		clock.Advance(15 * time.Millisecond)
		sim.DoPhysics()
	}

	count := sim.GetParticleCount()
	assert.GreaterOrEqual(t, count, 8)
	assert.LessOrEqual(t, count, 12)

	for i := 0; i < count; i++ {
		vx, vy := sim.GetParticleVelocity(i)
		assert.GreaterOrEqual(t, vx, 1.7)
		assert.LessOrEqual(t, vx, 2.3)
		assert.GreaterOrEqual(t, vy, -0.3)
		assert.LessOrEqual(t, vy, 0.3)
	}
}

// Scenario 4: sink drain cap (spec §8).
func TestSinkDrainCap(t *testing.T) {
	sim := newTestSim(0, 20, 0, 20)
	sim.SetSeed(7)
	sim.AddParticleSink(core.Vector2{X: 10, Y: 10}, 1000, 5)

	n := 500
	sim.Particles = make([]core.Particle, n)
	for i := 0; i < n; i++ {
		angle := float64(i) / float64(n) * 2 * math.Pi
		r := float64(i%10) / 10 * 4.9
		sim.Particles[i] = core.Particle{
			Position: core.Vector2{X: 10 + r*math.Cos(angle), Y: 10 + r*math.Sin(angle)},
			Mass:     1,
			Density:  kernel.Poly6Zero,
		}
	}
	sim.bindAll()

	before := sim.GetParticleCount()
	sim.DoPhysics()
	after := sim.GetParticleCount()
	assert.Equal(t, before-1, after)
}

// Scenario 6 (forced velocity, one-shot).
func TestForcedVelocityOneShot(t *testing.T) {
	sim := newTestSim(0, 10, 0, 10)
	sim.Particles = []core.Particle{
		{Position: core.Vector2{X: 5, Y: 5}, Mass: 1, Density: kernel.Poly6Zero},
	}
	sim.bindAll()

	// (dx, dy) becomes velocity (dx, -dy) per the coordinate-flip contract.
	sim.ForceVelocity(5, sim.Bounds.YMax-5, 2, 3)
	sim.DoPhysics()

	vx, vy := sim.GetParticleVelocity(0)
	assert.InDelta(t, 2.0, vx, 1e-9)
	assert.InDelta(t, -3.0, vy, 1e-9)

	// A second tick with no new ForceVelocity call must not reapply the
	// override: once consumed, it stays disarmed.
	sim.bindAll()
	sim.Particles[0].Velocity = core.Vector2{}
	sim.DoPhysics()
	vx, vy = sim.GetParticleVelocity(0)
	assert.NotEqual(t, 2.0, vx)
}

func TestVelocityClampInvariant(t *testing.T) {
	sim := newTestSim(0, 10, 0, 10)
	sim.Particles = []core.Particle{
		{Position: core.Vector2{X: 5, Y: 5}, Velocity: core.Vector2{X: 1000, Y: 0}, Mass: 1, Density: kernel.Poly6Zero},
	}
	sim.bindAll()
	sim.DoPhysics()
	assert.LessOrEqual(t, sim.Particles[0].Velocity.Length(), core.VMax+1e-9)
}

func TestOutOfRangeQueriesReturnSafeDefaults(t *testing.T) {
	sim := newTestSim(0, 10, 0, 10)
	x, y := sim.GetParticlePosition(5)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, y)
	assert.Equal(t, 0.0, sim.GetParticlePressure(5))
	vx, vy := sim.GetParticleVelocity(5)
	assert.Equal(t, 0.0, vx)
	assert.Equal(t, 0.0, vy)
}

func TestDoPhysicsNoOpBeforeInit(t *testing.T) {
	sim := New()
	sim.DoPhysics() // must not panic
	assert.Equal(t, 0, sim.GetParticleCount())
}

func TestInitIdempotentWhenDimsUnchanged(t *testing.T) {
	sim := newTestSim(0, 10, 0, 10)
	g := sim.Grid
	sim.Init(100, 100, 0, 10, 0, 10)
	assert.Same(t, g, sim.Grid, "grid should not be rebuilt when cell dims are unchanged")
}

func TestResizeInsetsMargin(t *testing.T) {
	sim := New()
	sim.Scale = 1
	sim.Init(100, 100, 0, 10, 0, 10)
	sim.Resize(0, 20, 0, 20)
	assert.InDelta(t, ResizeMargin, sim.Bounds.XMin, 1e-9)
	assert.InDelta(t, 20-ResizeMargin, sim.Bounds.XMax, 1e-9)
}

func TestCleanupKeepsGridDropsRest(t *testing.T) {
	sim := newTestSim(0, 10, 0, 10)
	sim.SetNumParticles(5)
	sim.AddParticleSource(core.Vector2{}, core.Vector2{X: 1}, 0, 10, 1)
	sim.AddParticleSink(core.Vector2{}, 10, 1)
	grid := sim.Grid

	sim.Cleanup()
	assert.Equal(t, 0, sim.GetParticleCount())
	assert.Empty(t, sim.Sources)
	assert.Empty(t, sim.Sinks)
	assert.Same(t, grid, sim.Grid)
}

func TestClearParticlesOnlyKeepsSourcesAndSinks(t *testing.T) {
	sim := newTestSim(0, 10, 0, 10)
	sim.SetNumParticles(5)
	sim.AddParticleSource(core.Vector2{}, core.Vector2{X: 1}, 0, 10, 1)

	sim.ClearParticlesOnly()
	assert.Equal(t, 0, sim.GetParticleCount())
	assert.Len(t, sim.Sources, 1)
}

func TestSetNumParticlesReallocates(t *testing.T) {
	sim := newTestSim(0, 10, 0, 10)
	sim.SetNumParticles(20)
	assert.Len(t, sim.Particles, 20)
	sim.SetNumParticles(20) // no-op
	assert.Len(t, sim.Particles, 20)
	sim.SetNumParticles(3)
	assert.Len(t, sim.Particles, 3)
}

func TestSetFluidPropertiesUpdatesConstants(t *testing.T) {
	sim := newTestSim(0, 10, 0, 10)
	p := FluidParameters{ParticleMass: 2, GasConstant: 500, RestDensity: 1.2, Viscosity: 0.1}
	sim.SetFluidProperties(p)
	assert.Equal(t, p, sim.Params)
}

func TestRemoveStaticObjectDropsAttachedSourceAndReindexes(t *testing.T) {
	sim := newTestSim(0, 10, 0, 10)
	rectA := &obstacle.Rectangle{MinCorner: core.Vector2{X: 0, Y: 0}, Size: core.Vector2{X: 2, Y: 2}}
	rectB := &obstacle.Rectangle{MinCorner: core.Vector2{X: 4, Y: 4}, Size: core.Vector2{X: 2, Y: 2}}
	idxA := sim.AddStaticObject(rectA)
	idxB := sim.AddStaticObject(rectB)
	require.Equal(t, 0, idxA)
	require.Equal(t, 1, idxB)

	srcOnA, ok := sim.AddParticleSourceFromPlane(idxA, emitter.Top, 10, 1)
	require.True(t, ok)
	srcOnB, ok := sim.AddParticleSourceFromPlane(idxB, emitter.Top, 10, 1)
	require.True(t, ok)

	removed := sim.RemoveStaticObject(rectA)
	assert.True(t, removed)
	assert.NotContains(t, sim.Sources, srcOnA)
	assert.Contains(t, sim.Sources, srcOnB)
	assert.Equal(t, 0, srcOnB.Plane.ObstacleIndex, "index shifts down after the earlier obstacle was removed")
}

func TestAddParticleSourceFromPlaneDropsForNonRectangle(t *testing.T) {
	sim := newTestSim(0, 10, 0, 10)
	circ := &obstacle.Circle{Center: core.Vector2{X: 5, Y: 5}, Radius: 1}
	idx := sim.AddStaticObject(circ)
	_, ok := sim.AddParticleSourceFromPlane(idx, emitter.Top, 10, 1)
	assert.False(t, ok)
}

func TestEmitWithZeroRateProducesNothing(t *testing.T) {
	sim := newTestSim(0, 20, 0, 20)
	clock := NewManualClock(time.Unix(0, 0))
	sim.SetClock(clock)
	sim.AddParticleSource(core.Vector2{X: 1, Y: 5}, core.Vector2{X: 1, Y: 0}, 0, 0, 2)
	for i := 0; i < 10; i++ {
		clock.Advance(15 * time.Millisecond)
		sim.DoPhysics()
	}
	assert.Equal(t, 0, sim.GetParticleCount())
}

func TestObstacleNonPenetrationTolerance(t *testing.T) {
	sim := newTestSim(0, 10, 0, 10)
	sim.AddStaticObject(&obstacle.Circle{Center: core.Vector2{X: 5, Y: 5}, Radius: 2})
	sim.Particles = []core.Particle{
		{Position: core.Vector2{X: 4.5, Y: 5}, Mass: 1, Density: kernel.Poly6Zero},
	}
	sim.bindAll()
	for i := 0; i < 5; i++ {
		sim.DoPhysics()
		sim.bindAll()
	}
	d := sim.Obstacles[0].DistanceTo(sim.Particles[0].Position)
	assert.GreaterOrEqual(t, d, -1e-6)
}

func TestDomainClampOnOutOfBoundsParticle(t *testing.T) {
	sim := newTestSim(0, 10, 0, 10)
	sim.Particles = []core.Particle{
		{Position: core.Vector2{X: 11, Y: 5}, Mass: 1, Density: kernel.Poly6Zero},
	}
	sim.bindAll()
	sim.DoPhysics()
	assert.InDelta(t, 10-BoundaryMargin, sim.Particles[0].Position.X, 1e-9)
}

// A domain whose origin is not (0, 0) — e.g. after Resize insets a
// margin, or a caller passes a non-zero left/bottom to Init (spec §6
// permits both) — must still bind particles into the grid correctly.
// Regression test: binding used to pass absolute domain coordinates
// straight into the origin-anchored grid, silently losing every
// particle whose position exceeded the grid's raw width/height.
func TestBindingWorksWithNonOriginDomain(t *testing.T) {
	sim := newTestSim(100, 110, 100, 110)
	sim.Particles = []core.Particle{
		{Position: core.Vector2{X: 100.5, Y: 100.5}, Mass: 1},
		{Position: core.Vector2{X: 100.7, Y: 100.5}, Mass: 1},
	}
	sim.bindAll()
	assert.Equal(t, 2, sim.Grid.Count(), "both particles must land in the grid despite the nonzero domain origin")

	sim.computeDensity()
	expected := 1*kernel.Poly6Zero + 1*kernel.Poly6(0.04)
	assert.InDelta(t, expected, sim.Particles[0].Density, 1e-9)
	assert.InDelta(t, expected, sim.Particles[1].Density, 1e-9)
}

// ForceVelocity must resolve the target cell in the same grid-local
// space binding uses, even when the domain origin is nonzero. The
// particle sits more than H from every wall, so boundary repulsion
// leaves the forced velocity as set.
func TestForceVelocityWorksWithNonOriginDomain(t *testing.T) {
	sim := newTestSim(100, 110, 100, 110)
	sim.Particles = []core.Particle{
		{Position: core.Vector2{X: 105, Y: 105}, Mass: 1, Density: kernel.Poly6Zero},
	}
	sim.bindAll()

	sim.ForceVelocity(105, sim.Bounds.YMax-105, 2, 3)
	sim.DoPhysics()

	vx, vy := sim.GetParticleVelocity(0)
	assert.InDelta(t, 2.0, vx, 1e-9)
	assert.InDelta(t, -3.0, vy, 1e-9)
}
