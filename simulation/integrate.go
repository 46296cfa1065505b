package simulation

import (
	"github.com/Nemiari/crowd-hydrodynamics/core"
	"github.com/Nemiari/crowd-hydrodynamics/kernel"
	"github.com/Nemiari/crowd-hydrodynamics/obstacle"
)

// integrateAndCollide advances every particle by dt, then resolves
// obstacle and domain-boundary collisions in that order, and finally
// resets the per-tick accumulators (spec §4.6).
func (sim *Simulation) integrateAndCollide(dt float64) {
	m := sim.Params.ParticleMass
	for i := range sim.Particles {
		p := &sim.Particles[i]

		accel := p.Force.Scale(1 / p.Density)
		p.Velocity = p.Velocity.Add(accel.Scale(dt))
		p.ClampVelocity()
		p.Position = p.Position.Add(p.Velocity.Scale(dt))

		sim.resolveObstacleCollision(p)
		sim.resolveBoundary(p, dt)

		p.Force = core.Vector2{}
		p.Density = m * kernel.Poly6Zero
	}
}

// resolveObstacleCollision projects a penetrating particle back onto an
// obstacle's surface and damps its tangential velocity by friction
// (spec §4.7).
func (sim *Simulation) resolveObstacleCollision(p *core.Particle) {
	for _, o := range sim.Obstacles {
		d := obstacle.DistanceToAny(o, p.Position)
		if d >= 0 {
			continue
		}
		n := obstacle.Normal(o, p.Position)
		p.Position = p.Position.Add(n.Scale(-d + ObstacleMargin))

		vn := p.Velocity.Dot(n)
		if vn < 0 {
			tangent := p.Velocity.Sub(n.Scale(vn))
			p.Velocity = tangent.Scale(sim.Friction)
		}
	}
}

type boundarySide struct {
	// distance returns the positive-inside distance from pos to this side.
	distance func(pos core.Vector2) float64
	inward   core.Vector2
	// reflect negates the offending velocity component in place.
	reflect func(v *core.Vector2)
	// clamp pulls pos back to the margin-inset boundary in place.
	clamp func(pos *core.Vector2, margin float64)
}

func (sim *Simulation) boundarySides() [4]boundarySide {
	b := sim.Bounds
	return [4]boundarySide{
		{ // left
			distance: func(pos core.Vector2) float64 { return pos.X - b.XMin },
			inward:   core.Vector2{X: 1, Y: 0},
			reflect:  func(v *core.Vector2) { v.X = -v.X },
			clamp:    func(pos *core.Vector2, margin float64) { pos.X = b.XMin + margin },
		},
		{ // right
			distance: func(pos core.Vector2) float64 { return b.XMax - pos.X },
			inward:   core.Vector2{X: -1, Y: 0},
			reflect:  func(v *core.Vector2) { v.X = -v.X },
			clamp:    func(pos *core.Vector2, margin float64) { pos.X = b.XMax - margin },
		},
		{ // bottom
			distance: func(pos core.Vector2) float64 { return pos.Y - b.YMin },
			inward:   core.Vector2{X: 0, Y: 1},
			reflect:  func(v *core.Vector2) { v.Y = -v.Y },
			clamp:    func(pos *core.Vector2, margin float64) { pos.Y = b.YMin + margin },
		},
		{ // top
			distance: func(pos core.Vector2) float64 { return b.YMax - pos.Y },
			inward:   core.Vector2{X: 0, Y: -1},
			reflect:  func(v *core.Vector2) { v.Y = -v.Y },
			clamp:    func(pos *core.Vector2, margin float64) { pos.Y = b.YMax - margin },
		},
	}
}

// resolveBoundary implements the repulsive-kernel boundary variant (spec
// §4.8, chosen canonical over the alternative reflective-clamp design
// per §9): a particle within H of a side feels a repulsive pseudo-force
// built from the Spiky gradient; a particle that has already crossed the
// side has its offending velocity component reflected and its position
// clamped back in.
func (sim *Simulation) resolveBoundary(p *core.Particle, dt float64) {
	for _, side := range sim.boundarySides() {
		d := side.distance(p.Position)
		switch {
		case d > 0 && d < kernel.H:
			magnitude := absF(sim.Params.ParticleMass * p.Pressure / p.Density * kernel.SpikyGrad2(d) * d)
			force := side.inward.Scale(magnitude)
			accel := force.Scale(1 / p.Density)
			p.Velocity = p.Velocity.Add(accel.Scale(dt))
		case d <= 0:
			side.reflect(&p.Velocity)
			side.clamp(&p.Position, BoundaryMargin)
		}
	}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
