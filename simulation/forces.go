package simulation

import (
	"math"

	"github.com/Nemiari/crowd-hydrodynamics/core"
	"github.com/Nemiari/crowd-hydrodynamics/kernel"
)

// computeForces resets every particle's force accumulator then applies
// the pressure-gradient and viscous-Laplacian contributions over every
// pair within H (spec §4.10).
func (sim *Simulation) computeForces() {
	for i := range sim.Particles {
		sim.Particles[i].Force = core.Vector2{}
	}
	m := sim.Params.ParticleMass
	mu := sim.Params.Viscosity
	sim.Grid.Pairwise(func(pi, qi int32) {
		p := &sim.Particles[pi]
		q := &sim.Particles[qi]
		delta := p.Position.Sub(q.Position)
		r2 := delta.LengthSq()
		if r2 >= kernel.HSq {
			return
		}
		r := math.Sqrt(r2) + kernel.Eps

		fPress := m * (p.Pressure + q.Pressure) / (2 * q.Density) * kernel.SpikyGrad2(r)
		fVisc := mu * m * kernel.ViscLaplacian(r) / q.Density

		f := delta.Scale(fPress).Add(q.Velocity.Sub(p.Velocity).Scale(fVisc))
		p.Force = p.Force.Add(f)
		q.Force = q.Force.Sub(f)
	})
}

// applyForcedVelocity consumes the armed one-shot velocity override, if
// any, overwriting the velocity of every particle currently bound to
// its target cell (spec §4.11, §6).
func (sim *Simulation) applyForcedVelocity() {
	if !sim.forced.armed {
		return
	}
	for _, idx := range sim.Grid.ParticlesInCell(sim.forced.cellIndex) {
		sim.Particles[idx].Velocity = core.Vector2{X: sim.forced.vx, Y: sim.forced.vy}
		sim.Particles[idx].Force = core.Vector2{}
	}
	sim.forced.armed = false
}
