package simulation

import (
	"math"

	"github.com/Nemiari/crowd-hydrodynamics/core"
	"github.com/Nemiari/crowd-hydrodynamics/kernel"
)

// computeDensity resets every particle's density to its self-contribution
// then accumulates the Poly6 kernel over every pair within H (spec §4.9).
func (sim *Simulation) computeDensity() {
	m := sim.Params.ParticleMass
	for i := range sim.Particles {
		sim.Particles[i].Density = m * kernel.Poly6Zero
	}
	sim.Grid.Pairwise(func(pi, qi int32) {
		p := &sim.Particles[pi]
		q := &sim.Particles[qi]
		r2 := core.DistSq(p.Position, q.Position)
		if r2 >= kernel.HSq {
			return
		}
		contribution := m * kernel.Poly6(r2)
		p.Density += contribution
		q.Density += contribution
	})
}

// computePressure derives P = max(0, K*(rho - rho0)) for every particle
// (spec §4.9).
func (sim *Simulation) computePressure() {
	k := sim.Params.GasConstant
	rho0 := sim.Params.RestDensity
	for i := range sim.Particles {
		p := &sim.Particles[i]
		p.Pressure = math.Max(0, k*(p.Density-rho0))
	}
}
