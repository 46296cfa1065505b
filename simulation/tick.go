package simulation

// DoPhysics advances the simulation by one fixed tick of Dt seconds. A
// no-op before Init has been called (spec §7: "missing grid -> no-op").
//
// Tick order: reset grid, sources emit, sinks drain, bind to grid,
// density pass, pressure update, force pass, forced-velocity override,
// reset grid, integrate + collide, re-bind (spec §2).
func (sim *Simulation) DoPhysics() {
	if !sim.initialized {
		return
	}
	now := sim.clock.Now()

	sim.Grid.Reset()
	sim.emitParticles(now)
	sim.drainParticles(now)
	sim.bindParticles()

	sim.computeDensity()
	sim.computePressure()
	sim.computeForces()
	sim.applyForcedVelocity()

	sim.Grid.Reset()
	sim.integrateAndCollide(Dt)
	sim.bindParticles()
}
