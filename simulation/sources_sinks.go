package simulation

import (
	"log"
	"time"

	"github.com/Nemiari/crowd-hydrodynamics/core"
	"github.com/Nemiari/crowd-hydrodynamics/emitter"
	"github.com/Nemiari/crowd-hydrodynamics/kernel"
)

// AddParticleSource adds a line source directly, bypassing any plane
// attachment (spec §4.4, §6). Use AddParticleSourcePoint for a disc
// source instead.
func (sim *Simulation) AddParticleSource(pos, direction core.Vector2, length, rate, velocity float64) *emitter.Source {
	src := &emitter.Source{
		Position:          pos,
		Shape:             emitter.LineShape{Direction: direction, Length: length},
		VelocityMagnitude: velocity,
		Rate:              rate,
	}
	sim.Sources = append(sim.Sources, src)
	return src
}

// AddParticleSourcePoint adds a disc-shaped source. The data model
// defines both Point and Line shapes (spec §3) but §6's convenience
// constructor only covers the line case directly; this supplements it
// for callers that want a point emitter without going through a plane.
func (sim *Simulation) AddParticleSourcePoint(pos core.Vector2, spawnRadius, rate, velocity float64) *emitter.Source {
	src := &emitter.Source{
		Position:          pos,
		Shape:             emitter.PointShape{SpawnRadius: spawnRadius},
		VelocityMagnitude: velocity,
		Rate:              rate,
	}
	sim.Sources = append(sim.Sources, src)
	return src
}

// AddParticleSourceFromPlane attaches a line source to one side of an
// obstacle rectangle (or the domain boundary, via emitter.DomainPlane),
// deriving position/direction/length from it. Reports false (and adds
// nothing) if the reference doesn't resolve to a rectangle right now
// (spec §4.4, §6, §7).
func (sim *Simulation) AddParticleSourceFromPlane(obstacleIndex int, side emitter.Side, rate, velocity float64) (*emitter.Source, bool) {
	ref := emitter.PlaneRef{ObstacleIndex: obstacleIndex, Side: side}
	pos, dir, length, ok := sim.resolvePlane(ref)
	if !ok {
		return nil, false
	}
	src := &emitter.Source{
		Position:          pos,
		Shape:             emitter.LineShape{Direction: dir, Length: length},
		VelocityMagnitude: velocity,
		Rate:              rate,
		Plane:             &ref,
	}
	sim.Sources = append(sim.Sources, src)
	return src, true
}

// AddParticleSink adds a point sink directly (spec §6: the direct
// constructor only covers the point case; line/plane sinks are only
// reachable via AddParticleSinkFromPlane, per the data model's "optional
// length for line/plane sinks").
func (sim *Simulation) AddParticleSink(pos core.Vector2, rate, rangeVal float64) *emitter.Sink {
	sink := &emitter.Sink{
		Position: pos,
		Range:    rangeVal,
		Rate:     rate,
	}
	sim.Sinks = append(sim.Sinks, sink)
	return sink
}

// AddParticleSinkFromPlane attaches a line sink to one side of an
// obstacle rectangle or the domain boundary.
func (sim *Simulation) AddParticleSinkFromPlane(obstacleIndex int, side emitter.Side, rate, rangeVal float64) (*emitter.Sink, bool) {
	ref := emitter.PlaneRef{ObstacleIndex: obstacleIndex, Side: side}
	pos, dir, length, ok := sim.resolvePlane(ref)
	if !ok {
		return nil, false
	}
	sink := &emitter.Sink{
		Position:  pos,
		Direction: dir,
		Range:     rangeVal,
		Length:    length,
		Rate:      rate,
		Plane:     &ref,
	}
	sim.Sinks = append(sim.Sinks, sink)
	return sink, true
}

// refreshAttachedSources recomputes geometry for every plane-attached
// source and drops any whose plane no longer resolves (spec §7: "Source
// /sink without owner obstacle but requiring it... drop silently").
func (sim *Simulation) refreshAttachedSources() {
	kept := sim.Sources[:0]
	for _, s := range sim.Sources {
		if s.Plane != nil {
			pos, dir, length, ok := sim.resolvePlane(*s.Plane)
			if !ok {
				continue
			}
			s.Position = pos
			s.Shape = emitter.LineShape{Direction: dir, Length: length}
		}
		kept = append(kept, s)
	}
	sim.Sources = kept
}

func (sim *Simulation) refreshAttachedSinks() {
	kept := sim.Sinks[:0]
	for _, s := range sim.Sinks {
		if s.Plane != nil {
			pos, dir, length, ok := sim.resolvePlane(*s.Plane)
			if !ok {
				continue
			}
			s.Position = pos
			s.Direction = dir
			s.Length = length
		}
		kept = append(kept, s)
	}
	sim.Sinks = kept
}

// emitParticles runs every source's emission attempt for this tick (spec
// §4.4). A sampled position outside the domain is discarded without
// being appended, but the source's timing still advances — emission is
// measured in attempts, not successes.
func (sim *Simulation) emitParticles(now time.Time) {
	sim.refreshAttachedSources()
	m := sim.Params.ParticleMass
	initialDensity := m * kernel.Poly6Zero
	for _, s := range sim.Sources {
		countBelowMax := len(sim.Particles) < MaxParticles
		pos, vel, attempted := s.TryEmit(now, countBelowMax, sim.rng)
		if !attempted || !sim.Bounds.Contains(pos) {
			continue
		}
		sim.Particles = append(sim.Particles, core.Particle{
			Position: pos,
			Velocity: vel,
			Mass:     m,
			Density:  initialDensity,
		})
	}
}

// drainParticles removes at most one eligible particle per sink per
// interval (spec §4.5).
func (sim *Simulation) drainParticles(now time.Time) {
	sim.refreshAttachedSinks()
	for _, sink := range sim.Sinks {
		if !sink.Ready(now) {
			continue
		}
		for i := range sim.Particles {
			if sink.Eligible(sim.Particles[i].Position) {
				sim.removeParticleAt(i)
				sink.MarkDrained(now)
				break
			}
		}
	}
}

func (sim *Simulation) removeParticleAt(i int) {
	last := len(sim.Particles) - 1
	sim.Particles[i] = sim.Particles[last]
	sim.Particles = sim.Particles[:last]
}

// bindParticles pushes every particle into its grid cell, logging (but
// not failing) any cell overflow the grid reports in debug mode (spec
// §4.2).
func (sim *Simulation) bindParticles() {
	for i := range sim.Particles {
		if err := sim.Grid.Bind(i, sim.gridSpace(sim.Particles[i].Position)); err != nil {
			log.Printf("simulation: %v", err)
		}
	}
}
