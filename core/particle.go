package core

// VMax is the hard speed clamp applied after every integration step.
const VMax = 10.0

// Particle is a single Lagrangian fluid sample. Its identity is its slot
// in the simulation's particle slice — there is no separate ID field.
// Construction happens in the engine or in emitter.Source; destruction
// happens in the engine or in emitter.Sink.
type Particle struct {
	Position Vector2
	Velocity Vector2
	Force    Vector2 // accumulator, reset every sub-step

	Mass     float64
	Density  float64 // rho, always >= Mass*Wpoly6(0)
	Pressure float64 // P, always >= 0
}

// ClampVelocity enforces the |v| <= VMax invariant in place.
func (p *Particle) ClampVelocity() {
	speed := p.Velocity.Length()
	if speed > VMax {
		p.Velocity = p.Velocity.Scale(VMax / speed)
	}
}
