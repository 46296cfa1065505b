// Package kernel implements the three SPH smoothing-kernel evaluations
// used by the density, pressure and viscosity passes.
//
// All kernels share a fixed support radius H = 1 simulation unit; they
// are defined to be zero outside it. Callers must gate on r² < H² before
// invoking — these functions do not re-check the support radius on the
// hot path since the caller has already paid for the squared distance.
package kernel

import "math"

// H is the kernel support radius, in simulation units. A simulation
// unit is defined as one H, so H is always 1; kept as a named constant
// (rather than inlined) because every formula below is stated in terms
// of it.
const H = 1.0

// HSq is H*H, precomputed for the r² < H² gate callers perform before
// invoking any kernel.
const HSq = H * H

// Eps is the small positive bump added to a pairwise distance before
// it is used as a divisor.
const Eps = 1e-6

var (
	poly6Norm = 315.0 / (64.0 * math.Pi * math.Pow(H, 9))
	spikyNorm = 45.0 / (math.Pi * math.Pow(H, 6))
	viscNorm  = 45.0 / (math.Pi * math.Pow(H, 5))
)

// Poly6Zero is Wpoly6(0), the self-contribution every particle's
// density carries before any neighbor is counted.
var Poly6Zero = Poly6(0)

// Poly6 evaluates the Poly6 kernel at squared distance r2. It is exactly
// 0 at r2 == HSq; r2 > HSq is not gated here and yields a negative
// value, so callers must check first.
func Poly6(r2 float64) float64 {
	d := HSq - r2
	return poly6Norm * d * d * d
}

// SpikyGrad2 is the scalar factor that, multiplied by (p1-p2), yields
// the Spiky kernel's gradient vector. The coefficient here takes the
// positive sign: combined with the Δ = p - q convention used by the
// force pass, pressure comes out repulsive for positive pressures.
//
// r must already have Eps added by the caller; r must be in (0, H].
func SpikyGrad2(r float64) float64 {
	d := H - r
	return spikyNorm * d * d / r
}

// ViscLaplacian evaluates the viscous Laplacian kernel at distance r.
func ViscLaplacian(r float64) float64 {
	return viscNorm * (1 - r/H)
}
