package kernel_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Nemiari/crowd-hydrodynamics/kernel"
)

// TestPoly6Normalization numerically integrates Wpoly6 over the disc
// ||r|| < H on a polar grid and checks the result is close to 1.
func TestPoly6Normalization(t *testing.T) {
	const (
		nr     = 2000
		ntheta = 360
	)
	dr := kernel.H / nr
	dtheta := 2 * math.Pi / ntheta

	integral := 0.0
	for i := 0; i < nr; i++ {
		r := (float64(i) + 0.5) * dr
		r2 := r * r
		if r2 >= kernel.HSq {
			continue
		}
		w := kernel.Poly6(r2)
		// polar-coordinates area element: r dr dtheta
		integral += w * r * dr * dtheta * ntheta
	}

	assert.InDelta(t, 1.0, integral, 0.02)
}

func TestPoly6ZeroAtSupportRadius(t *testing.T) {
	// At r == H the kernel must be exactly zero (H²-H² = 0).
	assert.Zero(t, kernel.Poly6(kernel.HSq))
}

func TestPoly6ZeroMatchesSelfContribution(t *testing.T) {
	assert.Equal(t, kernel.Poly6(0), kernel.Poly6Zero)
	assert.Greater(t, kernel.Poly6Zero, 0.0)
}

func TestSpikyGrad2Positive(t *testing.T) {
	// The gradient factor must be positive so that, combined with
	// Δ = p - q, pressure forces push particles apart.
	got := kernel.SpikyGrad2(0.5)
	assert.Greater(t, got, 0.0)
}

func TestSpikyGrad2DecreasesWithDistance(t *testing.T) {
	near := kernel.SpikyGrad2(0.1 + kernel.Eps)
	far := kernel.SpikyGrad2(0.9 + kernel.Eps)
	assert.Greater(t, near, far)
}

func TestViscLaplacianSignAndRange(t *testing.T) {
	assert.Greater(t, kernel.ViscLaplacian(0), 0.0)
	assert.InDelta(t, 0.0, kernel.ViscLaplacian(kernel.H), 1e-9)
}
