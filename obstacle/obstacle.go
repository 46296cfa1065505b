// Package obstacle implements the two static-obstacle shapes and their
// signed distance fields. Obstacles are a closed set of concrete
// variants — Circle and Rectangle ship together here and nothing
// outside this package may add a third; open recursion for this type
// is deliberately rejected.
package obstacle

import (
	"math"

	"github.com/Nemiari/crowd-hydrodynamics/core"
)

// GradientEps is the finite-difference step used to approximate a
// signed distance field's gradient.
const GradientEps = 1e-4

// Color is opaque render metadata carried on every obstacle for the
// external renderer to consume; the engine never interprets it.
type Color struct {
	R, G, B, A uint8
}

// StaticObstacle is the closed set of static collider shapes. Its
// distanceMarker method is unexported so no type outside this package
// can implement it —
// concrete implementations ship together.
type StaticObstacle interface {
	// DistanceTo returns the signed distance from p to the obstacle's
	// surface: negative strictly inside, zero on the boundary, positive
	// outside.
	DistanceTo(p core.Vector2) float64
	distanceMarker()
}

// Circle is a disc obstacle.
type Circle struct {
	Center core.Vector2
	Radius float64
	Color  Color
}

func (c *Circle) distanceMarker() {}

// DistanceTo implements StaticObstacle.
func (c *Circle) DistanceTo(p core.Vector2) float64 {
	return p.Sub(c.Center).Length() - c.Radius
}

// Rectangle is an axis-aligned box obstacle; MinCorner is its
// lower-left corner and Size.X/Size.Y must both be positive.
type Rectangle struct {
	MinCorner core.Vector2
	Size      core.Vector2
	Color     Color
}

func (r *Rectangle) distanceMarker() {}

// MaxCorner returns the upper-right corner of the rectangle.
func (r *Rectangle) MaxCorner() core.Vector2 {
	return r.MinCorner.Add(r.Size)
}

// DistanceTo implements StaticObstacle.
func (r *Rectangle) DistanceTo(p core.Vector2) float64 {
	max := r.MaxCorner()
	inside := p.X >= r.MinCorner.X && p.X <= max.X && p.Y >= r.MinCorner.Y && p.Y <= max.Y
	if inside {
		left := p.X - r.MinCorner.X
		right := max.X - p.X
		bottom := p.Y - r.MinCorner.Y
		top := max.Y - p.Y
		return -math.Min(math.Min(left, right), math.Min(bottom, top))
	}

	dx := math.Max(math.Max(r.MinCorner.X-p.X, 0), p.X-max.X)
	dy := math.Max(math.Max(r.MinCorner.Y-p.Y, 0), p.Y-max.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceToAny dispatches DistanceTo by variant, treating any unknown
// implementation as infinitely far away rather than panicking. Every
// variant defined in this package already satisfies StaticObstacle
// directly, so this only guards against a caller accidentally trying to
// use a type that doesn't belong to the closed set.
func DistanceToAny(o StaticObstacle, p core.Vector2) float64 {
	if o == nil {
		return math.Inf(1)
	}
	switch o.(type) {
	case *Circle, *Rectangle:
		return o.DistanceTo(p)
	default:
		return math.Inf(1)
	}
}

// Gradient approximates ∇d(p) via forward finite differences with step
// GradientEps. Forward rather than central differences is deliberate: a
// particle sitting exactly on a circle's center is a true singularity
// of the SDF (every central difference cancels by symmetry and never
// escapes), while the forward difference still carries a well-defined
// push direction there.
func Gradient(o StaticObstacle, p core.Vector2) core.Vector2 {
	d0 := DistanceToAny(o, p)
	dx := (DistanceToAny(o, core.Vector2{X: p.X + GradientEps, Y: p.Y}) - d0) / GradientEps
	dy := (DistanceToAny(o, core.Vector2{X: p.X, Y: p.Y + GradientEps}) - d0) / GradientEps
	return core.Vector2{X: dx, Y: dy}
}

// Normal returns the outward unit surface normal at p: ∇d(p) normalized,
// with a small epsilon added to the magnitude before dividing.
func Normal(o StaticObstacle, p core.Vector2) core.Vector2 {
	return Gradient(o, p).Normalized(GradientEps)
}
