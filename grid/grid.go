// Package grid implements the uniform spatial hash grid used to
// enumerate particle pairs in O(N) via half-neighbor iteration.
package grid

import (
	"fmt"

	"github.com/Nemiari/crowd-hydrodynamics/core"
)

// MaxCellParticles bounds how many particle references a single cell
// can hold. Exceeding it silently drops the reference unless the grid
// was built with Debug set — a deliberate trade that lets the
// simulation degrade smoothly under local crowding instead of
// reallocating a hot-path array.
const MaxCellParticles = 50

type cell struct {
	indices [MaxCellParticles]int32
	count   int
}

// OverflowError is returned by Bind when a cell is full and the grid
// was constructed with Debug enabled.
type OverflowError struct {
	CellIndex int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("grid: cell %d exceeded capacity %d", e.CellIndex, MaxCellParticles)
}

// Grid is a fixed-size nx*ny uniform partition of a w*h world extent
// into H-sized cells. Cell backing arrays are allocated once and reused
// across ticks; Reset zeroes counts rather than reallocating.
type Grid struct {
	Nx, Ny int
	W, H   float64
	Debug  bool

	cells         []cell
	halfNeighbors [][]int32 // precomputed once per cell, clipped to grid bounds
}

// New constructs a grid with nx*ny cells covering a w*h world. Each
// cell's half-neighbor list — the right neighbor plus the three
// above-row neighbors, clipped to the grid — is precomputed once here
// so that Pairwise never has to recompute it.
func New(nx, ny int, w, h float64, debug bool) *Grid {
	g := &Grid{
		Nx: nx, Ny: ny, W: w, H: h, Debug: debug,
		cells:         make([]cell, nx*ny),
		halfNeighbors: make([][]int32, nx*ny),
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			idx := i + nx*j
			var neighbors []int32
			if i+1 < nx {
				neighbors = append(neighbors, int32((i+1)+nx*j))
			}
			if j+1 < ny {
				for _, di := range [3]int{-1, 0, 1} {
					ni := i + di
					if ni >= 0 && ni < nx {
						neighbors = append(neighbors, int32(ni+nx*(j+1)))
					}
				}
			}
			g.halfNeighbors[idx] = neighbors
		}
	}
	return g
}

// Reset zeroes every cell's count. Backing arrays are reused.
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i].count = 0
	}
}

// CellIndexAt returns the linear cell index covering (x, y), or
// (-1, false) if the point falls outside the grid's world extent.
// (x, y) are grid-local coordinates, i.e. already measured from the
// grid's own origin at (0, 0) — a caller whose domain's origin sits
// elsewhere (a non-zero Bounds.XMin/YMin) must translate first.
func (g *Grid) CellIndexAt(x, y float64) (int, bool) {
	if x < 0 || y < 0 || x >= g.W || y >= g.H {
		return -1, false
	}
	i := int(float64(g.Nx) * x / g.W)
	j := int(float64(g.Ny) * y / g.H)
	if i < 0 || i >= g.Nx || j < 0 || j >= g.Ny {
		return -1, false
	}
	return i + g.Nx*j, true
}

// Bind pushes particleIdx into the cell covering pos, a grid-local
// coordinate per CellIndexAt. Out-of-bounds positions are silently
// ignored — they'll be pulled back in by boundary handling on the next
// integration step. A full cell silently drops the push unless the grid
// is in debug mode, in which case an *OverflowError is returned.
func (g *Grid) Bind(particleIdx int, pos core.Vector2) error {
	idx, ok := g.CellIndexAt(pos.X, pos.Y)
	if !ok {
		return nil
	}
	c := &g.cells[idx]
	if c.count >= MaxCellParticles {
		if g.Debug {
			return &OverflowError{CellIndex: idx}
		}
		return nil
	}
	c.indices[c.count] = int32(particleIdx)
	c.count++
	return nil
}

// Count returns the number of particle references currently bound
// across all cells; always <= the particle count the caller bound.
func (g *Grid) Count() int {
	total := 0
	for i := range g.cells {
		total += g.cells[i].count
	}
	return total
}

// CellParticles returns the particle indices bound to the cell covering
// (x, y).
func (g *Grid) CellParticles(x, y float64) ([]int32, bool) {
	idx, ok := g.CellIndexAt(x, y)
	if !ok {
		return nil, false
	}
	return g.ParticlesInCell(idx), true
}

// ParticlesInCell returns the particle indices bound to a cell by its
// linear index, as returned by CellIndexAt. Used by forced-velocity
// application, which resolves the cell once (at force_velocity call
// time) and reads its membership later, once binding for the tick has
// happened.
func (g *Grid) ParticlesInCell(cellIndex int) []int32 {
	if cellIndex < 0 || cellIndex >= len(g.cells) {
		return nil
	}
	c := &g.cells[cellIndex]
	return c.indices[:c.count]
}

// Pairwise enumerates every unordered pair of bound particle indices
// whose cells are the same or half-neighbors, calling f(p, q) exactly
// once per pair.
func (g *Grid) Pairwise(f func(p, q int32)) {
	for ci := range g.cells {
		c := &g.cells[ci]
		for a := 0; a < c.count; a++ {
			p := c.indices[a]
			for b := a + 1; b < c.count; b++ {
				f(p, c.indices[b])
			}
			for _, nci := range g.halfNeighbors[ci] {
				nc := &g.cells[nci]
				for b := 0; b < nc.count; b++ {
					f(p, nc.indices[b])
				}
			}
		}
	}
}
