// Package viz is the SDL2 render-side adapter: it samples a
// simulation.Simulation each frame and draws it. It is external
// collaborator code (spec §1 lists the rendering surface as out of
// scope for the physics kernel) kept in the teacher's own idiom —
// direct SDL2 primitive drawing, no sprite/texture pipeline.
package viz

import (
	"math"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Nemiari/crowd-hydrodynamics/obstacle"
	"github.com/Nemiari/crowd-hydrodynamics/simulation"
)

func NewWindow(title string, width, height int32) (*sdl.Renderer, *sdl.Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, nil, err
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, width, height, sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, nil, err
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return nil, nil, err
	}
	return renderer, window, nil
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// drawFilledCircle fills a circle via horizontal scanlines. It draws
// circle obstacles, and particle markers wider than one pixel through
// drawCircle.
func drawFilledCircle(renderer *sdl.Renderer, centerX, centerY, radius int32) {
	if radius <= 0 {
		renderer.DrawPoint(centerX, centerY)
		return
	}
	radiusSq := radius * radius
	for y := -radius; y <= radius; y++ {
		width := int32(math.Sqrt(float64(radiusSq - y*y)))
		renderer.DrawLine(centerX-width, centerY+y, centerX+width, centerY+y)
	}
}

// drawCircle draws a particle marker: a single point for radius <= 1,
// otherwise drawFilledCircle's scanline fill.
func drawCircle(renderer *sdl.Renderer, centerX, centerY, radius int32) {
	if radius <= 1 {
		renderer.DrawPoint(centerX, centerY)
		return
	}
	drawFilledCircle(renderer, centerX, centerY, radius)
}

// ColorCache holds a precomputed RGB triple for one pressure bucket.
type ColorCache struct {
	r, g, b uint8
}

var colorCache [256]ColorCache
var colorCacheReady bool

// initColorCache builds a smooth blue -> cyan -> white gradient keyed by
// normalized pressure, so RenderFrame never recomputes a gradient per
// particle per frame.
func initColorCache() {
	for i := 0; i < 256; i++ {
		normalizedPressure := float64(i) / 255.0
		var r, g, b uint8
		if normalizedPressure < 0.5 {
			t := normalizedPressure * 2.0
			r = uint8(10 + 70*t)
			g = uint8(120 * t)
			b = uint8(180 + 50*t)
		} else {
			t := (normalizedPressure - 0.5) * 2.0
			r = uint8(80 + 175*t)
			g = uint8(120 + 135*t)
			b = uint8(230 + 25*t)
		}
		colorCache[i] = ColorCache{r, g, b}
	}
	colorCacheReady = true
}

func getColor(normalizedPressure float64) ColorCache {
	if normalizedPressure < 0 {
		normalizedPressure = 0
	} else if normalizedPressure > 1 {
		normalizedPressure = 1
	}
	return colorCache[int(normalizedPressure*255)]
}

type particleBatch struct {
	color  ColorCache
	points []sdl.Point
}

func obstacleColor(o obstacle.StaticObstacle) sdl.Color {
	var c obstacle.Color
	switch v := o.(type) {
	case *obstacle.Circle:
		c = v.Color
	case *obstacle.Rectangle:
		c = v.Color
	default:
		c = obstacle.Color{R: 120, G: 120, B: 120, A: 255}
	}
	if c.A == 0 {
		c.A = 255
	}
	return sdl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// RenderFrame draws one frame: obstacles first, then particles batched
// by pressure-derived color, mirroring the teacher's batch-by-color
// strategy to minimize SetDrawColor calls.
func RenderFrame(renderer *sdl.Renderer, sim *simulation.Simulation, particleRadius int32) {
	if !colorCacheReady {
		initColorCache()
	}

	renderer.SetDrawColor(10, 10, 16, 255)
	renderer.Clear()

	for _, o := range sim.GetStaticColliders() {
		col := obstacleColor(o)
		renderer.SetDrawColor(col.R, col.G, col.B, col.A)
		switch v := o.(type) {
		case *obstacle.Circle:
			cx := int32(v.Center.X * sim.Scale)
			cy := int32((sim.Bounds.YMax - v.Center.Y) * sim.Scale)
			drawFilledCircle(renderer, cx, cy, int32(v.Radius*sim.Scale))
		case *obstacle.Rectangle:
			max := v.MaxCorner()
			x0 := int32(v.MinCorner.X * sim.Scale)
			y0 := int32((sim.Bounds.YMax - max.Y) * sim.Scale)
			w := int32(v.Size.X * sim.Scale)
			h := int32(v.Size.Y * sim.Scale)
			renderer.FillRect(&sdl.Rect{X: x0, Y: y0, W: w, H: h})
		}
	}

	n := sim.GetParticleCount()
	batches := make(map[ColorCache]*particleBatch)
	for i := 0; i < n; i++ {
		pressure := sim.GetParticlePressure(i)
		normalized := sigmoid(pressure/2000.0*2.0 - 1.0)
		color := getColor(normalized)

		batch, ok := batches[color]
		if !ok {
			batch = &particleBatch{color: color, points: make([]sdl.Point, 0, 128)}
			batches[color] = batch
		}
		x, y := sim.GetParticlePosition(i)
		batch.points = append(batch.points, sdl.Point{X: int32(x), Y: int32(y)})
	}

	for color, batch := range batches {
		renderer.SetDrawColor(color.r, color.g, color.b, 255)
		for _, p := range batch.points {
			drawCircle(renderer, p.X, p.Y, particleRadius)
		}
	}

	renderer.Present()
}
