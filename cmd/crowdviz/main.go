// Command crowdviz is the interactive demo harness: an SDL2 window
// driving a simulation.Simulation at a fixed physics tick, with mouse
// and keyboard controls layered on top (spec §1: the rendering surface
// and its input glue are external collaborators, not part of the
// physics kernel itself).
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Nemiari/crowd-hydrodynamics/core"
	"github.com/Nemiari/crowd-hydrodynamics/emitter"
	"github.com/Nemiari/crowd-hydrodynamics/obstacle"
	"github.com/Nemiari/crowd-hydrodynamics/simulation"
	"github.com/Nemiari/crowd-hydrodynamics/viz"
)

func seedScene(sim *simulation.Simulation) {
	obsIdx := sim.AddStaticObject(&obstacle.Circle{
		Center: core.Vector2{X: 10, Y: 6},
		Radius: 1.5,
		Color:  obstacle.Color{R: 200, G: 80, B: 80, A: 255},
	})
	sim.AddStaticObject(&obstacle.Rectangle{
		MinCorner: core.Vector2{X: 16, Y: 2},
		Size:      core.Vector2{X: 2, Y: 6},
		Color:     obstacle.Color{R: 200, G: 160, B: 60, A: 255},
	})

	sim.AddParticleSource(core.Vector2{X: 0.5, Y: 9}, core.Vector2{X: 1, Y: 0}, 3, 200, 3)
	if _, ok := sim.AddParticleSourceFromPlane(obsIdx, emitter.Top, 20, 1); !ok {
		log.Println("crowdviz: seed source attach to obstacle failed unexpectedly")
	}
	sim.AddParticleSink(core.Vector2{X: 19, Y: 9}, 50, 1.5)
}

func main() {
	go func() {
		log.Println(http.ListenAndServe("localhost:6060", nil))
	}()

	var (
		width, height int
		domainX       float64
		domainY       float64
		fps           int64
		gasConstant   float64
		viscosity     float64
		restDensity   float64
		particleMass  float64
		friction      float64
		particleR     int
		seed          int64
	)

	flag.IntVar(&width, "width", 1200, "window width in pixels")
	flag.IntVar(&height, "height", 800, "window height in pixels")
	flag.Float64Var(&domainX, "domainX", 20.0, "domain width in screen units")
	flag.Float64Var(&domainY, "domainY", 13.3, "domain height in screen units")
	flag.Int64Var(&fps, "fps", 60, "render frame rate cap")
	flag.Float64Var(&gasConstant, "k", 2000.0, "gas constant K")
	flag.Float64Var(&viscosity, "mu", 0.5, "viscosity")
	flag.Float64Var(&restDensity, "rho0", 1.0, "rest density")
	flag.Float64Var(&particleMass, "mass", 1.0, "particle mass")
	flag.Float64Var(&friction, "friction", simulation.DefaultFriction, "obstacle collision friction [0,1]")
	flag.IntVar(&particleR, "radius", 2, "particle render radius in pixels")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "PRNG seed for source sampling")

	flag.Parse()

	sim := simulation.New()
	sim.SetSeed(seed)
	sim.Friction = friction
	sim.SetFluidProperties(simulation.FluidParameters{
		ParticleMass: particleMass,
		GasConstant:  gasConstant,
		RestDensity:  restDensity,
		Viscosity:    viscosity,
	})
	sim.Init(width, height, 0, domainX, 0, domainY)
	seedScene(sim)

	renderer, window, err := viz.NewWindow("Crowd Hydrodynamics", int32(width), int32(height))
	if err != nil {
		log.Fatalf("crowdviz: %v", err)
	}
	defer window.Destroy()
	defer renderer.Destroy()

	running := true
	paused := false
	frameInterval := time.Second / time.Duration(fps)

	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				if e.Type != sdl.KEYDOWN {
					continue
				}
				switch e.Keysym.Sym {
				case sdl.K_SPACE:
					paused = !paused
				case sdl.K_c:
					sim.ClearParticlesOnly()
				case sdl.K_r:
					sim.Cleanup()
					sim.ClearStaticObjects()
					seedScene(sim)
				case sdl.K_LEFTBRACKET:
					friction = core.Clamp(friction-0.05, 0, 1)
					sim.Friction = friction
					fmt.Printf("friction: %.2f\n", friction)
				case sdl.K_RIGHTBRACKET:
					friction = core.Clamp(friction+0.05, 0, 1)
					sim.Friction = friction
					fmt.Printf("friction: %.2f\n", friction)
				}
			case *sdl.MouseMotionEvent:
				if e.State&sdl.ButtonLMask() != 0 {
					sim.ForceVelocity(float64(e.X), float64(e.Y), float64(e.XRel)*4, float64(e.YRel)*4)
				}
			}
		}

		if !paused {
			sim.DoPhysics()
		}
		viz.RenderFrame(renderer, sim, int32(particleR))

		time.Sleep(frameInterval)
	}
}
