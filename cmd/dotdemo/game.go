package main

import (
	"context"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/dotengine/common"
	"github.com/milk9111/dotengine/ecs"
	"github.com/milk9111/dotengine/ecs/component"
	"github.com/milk9111/dotengine/prefabs"
	"github.com/milk9111/dotengine/vmath"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	pixelsPerUnit = 24.0
	defaultGain   = 40.0

	minZoom = 0.1
	maxZoom = 10.0
)

type Options struct {
	Scene    string
	Workers  int
	Substeps int
	Watch    bool
}

type Game struct {
	opts Options

	world   *ecs.World
	scene   *prefabs.Scene
	runner  *ecs.Runner
	watcher *prefabs.Watcher

	zoom    float64
	spawned int
	removed int
	status  string
}

func NewGame(opts Options) (*Game, error) {
	g := &Game{opts: opts, zoom: 1}
	if err := g.load(); err != nil {
		return nil, err
	}
	if opts.Watch {
		w, err := prefabs.NewSceneWatcher(opts.Scene)
		if err != nil {
			log.Printf("Game: watcher disabled: %v", err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func (g *Game) loadSpec() (*prefabs.SceneSpec, error) {
	name := g.opts.Scene
	if filepath.Ext(name) != "" {
		if data, err := os.ReadFile(name); err == nil {
			spec, err := prefabs.ParseScene(data)
			if err != nil {
				return nil, err
			}
			if spec.Name == "" {
				spec.Name = name
			}
			return spec, nil
		}
	}
	return prefabs.LoadScene(name)
}

// load builds a fresh world from the scene and starts it in the background.
func (g *Game) load() error {
	spec, err := g.loadSpec()
	if err != nil {
		return err
	}
	if g.opts.Workers >= 0 {
		spec.Engine.Workers = g.opts.Workers
	}
	if g.opts.Substeps > 0 {
		spec.Engine.Substeps = g.opts.Substeps
	}

	world, scene, err := prefabs.Build(spec)
	if err != nil {
		return err
	}
	runner := ecs.NewRunner(world, spec.Engine.Dt, spec.Engine.Substeps)
	if err := runner.Start(context.Background()); err != nil {
		world.Close()
		return err
	}

	g.world, g.scene, g.runner = world, scene, runner
	g.spawned, g.removed = 0, 0
	g.status = fmt.Sprintf("loaded %s", spec.Name)
	return nil
}

func (g *Game) stop() {
	if g.runner == nil {
		return
	}
	if err := g.runner.Stop(); err != nil {
		log.Printf("Game: runner stopped with error: %v", err)
	}
	g.runner = nil
}

func (g *Game) reload(reason string) {
	g.stop()
	if err := g.load(); err != nil {
		log.Printf("Game: reload after %s failed: %v", reason, err)
		g.status = "reload failed: " + err.Error()
		// keep showing the last world, frozen
		return
	}
	log.Printf("Game: reloaded after %s", reason)
}

// Close stops the simulation and the file watcher.
func (g *Game) Close() {
	g.stop()
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.reload("key press")
		return nil
	}
	g.pollWatcher()

	if _, dy := ebiten.Wheel(); dy != 0 {
		g.zoom = common.Clamp(g.zoom*(1+0.1*dy), minZoom, maxZoom)
	}

	if g.runner == nil {
		return nil
	}
	g.world.WithLock(func() {
		g.applyControls()
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
			g.spawnAtCursor()
		}
		for _, evt := range g.world.Events().Drain() {
			if evt.Kind == ecs.EventBodyRemoved {
				g.removed++
			}
		}
	})
	return nil
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	select {
	case name, ok := <-g.watcher.Events:
		if ok {
			g.reload(filepath.Base(name) + " changed")
		}
	case err, ok := <-g.watcher.Errors:
		if ok {
			log.Printf("Game: watcher error: %v", err)
		}
	default:
	}
}

// applyControls maps keys onto the scene's controlled forces. Caller holds the world lock.
func (g *Game) applyControls() {
	gain := g.scene.Spec.Controls.Gain
	if gain == 0 {
		gain = defaultGain
	}

	if push := g.scene.Push(); push != nil {
		var dir vmath.Vector
		if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
			dir.X--
		}
		if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
			dir.X++
		}
		if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
			dir.Y++
		}
		if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
			dir.Y--
		}
		push.Value = dir.Mult(gain)
	}

	if jump := g.scene.Jump(); jump != nil {
		jump.Active = ebiten.IsKeyPressed(ebiten.KeySpace)
	}

	if run := g.scene.Run(); run != nil {
		d := 0
		if ebiten.IsKeyPressed(ebiten.KeyA) {
			d--
		}
		if ebiten.IsKeyPressed(ebiten.KeyD) {
			d++
		}
		run.SetDirection(d)
	}
}

func (g *Game) spawnAtCursor() {
	cx, cy := ebiten.CursorPosition()
	g.spawned++
	_, err := g.scene.Spawn(g.world, prefabs.BodySpec{
		Name:     fmt.Sprintf("spawn_%d", g.spawned),
		Kind:     prefabs.KindDynamic,
		Position: prefabs.Vec{X: g.toWorldX(float64(cx)), Y: g.toWorldY(float64(cy))},
		Size:     0.3,
		Mass:     0.3,
		Hardness: 1500,
		Damping:  5,
	})
	if err != nil {
		g.status = err.Error()
	}
}

func (g *Game) scale() float64 { return pixelsPerUnit * g.zoom }

func (g *Game) toScreen(p vmath.Vector) (float32, float32) {
	return float32(baseWidth/2 + p.X*g.scale()), float32(baseHeight/2 - p.Y*g.scale())
}

func (g *Game) toWorldX(x float64) float64 { return (x - baseWidth/2) / g.scale() }
func (g *Game) toWorldY(y float64) float64 { return (baseHeight/2 - y) / g.scale() }

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)

	var bodies, collisions, groups, systems int
	g.world.WithLock(func() {
		entities := g.world.Entities()
		for i, b := range g.world.Bodies() {
			x, y := g.toScreen(b.Position())
			r := float32(b.Size() * g.scale())
			if r < 1 {
				r = 1
			}
			vector.FillCircle(screen, x, y, r, g.bodyColor(entities[i], b), true)
		}
		for _, c := range g.world.Collisions() {
			x0, y0 := g.toScreen(c.A.Position())
			x1, y1 := g.toScreen(c.B.Position())
			vector.StrokeLine(screen, x0, y0, x1, y1, 1, colornames.Red, true)
		}
		bodies = g.world.BodyCount()
		collisions = len(g.world.Collisions())
		groups = len(g.world.CandidateGroups())
		systems = g.world.SystemCount()
	})

	var stats ecs.RunnerStats
	if g.runner != nil {
		stats = g.runner.Stats()
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"FPS: %.1f  bodies: %d  systems: %d  groups: %d  collisions: %d  workers: %d\n"+
			"loops: %d  compute: %v  loop: %v  simulated: %v\n"+
			"spawned: %d  removed: %d  %s\n"+
			"arrows push  space jump  A/D run  click spawn  wheel zoom  R reload  esc quit",
		ebiten.ActualFPS(), bodies, systems, groups, collisions, g.world.Workers(),
		stats.Loops, stats.MeanCompute(), stats.MeanLoop(), stats.SimulatedDur,
		g.spawned, g.removed, g.status,
	))
}

// bodyColor prefers the scene color, then falls back to one per kind.
func (g *Game) bodyColor(e ecs.Entity, b *component.Body) color.Color {
	if c, ok := g.scene.Colors[e]; ok {
		return c
	}
	caps := b.Capabilities()
	switch {
	case !caps.Has(component.CapRigid):
		return colornames.Dimgray
	case !caps.Has(component.CapDynamic):
		return colornames.Slategray
	case b.WeakCollision():
		return colornames.Gray
	case caps.Has(component.CapSpeedLimit):
		return colornames.Lightskyblue
	}
	return colornames.White
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
