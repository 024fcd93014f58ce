package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/milk9111/dotengine/ecs"
	"github.com/milk9111/dotengine/prefabs"
)

// dotbench runs a scene headless, either as fast as possible for a number of
// frames or paced in real time by the background runner, and reports timings.
func main() {
	sceneName := flag.String("scene", "orbits", "scene name in prefabs/scenes")
	workers := flag.Int("workers", -1, "worker goroutines (-1 keeps the scene setting)")
	spin := flag.Bool("spin", false, "busy-wait for workers instead of blocking")
	frames := flag.Int("frames", 1000, "frames to simulate in batch mode")
	realtime := flag.Duration("realtime", 0, "run paced by wall time for this long instead of batch mode")
	flag.Parse()

	spec, err := prefabs.LoadScene(*sceneName)
	if err != nil {
		log.Fatal(err)
	}
	if *workers >= 0 {
		spec.Engine.Workers = *workers
	}
	spec.Engine.SpinWait = spec.Engine.SpinWait || *spin

	world, _, err := prefabs.Build(spec)
	if err != nil {
		log.Fatal(err)
	}

	if *realtime > 0 {
		runPaced(world, spec.Engine, *realtime)
		return
	}
	runBatch(world, spec.Engine, *frames)
}

func runBatch(w *ecs.World, engine prefabs.EngineSpec, frames int) {
	defer w.Close()
	start := time.Now()
	var collisions int
	for i := 0; i < frames; i++ {
		w.Update(engine.Dt, engine.Substeps)
		collisions += len(w.Collisions())
	}
	elapsed := time.Since(start)
	fmt.Printf("frames=%d bodies=%d workers=%d substeps=%d\n", frames, w.BodyCount(), w.Workers(), engine.Substeps)
	fmt.Printf("total=%v per_frame=%v simulated=%.2fs collisions/frame=%.1f\n",
		elapsed, elapsed/time.Duration(max(frames, 1)), w.Time(), float64(collisions)/float64(max(frames, 1)))
}

func runPaced(w *ecs.World, engine prefabs.EngineSpec, d time.Duration) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	r := ecs.NewRunner(w, engine.Dt, engine.Substeps)
	if err := r.Start(ctx); err != nil {
		log.Fatal(err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
	if err := r.Stop(); err != nil {
		log.Printf("runner: %v", err)
	}

	s := r.Stats()
	fmt.Printf("loops=%d bodies=%d workers=%d\n", s.Loops, w.BodyCount(), w.Workers())
	fmt.Printf("mean_loop=%v mean_compute=%v last_compute=%v simulated=%v\n",
		s.MeanLoop(), s.MeanCompute(), s.LastCompute, s.SimulatedDur)
}
