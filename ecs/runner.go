package ecs

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrRunnerStarted is returned by Start when the loop is already running.
var ErrRunnerStarted = errors.New("ecs: runner already started")

// ErrNoWorld is returned by Start when the runner has no world to drive.
var ErrNoWorld = errors.New("ecs: runner has no world")

// RunnerStats accumulates loop timings. Loop time includes pacing sleeps,
// compute time only the locked update.
type RunnerStats struct {
	Loops        uint64
	LoopTime     time.Duration
	ComputeTime  time.Duration
	LastCompute  time.Duration
	SimulatedDur time.Duration
}

// MeanLoop returns the average loop duration.
func (s RunnerStats) MeanLoop() time.Duration {
	if s.Loops == 0 {
		return 0
	}
	return s.LoopTime / time.Duration(s.Loops)
}

// MeanCompute returns the average update duration.
func (s RunnerStats) MeanCompute() time.Duration {
	if s.Loops == 0 {
		return 0
	}
	return s.ComputeTime / time.Duration(s.Loops)
}

// Runner drives a World from a background goroutine at a fixed simulated
// time step, sleeping whenever simulation runs ahead of wall time.
type Runner struct {
	world *World

	// dt and substeps are read under the world lock.
	dt       time.Duration
	substeps int

	statsMu sync.Mutex
	stats   RunnerStats

	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewRunner creates a runner. dt is the simulated seconds per update.
func NewRunner(w *World, dt float64, substeps int) *Runner {
	r := &Runner{world: w}
	r.SetDt(dt)
	r.SetSubsteps(substeps)
	return r
}

// Dt returns the simulated seconds per update.
func (r *Runner) Dt() float64 { return r.dt.Seconds() }

// SetDt changes the step. Hold the world lock while the runner is started.
func (r *Runner) SetDt(dt float64) {
	if dt <= 0 {
		dt = 0.01
	}
	r.dt = time.Duration(dt * float64(time.Second))
}

// Substeps returns the high resolution sub-step count.
func (r *Runner) Substeps() int { return r.substeps }

// SetSubsteps changes the sub-step count. Hold the world lock while the runner is started.
func (r *Runner) SetSubsteps(n int) {
	if n < 1 {
		n = 1
	}
	r.substeps = n
}

// Start launches the update loop. It runs until ctx is done or Stop is called.
func (r *Runner) Start(ctx context.Context) error {
	if r.group != nil {
		return ErrRunnerStarted
	}
	if r.world == nil {
		return ErrNoWorld
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.group, ctx = errgroup.WithContext(ctx)
	r.group.Go(func() error {
		return r.loop(ctx)
	})
	log.Printf("Runner: started dt=%v substeps=%d workers=%d", r.dt, r.substeps, r.world.Workers())
	return nil
}

// Stop lets the current frame finish, then shuts down the world's workers.
func (r *Runner) Stop() error {
	if r.group == nil {
		return nil
	}
	r.cancel()
	err := r.group.Wait()
	r.group = nil
	r.world.Close()
	stats := r.Stats()
	log.Printf("Runner: stopped after %d loops (mean compute %v)", stats.Loops, stats.MeanCompute())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stats returns a snapshot of the loop statistics.
func (r *Runner) Stats() RunnerStats {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	return r.stats
}

func (r *Runner) loop(ctx context.Context) error {
	began := time.Now()
	var simulated time.Duration
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()

		r.world.Lock()
		dt := r.dt
		r.world.Update(dt.Seconds(), r.substeps)
		r.world.Unlock()
		simulated += dt
		computed := time.Since(start)

		if ahead := simulated - time.Since(began); ahead > 0 {
			timer := time.NewTimer(ahead)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}

		r.statsMu.Lock()
		r.stats.Loops++
		r.stats.LoopTime += time.Since(start)
		r.stats.ComputeTime += computed
		r.stats.LastCompute = computed
		r.stats.SimulatedDur = simulated
		r.statsMu.Unlock()
	}
}
