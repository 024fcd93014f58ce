package ecs

import (
	"sync"

	"github.com/milk9111/dotengine/ecs/component"
)

// System is a force, universal law, link or collision effect. Systems hold
// Entity handles, never body pointers across frames, and destroy themselves
// when a handle stops resolving.
type System interface {
	Apply(w *World, dt float64)
	Destroy()
	Destroyed() bool
}

// BodyListObserver is notified when body or system membership changed since
// the previous frame.
type BodyListObserver interface {
	OnBodyListUpdate(w *World, bodies []*component.Body)
}

// CollisionListObserver receives the confirmed collisions of every frame.
type CollisionListObserver interface {
	OnCollisionListUpdate(w *World, collisions []CollisionInfo)
}

// Config tunes a World.
type Config struct {
	// Workers is the size of the worker pool. 0 or 1 runs single-threaded.
	Workers int
	// SpinWait busy-waits for workers instead of blocking.
	SpinWait bool
	// SortMinBodies and SortMaxDepth bound the quadrant sort recursion.
	SortMinBodies int
	SortMaxDepth  int
}

// DefaultConfig returns a single-threaded configuration.
func DefaultConfig() Config {
	return Config{
		Workers:       0,
		SortMinBodies: DefaultSortMinBodies,
		SortMaxDepth:  DefaultSortMaxDepth,
	}
}

// World owns bodies and systems and advances them through time. It is not
// safe for concurrent use; external readers must hold Lock while an update
// may be running on another goroutine.
type World struct {
	mu sync.Mutex

	entities entityStore
	bodies   SparseSet[*component.Body]

	lowRes  *Scheduler
	highRes *Scheduler

	membershipChanged bool

	sorter     quadSorter
	groups     []CandidateGroup
	collisions []CollisionInfo
	shards     [][]CollisionInfo

	pool      *WorkerPool
	subDt     float64
	startTask RangeFunc
	endTask   RangeFunc
	confirm   RangeFunc

	events EventQueue
	frame  uint64
	time   float64
}

// NewWorld creates an empty world.
func NewWorld(cfg Config) *World {
	w := &World{
		lowRes:  NewScheduler(),
		highRes: NewScheduler(),
		sorter:  newQuadSorter(cfg.SortMinBodies, cfg.SortMaxDepth),
	}
	if cfg.Workers > 1 {
		w.pool = NewWorkerPool(cfg.Workers, cfg.SpinWait)
		w.shards = make([][]CollisionInfo, cfg.Workers)
	}
	w.startTask = func(_, start, end int) {
		bodies := w.bodies.Values()
		for i := start; i < end; i++ {
			bodies[i].OnHighResolutionLoopStart()
		}
	}
	w.endTask = func(_, start, end int) {
		bodies := w.bodies.Values()
		for i := start; i < end; i++ {
			bodies[i].OnHighResolutionLoopEnd(w.subDt)
		}
	}
	w.confirm = func(slot, start, end int) {
		w.shards[slot] = confirmGroups(w.bodies.Values(), w.groups[start:end], w.shards[slot][:0])
	}
	return w
}

// Lock acquires the coarse world lock.
func (w *World) Lock() { w.mu.Lock() }

// Unlock releases the coarse world lock.
func (w *World) Unlock() { w.mu.Unlock() }

// WithLock runs fn while holding the world lock.
func (w *World) WithLock(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn()
}

// Close stops the worker pool. The world keeps working single-threaded.
func (w *World) Close() {
	if w == nil {
		return
	}
	w.pool.Close()
}

// RegisterBody adds a body and returns its handle.
func (w *World) RegisterBody(b *component.Body) Entity {
	if w == nil || b == nil {
		return 0
	}
	e := w.entities.create()
	w.bodies.Set(e.slot(), b)
	w.membershipChanged = true
	return e
}

// RegisterSystem adds a system to the low or high resolution phase.
func (w *World) RegisterSystem(s System, highResolution bool) {
	if w == nil || s == nil {
		return
	}
	if highResolution {
		w.highRes.Add(s)
	} else {
		w.lowRes.Add(s)
	}
	w.membershipChanged = true
}

// Body resolves a handle. It fails once the body was removed or flagged
// destroyed.
func (w *World) Body(e Entity) (*component.Body, bool) {
	if w == nil || !w.entities.isAlive(e) {
		return nil, false
	}
	b, ok := w.bodies.Get(e.slot())
	if !ok || b.Destroyed() {
		return nil, false
	}
	return b, true
}

// IsAlive reports whether a handle still refers to a registered body.
func (w *World) IsAlive(e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// DestroyBody flags a body for removal at the next update.
func (w *World) DestroyBody(e Entity) bool {
	b, ok := w.Body(e)
	if !ok {
		return false
	}
	b.Destroy()
	return true
}

// Bodies returns the dense body list. Order changes when bodies are removed.
func (w *World) Bodies() []*component.Body {
	if w == nil {
		return nil
	}
	return w.bodies.Values()
}

// Entities returns the handles of all registered bodies, in body list order.
func (w *World) Entities() []Entity {
	if w == nil {
		return nil
	}
	ids := w.bodies.ids()
	out := make([]Entity, len(ids))
	for i, id := range ids {
		out[i] = newEntity(id, w.entities.gen[id-1])
	}
	return out
}

func (w *World) BodyCount() int {
	if w == nil {
		return 0
	}
	return w.bodies.Len()
}

func (w *World) SystemCount() int {
	if w == nil {
		return 0
	}
	return w.lowRes.Len() + w.highRes.Len()
}

// Systems returns the low and high resolution systems.
func (w *World) Systems() (low, high []System) {
	if w == nil {
		return nil, nil
	}
	return w.lowRes.Systems(), w.highRes.Systems()
}

// Collisions returns the confirmed collisions of the last update.
func (w *World) Collisions() []CollisionInfo {
	if w == nil {
		return nil
	}
	return w.collisions
}

// CandidateGroups returns the quadrant sort output of the last update.
func (w *World) CandidateGroups() []CandidateGroup {
	if w == nil {
		return nil
	}
	return w.groups
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// Frame returns the number of completed updates.
func (w *World) Frame() uint64 {
	if w == nil {
		return 0
	}
	return w.frame
}

// Time returns the simulated time in seconds.
func (w *World) Time() float64 {
	if w == nil {
		return 0
	}
	return w.time
}

// Workers returns the effective worker count.
func (w *World) Workers() int {
	if w == nil {
		return 0
	}
	return w.pool.Workers()
}
