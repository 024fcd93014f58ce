package ecs

import (
	"log"
	"runtime"
	"sync"
	"sync/atomic"
)

// RangeFunc processes items [start, end). slot is the index of the task within
// the current dispatch, in [0, Workers()).
type RangeFunc func(slot, start, end int)

type rangeTask struct {
	slot  int
	start int
	end   int
	fn    RangeFunc
}

// countdown is a completion barrier. Waiters either block on a condition
// variable or spin, depending on the pool configuration.
type countdown struct {
	remaining atomic.Int32
	mu        sync.Mutex
	cond      *sync.Cond
}

func (c *countdown) reset(n int) {
	c.remaining.Store(int32(n))
}

func (c *countdown) finish() {
	if c.remaining.Add(-1) == 0 {
		c.mu.Lock()
		c.cond.Broadcast()
		c.mu.Unlock()
	}
}

func (c *countdown) wait(spin bool) {
	if spin {
		for c.remaining.Load() > 0 {
			runtime.Gosched()
		}
		return
	}
	c.mu.Lock()
	for c.remaining.Load() > 0 {
		c.cond.Wait()
	}
	c.mu.Unlock()
}

// WorkerPool is a fixed set of persistent workers fed with index ranges over a
// bounded queue. Each Run partitions one workload into contiguous ranges and
// blocks until every range is done. There is no work stealing.
type WorkerPool struct {
	workers int
	spin    bool
	tasks   chan rangeTask
	done    countdown
	wg      sync.WaitGroup
	closed  atomic.Bool
	once    sync.Once
}

// NewWorkerPool starts workers goroutines. spin selects a busy-wait barrier,
// useful when sub-step tasks last well under a millisecond.
func NewWorkerPool(workers int, spin bool) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	p := &WorkerPool{
		workers: workers,
		spin:    spin,
		tasks:   make(chan rangeTask, workers),
	}
	p.done.cond = sync.NewCond(&p.done.mu)
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	log.Printf("WorkerPool: started %d workers (spin=%v)", workers, spin)
	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task.fn(task.slot, task.start, task.end)
		p.done.finish()
	}
}

// Workers returns the number of workers.
func (p *WorkerPool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// Run executes fn over [0, size) and returns once every range has completed.
// A nil or closed pool runs fn inline as a single range.
func (p *WorkerPool) Run(size int, fn RangeFunc) {
	if size <= 0 {
		return
	}
	if p == nil || p.closed.Load() {
		fn(0, 0, size)
		return
	}
	chunk := (size + p.workers - 1) / p.workers
	count := (size + chunk - 1) / chunk
	p.done.reset(count)
	for slot := 0; slot < count; slot++ {
		start := slot * chunk
		p.tasks <- rangeTask{slot: slot, start: start, end: min(start+chunk, size), fn: fn}
	}
	p.done.wait(p.spin)
}

// Close wakes every worker by closing the queue, then waits for them to exit.
func (p *WorkerPool) Close() {
	if p == nil {
		return
	}
	p.once.Do(func() {
		p.closed.Store(true)
		close(p.tasks)
		p.wg.Wait()
		log.Printf("WorkerPool: stopped %d workers", p.workers)
	})
}
