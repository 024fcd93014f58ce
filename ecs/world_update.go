package ecs

// Update advances the simulation by dt, split into substeps high resolution
// sub-steps. substeps below 1 is treated as 1. Not reentrant.
func (w *World) Update(dt float64, substeps int) {
	if w == nil {
		return
	}
	if substeps < 1 {
		substeps = 1
	}

	w.housekeeping()
	w.rebuildCollisions()
	w.refreshSystems()

	w.lowRes.Apply(w, dt)
	for _, b := range w.bodies.Values() {
		b.OnLowResolutionLoopEnd()
	}

	w.subDt = dt / float64(substeps)
	n := w.bodies.Len()
	for i := 0; i < substeps; i++ {
		w.pool.Run(n, w.startTask)
		w.highRes.Apply(w, w.subDt)
		w.pool.Run(n, w.endTask)
	}

	// systems that gave up during this frame are gone before Update returns
	w.sweepSystems()

	w.frame++
	w.time += dt
}

func (w *World) housekeeping() {
	for i := w.bodies.Len() - 1; i >= 0; i-- {
		b := w.bodies.Values()[i]
		if !b.Destroyed() {
			continue
		}
		id := w.bodies.ids()[i]
		e := newEntity(id, w.entities.gen[id-1])
		w.bodies.Remove(id)
		w.entities.destroy(e)
		w.membershipChanged = true
		w.events.Push(Event{Kind: EventBodyRemoved, Entity: e})
	}

	w.sweepSystems()

	for _, b := range w.bodies.Values() {
		b.OnLowResolutionLoopStart()
	}
}

func (w *World) sweepSystems() {
	removed := func(s System) {
		w.events.Push(Event{Kind: EventSystemRemoved, System: s})
	}
	w.lowRes.Sweep(removed)
	w.highRes.Sweep(removed)
}

func (w *World) rebuildCollisions() {
	bodies := w.bodies.Values()
	w.groups = w.sorter.generate(bodies)
	w.collisions = w.collisions[:0]

	if w.pool == nil || len(w.groups) == 0 {
		w.collisions = confirmGroups(bodies, w.groups, w.collisions)
		return
	}

	for i := range w.shards {
		w.shards[i] = w.shards[i][:0]
	}
	w.pool.Run(len(w.groups), w.confirm)
	for _, shard := range w.shards {
		w.collisions = append(w.collisions, shard...)
	}
}

func (w *World) refreshSystems() {
	bodies := w.bodies.Values()
	changed := w.membershipChanged
	w.membershipChanged = false

	for _, sched := range []*Scheduler{w.lowRes, w.highRes} {
		for _, s := range sched.systems {
			if changed {
				if o, ok := s.(BodyListObserver); ok {
					o.OnBodyListUpdate(w, bodies)
				}
			}
			if o, ok := s.(CollisionListObserver); ok {
				o.OnCollisionListUpdate(w, w.collisions)
			}
		}
	}
}
