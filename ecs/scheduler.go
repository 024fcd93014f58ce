package ecs

// Scheduler keeps one resolution class of systems in registration order.
type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	copied := append([]System(nil), systems...)
	return &Scheduler{systems: copied}
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

// Apply runs every system that is still alive.
func (s *Scheduler) Apply(w *World, dt float64) {
	for _, system := range s.systems {
		if !system.Destroyed() {
			system.Apply(w, dt)
		}
	}
}

// Sweep swap-removes destroyed systems and calls removed for each one.
// The order of the survivors is not preserved.
func (s *Scheduler) Sweep(removed func(System)) int {
	n := 0
	for i := len(s.systems) - 1; i >= 0; i-- {
		system := s.systems[i]
		if !system.Destroyed() {
			continue
		}
		last := len(s.systems) - 1
		s.systems[i] = s.systems[last]
		s.systems[last] = nil
		s.systems = s.systems[:last]
		n++
		if removed != nil {
			removed(system)
		}
	}
	return n
}

func (s *Scheduler) Len() int {
	return len(s.systems)
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
