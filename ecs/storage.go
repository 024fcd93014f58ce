package ecs

import "fmt"

// Entity is a handle to a body registered in a World: the slot in the low
// 32 bits, the slot's epoch in the high 32 bits. Destroying a body bumps the
// epoch of its slot, so older handles stop resolving even after the slot is
// reused. The zero Entity never resolves.
type Entity uint64

type slotID uint32
type epoch uint32

const slotBits = 32

func newEntity(s slotID, ep epoch) Entity {
	return Entity(uint64(ep)<<slotBits | uint64(s))
}

func (e Entity) slot() slotID { return slotID(uint32(e)) }
func (e Entity) gen() epoch { return epoch(uint32(uint64(e) >> slotBits)) }

// String formats the handle as slot@epoch.
func (e Entity) String() string {
	return fmt.Sprintf("%d@%d", e.slot(), e.gen())
}

// Valid reports whether e was ever issued. It says nothing about liveness.
func (e Entity) Valid() bool {
	return e.slot() > 0
}

// entityStore tracks slot epochs and free slots. Ids start at 1 so the
// zero Entity is never valid.
type entityStore struct {
	gen  []epoch
	free []slotID
}

func (s *entityStore) create() Entity {
	var id slotID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.gen = append(s.gen, 0)
		id = slotID(len(s.gen))
	}
	return newEntity(id, s.gen[id-1])
}

// destroy bumps the epoch so every outstanding handle stops resolving.
func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	id := e.slot()
	s.gen[id-1]++
	s.free = append(s.free, id)
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	id := e.slot()
	if id == 0 || int(id) > len(s.gen) {
		return false
	}
	return s.gen[id-1] == e.gen()
}

func (s *entityStore) alive() int {
	return len(s.gen) - len(s.free)
}
