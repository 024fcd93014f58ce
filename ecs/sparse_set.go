package ecs

// SparseSet stores values keyed by entity slot id in a dense slice.
// Removal swaps the last value into the hole, so dense order is not stable.
type SparseSet[T any] struct {
	denseIDs    []slotID
	denseValues []T
	sparse      []int
}

// Has returns true if the slot id exists in the set.
func (s *SparseSet[T]) Has(id slotID) bool {
	if s == nil || id == 0 || int(id) > len(s.sparse) {
		return false
	}
	idx := s.sparse[id-1]
	return idx >= 0 && idx < len(s.denseIDs) && s.denseIDs[idx] == id
}

// Get returns the value for id.
func (s *SparseSet[T]) Get(id slotID) (T, bool) {
	var zero T
	if !s.Has(id) {
		return zero, false
	}
	return s.denseValues[s.sparse[id-1]], true
}

// Index returns the dense position of id, or -1.
func (s *SparseSet[T]) Index(id slotID) int {
	if !s.Has(id) {
		return -1
	}
	return s.sparse[id-1]
}

// Set inserts or updates the value for id.
func (s *SparseSet[T]) Set(id slotID, v T) {
	if s == nil || id == 0 {
		return
	}
	for int(id) > len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if s.Has(id) {
		s.denseValues[s.sparse[id-1]] = v
		return
	}
	s.denseIDs = append(s.denseIDs, id)
	s.denseValues = append(s.denseValues, v)
	s.sparse[id-1] = len(s.denseIDs) - 1
}

// Remove deletes the value for id if present.
func (s *SparseSet[T]) Remove(id slotID) bool {
	if !s.Has(id) {
		return false
	}
	idx := s.sparse[id-1]
	last := len(s.denseIDs) - 1
	lastID := s.denseIDs[last]

	s.denseIDs[idx] = s.denseIDs[last]
	s.denseValues[idx] = s.denseValues[last]
	s.sparse[lastID-1] = idx

	var zero T
	s.denseValues[last] = zero
	s.denseIDs = s.denseIDs[:last]
	s.denseValues = s.denseValues[:last]
	s.sparse[id-1] = -1
	return true
}

// Len returns the number of stored values.
func (s *SparseSet[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.denseValues)
}

// Values returns the dense value list. Callers must not retain it across mutations.
func (s *SparseSet[T]) Values() []T {
	if s == nil {
		return nil
	}
	return s.denseValues
}

func (s *SparseSet[T]) ids() []slotID {
	if s == nil {
		return nil
	}
	return s.denseIDs
}
