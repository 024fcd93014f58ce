package ecs

import (
	"github.com/milk9111/dotengine/ecs/component"
	"github.com/milk9111/dotengine/vmath"
)

const (
	DefaultSortMinBodies = 64
	DefaultSortMaxDepth  = 8
)

// CollisionInfo is a confirmed overlapping pair. The pointers are only valid
// for the frame that produced them.
type CollisionInfo struct {
	A *component.Body
	B *component.Body
}

// CandidateGroup pairs an anchor body with the bodies it may overlap.
// Indices refer to the world's dense body list of the current frame.
type CandidateGroup struct {
	Anchor     int
	Candidates []int
}

// quadrant bits: 0 = (-x,-y), 1 = (-x,+y), 2 = (+x,-y), 3 = (+x,+y)
type zoneMask uint8

type groupHead struct {
	anchor     int
	start, end int
}

// quadSorter narrows collision candidates by recursive quadrant partitioning
// around the centroid. Scratch buffers are a per-depth stack sized once per
// call to generate; recursion never allocates.
type quadSorter struct {
	minBodies int
	maxDepth  int

	capacity int
	ids      []int
	zones    [][4][]int
	hybrid   []int
	masks    []zoneMask

	flat   []int
	heads  []groupHead
	groups []CandidateGroup
}

func newQuadSorter(minBodies, maxDepth int) quadSorter {
	if minBodies <= 0 {
		minBodies = DefaultSortMinBodies
	}
	if maxDepth <= 0 {
		maxDepth = DefaultSortMaxDepth
	}
	return quadSorter{minBodies: minBodies, maxDepth: maxDepth}
}

func (s *quadSorter) reserve(n int) {
	if n <= s.capacity && len(s.zones) == s.maxDepth {
		return
	}
	s.capacity = n
	s.ids = make([]int, n)
	s.hybrid = make([]int, n)
	s.masks = make([]zoneMask, n)
	backing := make([]int, 4*s.maxDepth*n)
	s.zones = make([][4][]int, s.maxDepth)
	for d := range s.zones {
		for k := 0; k < 4; k++ {
			off := (d*4 + k) * n
			s.zones[d][k] = backing[off : off+n : off+n]
		}
	}
}

// generate returns the candidate groups for bodies. The result aliases
// internal buffers and is overwritten by the next call.
func (s *quadSorter) generate(bodies []*component.Body) []CandidateGroup {
	n := len(bodies)
	s.reserve(n)
	ids := s.ids[:n]
	for i := range ids {
		ids[i] = i
	}
	s.flat = s.flat[:0]
	s.heads = s.heads[:0]

	s.sort(bodies, ids, 0)

	s.groups = s.groups[:0]
	for _, h := range s.heads {
		s.groups = append(s.groups, CandidateGroup{
			Anchor:     h.anchor,
			Candidates: s.flat[h.start:h.end:h.end],
		})
	}
	return s.groups
}

func (s *quadSorter) emit(anchor, start int) {
	if len(s.flat) > start {
		s.heads = append(s.heads, groupHead{anchor: anchor, start: start, end: len(s.flat)})
	}
}

func (s *quadSorter) sort(bodies []*component.Body, ids []int, depth int) {
	n := len(ids)
	if n < s.minBodies || depth >= s.maxDepth {
		for i := 0; i+1 < n; i++ {
			start := len(s.flat)
			s.flat = append(s.flat, ids[i+1:]...)
			s.emit(ids[i], start)
		}
		return
	}

	var pivot vmath.Vector
	for _, id := range ids {
		pivot = pivot.Add(bodies[id].Position())
	}
	pivot = pivot.Mult(1 / float64(n))

	buckets := &s.zones[depth]
	var counts [4]int
	hybridCount := 0

	for _, id := range ids {
		b := bodies[id]
		bb := vmath.CircleBB(b.Position(), b.Size())

		var mask zoneMask
		zones := 0
		only := 0
		if bb.L <= pivot.X && bb.B <= pivot.Y {
			mask |= 1 << 0
			zones++
			only = 0
		}
		if bb.L <= pivot.X && bb.T >= pivot.Y {
			mask |= 1 << 1
			zones++
			only = 1
		}
		if bb.R >= pivot.X && bb.B <= pivot.Y {
			mask |= 1 << 2
			zones++
			only = 2
		}
		if bb.R >= pivot.X && bb.T >= pivot.Y {
			mask |= 1 << 3
			zones++
			only = 3
		}

		if zones == 1 {
			buckets[only][counts[only]] = id
			counts[only]++
			continue
		}
		s.hybrid[hybridCount] = id
		s.masks[hybridCount] = mask
		hybridCount++
	}

	// Pairs across quadrants are never seen again deeper down, so every
	// hybrid body is paired here with everything sharing one of its quadrants.
	for i := 0; i < hybridCount; i++ {
		mask := s.masks[i]
		start := len(s.flat)
		for j := i + 1; j < hybridCount; j++ {
			if mask&s.masks[j] != 0 {
				s.flat = append(s.flat, s.hybrid[j])
			}
		}
		for k := 0; k < 4; k++ {
			if mask&(1<<k) != 0 {
				s.flat = append(s.flat, buckets[k][:counts[k]]...)
			}
		}
		s.emit(s.hybrid[i], start)
	}

	for k := 0; k < 4; k++ {
		s.sort(bodies, buckets[k][:counts[k]], depth+1)
	}
}

// confirmGroups appends every candidate pair of groups that truly overlaps.
func confirmGroups(bodies []*component.Body, groups []CandidateGroup, out []CollisionInfo) []CollisionInfo {
	for _, g := range groups {
		a := bodies[g.Anchor]
		for _, c := range g.Candidates {
			b := bodies[c]
			if component.Overlaps(a, b) {
				out = append(out, CollisionInfo{A: a, B: b})
			}
		}
	}
	return out
}
