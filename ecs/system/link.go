package system

import (
	"github.com/milk9111/dotengine/ecs"
	"github.com/milk9111/dotengine/ecs/component"
	"github.com/milk9111/dotengine/vmath"
)

// Link joins two bodies with a damped spring of rest length Length,
// stiffness Hardness and damping Damping.
type Link struct {
	component.Destroyable
	A, B     ecs.Entity
	Length   float64
	Hardness float64
	Damping  float64
}

// resolve returns both ends, destroying the link when one is gone.
func (l *Link) resolve(w *ecs.World) (a, b *component.Body, ok bool) {
	a, okA := w.Body(l.A)
	b, okB := w.Body(l.B)
	if !okA || !okB {
		l.Destroy()
		return nil, nil, false
	}
	return a, b, true
}

// pull applies the spring pair. dir points from b to a, rate is the
// derivative of the distance.
func (l *Link) pull(a, b *component.Body, dir vmath.Vector, dist float64) {
	rate := vmath.Dot(a.Speed().Sub(b.Speed()), dir)
	onB := dir.Mult(l.Hardness*(dist-l.Length) + l.Damping*rate)
	onBDeriv := dir.Mult(l.Hardness * rate)
	a.AddForce(onB.Neg(), onBDeriv.Neg())
	b.AddForce(onB, onBDeriv)
}

// SpringLink pulls when stretched and pushes when compressed.
type SpringLink struct {
	Link
}

func NewSpringLink(a, b ecs.Entity, length, hardness, damping float64) *SpringLink {
	return &SpringLink{Link{A: a, B: b, Length: length, Hardness: hardness, Damping: damping}}
}

func (s *SpringLink) Apply(w *ecs.World, _ float64) {
	a, b, ok := s.resolve(w)
	if !ok {
		return
	}
	dir, dist := vmath.Direction(b.Position(), a.Position())
	s.pull(a, b, dir, dist)
}

// RopeLink only acts in tension, beyond its rest length.
type RopeLink struct {
	Link
}

func NewRopeLink(a, b ecs.Entity, length, hardness, damping float64) *RopeLink {
	return &RopeLink{Link{A: a, B: b, Length: length, Hardness: hardness, Damping: damping}}
}

func (r *RopeLink) Apply(w *ecs.World, _ float64) {
	a, b, ok := r.resolve(w)
	if !ok {
		return
	}
	dir, dist := vmath.Direction(b.Position(), a.Position())
	if dist <= r.Length {
		return
	}
	r.pull(a, b, dir, dist)
}
