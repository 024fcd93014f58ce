package system

import (
	"github.com/milk9111/dotengine/ecs"
	"github.com/milk9111/dotengine/ecs/component"
	"github.com/milk9111/dotengine/vmath"
)

// Body pointers handed to OnBodyListUpdate stay valid until the next body
// list update, so laws keep a filtered view instead of resolving handles.

func dynamicBodies(dst, bodies []*component.Body) []*component.Body {
	dst = dst[:0]
	for _, b := range bodies {
		if b.IsDynamic() {
			dst = append(dst, b)
		}
	}
	return dst
}

// Drag opposes motion proportionally to speed and size.
type Drag struct {
	component.Destroyable
	Coefficient float64

	bodies []*component.Body
}

func NewDrag(coefficient float64) *Drag {
	return &Drag{Coefficient: coefficient}
}

func (d *Drag) OnBodyListUpdate(_ *ecs.World, bodies []*component.Body) {
	d.bodies = dynamicBodies(d.bodies, bodies)
}

func (d *Drag) Apply(_ *ecs.World, _ float64) {
	if d == nil {
		return
	}
	for _, b := range d.bodies {
		b.AddForce(b.Speed().Mult(-d.Coefficient*b.Size()), vmath.Zero)
	}
}

// Gravity is a uniform field pulling every dynamic body along G.
type Gravity struct {
	component.Destroyable
	G vmath.Vector

	bodies []*component.Body
}

func NewGravity(g vmath.Vector) *Gravity {
	return &Gravity{G: g}
}

func (g *Gravity) OnBodyListUpdate(_ *ecs.World, bodies []*component.Body) {
	g.bodies = dynamicBodies(g.bodies, bodies)
}

func (g *Gravity) Apply(_ *ecs.World, _ float64) {
	if g == nil {
		return
	}
	for _, b := range g.bodies {
		b.AddForce(g.G.Mult(b.Mass()), vmath.Zero)
	}
}

const (
	astralEpsilon = 0.01
	astralCutoff  = 0.5
)

// AstralGravity attracts every non-star dynamic body towards each registered
// star with an inverse-square law. Pulls weaker than astralCutoff are skipped.
type AstralGravity struct {
	component.Destroyable
	G float64

	stars      []ecs.Entity
	starBodies []*component.Body
	bodies     []*component.Body
}

func NewAstralGravity(g float64) *AstralGravity {
	return &AstralGravity{G: g}
}

// RegisterStar adds a star. It pulls from the next Apply on.
func (a *AstralGravity) RegisterStar(e ecs.Entity) {
	a.stars = append(a.stars, e)
}

// Stars returns the handles of the stars still tracked.
func (a *AstralGravity) Stars() []ecs.Entity {
	return append([]ecs.Entity(nil), a.stars...)
}

func (a *AstralGravity) OnBodyListUpdate(_ *ecs.World, bodies []*component.Body) {
	a.bodies = dynamicBodies(a.bodies, bodies)
}

// resolveStars refreshes starBodies, swap-removing stars that no longer resolve.
func (a *AstralGravity) resolveStars(w *ecs.World) {
	a.starBodies = a.starBodies[:0]
	for i := len(a.stars) - 1; i >= 0; i-- {
		star, ok := w.Body(a.stars[i])
		if !ok {
			last := len(a.stars) - 1
			a.stars[i] = a.stars[last]
			a.stars = a.stars[:last]
			continue
		}
		a.starBodies = append(a.starBodies, star)
	}
}

func (a *AstralGravity) isStar(b *component.Body) bool {
	for _, s := range a.starBodies {
		if s == b {
			return true
		}
	}
	return false
}

func (a *AstralGravity) Apply(w *ecs.World, _ float64) {
	if a == nil {
		return
	}
	a.resolveStars(w)
	for _, star := range a.starBodies {
		gm := a.G * star.Mass()
		starPos := star.Position()
		for _, b := range a.bodies {
			if a.isStar(b) {
				continue
			}
			diff := starPos.Sub(b.Position())
			dSq := diff.LengthSq() + astralEpsilon
			mag := gm * b.Mass() / dSq
			if mag <= astralCutoff {
				continue
			}
			dir, _ := vmath.Normalized(diff)
			force := dir.Mult(mag)
			b.AddForce(force, vmath.Zero)
			star.AddForce(force.Neg(), vmath.Zero)
		}
	}
}
