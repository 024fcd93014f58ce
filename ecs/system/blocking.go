package system

import (
	"github.com/milk9111/dotengine/common"
	"github.com/milk9111/dotengine/ecs"
	"github.com/milk9111/dotengine/ecs/component"
	"github.com/milk9111/dotengine/vmath"
)

// BlockingEffect pushes overlapping bodies apart with a penalty spring. The
// two hardnesses (and dampings) act in series.
type BlockingEffect struct {
	component.Destroyable

	collisions []ecs.CollisionInfo
}

func NewBlockingEffect() *BlockingEffect {
	return &BlockingEffect{}
}

func (e *BlockingEffect) OnCollisionListUpdate(_ *ecs.World, collisions []ecs.CollisionInfo) {
	e.collisions = collisions
}

func (e *BlockingEffect) Apply(_ *ecs.World, _ float64) {
	if e == nil {
		return
	}
	for _, c := range e.collisions {
		Block(c.A, c.B)
	}
}

// Block applies the blocking force pair to a and b. Bodies without hardness
// are left alone.
func Block(a, b *component.Body) {
	if !a.HasHardness() || !b.HasHardness() {
		return
	}

	critical := a.Size() + b.Size()
	dir, dist := vmath.Direction(a.Position(), b.Position())
	if dist > critical {
		return
	}

	deformation := critical - dist
	rate := -vmath.Dot(b.Speed().Sub(a.Speed()), dir)

	k := common.SeriesEquivalent(a.Hardness(), b.Hardness())
	magnitude := k * deformation
	if a.HasDamping() && b.HasDamping() {
		magnitude += common.SeriesEquivalent(a.Damping(), b.Damping()) * rate
	}

	onA := dir.Mult(-magnitude)
	onADeriv := dir.Mult(-k * rate)
	a.AddForce(onA, onADeriv)
	b.AddForce(onA.Neg(), onADeriv.Neg())
}
