package system

import (
	"github.com/milk9111/dotengine/common"
	"github.com/milk9111/dotengine/ecs"
	"github.com/milk9111/dotengine/ecs/component"
	"github.com/milk9111/dotengine/vmath"
)

// TargetedForce pushes one body with a settable force.
type TargetedForce struct {
	component.Destroyable
	Target ecs.Entity
	Value  vmath.Vector
}

func NewTargetedForce(target ecs.Entity, value vmath.Vector) *TargetedForce {
	return &TargetedForce{Target: target, Value: value}
}

func (f *TargetedForce) Apply(w *ecs.World, _ float64) {
	b, ok := w.Body(f.Target)
	if !ok {
		f.Destroy()
		return
	}
	b.AddForce(f.Value, vmath.Zero)
}

// TemporaryForce is a targeted force whose magnitude fades linearly to zero
// over Duration seconds, after which the system destroys itself.
type TemporaryForce struct {
	TargetedForce
	Duration float64

	remaining float64
}

func NewTemporaryForce(target ecs.Entity, value vmath.Vector, duration float64) *TemporaryForce {
	return &TemporaryForce{
		TargetedForce: TargetedForce{Target: target, Value: value},
		Duration:      duration,
		remaining:     duration,
	}
}

// Remaining returns the seconds left before the force expires.
func (f *TemporaryForce) Remaining() float64 { return f.remaining }

func (f *TemporaryForce) Apply(w *ecs.World, dt float64) {
	b, ok := w.Body(f.Target)
	if !ok || f.remaining <= 0 || f.Duration <= 0 {
		f.Destroy()
		return
	}
	b.AddForce(f.Value.Mult(common.Clamp(f.remaining/f.Duration, 0, 1)), vmath.Zero)
	f.remaining -= dt
	if f.remaining <= 0 {
		f.Destroy()
	}
}
