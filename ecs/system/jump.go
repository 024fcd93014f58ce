package system

import (
	"github.com/milk9111/dotengine/ecs"
	"github.com/milk9111/dotengine/ecs/component"
	"github.com/milk9111/dotengine/vmath"
)

// JumpForce pushes the jumper away from the nearest wall while Active. The
// push starts at InitialValue and loses DegradationRate per second until it
// reaches zero. Releasing Active rearms the jump.
type JumpForce struct {
	component.Destroyable
	Jumper            ecs.Entity
	InitialValue      float64
	DegradationRate   float64
	DistanceThreshold float64
	Active            bool

	walls   []ecs.Entity
	value   vmath.Vector
	hasJump bool
}

func NewJumpForce(jumper ecs.Entity, initial, degradation, threshold float64) *JumpForce {
	return &JumpForce{
		Jumper:            jumper,
		InitialValue:      initial,
		DegradationRate:   degradation,
		DistanceThreshold: threshold,
	}
}

// AddWall registers a body the jumper can push off.
func (j *JumpForce) AddWall(e ecs.Entity) {
	j.walls = append(j.walls, e)
}

// Walls returns the walls still tracked.
func (j *JumpForce) Walls() []ecs.Entity {
	return append([]ecs.Entity(nil), j.walls...)
}

// Value returns the force currently applied.
func (j *JumpForce) Value() vmath.Vector { return j.value }

func (j *JumpForce) Apply(w *ecs.World, dt float64) {
	if !j.Active {
		j.hasJump = false
		j.value = vmath.Zero
		return
	}

	jumper, ok := w.Body(j.Jumper)
	if !ok {
		j.Destroy()
		return
	}

	if !j.hasJump {
		var best nearestBody[ecs.Entity]
		j.walls, best = findNearest(w, j.walls, entityOf, jumper, j.DistanceThreshold)
		if best.found {
			j.value = best.dir.Mult(j.InitialValue)
			j.hasJump = true
		}
	} else {
		norm := vmath.Norm(j.value)
		next := norm - j.DegradationRate*dt
		if next <= 0 || norm == 0 {
			j.value = vmath.Zero
		} else {
			j.value = j.value.Mult(next / norm)
		}
	}

	jumper.AddForce(j.value, vmath.Zero)
}

type nearestBody[T any] struct {
	found bool
	item  T
	body  *component.Body
	// dir points from the found body to the subject
	dir vmath.Vector
}

func entityOf(e ecs.Entity) ecs.Entity { return e }

// findNearest scans items in reverse for the body whose surface is closest to
// subject and under threshold. Items whose handle no longer resolves are
// swap-removed in place; the pruned slice is returned.
func findNearest[T any](w *ecs.World, items []T, handle func(T) ecs.Entity, subject *component.Body, threshold float64) ([]T, nearestBody[T]) {
	var best nearestBody[T]
	bestDist := threshold
	for i := len(items) - 1; i >= 0; i-- {
		other, ok := w.Body(handle(items[i]))
		if !ok {
			last := len(items) - 1
			items[i] = items[last]
			items = items[:last]
			continue
		}
		dir, centers := vmath.Direction(other.Position(), subject.Position())
		dist := centers - (subject.Size() + other.Size())
		if dist < bestDist {
			bestDist = dist
			best = nearestBody[T]{found: true, item: items[i], body: other, dir: dir}
		}
	}
	return items, best
}
