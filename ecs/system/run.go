package system

import (
	"github.com/milk9111/dotengine/ecs"
	"github.com/milk9111/dotengine/ecs/component"
	"github.com/milk9111/dotengine/vmath"
)

// Floor is a body a runner can push along, with its friction multiplier.
type Floor struct {
	Body     ecs.Entity
	Friction float64
}

func floorEntity(f Floor) ecs.Entity { return f.Body }

// RunningForce moves the runner along the surface of the nearest floor and
// pushes the floor back. Direction is -1, 0 or +1; 0 disables the force.
//
// A plain running force turns clockwise around the floor normal for +1 and
// counter-clockwise for -1, so "forward" depends on which side of the floor
// the runner stands. Intuitive forces instead keep the sign of the tangent's
// X component equal to Direction, so +1 always heads right.
type RunningForce struct {
	component.Destroyable
	Runner            ecs.Entity
	Value             float64
	DistanceThreshold float64
	Direction         int
	Intuitive         bool

	floors []Floor
}

func NewRunningForce(runner ecs.Entity, value, threshold float64, intuitive bool) *RunningForce {
	return &RunningForce{
		Runner:            runner,
		Value:             value,
		DistanceThreshold: threshold,
		Intuitive:         intuitive,
	}
}

// AddFloor registers a floor. friction <= 0 means 1.
func (r *RunningForce) AddFloor(e ecs.Entity, friction float64) {
	if friction <= 0 {
		friction = 1
	}
	r.floors = append(r.floors, Floor{Body: e, Friction: friction})
}

// Floors returns the floors still tracked.
func (r *RunningForce) Floors() []Floor {
	return append([]Floor(nil), r.floors...)
}

// SetDirection clamps d to -1, 0 or +1.
func (r *RunningForce) SetDirection(d int) {
	switch {
	case d > 0:
		r.Direction = 1
	case d < 0:
		r.Direction = -1
	default:
		r.Direction = 0
	}
}

func (r *RunningForce) Apply(w *ecs.World, _ float64) {
	if r.Direction == 0 {
		return
	}
	runner, ok := w.Body(r.Runner)
	if !ok {
		r.Destroy()
		return
	}

	var best nearestBody[Floor]
	r.floors, best = findNearest(w, r.floors, floorEntity, runner, r.DistanceThreshold)
	if !best.found {
		return
	}

	force := r.tangent(best.dir).Mult(best.item.Friction * r.Value)
	runner.AddForce(force, vmath.Zero)
	best.body.AddForce(force.Neg(), vmath.Zero)
}

// tangent returns the unit push direction for a floor normal.
func (r *RunningForce) tangent(normal vmath.Vector) vmath.Vector {
	if !r.Intuitive {
		if r.Direction > 0 {
			return vmath.PerpClockwise(normal)
		}
		return vmath.PerpCounterClockwise(normal)
	}
	t := vmath.PerpClockwise(normal)
	if (r.Direction > 0 && t.X < 0) || (r.Direction < 0 && t.X > 0) {
		t = t.Neg()
	}
	return t
}
