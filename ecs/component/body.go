package component

import (
	"github.com/milk9111/dotengine/vmath"
)

// Capability flags the optional physical features of a body.
type Capability uint8

const (
	// CapRigid adds mass, hardness and damping.
	CapRigid Capability = 1 << iota
	// CapDynamic adds mutable speed and force accumulation.
	CapDynamic
	// CapSpeedLimit clamps displacement and speed to MaxSpeed.
	CapSpeedLimit
)

// Has reports whether all flags in o are set.
func (c Capability) Has(o Capability) bool {
	return c&o == o
}

// Body is a simulated circle. The capability set decides which of the
// optional attributes are meaningful; accessors for an absent capability
// return neutral values and setters do nothing.
type Body struct {
	Destroyable

	caps          Capability
	position      vmath.Vector
	size          float64
	weakCollision bool

	mass     float64
	hardness float64
	damping  float64
	maxSpeed float64

	speed vmath.Vector
	accel vmath.Vector
	jerk  vmath.Vector

	// low resolution contribution, restored at every sub-step start
	lowResAccel vmath.Vector
	lowResJerk  vmath.Vector
}

// NewInertBody creates a body with only a position and size.
func NewInertBody(position vmath.Vector, size float64) *Body {
	return &Body{position: position, size: size}
}

// NewStaticBody creates an immovable body that takes part in collision response.
func NewStaticBody(position vmath.Vector, size, mass, hardness, damping float64) *Body {
	return &Body{
		caps:     CapRigid,
		position: position,
		size:     size,
		mass:     mass,
		hardness: hardness,
		damping:  damping,
	}
}

// NewDynamicBody creates a body integrated from the forces applied to it.
// mass must be positive.
func NewDynamicBody(position vmath.Vector, size, mass float64) *Body {
	return &Body{
		caps:     CapRigid | CapDynamic,
		position: position,
		size:     size,
		mass:     mass,
	}
}

// NewLimitedDynamicBody creates a dynamic body whose speed never exceeds maxSpeed.
func NewLimitedDynamicBody(position vmath.Vector, size, mass, maxSpeed float64) *Body {
	b := NewDynamicBody(position, size, mass)
	b.caps |= CapSpeedLimit
	b.maxSpeed = maxSpeed
	return b
}

// Capabilities returns the capability set.
func (b *Body) Capabilities() Capability { return b.caps }

// IsDynamic reports whether forces move the body.
func (b *Body) IsDynamic() bool { return b.caps.Has(CapDynamic) }

func (b *Body) Position() vmath.Vector     { return b.position }
func (b *Body) SetPosition(p vmath.Vector) { b.position = p }

func (b *Body) Size() float64     { return b.size }
func (b *Body) SetSize(s float64) { b.size = s }

// WeakCollision bodies never collide with each other.
func (b *Body) WeakCollision() bool     { return b.weakCollision }
func (b *Body) SetWeakCollision(v bool) { b.weakCollision = v }

func (b *Body) HasMass() bool { return b.caps.Has(CapRigid) }

// Mass returns 1 when the body has no mass.
func (b *Body) Mass() float64 {
	if !b.HasMass() {
		return 1
	}
	return b.mass
}

func (b *Body) SetMass(m float64) {
	if b.HasMass() {
		b.mass = m
	}
}

func (b *Body) HasHardness() bool { return b.caps.Has(CapRigid) }

func (b *Body) Hardness() float64 {
	if !b.HasHardness() {
		return 0
	}
	return b.hardness
}

func (b *Body) SetHardness(h float64) {
	if b.HasHardness() {
		b.hardness = h
	}
}

func (b *Body) HasDamping() bool { return b.caps.Has(CapRigid) }

func (b *Body) Damping() float64 {
	if !b.HasDamping() {
		return 0
	}
	return b.damping
}

func (b *Body) SetDamping(d float64) {
	if b.HasDamping() {
		b.damping = d
	}
}

func (b *Body) HasSpeed() bool { return b.caps.Has(CapDynamic) }

// Speed is always zero for bodies without dynamics.
func (b *Body) Speed() vmath.Vector {
	if !b.HasSpeed() {
		return vmath.Zero
	}
	return b.speed
}

func (b *Body) SetSpeed(v vmath.Vector) {
	if b.HasSpeed() {
		b.speed = v
	}
}

// MaxSpeed returns 0 for bodies without a speed limit.
func (b *Body) MaxSpeed() float64 {
	if !b.caps.Has(CapSpeedLimit) {
		return 0
	}
	return b.maxSpeed
}

func (b *Body) SetMaxSpeed(v float64) {
	if b.caps.Has(CapSpeedLimit) {
		b.maxSpeed = v
	}
}

// Acceleration returns the acceleration accumulated so far in this sub-step.
func (b *Body) Acceleration() vmath.Vector { return b.accel }

// Jerk returns the accumulated acceleration derivative.
func (b *Body) Jerk() vmath.Vector { return b.jerk }

// ResetAccumulatedForce clears acceleration and jerk.
func (b *Body) ResetAccumulatedForce() {
	b.accel = vmath.Zero
	b.jerk = vmath.Zero
}

// AddForce accumulates force and its time derivative. No-op without dynamics.
func (b *Body) AddForce(force, derivative vmath.Vector) {
	if !b.IsDynamic() {
		return
	}
	inv := 1 / b.mass
	b.accel = b.accel.Add(force.Mult(inv))
	b.jerk = b.jerk.Add(derivative.Mult(inv))
}

// Integrate advances position, speed and acceleration by dt using the
// accumulated terms. Accumulation is not reset.
func (b *Body) Integrate(dt float64) {
	if !b.IsDynamic() {
		return
	}
	dt2 := dt * dt
	halfA := b.accel.Mult(0.5)

	if b.caps.Has(CapSpeedLimit) {
		// mean velocity over the sub-step, so |displacement| <= maxSpeed*dt
		mean := b.speed.Add(halfA.Mult(dt)).Add(b.jerk.Mult(dt2 / 6))
		b.position = b.position.Add(vmath.NormLimit(mean, b.maxSpeed).Mult(dt))
		speed := b.speed.Add(b.accel.Mult(dt)).Add(b.jerk.Mult(dt2 / 2))
		b.speed = vmath.NormLimit(speed, b.maxSpeed)
	} else {
		dt3 := dt2 * dt
		displacement := b.speed.Mult(dt).Add(halfA.Mult(dt2)).Add(b.jerk.Mult(dt3 / 6))
		b.position = b.position.Add(displacement)
		b.speed = b.speed.Add(b.accel.Mult(dt)).Add(b.jerk.Mult(dt2 / 2))
	}
	b.accel = b.accel.Add(b.jerk.Mult(dt))
}

// OnLowResolutionLoopStart clears the force accumulation for a new frame.
func (b *Body) OnLowResolutionLoopStart() {
	b.ResetAccumulatedForce()
}

// OnLowResolutionLoopEnd snapshots the low resolution contribution.
func (b *Body) OnLowResolutionLoopEnd() {
	b.lowResAccel = b.accel
	b.lowResJerk = b.jerk
}

// OnHighResolutionLoopStart restarts accumulation from the low resolution snapshot.
func (b *Body) OnHighResolutionLoopStart() {
	b.accel = b.lowResAccel
	b.jerk = b.lowResJerk
}

// OnHighResolutionLoopEnd integrates one sub-step.
func (b *Body) OnHighResolutionLoopEnd(dt float64) {
	b.Integrate(dt)
}
