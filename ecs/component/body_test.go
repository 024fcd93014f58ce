package component

import (
	"math"
	"math/rand"
	"testing"

	"github.com/milk9111/dotengine/vmath"
)

func closeTo(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCapabilitiesByConstructor(t *testing.T) {
	cases := []struct {
		name string
		body *Body
		want Capability
	}{
		{"inert", NewInertBody(vmath.Zero, 1), 0},
		{"static", NewStaticBody(vmath.Zero, 1, 1, 0, 0), CapRigid},
		{"dynamic", NewDynamicBody(vmath.Zero, 1, 1), CapRigid | CapDynamic},
		{"limited", NewLimitedDynamicBody(vmath.Zero, 1, 1, 2), CapRigid | CapDynamic | CapSpeedLimit},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.body.Capabilities(); got != c.want {
				t.Fatalf("expected %b, got %b", c.want, got)
			}
		})
	}
}

func TestCapabilityDefaults(t *testing.T) {
	inert := NewInertBody(vmath.V(1, 2), 3)
	inert.SetMass(10)
	inert.SetHardness(10)
	inert.SetDamping(10)
	inert.SetSpeed(vmath.V(5, 5))
	inert.AddForce(vmath.V(100, 0), vmath.Zero)
	inert.Integrate(1)

	if inert.HasMass() || inert.Mass() != 1 {
		t.Fatalf("inert mass: has=%v value=%v", inert.HasMass(), inert.Mass())
	}
	if inert.Hardness() != 0 || inert.Damping() != 0 {
		t.Fatalf("inert hardness/damping should be zero")
	}
	if inert.Speed() != vmath.Zero {
		t.Fatalf("inert speed should stay zero, got %v", inert.Speed())
	}
	if inert.Position() != vmath.V(1, 2) {
		t.Fatalf("inert body moved to %v", inert.Position())
	}

	static := NewStaticBody(vmath.Zero, 1, 5, 100, 10)
	static.SetSpeed(vmath.V(1, 0))
	static.AddForce(vmath.V(1, 0), vmath.Zero)
	if static.Speed() != vmath.Zero || static.Acceleration() != vmath.Zero {
		t.Fatalf("static body should ignore speed and forces")
	}
	if !static.HasHardness() || static.Hardness() != 100 || static.Mass() != 5 {
		t.Fatalf("static rigid attributes not kept")
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b *Body
		want bool
	}{
		{"apart", NewInertBody(vmath.V(0, 0), 1), NewInertBody(vmath.V(3, 0), 1), false},
		{"touching", NewInertBody(vmath.V(0, 0), 1), NewInertBody(vmath.V(2, 0), 1), false},
		{"overlapping", NewInertBody(vmath.V(0, 0), 1), NewInertBody(vmath.V(1.9, 0), 1), true},
		{"coincident_points", NewInertBody(vmath.V(4, 4), 0), NewInertBody(vmath.V(4, 4), 0), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Overlaps(c.a, c.b); got != c.want {
				t.Fatalf("Overlaps = %v, want %v", got, c.want)
			}
		})
	}
}

func TestOverlapsWeakCollision(t *testing.T) {
	a := NewInertBody(vmath.V(0, 0), 5)
	b := NewInertBody(vmath.V(1, 0), 5)
	c := NewInertBody(vmath.V(2, 0), 5)
	a.SetWeakCollision(true)
	b.SetWeakCollision(true)

	if Overlaps(a, b) {
		t.Fatalf("weak bodies must never collide")
	}
	if !Overlaps(a, c) || !Overlaps(c, b) {
		t.Fatalf("weak body should collide with a regular body")
	}
}

func TestOverlapsSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		a := NewInertBody(vmath.V(rng.Float64()*20-10, rng.Float64()*20-10), rng.Float64()*4)
		b := NewInertBody(vmath.V(rng.Float64()*20-10, rng.Float64()*20-10), rng.Float64()*4)
		a.SetWeakCollision(rng.Intn(3) == 0)
		b.SetWeakCollision(rng.Intn(3) == 0)
		if Overlaps(a, b) != Overlaps(b, a) {
			t.Fatalf("asymmetric overlap for %v/%v and %v/%v", a.Position(), a.Size(), b.Position(), b.Size())
		}
	}
}

func TestIntegrateStationary(t *testing.T) {
	b := NewDynamicBody(vmath.V(3, -2), 1, 2)
	for i := 0; i < 1000; i++ {
		b.ResetAccumulatedForce()
		b.Integrate(0.01)
	}
	if b.Position() != vmath.V(3, -2) || b.Speed() != vmath.Zero {
		t.Fatalf("body drifted to %v with speed %v", b.Position(), b.Speed())
	}
}

func TestIntegrateConstantForce(t *testing.T) {
	const (
		mass  = 4.0
		total = 2.0
	)
	force := vmath.V(8, -2)
	for _, steps := range []int{1, 7, 100} {
		b := NewDynamicBody(vmath.Zero, 0, mass)
		dt := total / float64(steps)
		for i := 0; i < steps; i++ {
			b.ResetAccumulatedForce()
			b.AddForce(force, vmath.Zero)
			b.Integrate(dt)
		}
		wantX := force.X / (2 * mass) * total * total
		wantY := force.Y / (2 * mass) * total * total
		if !closeTo(b.Position().X, wantX, 1e-9) || !closeTo(b.Position().Y, wantY, 1e-9) {
			t.Fatalf("steps=%d: position %v, want (%v, %v)", steps, b.Position(), wantX, wantY)
		}
	}
}

func TestIntegrateJerk(t *testing.T) {
	b := NewDynamicBody(vmath.Zero, 0, 1)
	b.AddForce(vmath.Zero, vmath.V(6, 0))
	b.Integrate(1)

	if !closeTo(b.Position().X, 1, 1e-12) {
		t.Fatalf("expected jerk displacement 1, got %v", b.Position().X)
	}
	if !closeTo(b.Speed().X, 3, 1e-12) {
		t.Fatalf("expected speed 3, got %v", b.Speed().X)
	}
	if !closeTo(b.Acceleration().X, 6, 1e-12) {
		t.Fatalf("expected acceleration 6, got %v", b.Acceleration().X)
	}
}

func TestLimitedIntegration(t *testing.T) {
	b := NewLimitedDynamicBody(vmath.Zero, 1, 1, 10)
	for i := 0; i < 100; i++ {
		b.ResetAccumulatedForce()
		b.AddForce(vmath.V(1000, 0), vmath.Zero)
		b.Integrate(0.1)
		if vmath.Norm(b.Speed()) > 10+1e-9 {
			t.Fatalf("speed exceeded limit: %v", b.Speed())
		}
	}
	if b.Position().X > 100+1e-9 {
		t.Fatalf("displacement exceeded max_speed*T: %v", b.Position().X)
	}
	if b.MaxSpeed() != 10 {
		t.Fatalf("expected max speed 10, got %v", b.MaxSpeed())
	}
}

func TestLowResolutionSnapshot(t *testing.T) {
	b := NewDynamicBody(vmath.Zero, 1, 2)
	b.OnLowResolutionLoopStart()
	b.AddForce(vmath.V(4, 0), vmath.Zero)
	b.OnLowResolutionLoopEnd()

	b.OnHighResolutionLoopStart()
	b.AddForce(vmath.V(2, 0), vmath.Zero)
	if b.Acceleration() != vmath.V(3, 0) {
		t.Fatalf("expected low+high accel 3, got %v", b.Acceleration())
	}
	b.OnHighResolutionLoopEnd(0.1)

	b.OnHighResolutionLoopStart()
	if b.Acceleration() != vmath.V(2, 0) {
		t.Fatalf("expected restored low-res accel 2, got %v", b.Acceleration())
	}
}

func TestDestroyable(t *testing.T) {
	b := NewInertBody(vmath.Zero, 1)
	if b.Destroyed() {
		t.Fatalf("new body should be alive")
	}
	b.Destroy()
	if !b.Destroyed() {
		t.Fatalf("body should be destroyed")
	}
}
