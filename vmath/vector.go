// Package vmath provides the 2D vector helpers used by the engine. Vectors are
// Chipmunk vectors so bodies can be handed to cp-based tooling without copies.
package vmath

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Vector is a 2-component float vector with value semantics.
type Vector = cp.Vector

// Zero is the null vector.
var Zero = Vector{}

// CanonicalDirection is returned for coincident points, where no direction exists.
var CanonicalDirection = Vector{X: 1, Y: 0}

// V builds a vector.
func V(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

// Norm2 returns the squared length of v.
func Norm2(v Vector) float64 {
	return v.LengthSq()
}

// Norm returns the length of v.
func Norm(v Vector) float64 {
	return v.Length()
}

// Dot returns the dot product of u and v.
func Dot(u, v Vector) float64 {
	return u.Dot(v)
}

// Normalized returns v scaled to unit length. ok is false for the zero vector,
// in which case the canonical direction is returned.
func Normalized(v Vector) (Vector, bool) {
	n := v.Length()
	if n == 0 || math.IsNaN(n) {
		return CanonicalDirection, false
	}
	return v.Mult(1 / n), true
}

// Direction returns the unit vector pointing from -> to and the distance
// between them. Coincident points yield CanonicalDirection and 0.
func Direction(from, to Vector) (Vector, float64) {
	diff := to.Sub(from)
	dist := diff.Length()
	if dist == 0 {
		return CanonicalDirection, 0
	}
	return diff.Mult(1 / dist), dist
}

// NormLimit clamps the length of v to max.
func NormLimit(v Vector, max float64) Vector {
	if v.LengthSq() < max*max {
		return v
	}
	dir, ok := Normalized(v)
	if !ok {
		return v
	}
	return dir.Mult(max)
}

// PerpClockwise rotates v by -90 degrees.
func PerpClockwise(v Vector) Vector {
	return v.ReversePerp()
}

// PerpCounterClockwise rotates v by +90 degrees.
func PerpCounterClockwise(v Vector) Vector {
	return v.Perp()
}

// AngleRad returns the angle of v in radians.
func AngleRad(v Vector) float64 {
	return v.ToAngle()
}

// AngleDeg returns the angle of v in degrees.
func AngleDeg(v Vector) float64 {
	return v.ToAngle() * 180 / math.Pi
}

// CircleBB returns the axis-aligned box of a circle.
func CircleBB(center Vector, radius float64) cp.BB {
	return cp.BB{
		L: center.X - radius,
		B: center.Y - radius,
		R: center.X + radius,
		T: center.Y + radius,
	}
}
