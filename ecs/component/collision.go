package component

// Overlaps reports whether two bodies touch. Bodies at exactly the sum of
// their sizes do not overlap, and two weak-collision bodies never do.
func Overlaps(a, b *Body) bool {
	if a.weakCollision && b.weakCollision {
		return false
	}
	critical := a.size + b.size
	return b.position.Sub(a.position).LengthSq() < critical*critical
}
